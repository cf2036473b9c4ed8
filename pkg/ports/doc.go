/*
Package ports defines the driven ports (interfaces) for the Canopy survey engine.

These interfaces decouple the survey core from external implementations,
allowing it to work with various workspace backends and output sinks.

# Key Interfaces

  - WorkspaceProvider: Enumerates project nodes (e.g. from Loam or Memory).
  - AttributeQuerier: Optional node capability answering batched attribute queries.
  - OutputSink / Pane: Named append-only output channels owned by the host.
  - PassLocker: Distributed locking so replicated deployments run one pass at a time.
*/
package ports
