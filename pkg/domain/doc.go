/*
Package domain contains the core domain models for the Canopy survey engine.

It defines the vocabulary of a workspace survey: the attribute fields a pass
asks every project node for, the per-field results that come back, the report
assembled per node, query faults, and the summary of a whole pass. This
package is kept pure and free of external concerns like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - NodeHandle: An opaque reference to a project node owned by the provider.
  - ScalarField / IdentityField: The two attribute families a survey queries.
  - ScalarResult / IdentityResult: Per-field (value, status) slots.
  - ProjectReport: Everything one pass learned about one node.
  - PassSummary: Counters describing a finished pass.
*/
package domain
