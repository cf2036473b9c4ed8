/*
Package canopy surveys workspaces: it walks every project node a provider
exposes, queries each one for its display attributes and identity, and
appends a fixed-format report to a named output pane.

# Concept

Canopy treats the host environment as two ports. A WorkspaceProvider hands
out opaque project handles through a forward-only cursor; an OutputSink owns
named, append-only panes. The survey core between them stays byte-stable: a
tab-indented line per supported attribute, a blank line per project, and a
completion marker per pass. This Hexagonal Architecture lets the same pass
run against a filesystem workspace and stdout, a Redis-backed sink, or
in-memory fakes in tests.

# Key Features

  - Degraded reports: each attribute answers independently, so a project
    missing its directory still reports its name.
  - Fault containment: a provider error or panic costs one project's query,
    never the pass.
  - Single-threaded host calls: every provider and sink call runs on one
    coordinating loop, matching hosts that require thread affinity.
  - Lazy panes: the output pane is created on the first report, so an empty
    workspace leaves no trace.

# Usage

Initialize the surveyor with a workspace path. The default setup reads
projects from a Loam repository and writes the report pane to stdout.

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/canopy"
	)

	func main() {
		srv, err := canopy.New("./my-workspace")
		if err != nil {
			log.Fatal(err)
		}
		defer srv.Close()

		summary, err := srv.Survey(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("surveyed %d of %d nodes", summary.Reported, summary.Visited)
	}
*/
package canopy
