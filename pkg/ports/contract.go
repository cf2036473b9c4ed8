package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunOutputSinkContract runs a suite of tests to verify that an OutputSink
// implementation adheres to the defined interface contract.
func RunOutputSinkContract(t *testing.T, sink OutputSink) {
	ctx := context.Background()
	name := "contract-test-pane-" + time.Now().Format("20060102150405")

	t.Run("Missing pane", func(t *testing.T) {
		_, err := sink.Pane(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrPaneNotFound)
	})

	t.Run("Create then lookup", func(t *testing.T) {
		created, err := sink.CreatePane(ctx, name, PaneOptions{Visible: true})
		require.NoError(t, err, "CreatePane should not return error")
		require.NotNil(t, created)

		found, err := sink.Pane(ctx, name)
		require.NoError(t, err, "Pane should find a created pane")
		require.NotNil(t, found)
	})

	t.Run("Create is idempotent", func(t *testing.T) {
		again, err := sink.CreatePane(ctx, name, PaneOptions{Visible: true})
		require.NoError(t, err, "re-creating an existing pane should not fail")
		require.NotNil(t, again)
	})

	t.Run("Activate and append", func(t *testing.T) {
		pane, err := sink.Pane(ctx, name)
		require.NoError(t, err)

		require.NoError(t, pane.Activate(ctx))
		require.NoError(t, pane.Append(ctx, "first\n"))
		require.NoError(t, pane.Append(ctx, "second\n"))

		// Readback is optional; verify ordering when the sink supports it.
		if reader, ok := sink.(PaneReader); ok {
			got, err := reader.Contents(ctx, name)
			require.NoError(t, err)
			assert.Equal(t, "first\nsecond\n", got, "appends must accumulate in order")
		}
	})
}
