package console_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/canopy/pkg/adapters/console"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleSink_Contract(t *testing.T) {
	ports.RunOutputSinkContract(t, console.NewSink(&bytes.Buffer{}))
}

func TestAppendsLandOnTheWriter(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	sink := console.NewSink(&buf)

	pane, err := sink.CreatePane(ctx, "Projects", ports.PaneOptions{Visible: true})
	require.NoError(t, err)

	require.NoError(t, pane.Activate(ctx))
	require.NoError(t, pane.Append(ctx, "\tProject name: App\n"))
	require.NoError(t, pane.Append(ctx, "\n"))

	assert.Equal(t, "\tProject name: App\n\n", buf.String())
}

func TestLookupBeforeCreate(t *testing.T) {
	sink := console.NewSink(&bytes.Buffer{})
	_, err := sink.Pane(context.Background(), "Projects")
	assert.ErrorIs(t, err, domain.ErrPaneNotFound)
}
