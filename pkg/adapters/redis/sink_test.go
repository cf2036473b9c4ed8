package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSink(t *testing.T) (*miniredis.Miniredis, *redis.Sink) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, redis.NewFromClient(client, redis.WithPrefix("test:"))
}

func TestRedisSink_Contract(t *testing.T) {
	_, sink := newTestSink(t)
	ports.RunOutputSinkContract(t, sink)
}

func TestRedisSink_AppendsAccumulateInOrder(t *testing.T) {
	_, sink := newTestSink(t)
	ctx := context.Background()

	pane, err := sink.CreatePane(ctx, "Projects", ports.PaneOptions{Visible: true})
	require.NoError(t, err)

	require.NoError(t, pane.Append(ctx, "\tProject name: App\n"))
	require.NoError(t, pane.Append(ctx, "\n"))
	require.NoError(t, pane.Append(ctx, "Surveyed 1 project(s).\n"))

	got, err := sink.Contents(ctx, "Projects")
	require.NoError(t, err)
	assert.Equal(t, "\tProject name: App\n\nSurveyed 1 project(s).\n", got)
}

func TestRedisSink_CreateIsIdempotentAcrossClients(t *testing.T) {
	mr, sink := newTestSink(t)
	ctx := context.Background()

	_, err := sink.CreatePane(ctx, "Projects", ports.PaneOptions{})
	require.NoError(t, err)

	// A second sink over the same backend sees the same pane.
	other := redis.NewFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}), redis.WithPrefix("test:"))
	pane, err := other.Pane(ctx, "Projects")
	require.NoError(t, err)
	require.NoError(t, pane.Append(ctx, "hello\n"))

	got, err := sink.Contents(ctx, "Projects")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", got)
}

func TestRedisSink_MissingPane(t *testing.T) {
	_, sink := newTestSink(t)

	_, err := sink.Pane(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrPaneNotFound)

	_, err = sink.Contents(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrPaneNotFound)
}

func TestRedisSink_ResetClearsOnlyMarkedPanes(t *testing.T) {
	_, sink := newTestSink(t)
	ctx := context.Background()

	scratch, err := sink.CreatePane(ctx, "scratch", ports.PaneOptions{ClearOnReset: true})
	require.NoError(t, err)
	logPane, err := sink.CreatePane(ctx, "log", ports.PaneOptions{})
	require.NoError(t, err)

	require.NoError(t, scratch.Append(ctx, "tmp\n"))
	require.NoError(t, logPane.Append(ctx, "kept\n"))

	require.NoError(t, sink.Reset(ctx))

	got, err := sink.Contents(ctx, "scratch")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = sink.Contents(ctx, "log")
	require.NoError(t, err)
	assert.Equal(t, "kept\n", got)
}

func TestRedisSink_UnreachableBackend(t *testing.T) {
	mr, sink := newTestSink(t)
	mr.Close()

	_, err := sink.CreatePane(context.Background(), "Projects", ports.PaneOptions{})
	assert.ErrorIs(t, err, domain.ErrSinkUnavailable)
}

func TestRedisSink_ListsPanes(t *testing.T) {
	_, sink := newTestSink(t)
	ctx := context.Background()

	_, err := sink.CreatePane(ctx, "a", ports.PaneOptions{})
	require.NoError(t, err)
	_, err = sink.CreatePane(ctx, "b", ports.PaneOptions{})
	require.NoError(t, err)

	names, err := sink.Panes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}
