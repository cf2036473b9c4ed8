package survey_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/report"
	"github.com/aretw0/canopy/pkg/survey"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	appInstance = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	appType     = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	libInstance = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	libType     = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

func appBlock() string {
	return "\tProject name: App\n" +
		"\tProject dir : /src/App\n" +
		"\tProject id  : 11111111-1111-1111-1111-111111111111\n" +
		"\tProject type: 22222222-2222-2222-2222-222222222222\n" +
		"\n"
}

func TestSurvey_WritesReportsInEnumerationOrder(t *testing.T) {
	provider := memory.NewProvider(
		memory.NewProject("App", "/src/App", appInstance, appType),
		memory.Opaque{Label: "solution items"},
		memory.NewProject("Lib", "/src/Lib", libInstance, libType),
	)
	sink := memory.NewSink()
	runner := survey.New(provider, report.NewWriter(sink))
	defer runner.Close()

	summary, err := runner.Survey(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Visited)
	assert.Equal(t, 2, summary.Reported)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Faulted)
	assert.Zero(t, summary.Dropped)

	want := appBlock() +
		"\tProject name: Lib\n" +
		"\tProject dir : /src/Lib\n" +
		"\tProject id  : 33333333-3333-3333-3333-333333333333\n" +
		"\tProject type: 44444444-4444-4444-4444-444444444444\n" +
		"\n" +
		"Surveyed 2 project(s).\n"

	got, err := sink.Contents(context.Background(), report.DefaultPaneName)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSurvey_NameOnlyProjectWritesSingleLine(t *testing.T) {
	provider := memory.NewProvider(memory.NewSparseProject(
		map[domain.ScalarField]string{domain.FieldName: "App"},
		nil,
	))
	sink := memory.NewSink()
	runner := survey.New(provider, report.NewWriter(sink), survey.WithoutMarker())
	defer runner.Close()

	summary, err := runner.Survey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Reported)

	got, err := sink.Contents(context.Background(), report.DefaultPaneName)
	require.NoError(t, err)
	assert.Equal(t, "\tProject name: App\n\n", got)
}

func TestSurvey_EnumerationFailureLeavesNoTrace(t *testing.T) {
	sink := memory.NewSink()
	runner := survey.New(memory.NewFailingProvider(nil), report.NewWriter(sink))
	defer runner.Close()

	summary, err := runner.Survey(context.Background())

	assert.ErrorIs(t, err, domain.ErrNoWorkspace)
	assert.Zero(t, summary.Visited)
	assert.Equal(t, 0, sink.Creates(), "failed enumeration must not create the pane")
}

// faultyHandle fails its scalar query but answers identities.
type faultyHandle struct{}

func (faultyHandle) ScalarAttributes(context.Context, []domain.ScalarField) ([]domain.ScalarResult, error) {
	return nil, errors.New("provider exploded")
}

func (faultyHandle) IdentityAttributes(_ context.Context, fields []domain.IdentityField) ([]domain.IdentityResult, error) {
	res := make([]domain.IdentityResult, len(fields))
	for i := range res {
		res[i] = domain.IdentityResult{Value: appType, Status: domain.FieldOK}
	}
	return res, nil
}

func TestSurvey_QueryFaultDoesNotStopThePass(t *testing.T) {
	provider := memory.NewProvider(
		faultyHandle{},
		memory.NewProject("App", "/src/App", appInstance, appType),
	)
	sink := memory.NewSink()

	var faults []domain.QueryStage
	runner := survey.New(provider, report.NewWriter(sink),
		survey.WithoutMarker(),
		survey.WithLifecycleHooks(domain.LifecycleHooks{
			OnQueryFault: func(_ context.Context, e *domain.FaultEvent) {
				faults = append(faults, e.Stage)
			},
		}),
	)
	defer runner.Close()

	summary, err := runner.Survey(context.Background())
	require.NoError(t, err, "a faulted node must not abort the pass")

	assert.Equal(t, 2, summary.Visited)
	assert.Equal(t, 2, summary.Reported, "faulted node still reports its identity lines")
	assert.Equal(t, 1, summary.Faulted)
	assert.Equal(t, []domain.QueryStage{domain.StageScalar}, faults)

	got, err := sink.Contents(context.Background(), report.DefaultPaneName)
	require.NoError(t, err)
	assert.Contains(t, got, appBlock())
}

func TestSurvey_CancellationWritesNoMarker(t *testing.T) {
	provider := memory.NewProvider(
		memory.NewProject("App", "/src/App", appInstance, appType),
		memory.NewProject("Lib", "/src/Lib", libInstance, libType),
	)
	sink := memory.NewSink()

	ctx, cancel := context.WithCancel(context.Background())
	runner := survey.New(provider, report.NewWriter(sink),
		survey.WithLifecycleHooks(domain.LifecycleHooks{
			// Cancel as soon as the first report lands.
			OnProjectReport: func(context.Context, *domain.ProjectEvent) { cancel() },
		}),
	)
	defer runner.Close()

	summary, err := runner.Survey(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Visited, "cancellation must stop further provider calls")
	assert.Equal(t, 1, summary.Reported)

	got, readErr := sink.Contents(context.Background(), report.DefaultPaneName)
	require.NoError(t, readErr)
	assert.Equal(t, appBlock(), got, "partial output stays, marker must not appear")
}

func TestSurvey_SinkOutageDropsWritesButFinishes(t *testing.T) {
	provider := memory.NewProvider(
		memory.NewProject("App", "/src/App", appInstance, appType),
		memory.NewProject("Lib", "/src/Lib", libInstance, libType),
	)
	sink := memory.NewSink()
	sink.Fail(errors.New("output window torn down"))

	runner := survey.New(provider, report.NewWriter(sink))
	defer runner.Close()

	summary, err := runner.Survey(context.Background())
	require.NoError(t, err, "sink unavailability must not abort the pass")

	assert.Equal(t, 2, summary.Visited)
	assert.Zero(t, summary.Reported)
	assert.Equal(t, 3, summary.Dropped, "two reports and the marker were dropped")
}

func TestSurvey_SecondPassFailsFast(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	provider := memory.NewProvider(memory.NewProject("App", "/src/App", appInstance, appType))
	runner := survey.New(provider, report.NewWriter(memory.NewSink()),
		survey.WithLifecycleHooks(domain.LifecycleHooks{
			OnProjectEnter: func(context.Context, *domain.ProjectEvent) {
				close(started)
				<-release
			},
		}),
	)
	defer runner.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := runner.Survey(context.Background())
		assert.NoError(t, err)
	}()

	<-started
	_, err := runner.Survey(context.Background())
	assert.ErrorIs(t, err, domain.ErrPassInFlight)

	close(release)
	wg.Wait()
}

func TestSurvey_DistributedLockWrapsPass(t *testing.T) {
	var events []string
	locker := &recordingLocker{events: &events}

	provider := memory.NewProvider(memory.NewProject("App", "/src/App", appInstance, appType))
	runner := survey.New(provider, report.NewWriter(memory.NewSink()),
		survey.WithLocker(locker),
		survey.WithLockKey("canopy:test"),
		survey.WithLockTTL(time.Second),
		survey.WithLifecycleHooks(domain.LifecycleHooks{
			OnProjectEnter: func(context.Context, *domain.ProjectEvent) {
				events = append(events, "pass")
			},
		}),
	)
	defer runner.Close()

	_, err := runner.Survey(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"lock canopy:test", "pass", "unlock"}, events)
}

type recordingLocker struct {
	events *[]string
}

func (l *recordingLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	*l.events = append(*l.events, "lock "+key)
	return func(context.Context) error {
		*l.events = append(*l.events, "unlock")
		return nil
	}, nil
}

func TestInspect_ReadsWithoutWriting(t *testing.T) {
	provider := memory.NewProvider(
		memory.NewProject("App", "/src/App", appInstance, appType),
		memory.Opaque{},
	)
	sink := memory.NewSink()
	runner := survey.New(provider, report.NewWriter(sink))
	defer runner.Close()

	reports, err := runner.Inspect(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.False(t, reports[0].Skipped)
	assert.True(t, reports[1].Skipped)
	assert.Equal(t, 0, sink.Creates(), "introspection must not touch the sink")
}
