package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dandantas/profilewatch/internal/intake"
	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/internal/notify"
	"github.com/dandantas/profilewatch/internal/remote"
	"github.com/dandantas/profilewatch/internal/tracker"
)

// fakeRemote completes every third poll of a job with a freshly built
// result, so each completion carries a new result value.
type fakeRemote struct {
	mu         sync.Mutex
	uploads    int
	polls      map[string]int
	failJob    bool
	uploadErr  error
	insightErr error
	reportErr  error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{polls: map[string]int{}}
}

func (f *fakeRemote) Upload(_ context.Context, file remote.UploadFile) (*model.UploadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads++
	if file.Progress != nil {
		file.Progress(100)
	}
	return &model.UploadResponse{JobID: fmt.Sprintf("job-%d", f.uploads), Status: "processing"}, nil
}

func (f *fakeRemote) GetProfile(_ context.Context, jobID string) (*model.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls[jobID]++
	if f.polls[jobID]%3 != 0 {
		return &model.StatusResponse{JobID: jobID, Status: "processing"}, nil
	}
	if f.failJob {
		return &model.StatusResponse{JobID: jobID, Status: "failed", Error: "Could not parse file"}, nil
	}
	return &model.StatusResponse{JobID: jobID, Status: "completed", Result: sampleResult()}, nil
}

func (f *fakeRemote) pollCount(jobID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls[jobID]
}

func (f *fakeRemote) GetColumn(_ context.Context, jobID, column string) (*model.Column, error) {
	if column == "missing" {
		return nil, &remote.RemoteError{Op: "get column", StatusCode: 404, Detail: "Column not found"}
	}
	return &model.Column{Name: column, InferredType: model.TypeString, DistinctCount: 2}, nil
}

func (f *fakeRemote) GetInsights(_ context.Context, jobID, modelID string) (*model.InsightsResponse, error) {
	if f.insightErr != nil {
		return nil, f.insightErr
	}
	return &model.InsightsResponse{
		JobID:     jobID,
		ModelUsed: modelID,
		Insights: &model.InsightsResult{
			ExecutiveSummary: model.StringItem("Looks fine."),
			CriticalIssues:   []model.RawItem{model.ObjectItem(map[string]any{"issue": "Nulls in email"})},
		},
	}, nil
}

func (f *fakeRemote) GetReport(_ context.Context, jobID, format string) (*remote.Report, error) {
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	return &remote.Report{
		Body:               []byte("name,score\nid,100\n"),
		ContentType:        "text/csv",
		ContentDisposition: `attachment; filename="profile_` + jobID + `.` + format + `"`,
	}, nil
}

type memorySaver struct {
	mu    sync.Mutex
	names []string
}

func (m *memorySaver) Save(_ context.Context, filename string, _ []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, filename)
	return "/exports/" + filename, nil
}

func sampleResult() *model.ProfileResult {
	semantic := "email"
	return &model.ProfileResult{
		Summary: model.Summary{RowCount: 100, ColumnCount: 2, MemoryMB: 0.25},
		Columns: []model.Column{
			{Name: "id", InferredType: model.TypeInteger, DistinctCount: 100, IsUnique: true, QualityScore: 100},
			{
				Name: "email", InferredType: model.TypeString, SemanticType: &semantic,
				NullPercentage: 5, DistinctCount: 90, QualityScore: 75,
				Issues: []model.Issue{{Severity: "warning", Issue: "5% nulls"}},
			},
		},
	}
}

type fixture struct {
	remote   *fakeRemote
	saver    *memorySaver
	recorder *notify.Recorder
	deps     Deps
}

func newFixture() *fixture {
	f := &fixture{
		remote:   newFakeRemote(),
		saver:    &memorySaver{},
		recorder: notify.NewRecorder(0),
	}
	f.deps = Deps{
		Remote:   f.remote,
		Tracker:  tracker.Options{Schedule: tracker.Interval(20 * time.Millisecond)},
		Saver:    f.saver,
		Notifier: f.recorder,
	}
	return f
}

func csvFile(name string) intake.File {
	body := "id,email\n1,a@b.c\n"
	return intake.File{Name: name, Size: int64(len(body)), Body: strings.NewReader(body)}
}

// completedSession uploads a file and waits for the first result
func completedSession(t *testing.T, f *fixture) *Session {
	t.Helper()
	s := New("s-1", f.deps)
	t.Cleanup(s.Close)

	_, err := s.Upload(context.Background(), csvFile("data.csv"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	state, err := s.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, model.JobCompleted, state.Status)
	return s
}

func messages(events []notify.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, string(e.Kind)+":"+e.Message)
	}
	return out
}

// settledInsights requests insights with the default model and waits for
// the outcome
func settledInsights(t *testing.T, s *Session) model.InsightsState {
	t.Helper()
	_, err := s.GenerateInsights(context.Background(), "")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return s.Insights().State.Status != model.InsightsLoading
	}, 2*time.Second, 5*time.Millisecond)
	return s.insights.State()
}
