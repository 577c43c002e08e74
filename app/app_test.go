package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsahelper/dsahelper/auth"
	"github.com/dsahelper/dsahelper/client"
	"github.com/dsahelper/dsahelper/types"
)

type fakeGateway struct {
	mu          sync.Mutex
	submissions []types.Submission
	revisions   []types.RevisionProblem
	err         error
	calls       []string
	cookies     []string
	feedback    func(ctx context.Context, sub *types.Submission) (*types.AnalysisReport, error)
}

func (g *fakeGateway) record(call string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
	return g.err
}

func (g *fakeGateway) Submissions(ctx context.Context, judgeSession string, limit int) ([]types.Submission, error) {
	g.mu.Lock()
	g.cookies = append(g.cookies, judgeSession)
	g.mu.Unlock()
	if err := g.record("submissions"); err != nil {
		return nil, err
	}
	return append([]types.Submission{}, g.submissions...), nil
}

func (g *fakeGateway) SubmissionFeedback(ctx context.Context, sub *types.Submission) (*types.AnalysisReport, error) {
	if g.feedback != nil {
		return g.feedback(ctx, sub)
	}
	if err := g.record("feedback"); err != nil {
		return nil, err
	}
	return &types.AnalysisReport{CorrectnessAndLogic: "ok"}, nil
}

func (g *fakeGateway) CompareSolution(ctx context.Context, sub *types.Submission) (*types.ComparisonData, error) {
	if err := g.record("compare"); err != nil {
		return nil, err
	}
	return &types.ComparisonData{OptimalCode: "optimal"}, nil
}

func (g *fakeGateway) PatternInfo(ctx context.Context, pattern, language string) (*types.PatternInfo, error) {
	if err := g.record("pattern"); err != nil {
		return nil, err
	}
	return &types.PatternInfo{Name: pattern}, nil
}

func (g *fakeGateway) OverallAnalysis(ctx context.Context, judgeSession string) (*types.OverallAnalysis, error) {
	if err := g.record("overall"); err != nil {
		return nil, err
	}
	return &types.OverallAnalysis{Strengths: []string{"graphs"}}, nil
}

func (g *fakeGateway) Revisions(ctx context.Context) ([]types.RevisionProblem, error) {
	if err := g.record("revisions"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]types.RevisionProblem{}, g.revisions...), nil
}

func (g *fakeGateway) DueRevisions(ctx context.Context) ([]types.RevisionProblem, error) {
	if err := g.record("due"); err != nil {
		return nil, err
	}
	return []types.RevisionProblem{}, nil
}

func (g *fakeGateway) AddRevisions(ctx context.Context, problems []types.RevisionProblem) error {
	if err := g.record("add"); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.revisions = append(g.revisions, problems...)
	return nil
}

func (g *fakeGateway) UpdateRevision(ctx context.Context, rp *types.RevisionProblem) error {
	if err := g.record("update"); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.revisions {
		if g.revisions[i].ID == rp.ID {
			g.revisions[i] = *rp
		}
	}
	return nil
}

func (g *fakeGateway) DeleteRevision(ctx context.Context, rp *types.RevisionProblem) error {
	if err := g.record("delete"); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.revisions[:0]
	for _, elt := range g.revisions {
		if elt.ID != rp.ID {
			kept = append(kept, elt)
		}
	}
	g.revisions = kept
	return nil
}

type fakeCreds struct {
	session string
	cleared int
}

func (c *fakeCreds) JudgeSession() string { return c.session }

func (c *fakeCreds) ClearJudgeSession() error {
	c.session = ""
	c.cleared++
	return nil
}

type shown struct{ title, message, color string }

type fakeNotes struct {
	mu   sync.Mutex
	list []shown
}

func (n *fakeNotes) Show(title, message, color string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, shown{title, message, color})
	return title
}

func (n *fakeNotes) last() shown {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.list) == 0 {
		return shown{}
	}
	return n.list[len(n.list)-1]
}

func fixedClock(date string) func() time.Time {
	t, err := time.ParseInLocation(types.DateLayout, date, time.Local)
	if err != nil {
		panic(err)
	}
	t = t.Add(15 * time.Hour)
	return func() time.Time { return t }
}

func newTestApp(gw *fakeGateway, creds *fakeCreds) (*App, *fakeNotes) {
	notes := &fakeNotes{}
	return New(gw, creds, notes, WithClock(fixedClock("2024-01-10"))), notes
}

func TestLoadSubmissionsSortsAndCaches(t *testing.T) {
	gw := &fakeGateway{submissions: []types.Submission{
		{ID: 1, Title: "Old", Timestamp: 100},
		{ID: 2, Title: "New", Timestamp: 300},
		{ID: 3, Title: "Mid", Timestamp: 200},
	}}
	creds := &fakeCreds{session: "LEETCODE_SESSION=abc"}
	a, notes := newTestApp(gw, creds)

	list, err := a.LoadSubmissions(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "LEETCODE_SESSION=abc", gw.cookies[0])
	assert.Equal(t, "Loaded 3 submissions successfully.", notes.last().message)

	sub, err := a.Submission(3)
	require.NoError(t, err)
	assert.Equal(t, "Mid", sub.Title)
	_, err = a.Submission(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadSubmissionsEmpty(t *testing.T) {
	a, notes := newTestApp(&fakeGateway{}, &fakeCreds{session: "x"})
	_, err := a.LoadSubmissions(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, shown{"Info", "No submissions found for your account.", "blue"}, notes.last())
}

func TestLoadSubmissionsNeedsJudgeSession(t *testing.T) {
	gw := &fakeGateway{}
	a, notes := newTestApp(gw, &fakeCreds{})

	_, err := a.LoadSubmissions(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNoJudgeSession)
	assert.Empty(t, gw.calls)
	assert.Equal(t, "red", notes.last().color)
}

func TestUnauthorizedClearsJudgeSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		unauthorized := &client.APIError{Method: "GET", Path: "/api/get-submissions", StatusCode: status, Message: "bad cookie"}

		gw := &fakeGateway{err: unauthorized}
		creds := &fakeCreds{session: "stale"}
		a, notes := newTestApp(gw, creds)

		_, err := a.LoadSubmissions(context.Background(), 10)
		require.Error(t, err)
		assert.Equal(t, 1, creds.cleared)
		assert.Equal(t, "", creds.session)
		assert.Contains(t, notes.last().message, "Invalid or expired LeetCode cookie")

		creds.session = "stale"
		_, err = a.OverallAnalysis(context.Background())
		require.Error(t, err)
		assert.Equal(t, 2, creds.cleared)
	}
}

func TestUnauthorizedOnOtherEndpointsKeepsJudgeSession(t *testing.T) {
	gw := &fakeGateway{err: &client.APIError{StatusCode: http.StatusUnauthorized, Message: "token expired"}}
	creds := &fakeCreds{session: "fine"}
	a, notes := newTestApp(gw, creds)

	_, err := a.Feedback(context.Background(), &types.Submission{ID: 1})
	require.Error(t, err)
	assert.Equal(t, 0, creds.cleared)
	assert.Equal(t, "token expired", notes.last().message)
}

func TestMissingIdentityTokenIsReported(t *testing.T) {
	gw := &fakeGateway{err: auth.ErrNotAuthenticated}
	a, notes := newTestApp(gw, &fakeCreds{session: "x"})

	_, err := a.LoadRevisions(context.Background())
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	assert.Equal(t, "User is not authenticated. Please log in to continue.", notes.last().message)
}

func TestGenericFailureMessage(t *testing.T) {
	gw := &fakeGateway{err: errors.New("dial tcp: connection refused")}
	a, notes := newTestApp(gw, &fakeCreds{session: "x"})

	_, err := a.LoadSubmissions(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, "An unknown error occurred while fetching submissions.", notes.last().message)
}

func seeded(t *testing.T) (*App, *fakeGateway, *fakeNotes) {
	t.Helper()
	gw := &fakeGateway{revisions: []types.RevisionProblem{
		{Submission: types.Submission{ID: 1, Title: "Two Sum"}, ConfidenceLevel: 2, RevisionCount: 4,
			LastRevised: "2024-01-01", NextRevision: "2024-01-04", Tags: []string{"hash-map"}},
		{Submission: types.Submission{ID: 2, Title: "Jump Game"}, ConfidenceLevel: 4,
			LastRevised: "2024-01-09", NextRevision: "2024-01-23"},
	}}
	a, notes := newTestApp(gw, &fakeCreds{session: "x"})
	_, err := a.LoadRevisions(context.Background())
	require.NoError(t, err)
	return a, gw, notes
}

func TestMarkRevisedUpdatesThenRefetches(t *testing.T) {
	a, gw, notes := seeded(t)
	rp, err := a.FindRevision(1)
	require.NoError(t, err)

	updated, err := a.MarkRevised(context.Background(), *rp)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", updated.LastRevised)
	assert.Equal(t, "2024-01-13", updated.NextRevision)
	assert.Equal(t, 5, updated.RevisionCount)
	assert.Equal(t, "Problem marked as revised", notes.last().message)

	assert.Equal(t, []string{"revisions", "update", "revisions"}, gw.calls)
	cached, err := a.FindRevision(1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-13", cached.NextRevision)
}

func TestFailedMutationLeavesStateUnchanged(t *testing.T) {
	a, gw, notes := seeded(t)
	before := a.Revisions()
	gw.err = errors.New("network down")

	rp, _ := a.FindRevision(1)
	_, err := a.MarkRevised(context.Background(), *rp)
	require.Error(t, err)
	assert.Equal(t, "Failed to update revision status", notes.last().message)

	err = a.DeleteRevision(context.Background(), *rp)
	require.Error(t, err)
	assert.Equal(t, "Failed to delete revision problem", notes.last().message)

	assert.Equal(t, before, a.Revisions())
}

func TestAddToRevision(t *testing.T) {
	a, gw, _ := seeded(t)
	sub := types.Submission{ID: 9, Title: "Word Ladder"}

	rp, err := a.AddToRevision(context.Background(), sub, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", rp.LastRevised)
	assert.Equal(t, "2024-01-17", rp.NextRevision)
	assert.Equal(t, types.DefaultConfidence, rp.ConfidenceLevel)

	assert.Len(t, a.Revisions(), 3)
	assert.Equal(t, []string{"revisions", "add", "revisions"}, gw.calls)
}

func TestAddToRevisionRejectsInvalid(t *testing.T) {
	a, gw, notes := seeded(t)
	edit := types.RevisionEdit{ConfidenceLevel: 9}

	_, err := a.AddToRevision(context.Background(), types.Submission{ID: 9, Title: "Word Ladder"}, &edit)
	assert.ErrorIs(t, err, types.ErrInvalidRevision)
	assert.Contains(t, notes.last().message, "confidence_level")
	assert.Equal(t, []string{"revisions"}, gw.calls)
}

func TestUpdateRevisionRederivesNext(t *testing.T) {
	a, _, _ := seeded(t)
	rp, _ := a.FindRevision(2)

	updated, err := a.UpdateRevision(context.Background(), *rp, types.RevisionEdit{
		Notes: "use greedy reach", Difficulty: "Medium", ConfidenceLevel: 1, Tags: []string{"greedy"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", updated.NextRevision)
	cached, _ := a.FindRevision(2)
	assert.Equal(t, "use greedy reach", cached.Notes)
}

func TestFilteredRevisionsAndStats(t *testing.T) {
	a, _, _ := seeded(t)
	overdue := a.FilteredRevisions(types.RevisionsOverdue, "")
	require.Len(t, overdue, 1)
	assert.Equal(t, int64(1), overdue[0].ID)

	stats := a.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.Upcoming)
}

func TestStaleFeedbackIsDiscarded(t *testing.T) {
	gw := &fakeGateway{}
	release := make(chan struct{})
	gw.feedback = func(ctx context.Context, sub *types.Submission) (*types.AnalysisReport, error) {
		if sub.ID == 1 {
			<-release
			return &types.AnalysisReport{CorrectnessAndLogic: "stale"}, nil
		}
		return &types.AnalysisReport{CorrectnessAndLogic: "fresh"}, nil
	}
	a, notes := newTestApp(gw, &fakeCreds{})

	done := make(chan error, 1)
	go func() {
		_, err := a.Feedback(context.Background(), &types.Submission{ID: 1})
		done <- err
	}()

	// wait until the first request has begun
	require.Eventually(t, func() bool {
		a.feedback.mu.Lock()
		defer a.feedback.mu.Unlock()
		return a.feedback.gen == 1
	}, time.Second, time.Millisecond)

	report, err := a.Feedback(context.Background(), &types.Submission{ID: 2})
	require.NoError(t, err)
	assert.Equal(t, "fresh", report.CorrectnessAndLogic)

	close(release)
	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Empty(t, notes.list)
}

func TestSupersededRequestIsCancelled(t *testing.T) {
	var l Latest
	first, ticket := l.Begin(context.Background())
	second, next := l.Begin(context.Background())

	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NoError(t, second.Err())
	assert.False(t, ticket.Current())
	assert.True(t, next.Current())

	next.Done()
	assert.ErrorIs(t, second.Err(), context.Canceled)
}
