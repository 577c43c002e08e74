// Package app implements the user-facing actions shared by the command line
// and the dashboard. Every backend call goes through here: failures are
// reported as notifications and cached state only changes on success.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dsahelper/dsahelper/auth"
	"github.com/dsahelper/dsahelper/client"
	"github.com/dsahelper/dsahelper/notify"
	"github.com/dsahelper/dsahelper/types"
)

var (
	// ErrNoJudgeSession means the judge-site session has not been entered.
	ErrNoJudgeSession = errors.New("no LeetCode session cookie is stored")

	// ErrNotFound means the requested item is not in the loaded list.
	ErrNotFound = errors.New("not found")
)

const DefaultSubmissionLimit = 20

// Gateway is the backend surface used by the controllers.
type Gateway interface {
	Submissions(ctx context.Context, judgeSession string, limit int) ([]types.Submission, error)
	SubmissionFeedback(ctx context.Context, sub *types.Submission) (*types.AnalysisReport, error)
	CompareSolution(ctx context.Context, sub *types.Submission) (*types.ComparisonData, error)
	PatternInfo(ctx context.Context, pattern, language string) (*types.PatternInfo, error)
	OverallAnalysis(ctx context.Context, judgeSession string) (*types.OverallAnalysis, error)
	Revisions(ctx context.Context) ([]types.RevisionProblem, error)
	DueRevisions(ctx context.Context) ([]types.RevisionProblem, error)
	AddRevisions(ctx context.Context, problems []types.RevisionProblem) error
	UpdateRevision(ctx context.Context, rp *types.RevisionProblem) error
	DeleteRevision(ctx context.Context, rp *types.RevisionProblem) error
}

// JudgeSessions is the stored judge-site session.
type JudgeSessions interface {
	JudgeSession() string
	ClearJudgeSession() error
}

// App holds the loaded submissions and revisions.
type App struct {
	gateway Gateway
	creds   JudgeSessions
	notes   notify.Notifier
	now     func() time.Time

	mu          sync.Mutex
	submissions []types.Submission
	revisions   []types.RevisionProblem
	loaded      bool

	feedback Latest
	compare  Latest
	pattern  Latest
}

// Option configures an App.
type Option func(*App)

// WithClock replaces time.Now, which decides what "today" is.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New builds an App with nothing loaded.
func New(gateway Gateway, creds JudgeSessions, notes notify.Notifier, opts ...Option) *App {
	a := &App{
		gateway:     gateway,
		creds:       creds,
		notes:       notes,
		now:         time.Now,
		submissions: []types.Submission{},
		revisions:   []types.RevisionProblem{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Today is the local calendar date as YYYY-MM-DD.
func (a *App) Today() string {
	return types.Date(a.now())
}

// fail reports err as a notification. Calls that carried the judge-site
// session forget it when the backend rejects the caller.
func (a *App) fail(title string, err error, generic string, judgeBearing bool) {
	if errors.Is(err, ErrSuperseded) || errors.Is(err, context.Canceled) {
		return
	}
	message := generic
	var apiErr *client.APIError
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		message = "User is not authenticated. Please log in to continue."
	case errors.Is(err, ErrNoJudgeSession):
		message = "Please provide your LeetCode session cookie first."
	case judgeBearing && client.IsUnauthorized(err):
		message = "Invalid or expired LeetCode cookie. Please provide a valid cookie."
		if cerr := a.creds.ClearJudgeSession(); cerr != nil {
			log.WithError(cerr).Error("unable to clear judge session")
		}
	case errors.As(err, &apiErr):
		message = apiErr.Message
	case errors.Is(err, types.ErrInvalidRevision):
		message = err.Error()
	}
	log.WithError(err).WithField("action", title).Warn("action failed")
	a.notes.Show(title, message, notify.Red)
}

func (a *App) judgeSession() (string, error) {
	cookie := a.creds.JudgeSession()
	if cookie == "" {
		return "", ErrNoJudgeSession
	}
	return cookie, nil
}

// LoadSubmissions fetches the newest limit submissions and caches them newest first.
func (a *App) LoadSubmissions(ctx context.Context, limit int) ([]types.Submission, error) {
	const title = "Error Fetching Submissions"
	if limit <= 0 {
		limit = DefaultSubmissionLimit
	}
	cookie, err := a.judgeSession()
	if err != nil {
		a.fail(title, err, "", true)
		return nil, err
	}
	list, err := a.gateway.Submissions(ctx, cookie, limit)
	if err != nil {
		a.fail(title, err, "An unknown error occurred while fetching submissions.", true)
		return nil, err
	}
	types.SortNewestFirst(list)

	a.mu.Lock()
	a.submissions = list
	a.mu.Unlock()

	if len(list) == 0 {
		a.notes.Show("Info", "No submissions found for your account.", notify.Blue)
	} else {
		a.notes.Show("Success", fmt.Sprintf("Loaded %d submissions successfully.", len(list)), notify.Green)
	}
	return append([]types.Submission{}, list...), nil
}

// Submissions returns the cached submissions.
func (a *App) Submissions() []types.Submission {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]types.Submission{}, a.submissions...)
}

// Submission looks up a cached submission.
func (a *App) Submission(id int64) (*types.Submission, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := types.FindSubmission(a.submissions, id)
	if s == nil {
		return nil, fmt.Errorf("submission %d: %w", id, ErrNotFound)
	}
	out := *s
	return &out, nil
}

// Feedback requests the AI review of sub. Only the newest feedback request's
// answer is returned; older ones end with ErrSuperseded.
func (a *App) Feedback(ctx context.Context, sub *types.Submission) (*types.AnalysisReport, error) {
	report, err := runLatest(&a.feedback, ctx, func(ctx context.Context) (*types.AnalysisReport, error) {
		return a.gateway.SubmissionFeedback(ctx, sub)
	})
	if err != nil {
		a.fail("Analysis Failed", err, "Could not fetch analysis for this submission.", false)
		return nil, err
	}
	return report, nil
}

// Compare requests the optimal-solution comparison for sub.
func (a *App) Compare(ctx context.Context, sub *types.Submission) (*types.ComparisonData, error) {
	data, err := runLatest(&a.compare, ctx, func(ctx context.Context) (*types.ComparisonData, error) {
		return a.gateway.CompareSolution(ctx, sub)
	})
	if err != nil {
		a.fail("Comparison Failed", err, "Could not fetch the solution comparison.", false)
		return nil, err
	}
	return data, nil
}

// PatternInfo requests the description and template of a pattern.
func (a *App) PatternInfo(ctx context.Context, pattern, language string) (*types.PatternInfo, error) {
	info, err := runLatest(&a.pattern, ctx, func(ctx context.Context) (*types.PatternInfo, error) {
		return a.gateway.PatternInfo(ctx, pattern, language)
	})
	if err != nil {
		a.fail("Pattern Info Failed", err, "Failed to fetch pattern information.", false)
		return nil, err
	}
	return info, nil
}

// OverallAnalysis requests the aggregate strengths and weaknesses.
func (a *App) OverallAnalysis(ctx context.Context) (*types.OverallAnalysis, error) {
	const title = "Analysis Error"
	cookie, err := a.judgeSession()
	if err != nil {
		a.fail(title, err, "", true)
		return nil, err
	}
	analysis, err := a.gateway.OverallAnalysis(ctx, cookie)
	if err != nil {
		a.fail(title, err, "Failed to load your overall DSA analysis.", true)
		return nil, err
	}
	a.notes.Show("Success", "Your programming analysis is ready!", notify.Blue)
	return analysis, nil
}

// LoadRevisions fetches the revision list and caches it.
func (a *App) LoadRevisions(ctx context.Context) ([]types.RevisionProblem, error) {
	list, err := a.refresh(ctx)
	if err != nil {
		return nil, err
	}
	a.notes.Show("Success", "Revision problems loaded successfully", notify.Green)
	return list, nil
}

func (a *App) refresh(ctx context.Context) ([]types.RevisionProblem, error) {
	list, err := a.gateway.Revisions(ctx)
	if err != nil {
		a.fail("Error", err, "Failed to load revision problems", false)
		return nil, err
	}
	if list == nil {
		list = []types.RevisionProblem{}
	}
	a.mu.Lock()
	a.revisions = list
	a.loaded = true
	a.mu.Unlock()
	return append([]types.RevisionProblem{}, list...), nil
}

// DueRevisions asks the backend which revisions are due.
func (a *App) DueRevisions(ctx context.Context) ([]types.RevisionProblem, error) {
	list, err := a.gateway.DueRevisions(ctx)
	if err != nil {
		a.fail("Error", err, "Failed to load due revision problems", false)
		return nil, err
	}
	return list, nil
}

// Revisions returns the cached revision list.
func (a *App) Revisions() []types.RevisionProblem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]types.RevisionProblem{}, a.revisions...)
}

// RevisionsLoaded reports whether the revision list has been fetched at least once.
func (a *App) RevisionsLoaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

// FilteredRevisions applies a category filter and text query to the cached list.
func (a *App) FilteredRevisions(filter types.RevisionFilter, query string) []types.RevisionProblem {
	return types.FilterRevisions(a.Revisions(), filter, query, a.Today())
}

// Stats summarizes the cached revision list.
func (a *App) Stats() types.RevisionStats {
	return types.Stats(a.Revisions(), a.Today())
}

// FindRevision looks up a cached revision by submission id.
func (a *App) FindRevision(id int64) (*types.RevisionProblem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rp := types.FindRevision(a.revisions, id)
	if rp == nil {
		return nil, fmt.Errorf("revision %d: %w", id, ErrNotFound)
	}
	out := *rp
	out.Tags = append([]string{}, rp.Tags...)
	return &out, nil
}

// AddToRevision starts tracking sub. A nil edit keeps the defaults.
func (a *App) AddToRevision(ctx context.Context, sub types.Submission, edit *types.RevisionEdit) (*types.RevisionProblem, error) {
	const generic = "Failed to add problem to revisions"
	rp := types.NewRevision(sub, a.now())
	if edit != nil {
		rp = rp.ApplyEdit(*edit, a.now())
	}
	if err := types.ValidateRevision(&rp); err != nil {
		a.fail("Error", err, generic, false)
		return nil, err
	}
	if err := a.gateway.AddRevisions(ctx, []types.RevisionProblem{rp}); err != nil {
		a.fail("Error", err, generic, false)
		return nil, err
	}
	a.notes.Show("Success", "Problem added to revisions", notify.Green)
	a.refresh(ctx)
	return &rp, nil
}

// MarkRevised records a review of rp today and reschedules it.
func (a *App) MarkRevised(ctx context.Context, rp types.RevisionProblem) (*types.RevisionProblem, error) {
	updated := rp.MarkRevised(a.now())
	if err := a.gateway.UpdateRevision(ctx, &updated); err != nil {
		a.fail("Error", err, "Failed to update revision status", false)
		return nil, err
	}
	a.notes.Show("Success", "Problem marked as revised", notify.Green)
	a.refresh(ctx)
	return &updated, nil
}

// UpdateRevision applies a user edit to rp.
func (a *App) UpdateRevision(ctx context.Context, rp types.RevisionProblem, edit types.RevisionEdit) (*types.RevisionProblem, error) {
	const generic = "Failed to update revision problem"
	updated := rp.ApplyEdit(edit, a.now())
	if err := types.ValidateRevision(&updated); err != nil {
		a.fail("Error", err, generic, false)
		return nil, err
	}
	if err := a.gateway.UpdateRevision(ctx, &updated); err != nil {
		a.fail("Error", err, generic, false)
		return nil, err
	}
	a.notes.Show("Success", "Revision problem updated successfully", notify.Green)
	a.refresh(ctx)
	return &updated, nil
}

// DeleteRevision stops tracking rp.
func (a *App) DeleteRevision(ctx context.Context, rp types.RevisionProblem) error {
	if err := a.gateway.DeleteRevision(ctx, &rp); err != nil {
		a.fail("Error", err, "Failed to delete revision problem", false)
		return err
	}
	a.notes.Show("Success", "Problem removed from revisions", notify.Green)
	a.refresh(ctx)
	return nil
}
