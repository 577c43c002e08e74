package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-martini/martini"
	"github.com/martini-contrib/binding"

	"github.com/dsahelper/dsahelper/app"
	"github.com/dsahelper/dsahelper/notify"
	"github.com/dsahelper/dsahelper/patterns"
	"github.com/dsahelper/dsahelper/types"
)

type fetchForm struct {
	Limit int `form:"limit"`
}

type revisionForm struct {
	Confidence int    `form:"confidence"`
	Difficulty string `form:"difficulty"`
	Notes      string `form:"notes"`
	Tags       string `form:"tags"`
}

func (f revisionForm) edit() types.RevisionEdit {
	difficulty := strings.TrimSpace(f.Difficulty)
	if difficulty == "" {
		difficulty = types.DefaultDifficulty
	}
	return types.RevisionEdit{
		Notes:           strings.TrimSpace(f.Notes),
		Difficulty:      difficulty,
		ConfidenceLevel: f.Confidence,
		Tags:            types.ParseTags(f.Tags),
	}
}

type cookieForm struct {
	Session string `form:"session"`
}

var difficulties = []string{types.DefaultDifficulty, "Easy", "Medium", "Hard"}

// revisionFormData fills the shared add/edit form.
type revisionFormData struct {
	Heading      string
	Action       string
	Back         string
	Submission   types.Submission
	Edit         types.RevisionEdit
	Tags         string
	Levels       []int
	Difficulties []string
}

func newRevisionFormData(heading, action, back string, sub types.Submission, edit types.RevisionEdit) *revisionFormData {
	levels := make([]int, 0, types.MaxConfidence)
	for i := types.MinConfidence; i <= types.MaxConfidence; i++ {
		levels = append(levels, i)
	}
	return &revisionFormData{
		Heading:      heading,
		Action:       action,
		Back:         back,
		Submission:   sub,
		Edit:         edit,
		Tags:         strings.Join(edit.Tags, ", "),
		Levels:       levels,
		Difficulties: difficulties,
	}
}

func parseID(w http.ResponseWriter, params martini.Params) (int64, bool) {
	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil || id < 1 {
		loggedHTTPErrorf(w, http.StatusBadRequest, "bad id %q", params["id"])
		return 0, false
	}
	return id, true
}

func (s *Server) submission(w http.ResponseWriter, params martini.Params) (*types.Submission, bool) {
	id, ok := parseID(w, params)
	if !ok {
		return nil, false
	}
	sub, err := s.app.Submission(id)
	if err != nil {
		loggedHTTPErrorf(w, http.StatusNotFound, "submission %d is not loaded", id)
		return nil, false
	}
	return sub, true
}

func (s *Server) revision(w http.ResponseWriter, params martini.Params) (*types.RevisionProblem, bool) {
	id, ok := parseID(w, params)
	if !ok {
		return nil, false
	}
	rp, err := s.app.FindRevision(id)
	if err != nil {
		loggedHTTPErrorf(w, http.StatusNotFound, "submission %d is not in your revision list", id)
		return nil, false
	}
	return rp, true
}

// failed ends a request whose action has already been reported as a notification.
func failed(w http.ResponseWriter, r *http.Request, err error, back string) {
	if errors.Is(err, app.ErrSuperseded) || errors.Is(err, context.Canceled) {
		loggedHTTPErrorf(w, http.StatusConflict, "request superseded by a newer one")
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// submissions

func (s *Server) GetSubmissions(w http.ResponseWriter, r *http.Request, view *ViewState) {
	query := r.URL.Query()
	changed := false
	if _, ok := query["filter"]; ok {
		filter, err := types.ParseSubmissionFilter(query.Get("filter"))
		if err != nil {
			loggedHTTPErrorf(w, http.StatusBadRequest, "%v", err)
			return
		}
		view.SubmissionFilter = filter
		changed = true
	}
	if _, ok := query["q"]; ok {
		view.SubmissionQuery = strings.TrimSpace(query.Get("q"))
		changed = true
	}
	if changed {
		s.views.Save(w, view)
	}

	all := s.app.Submissions()
	data := struct {
		Submissions []types.Submission
		Total       int
		Filters     []types.SubmissionFilter
	}{
		Submissions: types.FilterSubmissions(all, view.SubmissionFilter, view.SubmissionQuery),
		Total:       len(all),
		Filters:     types.SubmissionFilters,
	}
	s.show(w, http.StatusOK, "submissions", s.newPage("Submissions", "submissions", view, data))
}

func (s *Server) PostSubmissions(w http.ResponseWriter, r *http.Request, view *ViewState, form fetchForm, errs binding.Errors) {
	limit := form.Limit
	if len(errs) > 0 || limit <= 0 {
		limit = view.Limit
	}
	view.Limit = limit
	s.views.Save(w, view)

	if _, err := s.app.LoadSubmissions(r.Context(), limit); err != nil {
		failed(w, r, err, "/submissions")
		return
	}
	http.Redirect(w, r, "/submissions", http.StatusSeeOther)
}

func (s *Server) GetSubmissionCode(w http.ResponseWriter, params martini.Params) {
	sub, ok := s.submission(w, params)
	if !ok {
		return
	}
	s.show(w, http.StatusOK, "code", s.newPage(sub.Title, "submissions", nil, *sub))
}

func (s *Server) GetSubmissionFeedback(w http.ResponseWriter, r *http.Request, params martini.Params) {
	sub, ok := s.submission(w, params)
	if !ok {
		return
	}
	report, err := s.app.Feedback(r.Context(), sub)
	if err != nil {
		failed(w, r, err, "/submissions")
		return
	}
	data := struct {
		Submission *types.Submission
		Report     *types.AnalysisReport
		Sections   []types.ReportSection
	}{sub, report, report.Sections()}
	s.show(w, http.StatusOK, "feedback", s.newPage("Submission Analysis", "submissions", nil, data))
}

func (s *Server) GetSubmissionCompare(w http.ResponseWriter, r *http.Request, params martini.Params) {
	sub, ok := s.submission(w, params)
	if !ok {
		return
	}
	comparison, err := s.app.Compare(r.Context(), sub)
	if err != nil {
		failed(w, r, err, "/submissions")
		return
	}
	data := struct {
		Submission *types.Submission
		Comparison *types.ComparisonData
	}{sub, comparison}
	s.show(w, http.StatusOK, "compare", s.newPage("Solution Comparison", "submissions", nil, data))
}

func (s *Server) GetAddRevision(w http.ResponseWriter, params martini.Params) {
	sub, ok := s.submission(w, params)
	if !ok {
		return
	}
	edit := types.RevisionEdit{
		Difficulty:      types.DefaultDifficulty,
		ConfidenceLevel: types.DefaultConfidence,
	}
	action := fmt.Sprintf("/submissions/%d/revision", sub.ID)
	data := newRevisionFormData("Add to Revision", action, "/submissions", *sub, edit)
	s.show(w, http.StatusOK, "revision_form", s.newPage("Add to Revision", "submissions", nil, data))
}

func (s *Server) PostAddRevision(w http.ResponseWriter, r *http.Request, params martini.Params, form revisionForm, errs binding.Errors) {
	if len(errs) > 0 {
		loggedHTTPErrorf(w, http.StatusBadRequest, "bad revision form: %v", errs)
		return
	}
	sub, ok := s.submission(w, params)
	if !ok {
		return
	}
	edit := form.edit()
	if _, err := s.app.AddToRevision(r.Context(), *sub, &edit); err != nil {
		failed(w, r, err, fmt.Sprintf("/submissions/%d/revision", sub.ID))
		return
	}
	http.Redirect(w, r, "/revisions", http.StatusSeeOther)
}

// revisions

func (s *Server) GetRevisions(w http.ResponseWriter, r *http.Request, view *ViewState) {
	query := r.URL.Query()
	changed := false
	if _, ok := query["filter"]; ok {
		filter, err := types.ParseRevisionFilter(query.Get("filter"))
		if err != nil {
			loggedHTTPErrorf(w, http.StatusBadRequest, "%v", err)
			return
		}
		view.RevisionFilter = filter
		changed = true
	}
	if _, ok := query["q"]; ok {
		view.RevisionQuery = strings.TrimSpace(query.Get("q"))
		changed = true
	}
	if v := query.Get("view"); v != "" {
		view.RevisionView = v
		view.normalize()
		changed = true
	}
	if changed {
		s.views.Save(w, view)
	}

	if !s.app.RevisionsLoaded() {
		// failures are already on the notification list
		s.app.LoadRevisions(r.Context())
	}

	list := s.app.FilteredRevisions(view.RevisionFilter, view.RevisionQuery)
	if view.RevisionView == ViewTimeline {
		list = types.Timeline(list)
	}
	data := struct {
		Revisions []types.RevisionProblem
		Stats     types.RevisionStats
		Filters   []types.RevisionFilter
		Loaded    bool
	}{
		Revisions: list,
		Stats:     s.app.Stats(),
		Filters:   types.RevisionFilters,
		Loaded:    s.app.RevisionsLoaded(),
	}
	s.show(w, http.StatusOK, "revisions", s.newPage("Revision List", "revisions", view, data))
}

func (s *Server) PostRevisionsRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := s.app.LoadRevisions(r.Context()); err != nil {
		failed(w, r, err, "/revisions")
		return
	}
	http.Redirect(w, r, "/revisions", http.StatusSeeOther)
}

func (s *Server) PostRevised(w http.ResponseWriter, r *http.Request, params martini.Params) {
	rp, ok := s.revision(w, params)
	if !ok {
		return
	}
	if _, err := s.app.MarkRevised(r.Context(), *rp); err != nil {
		failed(w, r, err, "/revisions")
		return
	}
	http.Redirect(w, r, "/revisions", http.StatusSeeOther)
}

func (s *Server) GetEditRevision(w http.ResponseWriter, params martini.Params) {
	rp, ok := s.revision(w, params)
	if !ok {
		return
	}
	action := fmt.Sprintf("/revisions/%d/edit", rp.ID)
	data := newRevisionFormData("Edit Revision Problem", action, "/revisions", rp.Submission, rp.Edit())
	s.show(w, http.StatusOK, "revision_form", s.newPage("Edit Revision Problem", "revisions", nil, data))
}

func (s *Server) PostEditRevision(w http.ResponseWriter, r *http.Request, params martini.Params, form revisionForm, errs binding.Errors) {
	if len(errs) > 0 {
		loggedHTTPErrorf(w, http.StatusBadRequest, "bad revision form: %v", errs)
		return
	}
	rp, ok := s.revision(w, params)
	if !ok {
		return
	}
	if _, err := s.app.UpdateRevision(r.Context(), *rp, form.edit()); err != nil {
		failed(w, r, err, fmt.Sprintf("/revisions/%d/edit", rp.ID))
		return
	}
	http.Redirect(w, r, "/revisions", http.StatusSeeOther)
}

func (s *Server) PostDeleteRevision(w http.ResponseWriter, r *http.Request, params martini.Params) {
	rp, ok := s.revision(w, params)
	if !ok {
		return
	}
	if err := s.app.DeleteRevision(r.Context(), *rp); err != nil {
		failed(w, r, err, "/revisions")
		return
	}
	http.Redirect(w, r, "/revisions", http.StatusSeeOther)
}

// overall analysis

func (s *Server) GetOverall(w http.ResponseWriter, r *http.Request) {
	// a failed request still renders the page, with the failure notification
	analysis, _ := s.app.OverallAnalysis(r.Context())
	data := struct {
		Analysis *types.OverallAnalysis
	}{analysis}
	s.show(w, http.StatusOK, "overall", s.newPage("Overall Analysis", "overall", nil, data))
}

// patterns

func (s *Server) language(w http.ResponseWriter, r *http.Request, view *ViewState) (string, bool) {
	requested := view.Language
	if q := r.URL.Query().Get("language"); q != "" {
		requested = q
	}
	language, err := s.catalog.Language(requested)
	if err != nil {
		loggedHTTPErrorf(w, http.StatusBadRequest, "unsupported language %q", requested)
		return "", false
	}
	if language != view.Language {
		view.Language = language
		s.views.Save(w, view)
	}
	return language, true
}

func (s *Server) GetPatterns(w http.ResponseWriter, r *http.Request, view *ViewState) {
	language, ok := s.language(w, r, view)
	if !ok {
		return
	}
	data := struct {
		Topics    []patterns.Topic
		Languages []patterns.Language
		Language  string
	}{s.catalog.Topics, s.catalog.Languages, language}
	s.show(w, http.StatusOK, "patterns", s.newPage("Learning Hub", "patterns", view, data))
}

func (s *Server) GetTopic(w http.ResponseWriter, r *http.Request, params martini.Params, view *ViewState) {
	topic, err := s.catalog.Topic(params["topic"])
	if err != nil {
		loggedHTTPErrorf(w, http.StatusNotFound, "%v", err)
		return
	}
	language, ok := s.language(w, r, view)
	if !ok {
		return
	}
	data := struct {
		Topic    *patterns.Topic
		Language string
	}{topic, language}
	s.show(w, http.StatusOK, "topic", s.newPage(topic.Name, "patterns", view, data))
}

func (s *Server) GetPattern(w http.ResponseWriter, r *http.Request, params martini.Params, view *ViewState) {
	topic, pattern, err := s.catalog.Lookup(params["topic"], params["pattern"])
	if err != nil {
		loggedHTTPErrorf(w, http.StatusNotFound, "%v", err)
		return
	}
	language, ok := s.language(w, r, view)
	if !ok {
		return
	}
	info, err := s.app.PatternInfo(r.Context(), pattern.Name, language)
	if errors.Is(err, app.ErrSuperseded) || errors.Is(err, context.Canceled) {
		loggedHTTPErrorf(w, http.StatusConflict, "request superseded by a newer one")
		return
	}
	data := struct {
		Topic     *patterns.Topic
		Pattern   *patterns.Pattern
		Info      *types.PatternInfo
		Languages []patterns.Language
		Language  string
	}{topic, pattern, info, s.catalog.Languages, language}
	s.show(w, http.StatusOK, "pattern", s.newPage(pattern.Name, "patterns", view, data))
}

// judge-site session

func maskSession(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", 8) + value[len(value)-4:]
}

func (s *Server) GetCookie(w http.ResponseWriter) {
	stored := s.creds.JudgeSession()
	data := struct {
		Stored bool
		Masked string
	}{stored != "", maskSession(stored)}
	s.show(w, http.StatusOK, "cookie", s.newPage("LeetCode Session", "cookie", nil, data))
}

func (s *Server) PostCookie(w http.ResponseWriter, r *http.Request, form cookieForm) {
	value := strings.TrimSpace(form.Session)
	if value == "" {
		s.notes.Show("Error", "Please provide your LeetCode session cookie first.", notify.Red)
		http.Redirect(w, r, "/cookie", http.StatusSeeOther)
		return
	}
	if err := s.creds.SetJudgeSession(value); err != nil {
		loggedHTTPErrorf(w, http.StatusInternalServerError, "saving LeetCode session: %v", err)
		return
	}
	s.notes.Show("Success", "LeetCode session cookie saved", notify.Green)
	http.Redirect(w, r, "/submissions", http.StatusSeeOther)
}

func (s *Server) PostCookieClear(w http.ResponseWriter, r *http.Request) {
	if err := s.creds.ClearJudgeSession(); err != nil {
		loggedHTTPErrorf(w, http.StatusInternalServerError, "clearing LeetCode session: %v", err)
		return
	}
	s.notes.Show("Success", "LeetCode session cookie cleared", notify.Green)
	http.Redirect(w, r, "/cookie", http.StatusSeeOther)
}
