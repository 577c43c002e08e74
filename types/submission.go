package types

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	// StatusAccepted is the judge's status_display value for a passing submission.
	StatusAccepted = "Accepted"

	// JudgeSessionHeader carries the judge-site session cookie to the backend.
	JudgeSessionHeader = "X-LeetCode-Cookie"
)

// Submission is a single code submission fetched from the judge site.
// Submissions are read-only once fetched.
type Submission struct {
	ID                     int64  `json:"id"`
	Title                  string `json:"title" validate:"required"`
	Code                   string `json:"code"`
	Lang                   string `json:"lang"`
	LangName               string `json:"lang_name"`
	Timestamp              int64  `json:"timestamp"`
	StatusDisplay          string `json:"status_display"`
	Runtime                string `json:"runtime"`
	URL                    string `json:"url"`
	IsPending              string `json:"is_pending"`
	Memory                 string `json:"memory"`
	IsBestSolution         bool   `json:"isBestSolution"`
	BestTimeComplexity     string `json:"bestTimeComplexity"`
	CurrentTimeComplexity  string `json:"currentTimeComplexity"`
	BestSpaceComplexity    string `json:"bestSpaceComplexity"`
	CurrentSpaceComplexity string `json:"currentSpaceComplexity"`
}

// Passed reports whether the judge accepted the submission.
func (s *Submission) Passed() bool {
	return s.StatusDisplay == StatusAccepted
}

// SubmittedAt converts the unix timestamp to a time.Time.
func (s *Submission) SubmittedAt() time.Time {
	return time.Unix(s.Timestamp, 0)
}

// SortNewestFirst orders submissions by descending timestamp in place.
func SortNewestFirst(list []Submission) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp > list[j].Timestamp
	})
}

// FindSubmission returns the submission with the given id, or nil.
func FindSubmission(list []Submission, id int64) *Submission {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

// Response is the envelope every backend endpoint answers with.
type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterRequest links an identity provider account to a backend account.
type RegisterRequest struct {
	IDToken string `json:"idToken"`
}

// AnalysisRequest is the body of the feedback and comparison endpoints.
type AnalysisRequest struct {
	CandidateCode    string `json:"candidate_code"`
	Lang             string `json:"lang"`
	ProblemStatement string `json:"problem_statement"`
	ProblemID        int64  `json:"problem_id"`
}

// NewAnalysisRequest builds the analysis request for a submission.
func NewAnalysisRequest(s *Submission) *AnalysisRequest {
	return &AnalysisRequest{
		CandidateCode:    s.Code,
		Lang:             s.Lang,
		ProblemStatement: s.Title,
		ProblemID:        s.ID,
	}
}

// PatternRequest asks for the description and code template of a pattern.
type PatternRequest struct {
	Pattern  string `json:"pattern"`
	Language string `json:"language"`
}
