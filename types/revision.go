package types

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format of last_revised and next_revision.
// It is zero-padded and fixed-width, so string order equals date order.
const DateLayout = "2006-01-02"

const (
	DefaultConfidence = 3
	DefaultDifficulty = "NA"
	MinConfidence     = 1
	MaxConfidence     = 5
)

// RevisionProblem is a submission tracked for spaced-repetition review.
type RevisionProblem struct {
	Submission
	Notes           string   `json:"notes"`
	LastRevised     string   `json:"last_revised"`
	NextRevision    string   `json:"next_revision"`
	Difficulty      string   `json:"difficulty"`
	ConfidenceLevel int      `json:"confidence_level" validate:"min=1,max=5"`
	RevisionCount   int      `json:"revision_count" validate:"min=0"`
	Tags            []string `json:"tags"`
}

// RevisionEdit holds the fields a user may change on a tracked problem.
type RevisionEdit struct {
	Notes           string
	Difficulty      string
	ConfidenceLevel int
	Tags            []string
}

// ReviewInterval maps a confidence level to the number of days until the next review.
// Level 5 shares the 30 day bucket with every value outside 1-4.
func ReviewInterval(confidence int) int {
	switch confidence {
	case 1:
		return 1
	case 2:
		return 3
	case 3:
		return 7
	case 4:
		return 14
	default:
		return 30
	}
}

// Date formats t as a calendar date in its own location.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reads a calendar date. Values with a time suffix
// (e.g. "2024-01-10T08:00:00.000Z") are read by their date part.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, dateKey(s), time.Local)
}

func dateKey(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NewRevision starts tracking a submission with default review metadata.
func NewRevision(s Submission, now time.Time) RevisionProblem {
	today := day(now)
	return RevisionProblem{
		Submission:      s,
		Difficulty:      DefaultDifficulty,
		ConfidenceLevel: DefaultConfidence,
		Tags:            []string{},
		LastRevised:     Date(today),
		NextRevision:    Date(today.AddDate(0, 0, ReviewInterval(DefaultConfidence))),
	}
}

// MarkRevised returns a copy of rp reviewed on now's calendar date.
// The receiver is left untouched.
func (rp RevisionProblem) MarkRevised(now time.Time) RevisionProblem {
	out := rp.clone()
	today := day(now)
	out.LastRevised = Date(today)
	out.NextRevision = Date(today.AddDate(0, 0, ReviewInterval(rp.ConfidenceLevel)))
	out.RevisionCount = rp.RevisionCount + 1
	return out
}

// ApplyEdit returns a copy of rp with the user-editable fields replaced.
// next_revision is re-derived from last_revised and the new confidence level;
// when last_revised cannot be read, now's date is used as the base.
func (rp RevisionProblem) ApplyEdit(edit RevisionEdit, now time.Time) RevisionProblem {
	out := rp.clone()
	out.Notes = edit.Notes
	out.Difficulty = edit.Difficulty
	out.ConfidenceLevel = edit.ConfidenceLevel
	out.Tags = append([]string{}, edit.Tags...)

	base, err := ParseDate(rp.LastRevised)
	if err != nil {
		base = day(now)
	}
	out.LastRevised = Date(base)
	out.NextRevision = Date(base.AddDate(0, 0, ReviewInterval(edit.ConfidenceLevel)))
	return out
}

// Edit extracts the user-editable fields of rp.
func (rp *RevisionProblem) Edit() RevisionEdit {
	return RevisionEdit{
		Notes:           rp.Notes,
		Difficulty:      rp.Difficulty,
		ConfidenceLevel: rp.ConfidenceLevel,
		Tags:            append([]string{}, rp.Tags...),
	}
}

func (rp RevisionProblem) clone() RevisionProblem {
	out := rp
	if rp.Tags != nil {
		out.Tags = append([]string{}, rp.Tags...)
	}
	return out
}

// ParseTags splits a comma-separated tag list, dropping blanks.
func ParseTags(s string) []string {
	tags := []string{}
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// FindRevision returns the tracked problem for a submission id, or nil.
func FindRevision(list []RevisionProblem, id int64) *RevisionProblem {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}
