package types

import (
	"fmt"
	"sort"
	"strings"
)

// RevisionFilter selects revisions by their review date relative to today.
type RevisionFilter string

const (
	RevisionsAll      RevisionFilter = "all"
	RevisionsDue      RevisionFilter = "due"
	RevisionsOverdue  RevisionFilter = "overdue"
	RevisionsUpcoming RevisionFilter = "upcoming"
)

// RevisionFilters lists the valid revision filters in display order.
var RevisionFilters = []RevisionFilter{RevisionsAll, RevisionsDue, RevisionsOverdue, RevisionsUpcoming}

// ParseRevisionFilter accepts one of RevisionFilters; empty means all.
func ParseRevisionFilter(s string) (RevisionFilter, error) {
	if s == "" {
		return RevisionsAll, nil
	}
	for _, f := range RevisionFilters {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown revision filter %q", s)
}

// SubmissionFilter selects submissions by outcome or optimality.
type SubmissionFilter string

const (
	SubmissionsAll     SubmissionFilter = "all"
	SubmissionsBest    SubmissionFilter = "best"
	SubmissionsNonBest SubmissionFilter = "non-best"
	SubmissionsPassed  SubmissionFilter = "passed"
	SubmissionsFailed  SubmissionFilter = "failed"
)

// SubmissionFilters lists the valid submission filters in display order.
var SubmissionFilters = []SubmissionFilter{SubmissionsAll, SubmissionsPassed, SubmissionsFailed, SubmissionsBest, SubmissionsNonBest}

// ParseSubmissionFilter accepts one of SubmissionFilters; empty means all.
func ParseSubmissionFilter(s string) (SubmissionFilter, error) {
	if s == "" {
		return SubmissionsAll, nil
	}
	for _, f := range SubmissionFilters {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown submission filter %q", s)
}

// RevisionStatus classifies a revision against today's date.
type RevisionStatus string

const (
	StatusOverdue  RevisionStatus = "overdue"
	StatusDue      RevisionStatus = "due"
	StatusUpcoming RevisionStatus = "upcoming"
)

// Status compares next_revision with today, both as YYYY-MM-DD strings.
func (rp *RevisionProblem) Status(today string) RevisionStatus {
	next := dateKey(rp.NextRevision)
	switch {
	case next < today:
		return StatusOverdue
	case next == today:
		return StatusDue
	default:
		return StatusUpcoming
	}
}

func (f RevisionFilter) matches(rp *RevisionProblem, today string) bool {
	switch f {
	case RevisionsDue:
		return rp.Status(today) == StatusDue
	case RevisionsOverdue:
		return rp.Status(today) == StatusOverdue
	case RevisionsUpcoming:
		return rp.Status(today) == StatusUpcoming
	default:
		return true
	}
}

func (f SubmissionFilter) matches(s *Submission) bool {
	switch f {
	case SubmissionsBest:
		return s.IsBestSolution
	case SubmissionsNonBest:
		return !s.IsBestSolution
	case SubmissionsPassed:
		return s.Passed()
	case SubmissionsFailed:
		return !s.Passed()
	default:
		return true
	}
}

// FilterRevisions returns the revisions matching both the filter and the query,
// in source order. The source slice is not modified.
func FilterRevisions(list []RevisionProblem, filter RevisionFilter, query, today string) []RevisionProblem {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := []RevisionProblem{}
	for i := range list {
		rp := &list[i]
		if !filter.matches(rp, today) {
			continue
		}
		if needle != "" && !revisionMatchesText(rp, needle) {
			continue
		}
		out = append(out, *rp)
	}
	return out
}

func revisionMatchesText(rp *RevisionProblem, needle string) bool {
	if strings.Contains(strings.ToLower(rp.Title), needle) {
		return true
	}
	for _, tag := range rp.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// FilterSubmissions returns the submissions matching both the filter and a
// case-insensitive title query, in source order.
func FilterSubmissions(list []Submission, filter SubmissionFilter, query string) []Submission {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := []Submission{}
	for i := range list {
		s := &list[i]
		if !filter.matches(s) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(s.Title), needle) {
			continue
		}
		out = append(out, *s)
	}
	return out
}

// Timeline returns a copy of list ordered by ascending next_revision.
// Records sharing a date keep their relative order.
func Timeline(list []RevisionProblem) []RevisionProblem {
	out := append([]RevisionProblem{}, list...)
	sort.SliceStable(out, func(i, j int) bool {
		return dateKey(out[i].NextRevision) < dateKey(out[j].NextRevision)
	})
	return out
}

// ConfidenceDistribution counts revisions per confidence level 1-5.
// Index 0 holds level 1. Levels outside 1-5 are not counted.
func ConfidenceDistribution(list []RevisionProblem) [MaxConfidence]int {
	var counts [MaxConfidence]int
	for i := range list {
		if c := list[i].ConfidenceLevel; c >= MinConfidence && c <= MaxConfidence {
			counts[c-1]++
		}
	}
	return counts
}

// RevisionStats summarizes a revision list against today.
type RevisionStats struct {
	Total      int
	Due        int
	Overdue    int
	Upcoming   int
	Confidence [MaxConfidence]int
}

// Stats computes RevisionStats for list.
func Stats(list []RevisionProblem, today string) RevisionStats {
	stats := RevisionStats{Total: len(list), Confidence: ConfidenceDistribution(list)}
	for i := range list {
		switch list[i].Status(today) {
		case StatusDue:
			stats.Due++
		case StatusOverdue:
			stats.Overdue++
		default:
			stats.Upcoming++
		}
	}
	return stats
}
