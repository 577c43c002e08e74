package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const today = "2024-01-10"

func revision(id int64, title, next string, tags ...string) RevisionProblem {
	return RevisionProblem{
		Submission:   Submission{ID: id, Title: title},
		NextRevision: next,
		Tags:         tags,
	}
}

func ids(list []RevisionProblem) []int64 {
	out := []int64{}
	for _, rp := range list {
		out = append(out, rp.ID)
	}
	return out
}

func sampleRevisions() []RevisionProblem {
	return []RevisionProblem{
		revision(1, "Two Sum", "2024-01-09", "hash-map"),
		revision(2, "Three Sum", "2024-01-10", "two-pointers"),
		revision(3, "Word Ladder", "2024-01-11", "graphs"),
		revision(4, "Two City Scheduling", "2024-01-10", "greedy"),
		revision(5, "Jump Game", "2024-01-10T09:00:00.000Z"),
	}
}

func TestFilterRevisionsCategories(t *testing.T) {
	list := sampleRevisions()

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(FilterRevisions(list, RevisionsAll, "", today)))
	assert.Equal(t, []int64{2, 4, 5}, ids(FilterRevisions(list, RevisionsDue, "", today)))
	assert.Equal(t, []int64{1}, ids(FilterRevisions(list, RevisionsOverdue, "", today)))
	assert.Equal(t, []int64{3}, ids(FilterRevisions(list, RevisionsUpcoming, "", today)))
}

func TestFilterRevisionsDueOnlyToday(t *testing.T) {
	list := []RevisionProblem{
		revision(1, "Yesterday", "2024-01-09"),
		revision(2, "Today", "2024-01-10"),
		revision(3, "Tomorrow", "2024-01-11"),
	}
	got := FilterRevisions(list, RevisionsDue, "", today)
	require.Len(t, got, 1)
	assert.Equal(t, "Today", got[0].Title)
}

func TestFilterRevisionsSearch(t *testing.T) {
	list := sampleRevisions()

	// "Three Sum" matches through its two-pointers tag
	assert.Equal(t, []int64{1, 2, 4}, ids(FilterRevisions(list, RevisionsAll, "two", today)))
	assert.Equal(t, []int64{2}, ids(FilterRevisions(list, RevisionsAll, "POINTERS", today)))
	// both predicates must hold
	assert.Equal(t, []int64{4}, ids(FilterRevisions(list, RevisionsDue, "two c", today)))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(FilterRevisions(list, RevisionsAll, "   ", today)))
}

func TestFilterRevisionsIsIdempotentAndPure(t *testing.T) {
	list := sampleRevisions()
	before := append([]RevisionProblem{}, list...)

	once := FilterRevisions(list, RevisionsDue, "t", today)
	twice := FilterRevisions(once, RevisionsDue, "t", today)

	assert.Equal(t, once, twice)
	assert.Equal(t, before, list)
}

func TestFilterSubmissions(t *testing.T) {
	list := []Submission{
		{ID: 1, Title: "Two Sum", StatusDisplay: StatusAccepted, IsBestSolution: true},
		{ID: 2, Title: "Add Two Numbers", StatusDisplay: "Wrong Answer"},
		{ID: 3, Title: "Longest Substring", StatusDisplay: StatusAccepted},
		{ID: 4, Title: "Median of Two Sorted Arrays", StatusDisplay: "Time Limit Exceeded", IsBestSolution: true},
	}
	sids := func(in []Submission) []int64 {
		out := []int64{}
		for _, s := range in {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []int64{1, 2, 3, 4}, sids(FilterSubmissions(list, SubmissionsAll, "")))
	assert.Equal(t, []int64{1, 4}, sids(FilterSubmissions(list, SubmissionsBest, "")))
	assert.Equal(t, []int64{2, 3}, sids(FilterSubmissions(list, SubmissionsNonBest, "")))
	assert.Equal(t, []int64{1, 3}, sids(FilterSubmissions(list, SubmissionsPassed, "")))
	assert.Equal(t, []int64{2, 4}, sids(FilterSubmissions(list, SubmissionsFailed, "")))
	assert.Equal(t, []int64{1, 2, 4}, sids(FilterSubmissions(list, SubmissionsAll, "two")))
	assert.Equal(t, []int64{1}, sids(FilterSubmissions(list, SubmissionsPassed, "TWO")))

	once := FilterSubmissions(list, SubmissionsFailed, "two")
	assert.Equal(t, once, FilterSubmissions(once, SubmissionsFailed, "two"))
}

func TestTimeline(t *testing.T) {
	list := sampleRevisions()
	got := Timeline(list)

	assert.Equal(t, []int64{1, 2, 4, 5, 3}, ids(got))
	// source order is preserved
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(list))
}

func TestParseFilters(t *testing.T) {
	f, err := ParseRevisionFilter("")
	require.NoError(t, err)
	assert.Equal(t, RevisionsAll, f)

	f, err = ParseRevisionFilter("Overdue")
	require.NoError(t, err)
	assert.Equal(t, RevisionsOverdue, f)

	_, err = ParseRevisionFilter("soon")
	assert.Error(t, err)

	sf, err := ParseSubmissionFilter("non-best")
	require.NoError(t, err)
	assert.Equal(t, SubmissionsNonBest, sf)

	_, err = ParseSubmissionFilter("fastest")
	assert.Error(t, err)
}

func TestStatsAndDistribution(t *testing.T) {
	list := sampleRevisions()
	for i := range list {
		list[i].ConfidenceLevel = i + 1
	}
	list = append(list, RevisionProblem{ConfidenceLevel: 9, NextRevision: "2024-02-01"})

	stats := Stats(list, today)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 3, stats.Due)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 2, stats.Upcoming)
	assert.Equal(t, [MaxConfidence]int{1, 1, 1, 1, 1}, stats.Confidence)
}

func TestSortNewestFirst(t *testing.T) {
	list := []Submission{{ID: 1, Timestamp: 10}, {ID: 2, Timestamp: 30}, {ID: 3, Timestamp: 20}}
	SortNewestFirst(list)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, int64(3), list[1].ID)
	assert.Equal(t, int64(1), list[2].ID)
}
