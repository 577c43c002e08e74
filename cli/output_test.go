package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsahelper/dsahelper/notify"
	"github.com/dsahelper/dsahelper/patterns"
	"github.com/dsahelper/dsahelper/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestPrintSubmissions(t *testing.T) {
	var buf bytes.Buffer
	printSubmissions(&buf, []types.Submission{
		{ID: 11, Title: "Two Sum", StatusDisplay: types.StatusAccepted, LangName: "Python3", Runtime: "40 ms", Memory: "14 MB", IsBestSolution: true},
		{ID: 12, Title: "Valid Parentheses", StatusDisplay: "Wrong Answer", LangName: "Go"},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Two Sum")
	assert.Contains(t, lines[1], "Accepted")
	assert.True(t, strings.HasSuffix(lines[1], "yes"))
	assert.Contains(t, lines[2], "Wrong Answer")

	buf.Reset()
	printSubmissions(&buf, nil)
	assert.Equal(t, "no submissions\n", buf.String())
}

func TestPrintRevisions(t *testing.T) {
	var buf bytes.Buffer
	printRevisions(&buf, []types.RevisionProblem{
		{Submission: types.Submission{ID: 11, Title: "Two Sum"}, Difficulty: "Easy", ConfidenceLevel: 2,
			LastRevised: "2024-01-07", NextRevision: "2024-01-10", RevisionCount: 1, Tags: []string{"array", "hash"}},
	}, "2024-01-10")
	out := buf.String()
	assert.Contains(t, out, "Two Sum")
	assert.Contains(t, out, "2024-01-10")
	assert.Contains(t, out, "array, hash")

	buf.Reset()
	printRevisions(&buf, []types.RevisionProblem{}, "2024-01-10")
	assert.Equal(t, "no revision problems\n", buf.String())
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, types.RevisionStats{Total: 3, Due: 1, Overdue: 1, Upcoming: 1, Confidence: [5]int{0, 2, 1, 0, 0}})
	out := buf.String()
	assert.Contains(t, out, "3 problems tracked")
	assert.Contains(t, out, "  2  2   ##\n")
	assert.Contains(t, out, "  3  1   #\n")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	sub := &types.Submission{ID: 11, Title: "Two Sum"}
	printReport(&buf, sub, &types.AnalysisReport{
		CorrectnessAndLogic: "The loop is **correct**.",
		Summary: types.AnalysisSummary{
			CurrentTimeComplexity: "O(n^2)",
			BestTimeComplexity:    "O(n)",
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Analysis of Two Sum")
	assert.Contains(t, out, "O(n^2)")
	assert.Contains(t, out, "There is a better solution.")
	assert.Contains(t, out, "Correctness and Logic")
	assert.Contains(t, out, "correct")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "Space Complexity\n")
}

func TestPrintOverall(t *testing.T) {
	var buf bytes.Buffer
	mistakes := "Off-by-one errors."
	printOverall(&buf, &types.OverallAnalysis{
		Strengths:             []string{"Hash maps"},
		CommonMistakesSummary: &mistakes,
	})
	out := buf.String()
	assert.Contains(t, out, "Strengths")
	assert.Contains(t, out, "- Hash maps")
	assert.NotContains(t, out, "Weaknesses")
	assert.Contains(t, out, "Off-by-one errors.")
}

func TestPrintPatterns(t *testing.T) {
	catalog := patterns.Default()
	var buf bytes.Buffer
	printTopics(&buf, catalog)
	for _, topic := range catalog.Topics {
		assert.Contains(t, buf.String(), topic.Slug)
	}

	buf.Reset()
	topic := &catalog.Topics[0]
	printTopic(&buf, topic)
	assert.Contains(t, buf.String(), topic.Patterns[0].Slug)

	buf.Reset()
	printPatternInfo(&buf, &types.PatternInfo{
		Name:      "Pair with Target Sum",
		KeyPoints: []string{"Sorted input"},
		Questions: []types.PatternQuestion{{Title: "Two Sum II", Difficulty: "Medium"}},
		Template:  "def solve():\n    pass\n",
	})
	out := buf.String()
	assert.Contains(t, out, "- Sorted input")
	assert.Contains(t, out, "Two Sum II")
	assert.True(t, strings.HasSuffix(out, "    pass\n"))
}

func TestMaskSession(t *testing.T) {
	assert.Equal(t, "LEET********=abc", maskSession("LEETCODE_SESSION=abc"))
	assert.Equal(t, "********", maskSession("12345678"))
	assert.Equal(t, "", maskSession(""))
}

func TestPrintNotification(t *testing.T) {
	var buf bytes.Buffer
	q := notify.NewQueue(notify.WithSink(printNotification(&buf)))
	q.Show("Success", "Problem added to revisions", notify.Green)
	q.Show("Odd", "no colour", "purple")
	assert.Equal(t, "Success: Problem added to revisions\nOdd: no colour\n", buf.String())
}

func newEditCommand(t *testing.T, args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "edit"}
	addEditFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestEditFlags(t *testing.T) {
	cmd := newEditCommand(t)
	assert.False(t, editFlagsChanged(cmd))

	cmd = newEditCommand(t, "--confidence", "5", "--difficulty", "hard", "--tags", "dp, ,graphs")
	require.True(t, editFlagsChanged(cmd))
	start := types.RevisionEdit{Notes: "keep me", Difficulty: "Easy", ConfidenceLevel: 2, Tags: []string{"old"}}
	edit := mustApplyEditFlags(cmd, start)
	assert.Equal(t, types.RevisionEdit{
		Notes:           "keep me",
		Difficulty:      "Hard",
		ConfidenceLevel: 5,
		Tags:            []string{"dp", "graphs"},
	}, *edit)
	assert.Equal(t, []string{"old"}, start.Tags)
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "", plural(1))
	assert.Equal(t, "s", plural(0))
	assert.Equal(t, "s", plural(2))
}
