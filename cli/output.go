package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/dsahelper/dsahelper/markdown"
	"github.com/dsahelper/dsahelper/patterns"
	"github.com/dsahelper/dsahelper/types"
)

var (
	passStyle     = color.New(color.FgGreen).SprintFunc()
	failStyle     = color.New(color.FgRed).SprintFunc()
	dueStyle      = color.New(color.FgYellow, color.Bold).SprintFunc()
	overdueStyle  = color.New(color.FgRed, color.Bold).SprintFunc()
	upcomingStyle = color.New(color.FgGreen).SprintFunc()
	headingStyle  = color.New(color.Bold, color.Underline).SprintFunc()
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func when(ts int64) string {
	return time.Unix(ts, 0).Format("2006-01-02 15:04")
}

func printSubmissions(w io.Writer, list []types.Submission) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no submissions")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPROBLEM\tSTATUS\tLANGUAGE\tRUNTIME\tMEMORY\tSUBMITTED\tBEST")
	for i := range list {
		s := &list[i]
		status := failStyle(s.StatusDisplay)
		if s.Passed() {
			status = passStyle(s.StatusDisplay)
		}
		best := ""
		if s.IsBestSolution {
			best = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Title, status, s.LangName, s.Runtime, s.Memory, when(s.Timestamp), best)
	}
	tw.Flush()
}

func printCode(w io.Writer, s *types.Submission) {
	fmt.Fprintf(w, "%s (%s, %s)\n", headingStyle(s.Title), s.LangName, s.StatusDisplay)
	fmt.Fprintf(w, "submitted %s", when(s.Timestamp))
	if s.URL != "" {
		fmt.Fprintf(w, ", %s", s.URL)
	}
	fmt.Fprint(w, "\n\n")
	fmt.Fprintln(w, strings.TrimRight(s.Code, "\n"))
}

func statusStyle(status types.RevisionStatus) func(a ...interface{}) string {
	switch status {
	case types.StatusOverdue:
		return overdueStyle
	case types.StatusDue:
		return dueStyle
	default:
		return upcomingStyle
	}
}

func printRevisions(w io.Writer, list []types.RevisionProblem, today string) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no revision problems")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPROBLEM\tDIFFICULTY\tCONFIDENCE\tLAST\tNEXT\tCOUNT\tTAGS")
	for i := range list {
		rp := &list[i]
		next := statusStyle(rp.Status(today))(rp.NextRevision)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%d\t%s\n",
			rp.ID, rp.Title, rp.Difficulty, rp.ConfidenceLevel, rp.LastRevised, next, rp.RevisionCount, strings.Join(rp.Tags, ", "))
	}
	tw.Flush()
}

func printStats(w io.Writer, stats types.RevisionStats) {
	fmt.Fprintf(w, "%d problem%s tracked\n", stats.Total, plural(stats.Total))
	fmt.Fprintf(w, "  %s  %d\n", overdueStyle("overdue "), stats.Overdue)
	fmt.Fprintf(w, "  %s  %d\n", dueStyle("due     "), stats.Due)
	fmt.Fprintf(w, "  %s  %d\n", upcomingStyle("upcoming"), stats.Upcoming)
	fmt.Fprintln(w, "confidence")
	for i, n := range stats.Confidence {
		fmt.Fprintf(w, "  %d  %-3d %s\n", i+1, n, strings.Repeat("#", n))
	}
}

func printSection(w io.Writer, title, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	fmt.Fprintf(w, "%s\n\n%s\n\n", headingStyle(title), strings.TrimSpace(markdown.ToText(body)))
}

func printReport(w io.Writer, s *types.Submission, report *types.AnalysisReport) {
	fmt.Fprintf(w, "Analysis of %s\n\n", headingStyle(s.Title))
	sum := report.Summary
	tw := newTable(w)
	fmt.Fprintln(tw, "\tYOURS\tBEST")
	fmt.Fprintf(tw, "time\t%s\t%s\n", sum.CurrentTimeComplexity, sum.BestTimeComplexity)
	fmt.Fprintf(tw, "space\t%s\t%s\n", sum.CurrentSpaceComplexity, sum.BestSpaceComplexity)
	tw.Flush()
	if sum.BestSolution {
		fmt.Fprintf(w, "\n%s\n\n", passStyle("This is the best solution."))
	} else {
		fmt.Fprint(w, "\nThere is a better solution.\n\n")
	}
	for _, section := range report.Sections() {
		printSection(w, section.Title, section.Body)
	}
}

func printComparison(w io.Writer, s *types.Submission, data *types.ComparisonData) {
	fmt.Fprintf(w, "Comparison for %s\n\n", headingStyle(s.Title))
	if data.OptimalCode != "" {
		fmt.Fprintf(w, "%s\n\n%s\n\n", headingStyle("Optimal Solution"), strings.TrimRight(data.OptimalCode, "\n"))
	}
	if data.DiffView != "" {
		fmt.Fprintf(w, "%s\n\n%s\n\n", headingStyle("Differences"), strings.TrimRight(data.DiffView, "\n"))
	}
	printSection(w, "Algorithm", data.Algorithmic)
	printSection(w, "Complexity", data.Complexity)
	printSection(w, "Patterns", data.Patterns)
	for i, step := range data.Steps {
		printSection(w, fmt.Sprintf("Step %d: %s", i+1, step.Title), step.Description)
		if step.Code != "" {
			fmt.Fprintf(w, "%s\n\n", strings.TrimRight(step.Code, "\n"))
		}
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, headingStyle(title))
	fmt.Fprintln(w)
	for _, item := range items {
		fmt.Fprintf(w, "- %s\n", strings.TrimSpace(markdown.ToText(item)))
	}
	fmt.Fprintln(w)
}

func printOverall(w io.Writer, analysis *types.OverallAnalysis) {
	printList(w, "Strengths", analysis.Strengths)
	printList(w, "Weaknesses", analysis.Weaknesses)
	printList(w, "Learning Recommendations", analysis.LearningRecommendations)
	if analysis.CommonMistakesSummary != nil {
		printSection(w, "Common Mistakes", *analysis.CommonMistakesSummary)
	}
}

func printTopics(w io.Writer, c *patterns.Catalog) {
	tw := newTable(w)
	fmt.Fprintln(tw, "TOPIC\tPATTERNS\tNAME")
	for _, topic := range c.Topics {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", topic.Slug, len(topic.Patterns), topic.Name)
	}
	tw.Flush()
}

func printTopic(w io.Writer, topic *patterns.Topic) {
	fmt.Fprintln(w, headingStyle(topic.Name))
	for _, p := range topic.Patterns {
		fmt.Fprintf(w, "  %s\n      %s\n", p.Slug, p.Name)
	}
}

func printPatternInfo(w io.Writer, info *types.PatternInfo) {
	fmt.Fprintln(w, headingStyle(info.Name))
	if info.Category != "" || info.Priority != "" {
		fmt.Fprintf(w, "%s, priority %s\n", info.Category, info.Priority)
	}
	fmt.Fprintln(w)
	printSection(w, "Description", info.Description)
	printSection(w, "Why It Matters", info.WhyPriority)
	printList(w, "Key Points", info.KeyPoints)
	printList(w, "Common Mistakes", info.CommonMistakes)
	if len(info.Questions) > 0 {
		fmt.Fprintln(w, headingStyle("Practice Questions"))
		fmt.Fprintln(w)
		tw := newTable(w)
		for _, q := range info.Questions {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", q.Title, q.Difficulty, q.URL)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}
	if info.Template != "" {
		fmt.Fprintf(w, "%s\n\n%s\n", headingStyle("Template"), strings.TrimRight(info.Template, "\n"))
	}
}
