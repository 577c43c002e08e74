package types

// AnalysisReport is the AI feedback for one submission.
type AnalysisReport struct {
	CorrectnessAndLogic     string          `json:"correctnessAndLogic"`
	TimeComplexityAnalysis  string          `json:"timeComplexityAnalysis"`
	SpaceComplexityAnalysis string          `json:"spaceComplexityAnalysis"`
	CodeStyleAndReadability string          `json:"codeStyleAndReadability"`
	AlternativeApproaches   string          `json:"alternativeApproaches"`
	Summary                 AnalysisSummary `json:"summary"`
}

// AnalysisSummary compares the submission's complexity with the best known solution.
type AnalysisSummary struct {
	BestSolution           bool   `json:"isBestSolution"`
	BestTimeComplexity     string `json:"bestTimeComplexity"`
	CurrentTimeComplexity  string `json:"currentTimeComplexity"`
	BestSpaceComplexity    string `json:"bestSpaceComplexity"`
	CurrentSpaceComplexity string `json:"currentSpaceComplexity"`
}

// Sections lists the report's markdown sections in display order.
func (r *AnalysisReport) Sections() []ReportSection {
	return []ReportSection{
		{Title: "Correctness and Logic", Body: r.CorrectnessAndLogic},
		{Title: "Time Complexity", Body: r.TimeComplexityAnalysis},
		{Title: "Space Complexity", Body: r.SpaceComplexityAnalysis},
		{Title: "Code Style and Readability", Body: r.CodeStyleAndReadability},
		{Title: "Alternative Approaches", Body: r.AlternativeApproaches},
	}
}

// ReportSection is one titled block of markdown.
type ReportSection struct {
	Title string
	Body  string
}

// ComparisonData contrasts a submission with an optimal solution.
type ComparisonData struct {
	OptimalCode string           `json:"optimalCode"`
	DiffView    string           `json:"diffView"`
	Algorithmic string           `json:"algorithmic"`
	Complexity  string           `json:"complexity"`
	Patterns    string           `json:"patterns"`
	Steps       []ComparisonStep `json:"steps"`
}

// ComparisonStep is one step in the walk-through towards the optimal solution.
type ComparisonStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code,omitempty"`
}

// PatternInfo describes a problem-solving pattern along with a code template.
type PatternInfo struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Priority       string            `json:"priority"`
	WhyPriority    string            `json:"whyPriority"`
	KeyPoints      []string          `json:"keyPoints"`
	Questions      []PatternQuestion `json:"questions"`
	CommonMistakes []string          `json:"commonMistakes"`
	Template       string            `json:"template"`
}

// PatternQuestion is a practice problem linked to a pattern.
type PatternQuestion struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	URL        string `json:"url,omitempty"`
}

// OverallAnalysis summarizes strengths and weaknesses across recent submissions.
type OverallAnalysis struct {
	Strengths               []string `json:"strengths"`
	Weaknesses              []string `json:"weaknesses"`
	LearningRecommendations []string `json:"learningRecommendations"`
	CommonMistakesSummary   *string  `json:"commonMistakesSummary"`
}
