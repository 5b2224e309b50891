package sessions

// QuizShape fixes how many questions of each difficulty a quiz carries.
type QuizShape struct {
	Easy     int
	Moderate int
	Hard     int
}

// Total returns the number of questions in the shape.
func (q QuizShape) Total() int {
	return q.Easy + q.Moderate + q.Hard
}

// Config holds content generation settings.
type Config struct {
	// TopLevelQuiz is the quiz shape for units under top-level nodes.
	TopLevelQuiz QuizShape
	// ChildQuiz is the smaller quiz shape for remediation child units.
	ChildQuiz QuizShape

	LessonMaxTokens int
	QuizMaxTokens   int
	LinksMaxTokens  int
	Temperature     float64
}

// DefaultConfig returns sensible defaults for content generation.
func DefaultConfig() Config {
	return Config{
		TopLevelQuiz:    QuizShape{Easy: 5, Moderate: 3, Hard: 2},
		ChildQuiz:       QuizShape{Easy: 3, Moderate: 2},
		LessonMaxTokens: 1024,
		QuizMaxTokens:   4096,
		LinksMaxTokens:  512,
		Temperature:     0.5,
	}
}
