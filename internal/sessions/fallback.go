package sessions

import (
	"fmt"

	"github.com/dhanush/skillpath/internal/store"
)

// fallbackLesson is the deterministic lesson used when text generation
// fails. Generation failure is never surfaced to the learner.
func fallbackLesson(title string) string {
	return fmt.Sprintf("This unit covers %s. A generated lesson is not available right now. "+
		"Work through the linked resources for this subtopic, take notes on the main ideas, "+
		"and answer the quiz when you feel ready.", title)
}

// fallbackQuiz is the single placeholder question used when quiz
// generation fails.
func fallbackQuiz(title string) []store.QuizItem {
	return []store.QuizItem{{
		Question:      "Which subtopic does this unit focus on?",
		Options:       []string{title, "General revision", "An unrelated subject", "None of these"},
		CorrectAnswer: title,
		Difficulty:    "Easy",
		Rationale:     fmt.Sprintf("This unit is dedicated to %s.", title),
	}}
}
