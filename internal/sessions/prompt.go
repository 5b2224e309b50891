package sessions

import (
	"fmt"
	"strings"
)

const lessonSystemPrompt = `You are a clear, encouraging tutor writing a short self-study lesson for one subtopic. Plain text only, no markdown headers.`

func buildLessonUserMessage(title, description string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Subtopic: %s\n", title))
	if description != "" {
		b.WriteString(fmt.Sprintf("Covers: %s\n", description))
	}

	b.WriteString(`
Instructions:
Write a lesson of 4-6 short paragraphs:
1. Motivate why this subtopic matters.
2. Explain the core concepts step by step with one concrete example.
3. Close with a short summary of what to remember.
Keep language simple and direct.`)

	return b.String()
}

const quizSystemPrompt = `You are an assessment writer creating multiple-choice questions that check understanding of a lesson. Every question has exactly 4 options and one correct answer.`

func buildQuizUserMessage(title, lesson string, shape QuizShape) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Subtopic: %s\n\nLesson:\n%s\n", title, lesson))

	b.WriteString(fmt.Sprintf(`
Instructions:
Write exactly %d multiple-choice questions about this lesson:
- %d Easy, %d Moderate, %d Hard.
- Each question has exactly 4 options; correct_answer repeats the correct option verbatim.
- Add a one-sentence rationale per question.
- Questions must be answerable from the lesson alone.`,
		shape.Total(), shape.Easy, shape.Moderate, shape.Hard))

	return b.String()
}

const linksSystemPrompt = `You are a study-resource curator. You reply only with well-known, stable URLs.`

func buildLinksUserMessage(title string) string {
	return fmt.Sprintf(`Subtopic: %s

Instructions:
List 3-5 reputable article or documentation URLs a student should read for this subtopic. Prefer official documentation and well-known educational sites.`, title)
}

func buildVideosUserMessage(title string) string {
	return fmt.Sprintf(`Subtopic: %s

Instructions:
List 3-5 YouTube video URLs that teach this subtopic. Only youtube.com or youtu.be links.`, title)
}
