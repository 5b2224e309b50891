package roadmap

import (
	"fmt"
	"strings"
)

const topicSystemPrompt = `You are an academic mentor choosing the single most useful study topic for a student. You answer with the topic name only.`

func buildTopicUserMessage(p topicProfile) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Student: %s\n", p.Name))
	if p.Course != "" {
		b.WriteString(fmt.Sprintf("Course: %s\n", p.Course))
	}
	if p.Year != "" {
		b.WriteString(fmt.Sprintf("Year: %s\n", p.Year))
	}
	b.WriteString(fmt.Sprintf("Strengths: %s\n", orNone(p.Strengths)))
	b.WriteString(fmt.Sprintf("Weaknesses: %s\n", orNone(p.Weaknesses)))
	b.WriteString(fmt.Sprintf("Interests: %s\n", orNone(p.Interests)))

	b.WriteString(`
Instructions:
Pick ONE study topic that addresses the student's weaknesses while staying close to their interests.
Reply with the topic name only: at most 6 words, no quotes, no punctuation, no explanation.`)

	return b.String()
}

func buildAlternateTopicUserMessage(p topicProfile, current string) string {
	var b strings.Builder

	b.WriteString(buildTopicUserMessage(p))
	b.WriteString(fmt.Sprintf("\n\nThe student is already studying %q. Pick a DIFFERENT topic.", current))

	return b.String()
}

const decomposeSystemPrompt = `You are a curriculum designer. You break a study topic into an ordered sequence of subtopics a student can work through one at a time.`

func buildDecomposeUserMessage(topic string, min, max int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Topic: %s\n", topic))
	b.WriteString(fmt.Sprintf(`
Instructions:
Break this topic into %d to %d subtopics, ordered from fundamentals to advanced.
For each subtopic give:
1. A short title (2-6 words).
2. A one-sentence description of what the student will learn.
3. 2-3 reputable article or documentation URLs for self-study.`, min, max))

	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none listed"
	}
	return s
}
