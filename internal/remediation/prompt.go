package remediation

import (
	"fmt"
	"strings"
)

const splitSystemPrompt = `You are a tutor helping a student who just failed a quiz. You break the failed subtopic into smaller, easier pieces the student can master one at a time.`

func buildSplitUserMessage(subtopic, description string, min, max int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Failed subtopic: %s\n", subtopic))
	if description != "" {
		b.WriteString(fmt.Sprintf("Covers: %s\n", description))
	}

	b.WriteString(fmt.Sprintf(`
Instructions:
Break this subtopic into %d to %d simpler sub-parts, ordered easiest first.
Each sub-part needs a short title (2-6 words) and a one-sentence description.
Together the sub-parts must cover the original subtopic.`, min, max))

	return b.String()
}
