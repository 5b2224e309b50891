package roadmap

import "strings"

// cleanTopic reduces a raw model reply to a usable topic name: the first
// non-empty line, stripped of quotes and trailing punctuation, capped at
// MaxTopicWords words. Returns "" when nothing usable remains.
func cleanTopic(raw string) string {
	var line string
	for _, l := range strings.Split(raw, "\n") {
		if s := strings.TrimSpace(l); s != "" {
			line = s
			break
		}
	}
	if line == "" {
		return ""
	}

	line = strings.Trim(line, "\"'`")
	line = strings.TrimRight(line, ".:!?,;")
	line = strings.TrimSpace(line)

	words := strings.Fields(line)
	if len(words) > MaxTopicWords {
		words = words[:MaxTopicWords]
	}
	return strings.Join(words, " ")
}

// sameTopic compares two topic names ignoring case and surrounding space.
func sameTopic(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// firstInterest returns the first comma-separated entry of a learner's
// interests field, or "".
func firstInterest(interests string) string {
	for _, part := range strings.Split(interests, ",") {
		if s := strings.TrimSpace(part); s != "" {
			return s
		}
	}
	return ""
}

// fallbackTopic builds a deterministic topic when the model gives nothing
// usable.
func fallbackTopic(interests string) string {
	if interest := firstInterest(interests); interest != "" {
		return interest + " Essentials"
	}
	return "Foundational Skills Improvement"
}
