package roadmap

// MaxTopicWords caps the length of a selected topic.
const MaxTopicWords = 6

// Config holds roadmap generation settings.
type Config struct {
	MinSubtopics int
	MaxSubtopics int
	MaxTokens    int
	Temperature  float64
}

// DefaultConfig returns sensible defaults for roadmap generation.
func DefaultConfig() Config {
	return Config{
		MinSubtopics: 6,
		MaxSubtopics: 10,
		MaxTokens:    2048,
		Temperature:  0.4,
	}
}
