package remediation

// Config holds topic split settings.
type Config struct {
	// MinChildren is the smallest acceptable decomposition; smaller model
	// output triggers the deterministic two-way fallback.
	MinChildren int
	// MaxChildren caps oversized model output.
	MaxChildren int
	// UnitEstimatedMinutes is assigned to the child units.
	UnitEstimatedMinutes int

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for topic splitting.
func DefaultConfig() Config {
	return Config{
		MinChildren:          2,
		MaxChildren:          4,
		UnitEstimatedMinutes: 50,
		MaxTokens:            1024,
		Temperature:          0.4,
	}
}
