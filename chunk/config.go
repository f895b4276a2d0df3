package chunk

import "fmt"

// DefaultHeading is the sentinel root of every document's hierarchy stack.
const DefaultHeading = "Introduction"

// Config holds the token thresholds that drive chunk assembly.
type Config struct {
	// MinChunkTokens is the minimum accumulation size before a title
	// boundary is allowed to flush early.
	MinChunkTokens int

	// TargetChunkTokens is the soft ceiling for narrative accumulation.
	TargetChunkTokens int

	// MaxChunkTokens is the hard ceiling for a single atomic element;
	// anything larger is split with overlap.
	MaxChunkTokens int

	// MaxListChunkTokens is the soft ceiling for list-item accumulation.
	MaxListChunkTokens int

	// OverlapFraction is the fraction of MaxChunkTokens shared between
	// consecutive fallback sub-chunks.
	OverlapFraction float64
}

// DefaultConfig returns the thresholds tuned for heavier paginated
// documents.
func DefaultConfig() *Config {
	return &Config{
		MinChunkTokens:     100,
		TargetChunkTokens:  250,
		MaxChunkTokens:     350,
		MaxListChunkTokens: 400,
		OverlapFraction:    0.10,
	}
}

// Validate checks that the thresholds are usable and mutually consistent.
func (c *Config) Validate() error {
	if c.MinChunkTokens < 0 {
		return fmt.Errorf("%w: MinChunkTokens must not be negative", ErrInvalidConfig)
	}
	if c.TargetChunkTokens <= 0 {
		return fmt.Errorf("%w: TargetChunkTokens must be positive", ErrInvalidConfig)
	}
	if c.MaxChunkTokens <= 0 {
		return fmt.Errorf("%w: MaxChunkTokens must be positive", ErrInvalidConfig)
	}
	if c.MaxListChunkTokens <= 0 {
		return fmt.Errorf("%w: MaxListChunkTokens must be positive", ErrInvalidConfig)
	}
	if c.TargetChunkTokens > c.MaxChunkTokens {
		return fmt.Errorf("%w: TargetChunkTokens exceeds MaxChunkTokens", ErrInvalidConfig)
	}
	if c.OverlapFraction < 0 || c.OverlapFraction >= 1 {
		return fmt.Errorf("%w: OverlapFraction must be in [0, 1)", ErrInvalidConfig)
	}
	return nil
}
