package herd

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidConfig reports dimensions or counts that cannot form a world.
	ErrInvalidConfig = errors.New("invalid herd config")
	// ErrOvercrowded reports a population larger than the number of cells.
	ErrOvercrowded = errors.New("population exceeds grid cells")
)

// Config controls the herd world dimensions and population.
type Config struct {
	Width  int
	Height int

	// Population is the number of animals placed at reset. It is independent
	// of the grid dimensions.
	Population int

	Seed int64

	// MoveAttempts bounds how many neighbor samples a free animal draws
	// looking for an empty cell before it gives up for the tick.
	MoveAttempts int
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:        100,
		Height:       100,
		Population:   40,
		Seed:         1337,
		MoveAttempts: 64,
	}
}

// Validate checks that the config describes a world that can be populated.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Population < 0 {
		return fmt.Errorf("%w: population %d", ErrInvalidConfig, c.Population)
	}
	if c.MoveAttempts <= 0 {
		return fmt.Errorf("%w: move attempts %d", ErrInvalidConfig, c.MoveAttempts)
	}
	if c.Population > c.Width*c.Height {
		return fmt.Errorf("%w: %d animals on %d cells", ErrOvercrowded, c.Population, c.Width*c.Height)
	}
	return nil
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["population"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Population = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["move_attempts"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.MoveAttempts = parsed
		}
	}
	return c
}

// ToMap renders the config back into FromMap keys.
func (c Config) ToMap() map[string]string {
	return map[string]string{
		"w":             strconv.Itoa(c.Width),
		"h":             strconv.Itoa(c.Height),
		"population":    strconv.Itoa(c.Population),
		"seed":          strconv.FormatInt(c.Seed, 10),
		"move_attempts": strconv.Itoa(c.MoveAttempts),
	}
}
