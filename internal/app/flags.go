package app

import (
	"flag"
	"strconv"

	"herding/internal/logging"
)

// Config represents the command-line parameters shared by the drivers.
type Config struct {
	Sim   string
	Scale int
	TPS   int
	Seed  int64

	Width        int
	Height       int
	Population   int
	MoveAttempts int

	// Ticks bounds headless runs; 0 means run until interrupted.
	Ticks int

	LogLevel  string
	LogFormat string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Sim:          "herd",
		Scale:        8,
		TPS:          10,
		Seed:         42,
		Width:        100,
		Height:       100,
		Population:   40,
		MoveAttempts: 64,
		Ticks:        100,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second (0 runs headless ticks unpaced)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.Width, "w", c.Width, "grid width")
	fs.IntVar(&c.Height, "h", c.Height, "grid height")
	fs.IntVar(&c.Population, "population", c.Population, "number of animals")
	fs.IntVar(&c.MoveAttempts, "attempts", c.MoveAttempts, "neighbor samples before a free animal gives up")
	fs.IntVar(&c.Ticks, "ticks", c.Ticks, "ticks to run headless (0 = until interrupted)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "text or json")
}

// SimConfig renders the simulation settings as factory key/value pairs.
func (c *Config) SimConfig() map[string]string {
	return map[string]string{
		"w":             strconv.Itoa(c.Width),
		"h":             strconv.Itoa(c.Height),
		"population":    strconv.Itoa(c.Population),
		"seed":          strconv.FormatInt(c.Seed, 10),
		"move_attempts": strconv.Itoa(c.MoveAttempts),
	}
}

// Logger builds the structured logger selected by the log flags.
func (c *Config) Logger() logging.Logger {
	return logging.New(logging.Config{Level: c.LogLevel, Format: c.LogFormat})
}
