package emulator

import (
	"time"
)

const (
	DEFAULT_INSTRUCTIONS_PER_TICK = 10 // Instructions executed per timer tick.
	DEFAULT_TICK_RATE_HZ          = 60 // Timer ticks per second.
)

// Config of the cycle scheduler.
type Config struct {
	InstructionsPerTick int    // Instructions executed per timer tick.
	TickRateHz          int    // Timer ticks per second.
	Seed                uint64 // Random seed, zero for a time based seed.
	Verbose             bool   // Enables verbose logging.
}

// DefaultConfig returns the classic 600 instructions per second, 60Hz timer
// configuration.
func DefaultConfig() Config {
	return Config{
		InstructionsPerTick: DEFAULT_INSTRUCTIONS_PER_TICK,
		TickRateHz:          DEFAULT_TICK_RATE_HZ,
	}
}

// Validate checks that the rates are positive.
func (cfg Config) Validate() (err error) {
	switch {
	case cfg.InstructionsPerTick <= 0:
		err = ErrConfig("InstructionsPerTick")
	case cfg.TickRateHz <= 0:
		err = ErrConfig("TickRateHz")
	}
	return
}

// TickPeriod is the wall clock time between timer ticks.
func (cfg Config) TickPeriod() time.Duration {
	if cfg.TickRateHz <= 0 {
		return time.Second / DEFAULT_TICK_RATE_HZ
	}
	return time.Second / time.Duration(cfg.TickRateHz)
}
