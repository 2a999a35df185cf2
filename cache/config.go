package cache

import "time"

// Config holds configuration for a Cache
type Config struct {
	// Name is used for logging purposes to identify the cache
	// default: "cache"
	Name string `mapstructure:"name"`
	// RefreshOnRead controls expiry semantics: when true, reading an
	// entry resets its age (sliding expiration); when false, an entry
	// expires at a fixed time after its last write regardless of read
	// traffic. Entries read often with RefreshOnRead enabled can stay
	// cached, and therefore stale, indefinitely
	// default: false
	RefreshOnRead bool `mapstructure:"refresh_on_read"`
	// SweepInterval is how often the manager sweeps the cache for
	// expired entries while it is non-empty
	// default: 1 * time.Minute
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// Timeout is how long an entry may go untouched before it expires
	// default: 5 * time.Minute
	Timeout time.Duration `mapstructure:"timeout"`
	// InitialCapacity sizes the underlying map
	// default: 0
	InitialCapacity int `mapstructure:"initial_capacity"`
	// EmitEvents enables the eviction event stream exposed by Events.
	// When enabled the caller must drain the stream; the channel is
	// unbounded and undrained events accumulate
	// default: false
	EmitEvents bool `mapstructure:"emit_events"`
	// EventBuffer is the initial capacity of the event channel
	// default: 16
	EventBuffer int `mapstructure:"event_buffer"`
}

// DefaultConfig returns the default configuration for a Cache
func DefaultConfig() *Config {
	return &Config{
		Name:          "cache",
		SweepInterval: 1 * time.Minute,
		Timeout:       5 * time.Minute,
		EventBuffer:   16,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.SweepInterval <= 0 {
		return ErrInvalidSweepInterval(c.SweepInterval)
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout(c.Timeout)
	}
	if c.InitialCapacity < 0 {
		return ErrInvalidInitialCapacity(c.InitialCapacity)
	}
	if c.EventBuffer <= 0 {
		return ErrInvalidEventBuffer(c.EventBuffer)
	}
	return nil
}
