package cache

import (
	"fmt"
	"time"
)

// Predefined errors
var (
	// ErrInvalidConfig is returned when the configuration is invalid
	ErrInvalidConfig = fmt.Errorf("cache: invalid config")
	// ErrNilManager is returned when a nil manager is passed to NewWithManager
	ErrNilManager = fmt.Errorf("cache: nil manager")
	// ErrNilLoader is returned when GetOrLoad is called without a loader
	ErrNilLoader = fmt.Errorf("cache: nil loader")
)

// Error constructors

// ErrLoad wraps a loader error
func ErrLoad(err error) error {
	return fmt.Errorf("cache: load failed: %w", err)
}

// ErrInvalidSweepInterval returns an error for an invalid sweep interval
func ErrInvalidSweepInterval(interval time.Duration) error {
	return fmt.Errorf("cache: invalid sweep interval: %v (must be > 0)", interval)
}

// ErrInvalidTimeout returns an error for an invalid entry timeout
func ErrInvalidTimeout(timeout time.Duration) error {
	return fmt.Errorf("cache: invalid timeout: %v (must be > 0)", timeout)
}

// ErrInvalidInitialCapacity returns an error for an invalid initial capacity
func ErrInvalidInitialCapacity(capacity int) error {
	return fmt.Errorf("cache: invalid initial capacity: %d (must be >= 0)", capacity)
}

// ErrInvalidEventBuffer returns an error for an invalid event buffer size
func ErrInvalidEventBuffer(size int) error {
	return fmt.Errorf("cache: invalid event buffer: %d (must be > 0)", size)
}
