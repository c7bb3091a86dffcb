package circuitbreaker

import "time"

// Config mirrors the CIRCUIT_BREAKER_* settings.
type Config struct {
	Name    string
	Enabled bool

	// MaxRequests bounds the probes let through while half-open; 0 means 1.
	MaxRequests uint

	// Interval clears the failure counts while closed; 0 never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open; 0 means 60 seconds.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens it.
	FailureThreshold uint
}
