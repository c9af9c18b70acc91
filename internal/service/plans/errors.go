package plans

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrInvalidID       = errors.New("invalid plan id")
	ErrRateLimited     = errors.New("rate limited")
	ErrIDExhausted     = errors.New("could not allocate a plan id")
)

// RateLimitedError is returned by Save when the caller saved too often.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

func (e RateLimitedError) Unwrap() error { return ErrRateLimited }
