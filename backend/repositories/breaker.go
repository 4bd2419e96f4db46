package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
)

type BreakerSettings struct {
	Name        string
	MaxFailures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// OnStateChange is called after the breaker has been logged.
	OnStateChange func(name string, to gobreaker.State)
}

// NewBreaker returns the circuit breaker guarding store calls. Only backend
// failures count against it; lookups that find nothing, duplicate keys and
// cancelled requests are outcomes of the caller's input.
func NewBreaker(s BreakerSettings) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Warnf("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
			if s.OnStateChange != nil {
				s.OnStateChange(name, to)
			}
		},
		IsSuccessful: isBackendHealthy,
	})
}

func isBackendHealthy(err error) bool {
	if err == nil {
		return true
	}
	var nf *models.NotFoundError
	var dup *models.DuplicateKeyError
	switch {
	case errors.As(err, &nf), errors.As(err, &dup):
		return true
	case errors.Is(err, models.ErrAlreadyAssigned), errors.Is(err, mongo.ErrNoDocuments):
		return true
	case errors.Is(err, context.Canceled):
		return true
	}
	return false
}

// execute runs fn through cb, passing its result through unchanged.
func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if v, ok := out.(T); ok {
			return v, err
		}
		return zero, err
	}
	return out.(T), nil
}

// run is execute for calls without a result.
func run(cb *gobreaker.CircuitBreaker, fn func() error) error {
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// IsUnavailable reports whether err was produced by an open breaker.
func IsUnavailable(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
