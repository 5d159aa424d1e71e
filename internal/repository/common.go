package repository

import (
	"time"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// numberWithRetry reserves sequence values from next until insert accepts
// one. Only collisions reported by isDup are retried, at most attempts times.
func numberWithRetry(attempts int, next func() (int64, error), insert func(seq int64) error, isDup func(error) bool) (int, error) {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var seq int64
		seq, err = next()
		if err != nil {
			return attempt, err
		}
		err = insert(seq)
		if err == nil {
			return attempt, nil
		}
		if !isDup(err) {
			return attempt, err
		}
	}
	return attempts, errNumberExhausted{cause: err}
}

type errNumberExhausted struct {
	cause error
}

func (e errNumberExhausted) Error() string {
	return "order number retries exhausted: " + e.cause.Error()
}

func (e errNumberExhausted) Unwrap() error { return e.cause }
