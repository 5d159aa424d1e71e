package models

import (
	"encoding/json"
	"time"
)

// LifecycleState tags whether a record is live or soft-deleted
type LifecycleState int

const (
	StateActive LifecycleState = iota
	StateDeleted
)

// Lifecycle is either Active or Deleted(at). Lookups must skip Deleted records.
type Lifecycle struct {
	state     LifecycleState
	deletedAt time.Time
}

// Active returns a live lifecycle
func Active() Lifecycle {
	return Lifecycle{state: StateActive}
}

// Deleted returns a lifecycle soft-deleted at the given time
func Deleted(at time.Time) Lifecycle {
	return Lifecycle{state: StateDeleted, deletedAt: at.UTC()}
}

// LifecycleFromNullable maps a nullable deleted_at column
func LifecycleFromNullable(deletedAt *time.Time) Lifecycle {
	if deletedAt == nil {
		return Active()
	}
	return Deleted(*deletedAt)
}

func (l Lifecycle) State() LifecycleState { return l.state }

func (l Lifecycle) IsDeleted() bool { return l.state == StateDeleted }

// DeletedAt returns the deletion time when the record is deleted
func (l Lifecycle) DeletedAt() (time.Time, bool) {
	if l.state != StateDeleted {
		return time.Time{}, false
	}
	return l.deletedAt, true
}

// Nullable maps back to a deleted_at column value
func (l Lifecycle) Nullable() *time.Time {
	if l.state != StateDeleted {
		return nil
	}
	at := l.deletedAt
	return &at
}

func (l Lifecycle) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Nullable())
}

func (l *Lifecycle) UnmarshalJSON(data []byte) error {
	var at *time.Time
	if err := json.Unmarshal(data, &at); err != nil {
		return err
	}
	*l = LifecycleFromNullable(at)
	return nil
}
