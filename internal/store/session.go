package store

import (
	"rhmaster/internal/domain/core"
	"rhmaster/internal/domain/payroll"
)

// Mode is the connectivity state of a session.
type Mode int

const (
	ModeOffline Mode = iota
	ModeOnline
)

func (m Mode) String() string {
	switch m {
	case ModeOnline:
		return "ONLINE"
	case ModeOffline:
		return "OFFLINE"
	}
	return "UNKNOWN"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Collection is an owned, versioned list. Every mutation bumps Version.
type Collection[T any] struct {
	items     []T
	version   uint64
	populated bool
}

func (c *Collection[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int { return len(c.items) }

func (c *Collection[T]) Version() uint64 { return c.version }

// Populated reports whether the collection was ever loaded from a mirror.
func (c *Collection[T]) Populated() bool { return c.populated }

func (c *Collection[T]) Replace(items []T) {
	c.items = make([]T, len(items))
	copy(c.items, items)
	c.populated = true
	c.version++
}

func (c *Collection[T]) Append(items ...T) {
	c.items = append(c.items, items...)
	c.populated = true
	c.version++
}

func (c *Collection[T]) Prepend(items ...T) {
	merged := make([]T, 0, len(items)+len(c.items))
	merged = append(merged, items...)
	c.items = append(merged, c.items...)
	c.populated = true
	c.version++
}

// Set replaces the first item matching pred and reports whether one did.
func (c *Collection[T]) Set(pred func(T) bool, item T) bool {
	for i := range c.items {
		if pred(c.items[i]) {
			c.items[i] = item
			c.version++
			return true
		}
	}
	return false
}

func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	for _, item := range c.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Session is the state of one operator session: connectivity mode, the two
// owned collections and the ids written locally but not yet confirmed by
// the remote. Pending ids are pushed on the next sync; rejected ids were
// refused by the remote as conflicting and stay local until edited.
type Session struct {
	Mode              Mode
	Employees         Collection[core.Employee]
	Records           Collection[payroll.Record]
	PendingEmployees  map[string]struct{}
	PendingRecords    map[string]struct{}
	RejectedEmployees map[string]struct{}
	RejectedRecords   map[string]struct{}
}

func NewSession() *Session {
	return &Session{
		Mode:              ModeOffline,
		PendingEmployees:  map[string]struct{}{},
		PendingRecords:    map[string]struct{}{},
		RejectedEmployees: map[string]struct{}{},
		RejectedRecords:   map[string]struct{}{},
	}
}

// localOnly reports whether id is held locally without remote confirmation.
func localOnly(id string, sets ...map[string]struct{}) bool {
	for _, set := range sets {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
