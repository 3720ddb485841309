package listctl

import (
	"context"
	"sync"

	"github.com/jinzhu/copier"
)

// Optimistic is a local change that is applied before the server confirms it
// and rolled back if the server refuses.
type Optimistic interface {
	Apply()
	Rollback()
}

type change struct {
	apply    func()
	rollback func()
}

func (c change) Apply() {
	if c.apply != nil {
		c.apply()
	}
}

func (c change) Rollback() {
	if c.rollback != nil {
		c.rollback()
	}
}

func NewChange(apply, rollback func()) Optimistic {
	return change{apply: apply, rollback: rollback}
}

// Patch describes a single-row mutation. Apply edits the local copy; Commit
// sends the change and may return the server's version of the row.
type Patch[T any] struct {
	Op             string
	Apply          func(item *T)
	Commit         func(ctx context.Context, id string) (*T, error)
	FailureMessage string
	SuccessMessage string
}

func deepCopy[T any](src T) (T, error) {
	var dst T
	err := copier.CopyWithOption(&dst, &src, copier.Option{DeepCopy: true})
	return dst, err
}

// Detail holds the record shown in an open detail view so that it can take
// part in a list mutation.
type Detail[T any] struct {
	mu   sync.RWMutex
	id   string
	item T
	open bool
}

func (d *Detail[T]) Open(id string, item T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.id, d.item, d.open = id, item, true
}

func (d *Detail[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	d.id, d.item, d.open = "", zero, false
}

func (d *Detail[T]) Get() (T, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.item, d.open
}

func (d *Detail[T]) ID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.id
}

// Patch returns a linked change for the record with the given id. It does
// nothing when a different record (or none) is open.
func (d *Detail[T]) Patch(id string, apply func(*T)) Optimistic {
	var (
		prev     T
		captured bool
	)
	return NewChange(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if !d.open || d.id != id {
			return
		}
		snapshot, err := deepCopy(d.item)
		if err != nil {
			return
		}
		next, err := deepCopy(d.item)
		if err != nil {
			return
		}
		apply(&next)
		prev, captured = snapshot, true
		d.item = next
	}, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if !captured || !d.open || d.id != id {
			return
		}
		d.item = prev
	})
}
