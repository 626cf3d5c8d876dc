package record

import (
	"sync"
	"sync/atomic"
)

// Table maps selector IDs to Buckets for one owner (a class, or one
// instance's associated storage). Reads are lock-free via sync.Map so
// the dispatch trampoline never blocks; mutations are serialized by
// the engine's registration lock.
type Table struct {
	buckets sync.Map // int -> *Bucket
	count   atomic.Int64
}

// NewTable creates an empty table.
func NewTable() *Table { return &Table{} }

// Get returns the bucket for a selector ID, or nil.
func (t *Table) Get(selector int) *Bucket {
	v, ok := t.buckets.Load(selector)
	if !ok {
		return nil
	}
	return v.(*Bucket)
}

// GetOrCreate returns the bucket for a selector ID, creating it if absent.
func (t *Table) GetOrCreate(selector int) *Bucket {
	if b := t.Get(selector); b != nil {
		return b
	}
	b := NewBucket()
	actual, loaded := t.buckets.LoadOrStore(selector, b)
	if !loaded {
		t.count.Add(1)
	}
	return actual.(*Bucket)
}

// Delete destroys the bucket for a selector ID.
func (t *Table) Delete(selector int) {
	if _, ok := t.buckets.LoadAndDelete(selector); ok {
		t.count.Add(-1)
	}
}

// Empty reports whether the table holds no buckets.
func (t *Table) Empty() bool { return t.count.Load() == 0 }
