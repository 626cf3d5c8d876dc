package record

import "sync/atomic"

// sequences is one immutable snapshot of a bucket's three position
// lists. Insertion order is registration order is invocation order.
type sequences struct {
	before  []*Record
	instead []*Record
	after   []*Record
}

var emptySequences = &sequences{}

// Bucket holds the ordered records for one (target, selector) pair.
//
// The three sequences are replaced wholesale on every mutation, so a
// call in flight that has loaded a snapshot is never affected by a
// concurrent add or remove. Mutations are serialized by the engine's
// registration lock; reads are lock-free.
type Bucket struct {
	seqs atomic.Pointer[sequences]
}

// NewBucket creates an empty bucket.
func NewBucket() *Bucket {
	b := &Bucket{}
	b.seqs.Store(emptySequences)
	return b
}

// Add appends a record to its position sequence.
func (b *Bucket) Add(r *Record) {
	old := b.seqs.Load()
	next := &sequences{
		before:  old.before,
		instead: old.instead,
		after:   old.after,
	}
	switch r.Position() {
	case Before:
		next.before = appendCopy(old.before, r)
	case Instead:
		next.instead = appendCopy(old.instead, r)
	case After:
		next.after = appendCopy(old.after, r)
	}
	b.seqs.Store(next)
}

// Remove deletes a record from its position sequence. Returns false if
// the record was not present.
func (b *Bucket) Remove(r *Record) bool {
	old := b.seqs.Load()
	next := &sequences{
		before:  old.before,
		instead: old.instead,
		after:   old.after,
	}
	var removed bool
	switch r.Position() {
	case Before:
		next.before, removed = withoutCopy(old.before, r)
	case Instead:
		next.instead, removed = withoutCopy(old.instead, r)
	case After:
		next.after, removed = withoutCopy(old.after, r)
	}
	if !removed {
		return false
	}
	b.seqs.Store(next)
	return true
}

// Empty reports whether all three sequences are empty. An empty bucket
// must be destroyed by its owner; none are kept around.
func (b *Bucket) Empty() bool {
	s := b.seqs.Load()
	return len(s.before) == 0 && len(s.instead) == 0 && len(s.after) == 0
}

// Len returns the total number of records across the three sequences.
func (b *Bucket) Len() int {
	s := b.seqs.Load()
	return len(s.before) + len(s.instead) + len(s.after)
}

// Snapshot returns the current immutable sequences. The returned
// slices must not be modified.
func (b *Bucket) Snapshot() (before, instead, after []*Record) {
	s := b.seqs.Load()
	return s.before, s.instead, s.after
}

// appendCopy returns a fresh slice with r appended.
func appendCopy(s []*Record, r *Record) []*Record {
	next := make([]*Record, len(s)+1)
	copy(next, s)
	next[len(s)] = r
	return next
}

// withoutCopy returns a fresh slice with the first occurrence of r removed.
func withoutCopy(s []*Record, r *Record) ([]*Record, bool) {
	for i, cur := range s {
		if cur == r {
			next := make([]*Record, 0, len(s)-1)
			next = append(next, s[:i]...)
			next = append(next, s[i+1:]...)
			return next, true
		}
	}
	return s, false
}
