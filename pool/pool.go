// Package pool provides bounded object recycling: a generic free list for a
// single type, and a type-keyed Recycler the container consults before
// allocating fresh zero-dependency instances. Recycling is purely a
// construction-cost optimization; a miss is identical to building fresh.
package pool

import (
	"reflect"
	"sync"
)

// DefaultCapacity bounds each per-type free list when no capacity is given.
const DefaultCapacity = 64

// Stats counts recycler traffic. Hits are acquisitions served from the free
// list; misses fell through to fresh construction.
type Stats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Released uint64 `json:"released"`
	Size     int    `json:"size"`
}

// Pool is a bounded LIFO free list for values of a single type.
type Pool[T any] struct {
	mu    sync.Mutex
	items []T
	cap   int
	fresh func() T

	hits, misses, released uint64
}

// New creates a Pool holding at most capacity items. fresh builds a new
// value on a miss; it must not be nil.
func New[T any](capacity int, fresh func() T) *Pool[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pool[T]{cap: capacity, fresh: fresh}
}

// Acquire returns a pooled value, or a fresh one when the pool is empty.
func (p *Pool[T]) Acquire() T {
	p.mu.Lock()
	if n := len(p.items); n > 0 {
		v := p.items[n-1]
		p.items = p.items[:n-1]
		p.hits++
		p.mu.Unlock()
		return v
	}
	p.misses++
	p.mu.Unlock()
	return p.fresh()
}

// Release returns a value to the pool. Values beyond capacity are dropped.
func (p *Pool[T]) Release(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
	if len(p.items) < p.cap {
		p.items = append(p.items, v)
	}
}

// Len returns the number of pooled items.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Stats returns a snapshot of pool traffic.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Hits: p.hits, Misses: p.misses, Released: p.released, Size: len(p.items)}
}

// Recycler keeps per-type free lists of pointer-to-struct values. It
// satisfies the container's Recycler interface.
type Recycler struct {
	mu   sync.Mutex
	free map[reflect.Type][]reflect.Value
	cap  int

	hits, misses, released uint64
}

// NewRecycler creates a Recycler holding at most capacity values per type.
func NewRecycler(capacity int) *Recycler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recycler{
		free: make(map[reflect.Type][]reflect.Value),
		cap:  capacity,
	}
}

// Acquire returns a recycled instance of t (a pointer-to-struct type) and
// true, or (nil, false) on a miss.
func (r *Recycler) Acquire(t reflect.Type) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.free[t]
	if n := len(list); n > 0 {
		v := list[n-1]
		r.free[t] = list[:n-1]
		r.hits++
		return v.Interface(), true
	}
	r.misses++
	return nil, false
}

// Release returns an instance to its type's free list. The pointed-to struct
// is zeroed first so a recycled instance is indistinguishable from a fresh
// allocation. Non-pointer and nil values are ignored.
func (r *Recycler) Release(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv.Elem().Set(reflect.Zero(rv.Type().Elem()))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.released++
	t := rv.Type()
	if len(r.free[t]) < r.cap {
		r.free[t] = append(r.free[t], rv)
	}
}

// Stats returns a snapshot of recycler traffic across all types.
func (r *Recycler) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	size := 0
	for _, list := range r.free {
		size += len(list)
	}
	return Stats{Hits: r.hits, Misses: r.misses, Released: r.released, Size: size}
}
