package prom

import "unsafe"

// Arena is a bump allocator for short-lived, request-scoped strings. Every
// generated metric/label/line is interned into one growing []byte instead
// of allocating a separate string per fragment, so rendering a scrape is
// one concatenation over already-built pieces.
//
// An Arena is not safe for concurrent use; each scrape request should own
// its own Arena.
type Arena struct {
	buf []byte
}

// NewArena returns an Arena pre-sized to hold roughly capacity bytes
// before its first reallocation.
func NewArena(capacity int) *Arena {
	return &Arena{buf: make([]byte, 0, capacity)}
}

// Intern copies s into the arena and returns a string backed by the
// arena's buffer. The returned string is valid only as long as the Arena
// itself is alive and not Reset.
func (a *Arena) Intern(s string) string {
	start := len(a.buf)
	a.buf = append(a.buf, s...)
	return a.slice(start, len(a.buf))
}

// Concat interns the concatenation of parts as a single contiguous string.
func (a *Arena) Concat(parts ...string) string {
	start := len(a.buf)
	for _, p := range parts {
		a.buf = append(a.buf, p...)
	}
	return a.slice(start, len(a.buf))
}

// Reset discards all interned strings and reuses the underlying storage.
// Any string previously returned by Intern/Concat must not be used after
// Reset.
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
}

// slice hands back a zero-copy string view over a[start:end]. This is
// safe only because Arena strings never outlive the Arena without an
// explicit copy, and the backing array is never shrunk without a Reset
// that callers are required to treat as invalidating every prior view.
func (a *Arena) slice(start, end int) string {
	if start == end {
		return ""
	}
	b := a.buf[start:end:end]
	return unsafe.String(unsafe.SliceData(b), len(b))
}
