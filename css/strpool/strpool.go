// Package strpool implements the interned string pool described in
// the design notes §4.1: a process-wide singleton is explicitly
// rejected there in favor of a pool created by the caller and passed
// into each stylesheet, so that sharing (or not) is a choice made at
// construction time rather than ambient global state.
package strpool

import "strings"

// Handle identifies an interned string. Zero is reserved and never
// returned by Intern; it is used as "no handle" in bytecode payloads
// that carry an optional string (see bytecode.Word).
type Handle uint32

type entry struct {
	data     string
	foldHash uint64
	refs     uint32
}

// Pool is an explicitly-owned interning context. It is not safe for
// concurrent use by multiple goroutines; concurrent parsing of
// multiple stylesheets must use separate Pools, per §5 of the design
// notes, unless the caller adds its own locking around a shared one.
type Pool struct {
	entries []entry          // index 0 unused, so Handle 0 means "none"
	byExact map[string]Handle
	byFold  map[string][]Handle // case-folded key -> candidate handles sharing that fold
}

// New creates an empty interning context.
func New() *Pool {
	return &Pool{
		entries: make([]entry, 1, 64),
		byExact: make(map[string]Handle, 64),
		byFold:  make(map[string][]Handle, 64),
	}
}

// Intern returns the handle for s, creating a new entry if s has not
// been seen before. Interning is byte-exact: "Red" and "red" receive
// distinct handles, but EqualFold(a, b) reports them equal in O(1).
func (p *Pool) Intern(s string) Handle {
	if h, ok := p.byExact[s]; ok {
		p.entries[h].refs++
		return h
	}
	h := Handle(len(p.entries))
	p.entries = append(p.entries, entry{data: s, foldHash: foldHash(s)})
	p.byExact[s] = h
	p.entries[h].refs = 1

	fold := strings.ToLower(s)
	p.byFold[fold] = append(p.byFold[fold], h)
	return h
}

// InternBytes interns the byte slice as if by Intern(string(b)),
// without forcing an allocation when b is already a known string
// (the common case when re-tokenizing a stable buffer window).
func (p *Pool) InternBytes(b []byte) Handle {
	if h, ok := p.byExact[string(b)]; ok {
		p.entries[h].refs++
		return h
	}
	return p.Intern(string(b))
}

// Ref increments the refcount of h. It is a no-op for the zero handle.
func (p *Pool) Ref(h Handle) {
	if h == 0 {
		return
	}
	p.entries[h].refs++
}

// Unref decrements the refcount of h. The pool does not compact or
// reclaim handle slots on reaching zero (handles must remain stable
// for the lifetime of the pool); it exists so callers can track
// logical ownership the way the invariants in §3 require.
func (p *Pool) Unref(h Handle) {
	if h == 0 {
		return
	}
	if p.entries[h].refs > 0 {
		p.entries[h].refs--
	}
}

// RefCount reports the current refcount of h, for tests and diagnostics.
func (p *Pool) RefCount(h Handle) uint32 {
	if int(h) >= len(p.entries) {
		return 0
	}
	return p.entries[h].refs
}

// Data returns the original bytes for h.
func (p *Pool) Data(h Handle) string {
	if h == 0 || int(h) >= len(p.entries) {
		return ""
	}
	return p.entries[h].data
}

// Len returns the byte length of the string behind h.
func (p *Pool) Len(h Handle) int {
	return len(p.Data(h))
}

// EqualFold reports whether a and b denote case-insensitively equal
// strings. It is O(1): a fast hash-mismatch rejection followed by a
// definitive string comparison on the rare collision.
func (p *Pool) EqualFold(a, b Handle) bool {
	if a == b {
		return true
	}
	if a == 0 || b == 0 {
		return false
	}
	ea, eb := &p.entries[a], &p.entries[b]
	if ea.foldHash != eb.foldHash {
		return false
	}
	return strings.EqualFold(ea.data, eb.data)
}

// InternFold looks s up case-insensitively without interning it: it
// returns the handle of the lowercased form of s if that exact string
// was interned, otherwise the first-interned string that folds to the
// same lowercase form, if any. Each call lowercases s.
func (p *Pool) InternFold(s string) (Handle, bool) {
	fold := strings.ToLower(s)
	if h, ok := p.byExact[fold]; ok {
		return h, true
	}
	candidates := p.byFold[fold]
	if len(candidates) > 0 {
		return candidates[0], true
	}
	return 0, false
}

// foldHash is a cheap case-insensitive hash (FNV-1a over the
// lower-cased bytes) used to reject EqualFold mismatches without a
// full string comparison.
func foldHash(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h ^= uint64(c)
		h *= 1099511628211
	}
	return h
}
