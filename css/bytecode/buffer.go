package bytecode

// Buffer is the per-rule growable style buffer of design notes §4.7.
// It is append-only during parsing except for the rewind-on-error
// path (invariant 7 of the design notes), which is just truncation to
// a previously saved length — there is no manual pointer bookkeeping
// to get wrong, unlike the source's hand-rolled C arrays.
type Buffer struct {
	words []Word
}

// NewBuffer creates an empty style buffer.
func NewBuffer() *Buffer {
	return &Buffer{words: make([]Word, 0, 8)}
}

// Len reports the current word count — also the value to save before
// starting a declaration and to RewindTo on failure.
func (b *Buffer) Len() int { return len(b.words) }

// Append adds one payload word.
func (b *Buffer) Append(w Word) { b.words = append(b.words, w) }

// VAppend adds several words in order.
func (b *Buffer) VAppend(ws ...Word) { b.words = append(b.words, ws...) }

// AppendOPV appends a fully-formed OPV header.
func (b *Buffer) AppendOPV(op Opcode, flags Flags, value uint16) {
	b.Append(PackOPV(op, flags, value))
}

// Inherit appends an `inherit` OPV for op: the inherit flag is set,
// the value tag is 0, and — per invariant 4 — no payload follows.
func (b *Buffer) Inherit(op Opcode, important bool) {
	flags := FlagInherit
	if important {
		flags |= FlagImportant
	}
	b.AppendOPV(op, flags, 0)
}

// RewindTo truncates the buffer back to a previously observed Len(),
// discarding everything a failed declaration wrote.
func (b *Buffer) RewindTo(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(b.words) {
		return
	}
	b.words = b.words[:n]
}

// Words exposes the finalized word slice (read-only use expected —
// returned directly since Buffer itself becomes immutable once its
// owning rule closes, per §4.8's "finalized... size frozen").
func (b *Buffer) Words() []Word { return b.words }
