package bytecode

import "testing"

func TestPackOPV_RoundTrip(t *testing.T) {
	w := PackOPV(42, FlagImportant|FlagInherit, 1000)
	if w.Opcode() != 42 {
		t.Errorf("Opcode() = %d, want 42", w.Opcode())
	}
	if w.Value() != 1000 {
		t.Errorf("Value() = %d, want 1000", w.Value())
	}
	if !w.Important() {
		t.Errorf("expected Important() to be true")
	}
	if !w.Inherited() {
		t.Errorf("expected Inherited() to be true")
	}
}

func TestPackOPV_NoFlags(t *testing.T) {
	w := PackOPV(3, 0, 7)
	if w.Important() || w.Inherited() {
		t.Errorf("expected no flags set")
	}
}

func TestColor_ChannelAccessors(t *testing.T) {
	c := RGBA(0x11, 0x22, 0x33, 0x44)
	if c.A() != 0x11 || c.R() != 0x22 || c.G() != 0x33 || c.B() != 0x44 {
		t.Errorf("channel mismatch: got A=%x R=%x G=%x B=%x", c.A(), c.R(), c.G(), c.B())
	}
}

func TestBuffer_RewindDiscardsPartialDeclaration(t *testing.T) {
	buf := NewBuffer()
	buf.AppendOPV(PropOpcodeForTest, 0, 1)
	mark := buf.Len()
	buf.Append(Word(1))
	buf.Append(Word(2))
	buf.RewindTo(mark)
	if buf.Len() != mark {
		t.Fatalf("RewindTo did not truncate: Len()=%d, want %d", buf.Len(), mark)
	}
}

func TestBuffer_Inherit(t *testing.T) {
	buf := NewBuffer()
	buf.Inherit(PropOpcodeForTest, true)
	if buf.Len() != 1 {
		t.Fatalf("Inherit should append exactly one word, got %d", buf.Len())
	}
	w := buf.Words()[0]
	if !w.Inherited() || !w.Important() || w.Value() != 0 {
		t.Errorf("Inherit() word malformed: inherited=%v important=%v value=%d", w.Inherited(), w.Important(), w.Value())
	}
}

// PropOpcodeForTest stands in for a real property opcode; this
// package does not know about css/props's table.
const PropOpcodeForTest Opcode = 5
