package strpool

import "testing"

func TestIntern_SameStringSameHandle(t *testing.T) {
	p := New()
	a := p.Intern("color")
	b := p.Intern("color")
	if a != b {
		t.Errorf("expected same handle for repeated intern, got %d and %d", a, b)
	}
}

func TestIntern_CaseSensitiveDistinctHandles(t *testing.T) {
	p := New()
	a := p.Intern("Red")
	b := p.Intern("red")
	if a == b {
		t.Errorf("expected distinct handles for differently-cased strings")
	}
	if !p.EqualFold(a, b) {
		t.Errorf("expected EqualFold(Red, red) to be true")
	}
}

func TestEqualFold_DifferentStrings(t *testing.T) {
	p := New()
	a := p.Intern("red")
	b := p.Intern("blue")
	if p.EqualFold(a, b) {
		t.Errorf("expected EqualFold(red, blue) to be false")
	}
}

func TestData_RoundTrip(t *testing.T) {
	p := New()
	h := p.Intern("background-color")
	if got := p.Data(h); got != "background-color" {
		t.Errorf("Data() = %q, want %q", got, "background-color")
	}
}

func TestData_ZeroHandle(t *testing.T) {
	p := New()
	if got := p.Data(0); got != "" {
		t.Errorf("Data(0) = %q, want empty", got)
	}
}

func TestRefCounting(t *testing.T) {
	p := New()
	h := p.Intern("em")
	if rc := p.RefCount(h); rc != 1 {
		t.Fatalf("RefCount after first intern = %d, want 1", rc)
	}
	p.Ref(h)
	if rc := p.RefCount(h); rc != 2 {
		t.Fatalf("RefCount after Ref = %d, want 2", rc)
	}
	p.Unref(h)
	p.Unref(h)
	if rc := p.RefCount(h); rc != 0 {
		t.Fatalf("RefCount after two Unref = %d, want 0", rc)
	}
}

func TestInternFold(t *testing.T) {
	p := New()
	p.Intern("Solid")
	h, ok := p.InternFold("SOLID")
	if !ok {
		t.Fatalf("InternFold did not find a candidate for SOLID")
	}
	if p.Data(h) != "Solid" {
		t.Errorf("InternFold resolved to %q, want %q", p.Data(h), "Solid")
	}
}

func TestInternBytes_MatchesIntern(t *testing.T) {
	p := New()
	a := p.Intern("px")
	b := p.InternBytes([]byte("px"))
	if a != b {
		t.Errorf("InternBytes produced a different handle than Intern for the same text")
	}
}
