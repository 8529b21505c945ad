package emu

import "testing"

func TestPLICRegisters(t *testing.T) {
	t.Parallel()

	p := NewPLIC()

	regs := []Word{plicPendingOffset, plicEnableOffset, plicPriorityOffset, plicClaimOffset}

	for _, off := range regs {
		if trap := p.store(PlicBase+off, 32, 0x2a); trap != nil {
			t.Fatalf("store @+%#x: %v", off, trap)
		}

		v, trap := p.load(PlicBase+off, 32, AccessLoad)
		if trap != nil {
			t.Fatalf("load @+%#x: %v", off, trap)
		}

		if v != 0x2a {
			t.Errorf("@+%#x = %#x, want 0x2a", off, v)
		}
	}
}

func TestPLICWrongSizeFaults(t *testing.T) {
	t.Parallel()

	p := NewPLIC()

	if _, trap := p.load(PlicBase+plicPendingOffset, 8, AccessLoad); trap == nil {
		t.Error("8-bit PLIC load must fault")
	}
}

func TestPLICStore32BypassesSizeCheck(t *testing.T) {
	t.Parallel()

	p := NewPLIC()
	p.store32(plicSclaimOffset, 7)

	if p.claim != 7 {
		t.Errorf("claim = %d, want 7", p.claim)
	}
}
