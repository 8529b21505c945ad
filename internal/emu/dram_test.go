package emu

import "testing"

func TestDRAMRoundTrip(t *testing.T) {
	t.Parallel()

	d := NewDRAM(8192, nil)

	t.Run("32-bit", func(t *testing.T) {
		if trap := d.Store32(0x1000, 0xDEADBEEF); trap != nil {
			t.Fatalf("store32: %v", trap)
		}

		v, trap := d.Load32(0x1000)
		if trap != nil {
			t.Fatalf("load32: %v", trap)
		}

		if v != 0xDEADBEEF {
			t.Errorf("load32 = %#x, want 0xdeadbeef", v)
		}
	})

	t.Run("8-bit view of a 32-bit store", func(t *testing.T) {
		_ = d.Store32(0x1000, 0xDEADBEEF)

		v, _ := d.Load8(0x1000)
		if v != 0xEF {
			t.Errorf("load8 = %#x, want 0xef", v)
		}
	})

	t.Run("16-bit view of a 32-bit store", func(t *testing.T) {
		_ = d.Store32(0x1000, 0xDEADBEEF)

		v, _ := d.Load16(0x1000)
		if v != 0xBEEF {
			t.Errorf("load16 = %#x, want 0xbeef", v)
		}
	})
}

func TestDRAMOutOfRange(t *testing.T) {
	t.Parallel()

	d := NewDRAM(16, nil)

	if _, trap := d.Load32(16); trap == nil {
		t.Error("load32 at end of DRAM: want access fault, got nil")
	} else if trap.Cause != CauseLoadAccessFault {
		t.Errorf("cause = %v, want CauseLoadAccessFault", trap.Cause)
	}

	if trap := d.Store8(16, 1); trap == nil {
		t.Error("store8 at end of DRAM: want access fault, got nil")
	} else if trap.Cause != CauseStoreAMOAccessFault {
		t.Errorf("cause = %v, want CauseStoreAMOAccessFault", trap.Cause)
	}

	if _, ok := d.Load64(16); ok {
		t.Error("load64 past end of DRAM: want ok=false")
	}
}

func TestDRAMKernelImage(t *testing.T) {
	t.Parallel()

	image := []byte{0x01, 0x02, 0x03, 0x04}
	d := NewDRAM(16, image)

	v, _ := d.Load32(0)
	if v != 0x04030201 {
		t.Errorf("kernel bytes not copied little-endian: got %#x", v)
	}
}
