package emu

import "testing"

func TestUARTRxRoundTrip(t *testing.T) {
	t.Parallel()

	u := NewUART()
	u.PushRX('Q')

	v, trap := u.load(UartBase, 8, AccessLoad)
	if trap != nil {
		t.Fatalf("load: %v", trap)
	}

	if v != uint64('Q') {
		t.Errorf("rhr = %c, want Q", v)
	}
}

func TestUARTLSRAlwaysReportsTXEmpty(t *testing.T) {
	t.Parallel()

	u := NewUART()

	v, _ := u.load(UartBase+5, 8, AccessLoad)
	if v&uint64(lsrTXEmpty) == 0 {
		t.Error("LSR must always report TX-empty")
	}
}

func TestUARTTransmitCallsListener(t *testing.T) {
	t.Parallel()

	u := NewUART()

	var got []byte
	u.OnTransmit(func(b byte) { got = append(got, b) })

	if trap := u.store(UartBase, 8, uint64('h')); trap != nil {
		t.Fatalf("store: %v", trap)
	}

	if trap := u.store(UartBase, 8, uint64('i')); trap != nil {
		t.Fatalf("store: %v", trap)
	}

	if string(got) != "hi" {
		t.Errorf("transmitted = %q, want %q", got, "hi")
	}
}

// TestUARTIsInterruptingSingleShot is the §9 open-question decision:
// IsInterrupting returns the current flag and clears it.
func TestUARTIsInterruptingSingleShot(t *testing.T) {
	t.Parallel()

	u := NewUART()
	u.PushRX('x')

	if !u.IsInterrupting() {
		t.Fatal("want interrupting after PushRX")
	}

	if u.IsInterrupting() {
		t.Error("IsInterrupting must clear the flag on read")
	}
}

func TestUARTWrongSizeFaults(t *testing.T) {
	t.Parallel()

	u := NewUART()

	if _, trap := u.load(UartBase, 16, AccessLoad); trap == nil {
		t.Error("16-bit UART load must fault")
	}
}
