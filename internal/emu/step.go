package emu

// step.go is the orchestration loop of §4.8: translate the PC, fetch,
// advance the PC, execute, take any raised trap, then poll for a
// pending interrupt.

// Step executes exactly one instruction. It never panics on an
// architectural trap — Exec and Translate return *Trap values that
// Step folds into the trap unit itself, per the "Trap as control flow"
// redesign (§9).
func (h *Hart) Step() {
	if h.Halted {
		return
	}

	h.Bus.CLINT.Tick()

	fetchPC := h.PC

	pa, trap := h.Translate(h.PC, AccessInstruction)
	if trap != nil {
		h.raise(trap, fetchPC)
		return
	}

	raw, trap := h.Bus.Load(pa, 32, AccessInstruction)
	if trap != nil {
		h.raise(trap, fetchPC)
		return
	}

	insn := Word(raw)
	h.PC += 4

	if trap := h.Exec(insn); trap != nil {
		h.raise(trap, h.PC-4)

		if h.Halted {
			return
		}
	}

	if irq := h.PendingInterrupt(); irq != nil {
		h.raise(irq, h.PC)
	}
}

// raise delivers a trap through the trap unit, updating PC/mode/CSRs,
// and halts the hart if the trap is fatal. epc is the address of the
// instruction blamed for the trap; TakeTrap subtracts nothing from it
// itself, since fetch-time faults (PC not yet advanced) and
// execute-time faults (PC already advanced) need different values.
func (h *Hart) raise(t *Trap, epc Word) {
	if t.IsFatal() {
		h.Halted = true
		h.HaltCause = t

		return
	}

	h.PC = h.TakeTrap(t, epc)
}
