package emu

// mem.go combines MMU translation with the Bus dispatch, the one path
// instruction semantics use to touch memory.

func (h *Hart) ReadMem(va Word, size int) (Word, *Trap) {
	pa, trap := h.Translate(va, AccessLoad)
	if trap != nil {
		return 0, trap
	}

	v, trap := h.Bus.Load(pa, size, AccessLoad)
	if trap != nil {
		return 0, trap
	}

	return Word(v), nil
}

func (h *Hart) WriteMem(va Word, size int, val Word) *Trap {
	pa, trap := h.Translate(va, AccessStore)
	if trap != nil {
		return trap
	}

	return h.Bus.Store(pa, size, uint64(val))
}
