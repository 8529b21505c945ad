package emu

// exec_amo.go implements the A-extension word-width atomic
// instructions. This is a single-hart emulator, so every AMO is
// sequentially consistent by construction (§4.10); LR/SC just tracks
// the most recent reservation address rather than enforcing any real
// exclusivity.

const (
	amoFuncLR      = 0x02
	amoFuncSC      = 0x03
	amoFuncSwap    = 0x01
	amoFuncAdd     = 0x00
	amoFuncXor     = 0x04
	amoFuncOr      = 0x08
	amoFuncAnd     = 0x0C
	amoFuncMin     = 0x10
	amoFuncMax     = 0x14
	amoFuncMinU    = 0x18
	amoFuncMaxU    = 0x1C
)

func (h *Hart) execAmo(f fields) *Trap {
	if f.funct3 != 0x2 { // amo*.w only; no 64-bit AMOs on this hart.
		return &Trap{Cause: CauseIllegalInstruction}
	}

	addr := h.Get(f.rs1)
	funct5 := f.funct7 >> 2

	switch funct5 {
	case amoFuncLR:
		v, trap := h.ReadMem(addr, 32)
		if trap != nil {
			return trap
		}

		h.reservation = addr
		h.reserved = true
		h.Set(f.rd, v)

		return nil
	case amoFuncSC:
		if h.reserved && h.reservation == addr {
			h.reserved = false

			if trap := h.WriteMem(addr, 32, h.Get(f.rs2)); trap != nil {
				return trap
			}

			h.Set(f.rd, 0)
		} else {
			h.Set(f.rd, 1)
		}

		return nil
	}

	old, trap := h.ReadMem(addr, 32)
	if trap != nil {
		return trap
	}

	rs2 := h.Get(f.rs2)

	var result Word

	switch funct5 {
	case amoFuncSwap:
		result = rs2
	case amoFuncAdd:
		result = old + rs2
	case amoFuncXor:
		result = old ^ rs2
	case amoFuncOr:
		result = old | rs2
	case amoFuncAnd:
		result = old & rs2
	case amoFuncMin:
		if int32(old) < int32(rs2) {
			result = old
		} else {
			result = rs2
		}
	case amoFuncMax:
		if int32(old) > int32(rs2) {
			result = old
		} else {
			result = rs2
		}
	case amoFuncMinU:
		if old < rs2 {
			result = old
		} else {
			result = rs2
		}
	case amoFuncMaxU:
		if old > rs2 {
			result = old
		} else {
			result = rs2
		}
	default:
		return &Trap{Cause: CauseIllegalInstruction}
	}

	if trap := h.WriteMem(addr, 32, result); trap != nil {
		return trap
	}

	h.Set(f.rd, old)

	return nil
}
