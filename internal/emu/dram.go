package emu

// dram.go is the flat little-endian byte array backing main memory
// (§4.1). Addresses reach here already translated to DRAM-relative
// offsets by the Bus.

import "encoding/binary"

// DRAMBase is the fixed physical base address of DRAM (§3).
const DRAMBase Word = 0x8000_0000

// DefaultDRAMSize is the default size of the DRAM region; the CLI's
// -dram-size flag can override it (see internal/cli/cmd).
const DefaultDRAMSize = 128 * 1024 * 1024

// DRAM is little-endian flat memory. All accesses are bounds-checked
// against its length; there is no alignment checking at this layer
// (that is the MMU's and the instruction semantics' job).
type DRAM struct {
	mem []byte
}

// NewDRAM allocates a zeroed DRAM of the given size and copies the
// kernel image into its start.
func NewDRAM(size int, image []byte) *DRAM {
	d := &DRAM{mem: make([]byte, size)}
	n := copy(d.mem, image)
	_ = n

	return d
}

func (d *DRAM) Load8(off Word) (Word, *Trap) {
	if !d.inRange(off, 1) {
		return 0, &Trap{Cause: CauseLoadAccessFault, Tval: DRAMBase + off}
	}

	return Word(d.mem[off]), nil
}

func (d *DRAM) Load16(off Word) (Word, *Trap) {
	if !d.inRange(off, 2) {
		return 0, &Trap{Cause: CauseLoadAccessFault, Tval: DRAMBase + off}
	}

	return Word(binary.LittleEndian.Uint16(d.mem[off:])), nil
}

func (d *DRAM) Load32(off Word) (Word, *Trap) {
	if !d.inRange(off, 4) {
		return 0, &Trap{Cause: CauseLoadAccessFault, Tval: DRAMBase + off}
	}

	return Word(binary.LittleEndian.Uint32(d.mem[off:])), nil
}

// Load64 loads an 8-byte value, used only by the MMU's PTE fetch (§4.5
// step 2); the surrounding Trap cause is supplied by the caller because
// a failed PTE fetch is an access fault matching the walk's access
// type, not always LoadAccessFault.
func (d *DRAM) Load64(off Word) (uint64, bool) {
	if !d.inRange(off, 8) {
		return 0, false
	}

	return binary.LittleEndian.Uint64(d.mem[off:]), true
}

func (d *DRAM) Store8(off Word, v Word) *Trap {
	if !d.inRange(off, 1) {
		return &Trap{Cause: CauseStoreAMOAccessFault, Tval: DRAMBase + off}
	}

	d.mem[off] = byte(v)

	return nil
}

func (d *DRAM) Store16(off Word, v Word) *Trap {
	if !d.inRange(off, 2) {
		return &Trap{Cause: CauseStoreAMOAccessFault, Tval: DRAMBase + off}
	}

	binary.LittleEndian.PutUint16(d.mem[off:], uint16(v))

	return nil
}

func (d *DRAM) Store32(off Word, v Word) *Trap {
	if !d.inRange(off, 4) {
		return &Trap{Cause: CauseStoreAMOAccessFault, Tval: DRAMBase + off}
	}

	binary.LittleEndian.PutUint32(d.mem[off:], uint32(v))

	return nil
}

func (d *DRAM) inRange(off Word, width int) bool {
	return int64(off)+int64(width) <= int64(len(d.mem)) && off < Word(len(d.mem))
}

// Bytes returns the raw backing slice; used by the virtio DMA engine,
// never mutated outside Store*/the DMA path.
func (d *DRAM) Bytes() []byte {
	return d.mem
}
