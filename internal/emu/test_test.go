package emu

import "testing"

// newHart builds a Hart with the given DRAM size and an empty kernel
// and disk image, for tests that drive individual components directly
// rather than through Step.
func newHart(t *testing.T, dramSize int) *Hart {
	t.Helper()
	return NewHart(dramSize, nil, nil)
}

// Instruction encoders used only by tests, to build raw instruction
// words without hand-computing bit layouts in every test case.

func encodeR(opcode, funct3, funct7 Word, rd, rs1, rs2 uint32) Word {
	return opcode | Word(rd)<<7 | funct3<<12 | Word(rs1)<<15 | Word(rs2)<<20 | funct7<<25
}

func encodeI(opcode, funct3 Word, rd, rs1 uint32, imm int32) Word {
	return opcode | Word(rd)<<7 | funct3<<12 | Word(rs1)<<15 | (Word(uint32(imm)&0xfff) << 20)
}

func encodeS(opcode, funct3 Word, rs1, rs2 uint32, imm int32) Word {
	u := uint32(imm)
	return opcode | Word(u&0x1f)<<7 | funct3<<12 | Word(rs1)<<15 | Word(rs2)<<20 | Word((u>>5)&0x7f)<<25
}

func encodeB(opcode, funct3 Word, rs1, rs2 uint32, imm int32) Word {
	u := uint32(imm)
	return opcode |
		Word((u>>11)&1)<<7 |
		Word((u>>1)&0xf)<<8 |
		funct3<<12 |
		Word(rs1)<<15 |
		Word(rs2)<<20 |
		Word((u>>5)&0x3f)<<25 |
		Word((u>>12)&1)<<31
}

func encodeU(opcode Word, rd uint32, imm uint32) Word {
	return opcode | Word(rd)<<7 | Word(imm&0xf_ffff)<<12
}

func encodeJ(opcode Word, rd uint32, imm int32) Word {
	u := uint32(imm)
	return opcode |
		Word(rd)<<7 |
		Word((u>>12)&0xff)<<12 |
		Word((u>>11)&1)<<20 |
		Word((u>>1)&0x3ff)<<21 |
		Word((u>>20)&1)<<31
}
