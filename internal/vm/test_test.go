package vm

import (
	"bytes"
	"testing"

	"rv64emu/internal/log"
)

// NewTestHart creates a headless Hart (no console attached) wrapping a fresh RAM image and a
// logger that writes to buf.
func NewTestHart(t *testing.T, image []byte) (*Hart, *bytes.Buffer) {
	t.Helper()

	buf := new(bytes.Buffer)
	logger := log.NewFormattedLogger(buf)

	return New(image, nil, nil, buf, logger), buf
}

// asm assembles a tiny instruction sequence (already-encoded words) into bytes, little-endian,
// for use as a test image.
func asm(words ...uint32) []byte {
	out := make([]byte, 0, len(words)*4)

	for _, w := range words {
		out = append(out,
			byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}

	return out
}

// Instruction encoders used to build test images without hand-computed hex.

func encodeR(opcode uint32, rd GPR, funct3 uint32, rs1, rs2 GPR, funct7 uint32) uint32 {
	return opcode | uint32(rd)<<7 | funct3<<12 | uint32(rs1)<<15 | uint32(rs2)<<20 | funct7<<25
}

func encodeI(opcode uint32, rd GPR, funct3 uint32, rs1 GPR, imm int32) uint32 {
	return opcode | uint32(rd)<<7 | funct3<<12 | uint32(rs1)<<15 | (uint32(imm)&0xfff)<<20
}

func encodeS(opcode uint32, funct3 uint32, rs1, rs2 GPR, imm int32) uint32 {
	u := uint32(imm)
	return opcode | (u&0x1f)<<7 | funct3<<12 | uint32(rs1)<<15 | uint32(rs2)<<20 | ((u>>5)&0x7f)<<25
}

func encodeU(opcode uint32, rd GPR, imm int32) uint32 {
	return opcode | uint32(rd)<<7 | (uint32(imm) &^ 0xfff)
}

func encodeB(opcode uint32, funct3 uint32, rs1, rs2 GPR, imm int32) uint32 {
	u := uint32(imm)
	return opcode |
		((u>>11)&1)<<7 | ((u>>1)&0xf)<<8 | funct3<<12 |
		uint32(rs1)<<15 | uint32(rs2)<<20 |
		((u>>5)&0x3f)<<25 | ((u>>12)&1)<<31
}

func encodeJ(opcode uint32, rd GPR, imm int32) uint32 {
	u := uint32(imm)
	return opcode | uint32(rd)<<7 |
		((u>>12)&0xff)<<12 | ((u>>11)&1)<<20 | ((u>>1)&0x3ff)<<21 | ((u>>20)&1)<<31
}
