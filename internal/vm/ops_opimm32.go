package vm

// ops_opimm32.go implements the 0x1b OP-IMM-32 opcode: ADDIW, SLLIW, SRLIW/SRAIW. All results
// are computed on the low 32 bits and sign-extended to 64.

func (h *Hart) execOpImm32(w rawInstruction) error {
	rs1 := uint32(h.Regs[w.rs1()])
	imm := int32(w.immI())

	var result int32

	switch w.funct3() {
	case 0b000: // ADDIW
		result = int32(rs1) + imm
	case 0b001: // SLLIW
		result = int32(rs1 << w.shamt5())
	case 0b101: // SRLIW/SRAIW, selected by funct7
		switch w.funct7() {
		case 0b0000000:
			result = int32(rs1 >> w.shamt5())
		case 0b0100000:
			result = int32(rs1) >> w.shamt5()
		default:
			return ExcIllegalInstruction
		}
	default:
		return ExcIllegalInstruction
	}

	h.Regs[w.rd()] = Reg(int64(result))

	return nil
}
