package vm

// exec.go is the main fetch-decode-execute loop: opcode-group dispatch followed by RV64IMA's
// interrupt-poll-after-execute step.

import "rv64emu/internal/log"

// Opcode groups, bits 6:0 of the instruction word.
const (
	opLoad    uint32 = 0x03
	opOpImm   uint32 = 0x13
	opAUIPC   uint32 = 0x17
	opOpImm32 uint32 = 0x1b
	opStore   uint32 = 0x23
	opAMO     uint32 = 0x2f
	opOp      uint32 = 0x33
	opLUI     uint32 = 0x37
	opOp32    uint32 = 0x3b
	opBranch  uint32 = 0x63
	opJALR    uint32 = 0x67
	opJAL     uint32 = 0x6f
	opFence   uint32 = 0x0f
	opSystem  uint32 = 0x73
)

// Step runs a single fetch-decode-execute-interrupt cycle. It returns the exception that
// terminated the loop (non-nil only for fatal exceptions), or nil to continue.
func (h *Hart) Step() error {
	phys, err := h.Translate(h.PC, AccessInstruction)
	if err != nil {
		h.deliverException(err.(Exception), h.PC)
		return exceptionIfFatal(err)
	}

	raw, err := h.Bus.Load(phys, 32)
	if err != nil {
		h.deliverException(ExcInstructionAccessFault, h.PC)
		return ExcInstructionAccessFault
	}

	h.PC += 4

	w := rawInstruction(raw)

	if execErr := h.dispatch(w); execErr != nil {
		exc, ok := execErr.(Exception)
		if !ok {
			return execErr
		}

		h.deliverException(exc, h.PC-4)

		if exc.Fatal() {
			return exc
		}
	}

	h.Regs[X0] = 0

	h.pollDevices()

	if h.deliverInterrupt() {
		h.Regs[X0] = 0
	}

	return nil
}

func exceptionIfFatal(err error) error {
	if exc, ok := err.(Exception); ok && exc.Fatal() {
		return exc
	}

	return nil
}

// dispatch routes w to the handler for its opcode group.
func (h *Hart) dispatch(w rawInstruction) error {
	switch w.opcode() {
	case opLoad:
		return h.execLoad(w)
	case opOpImm:
		return h.execOpImm(w)
	case opAUIPC:
		return h.execAUIPC(w)
	case opOpImm32:
		return h.execOpImm32(w)
	case opStore:
		return h.execStore(w)
	case opAMO:
		return h.execAMO(w)
	case opOp:
		return h.execOp(w)
	case opLUI:
		return h.execLUI(w)
	case opOp32:
		return h.execOp32(w)
	case opBranch:
		return h.execBranch(w)
	case opJALR:
		return h.execJALR(w)
	case opJAL:
		return h.execJAL(w)
	case opFence:
		return h.execFence(w)
	case opSystem:
		return h.execSystem(w)
	default:
		return ExcIllegalInstruction
	}
}

// pollDevices folds the CLINT tick and the UART/VirtIO one-shot interrupt flags into mip, per
// the external-interrupt plumbing: UART takes priority over VirtIO when both are pending in
// the same step, and VirtIO's disk_access runs as part of the poll rather than at notify time
// only for the interrupt-visible side effects.
func (h *Hart) pollDevices() {
	if h.Bus.Tick() {
		h.CSR.RawWrite(CSRMip, h.CSR.RawRead(CSRMip)|ipMTIP)
	}

	h.Bus.PollInterrupts(&h.CSR)
}

// Run steps the hart until a fatal exception terminates it, logging the terminating condition.
func (h *Hart) Run() error {
	for {
		if err := h.Step(); err != nil {
			h.log.Error("hart halted", log.Any("cause", err))
			return err
		}
	}
}
