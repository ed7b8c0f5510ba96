package vm

// trap.go implements exception and interrupt entry/exit: delegation, privilege switching, and
// status-bit stacking across M/S-mode.

import "fmt"

// Exception is a synchronous, architectural cause for a trap. It implements error so it can be
// returned from Translate, Step, the bus and device accessors, and the instruction handlers
// without a panic.
type Exception uint64

// Exception causes, in the order the RISC-V privileged spec assigns them (0..15).
const (
	ExcInstructionAddressMisaligned Exception = 0
	ExcInstructionAccessFault       Exception = 1
	ExcIllegalInstruction           Exception = 2
	ExcBreakpoint                   Exception = 3
	ExcLoadAddressMisaligned        Exception = 4
	ExcLoadAccessFault              Exception = 5
	ExcStoreAMOAddressMisaligned    Exception = 6
	ExcStoreAMOAccessFault          Exception = 7
	ExcEnvironmentCallFromUMode     Exception = 8
	ExcEnvironmentCallFromSMode     Exception = 9
	ExcEnvironmentCallFromMMode     Exception = 11
	ExcInstructionPageFault         Exception = 12
	ExcLoadPageFault                Exception = 13
	ExcStoreAMOPageFault            Exception = 15
)

var exceptionNames = map[Exception]string{
	ExcInstructionAddressMisaligned: "instruction address misaligned",
	ExcInstructionAccessFault:       "instruction access fault",
	ExcIllegalInstruction:           "illegal instruction",
	ExcBreakpoint:                   "breakpoint",
	ExcLoadAddressMisaligned:        "load address misaligned",
	ExcLoadAccessFault:              "load access fault",
	ExcStoreAMOAddressMisaligned:    "store/amo address misaligned",
	ExcStoreAMOAccessFault:          "store/amo access fault",
	ExcEnvironmentCallFromUMode:     "ecall from U-mode",
	ExcEnvironmentCallFromSMode:     "ecall from S-mode",
	ExcEnvironmentCallFromMMode:     "ecall from M-mode",
	ExcInstructionPageFault:         "instruction page fault",
	ExcLoadPageFault:                "load page fault",
	ExcStoreAMOPageFault:            "store/amo page fault",
}

func (e Exception) Error() string {
	if name, ok := exceptionNames[e]; ok {
		return fmt.Sprintf("exception %d: %s", uint64(e), name)
	}

	return fmt.Sprintf("exception %d", uint64(e))
}

// Fatal reports whether the exception terminates the main loop after delivery.
func (e Exception) Fatal() bool {
	switch e {
	case ExcInstructionAddressMisaligned, ExcInstructionAccessFault, ExcLoadAccessFault,
		ExcStoreAMOAddressMisaligned, ExcStoreAMOAccessFault:
		return true
	default:
		return false
	}
}

// Interrupt causes (architectural, 0..15 — the bit-63 tag is added at delivery time, not stored
// here).
const (
	IntSupervisorSoftware Reg = 1
	IntMachineSoftware    Reg = 3
	IntSupervisorTimer    Reg = 5
	IntMachineTimer       Reg = 7
	IntSupervisorExternal Reg = 9
	IntMachineExternal    Reg = 11
)

// interruptPriority lists interrupt causes in their selection order: MEI, MSI, MTI, SEI,
// SSI, STI. The first pending and enabled interrupt in this order is taken.
var interruptPriority = []Reg{
	IntMachineExternal, IntMachineSoftware, IntMachineTimer,
	IntSupervisorExternal, IntSupervisorSoftware, IntSupervisorTimer,
}

// deliverException delivers an exception: switching privilege mode, saving the faulting PC, and
// vectoring to the appropriate trap handler. epc is the faulting instruction's address: callers
// pass the pre-increment PC for faults raised during fetch and the post-increment PC minus 4 for
// faults raised during execute.
//
// Exception delegation tests medeleg against the architectural exception code (0..15), which
// never carries the interrupt tag, so the shift is always well defined here. Interrupt delegation
// is handled separately in deliverInterrupt: shifting mideleg by a cause already OR'd with
// (1<<63) would be unsound for a 64-bit shift, so deliverInterrupt checks mideleg against the
// untagged 0..15 cause instead.
func (h *Hart) deliverException(exc Exception, epc Reg) {
	cause := Reg(exc)
	prevMode := h.Mode

	if h.Mode <= Supervisor && (h.CSR.RawRead(CSRMedeleg)>>cause)&1 != 0 {
		h.trapToSupervisor(cause, epc, 0, prevMode)
	} else {
		h.trapToMachine(cause, epc, 0, prevMode)
	}
}

// deliverInterrupt delivers the highest-priority pending, enabled interrupt, if any. It is called
// once per step, after execute, never re-entrantly during fetch/execute (those raise exceptions).
func (h *Hart) deliverInterrupt() bool {
	cause, ok := h.pendingInterrupt()
	if !ok {
		return false
	}

	h.clearPendingBit(cause)

	epc := h.PC
	taggedCause := cause | (1 << 63)
	prevMode := h.Mode

	if h.Mode <= Supervisor && (h.CSR.RawRead(CSRMideleg)>>cause)&1 != 0 {
		h.trapToSupervisor(taggedCause, epc, cause, prevMode)
	} else {
		h.trapToMachine(taggedCause, epc, cause, prevMode)
	}

	return true
}

// pendingInterrupt returns the architectural (untagged) cause of the highest-priority pending,
// enabled interrupt and true, or 0 and false if none is pending.
func (h *Hart) pendingInterrupt() (Reg, bool) {
	mie := h.CSR.RawRead(CSRMie)
	mip := h.CSR.RawRead(CSRMip)

	for _, cause := range interruptPriority {
		bit := Reg(1) << cause
		if mie&mip&bit != 0 {
			return cause, true
		}
	}

	return 0, false
}

func (h *Hart) clearPendingBit(cause Reg) {
	mip := h.CSR.RawRead(CSRMip)
	h.CSR.RawWrite(CSRMip, mip&^(Reg(1)<<cause))
}

// trapToSupervisor implements Supervisor-mode trap delivery for both exceptions and interrupts;
// vector selects direct or vectored mode when stvec's low bit is set and cause carries the
// interrupt tag.
func (h *Hart) trapToSupervisor(cause Reg, epc Reg, vectorCause Reg, prevMode Mode) {
	h.Mode = Supervisor

	stvec := h.CSR.RawRead(CSRStvec)

	if stvec&1 != 0 && cause&(1<<63) != 0 {
		h.PC = (stvec &^ 1) + 4*vectorCause
	} else {
		h.PC = stvec &^ 1
	}

	h.CSR.RawWrite(CSRSepc, epc&^1)
	h.CSR.RawWrite(CSRScause, cause)
	h.CSR.RawWrite(CSRStval, 0)

	status := h.CSR.RawRead(CSRMstatus)
	if status&statusSIE != 0 {
		status |= statusSPIE
	} else {
		status &^= statusSPIE
	}

	status &^= statusSIE

	if prevMode == User {
		status &^= statusSPP
	} else {
		status |= statusSPP
	}

	h.CSR.RawWrite(CSRMstatus, status)
}

// trapToMachine implements Machine-mode trap delivery, symmetric with trapToSupervisor using
// m-prefixed CSRs and the two-bit MPP field.
func (h *Hart) trapToMachine(cause Reg, epc Reg, vectorCause Reg, prevMode Mode) {
	h.Mode = Machine

	mtvec := h.CSR.RawRead(CSRMtvec)

	if mtvec&1 != 0 && cause&(1<<63) != 0 {
		h.PC = (mtvec &^ 1) + 4*vectorCause
	} else {
		h.PC = mtvec &^ 1
	}

	h.CSR.RawWrite(CSRMepc, epc&^1)
	h.CSR.RawWrite(CSRMcause, cause)
	h.CSR.RawWrite(CSRMtval, 0)

	status := h.CSR.RawRead(CSRMstatus)
	if status&statusMIE != 0 {
		status |= statusMPIE
	} else {
		status &^= statusMPIE
	}

	status &^= statusMIE
	status &^= statusMPPMask
	status |= Reg(prevMode&0b11) << statusMPPShift

	h.CSR.RawWrite(CSRMstatus, status)
}

// sret implements the SRET instruction: restore pc/mode/SIE from sepc/SPP/SPIE.
func (h *Hart) sret() {
	status := h.CSR.RawRead(CSRMstatus)

	if status&statusSPP != 0 {
		h.Mode = Supervisor
	} else {
		h.Mode = User
	}

	if status&statusSPIE != 0 {
		status |= statusSIE
	} else {
		status &^= statusSIE
	}

	status |= statusSPIE
	status &^= statusSPP

	h.CSR.RawWrite(CSRMstatus, status)
	h.PC = h.CSR.RawRead(CSRSepc)
}

// mret implements the MRET instruction: restore pc/mode/MIE from mepc/MPP/MPIE.
func (h *Hart) mret() {
	status := h.CSR.RawRead(CSRMstatus)
	mpp := Mode((status & statusMPPMask) >> statusMPPShift)

	h.Mode = mpp

	if status&statusMPIE != 0 {
		status |= statusMIE
	} else {
		status &^= statusMIE
	}

	status |= statusMPIE
	status &^= statusMPPMask
	status |= Reg(User) << statusMPPShift

	h.CSR.RawWrite(CSRMstatus, status)
	h.PC = h.CSR.RawRead(CSRMepc)
}
