package vm

// hart.go defines the Hart itself: the register file, CSR file, current privilege mode, and the
// bus it executes against, plus its reset-to-initial-conditions constructor.

import (
	"io"

	"rv64emu/internal/log"
)

// Hart is a single RISC-V hardware thread: its architectural state plus the bus it is wired to.
// This core models exactly one hart.
type Hart struct {
	Regs RegisterFile
	PC   Reg
	Mode Mode
	CSR  CSRFile
	Bus  *Bus

	log *log.Logger
}

// New creates a Hart with the documented reset state: PC at the start of RAM, sp (x2) at the
// top of RAM, Machine mode, paging disabled, and all CSRs zeroed. kernelImage is loaded at the
// base of RAM; diskImage backs the virtio device. The UART's RX side reads from in (nil for a
// headless hart, e.g. in tests) and its TX side writes to out (nil selects os.Stdout).
func New(kernelImage, diskImage []byte, in io.Reader, out io.Writer, logger *log.Logger) *Hart {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	ram := NewRAM(kernelImage)
	clint := NewCLINT()
	plic := NewPLIC()
	uart := NewUART(in, out)
	virtio := NewVirtIO(diskImage)
	bus := NewBus(ram, clint, plic, uart, virtio)

	h := &Hart{
		PC:   MemoryBase,
		Mode: Machine,
		Bus:  bus,
		log:  logger,
	}
	h.Regs[X2] = MemoryBase + MemorySize

	return h
}
