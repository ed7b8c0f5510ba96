package vm

// bus.go is the physical address space: a fixed set of MMIO windows dispatched by address range.

// Bus routes physical loads/stores to RAM or one of the fixed MMIO device windows.
type Bus struct {
	ram    *RAM
	clint  *CLINT
	plic   *PLIC
	uart   *UART
	virtio *VirtIO
}

// NewBus wires the given devices into their fixed address windows.
func NewBus(ram *RAM, clint *CLINT, plic *PLIC, uart *UART, virtio *VirtIO) *Bus {
	b := &Bus{ram: ram, clint: clint, plic: plic, uart: uart, virtio: virtio}
	virtio.attach(b)

	return b
}

// Load reads a size-bit value at physical address addr, routing to whichever window contains
// it.
func (b *Bus) Load(addr Reg, size uint) (Reg, error) {
	switch {
	case addr >= CLINTBase && addr < CLINTBase+CLINTSize:
		return b.clint.Load(addr-CLINTBase, size)
	case addr >= PLICBase && addr < PLICBase+PLICSize:
		return b.plic.Load(addr-PLICBase, size)
	case addr >= UARTBase && addr < UARTBase+UARTSize:
		return b.uart.Load(addr-UARTBase, size)
	case addr >= VirtIOBase && addr < VirtIOBase+VirtIOSize:
		return b.virtio.Load(addr-VirtIOBase, size)
	case addr >= MemoryBase && addr < MemoryBase+MemorySize:
		return b.ram.Load(addr-MemoryBase, size)
	default:
		return 0, ExcLoadAccessFault
	}
}

// Store writes a size-bit value at physical address addr.
func (b *Bus) Store(addr Reg, size uint, value Reg) error {
	switch {
	case addr >= CLINTBase && addr < CLINTBase+CLINTSize:
		return b.clint.Store(addr-CLINTBase, size, value)
	case addr >= PLICBase && addr < PLICBase+PLICSize:
		return b.plic.Store(addr-PLICBase, size, value)
	case addr >= UARTBase && addr < UARTBase+UARTSize:
		return b.uart.Store(addr-UARTBase, size, value)
	case addr >= VirtIOBase && addr < VirtIOBase+VirtIOSize:
		return b.virtio.Store(addr-VirtIOBase, size, value)
	case addr >= MemoryBase && addr < MemoryBase+MemorySize:
		return b.ram.Store(addr-MemoryBase, size, value)
	default:
		return ExcStoreAMOAccessFault
	}
}

// Tick advances the CLINT's timer by one cycle and reports whether mtimecmp has now been
// reached, for the main loop to fold into mip.MTIP.
func (b *Bus) Tick() bool {
	return b.clint.Tick()
}

// PollInterrupts checks the device-level one-shot interrupt flags (UART RX, virtio completion,
// CLINT software interrupt) and raises the corresponding PLIC source / mip bit. Called once per
// step, before interrupt delivery. UART takes priority over VirtIO when both are
// pending in the same step — VirtIO is only observed, and disk_access only runs, when UART is
// not also pending this step.
func (b *Bus) PollInterrupts(csr *CSRFile) {
	if b.uart.IsInterrupting() {
		b.plic.Raise(UARTIRQ)
		csr.RawWrite(CSRMip, csr.RawRead(CSRMip)|ipSEIP)
	} else if b.virtio.IsInterrupting() {
		b.virtio.diskAccess()
		b.plic.Raise(VirtIOIRQ)
		csr.RawWrite(CSRMip, csr.RawRead(CSRMip)|ipSEIP)
	}

	if b.clint.SoftwareInterruptPending() {
		csr.RawWrite(CSRMip, csr.RawRead(CSRMip)|ipMSIP)
	}
}
