/*
Package vm implements the core of a user-space emulator for a 64-bit RISC-V hart: enough
RV64IMA + Zicsr with Sv39 paging and M/S/U privilege modes to boot an xv6-class kernel.

The design mimics the microarchitecture it emulates, the way you'd sketch a datapath on a
whiteboard:

  - the [Hart] owns the register file, the program counter, the privilege mode, and the CSR
    file;
  - the [Bus] decodes physical addresses into fixed MMIO windows and routes to [RAM], [CLINT],
    [PLIC], [UART], or [VirtIO];
  - (*Hart).Translate sits between the hart and the bus, walking Sv39 page tables to produce
    physical addresses when paging is enabled;
  - trap delivery (trap.go) moves control between privilege modes on exceptions and interrupts,
    stacking and restoring the status bits per the privileged spec.

# Instruction cycle

Each step fetches the 32-bit instruction at pc (through translation and the bus), advances pc by
4, decodes, and executes. Exceptions raised during fetch or execute are delivered immediately. A
fetch fault, or a fatal exception, ends the step there; otherwise, after execute, the main loop
polls the interrupt controller and delivers the highest-priority pending, enabled interrupt.

# Non-goals

Floating point, compressed instructions, full M-extension coverage, multiple harts, and
cycle-accurate timing are all out of scope. MXR and SUM are not modeled: supervisor code is
assumed never to access U-mode pages, so that combination always page-faults; see DESIGN.md for
the permission-check design this replaced.
*/
package vm
