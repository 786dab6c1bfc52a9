// Package cpu implements the CHIP-8 interpreter and assembler.
//
// The CPU consists of 4096 bytes of memory with the hex-digit font at
// offset 0, sixteen 8-bit registers (V0-VF, VF doubling as the carry,
// borrow and collision flag), the 12-bit address register I, the program
// counter, an unbounded return stack, and the delay and sound timers.
//
// Instructions are fetched as big-endian 16-bit words, decoded into a
// Code, and executed one per Step. The display, keyboard and random
// source are collaborators injected into the Cpu.
//
// The assembler accepts the classic mnemonic syntax, with labels, equates
// and compile-time expression evaluation.
package cpu
