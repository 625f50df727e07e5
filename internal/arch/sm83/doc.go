// Package sm83 decodes instructions of the SM83 CPU of the Game Boy.
//
// # Instruction Set
//
// The main opcode table holds 245 instructions of 1 to 3 bytes, 11 opcodes
// are illegal. The byte $CB prefixes a second table of 256 bit manipulation
// instructions that are always 2 bytes long including the prefix.
//
// # References
//
// Instructions that refer to memory carry a target:
//   - jp and call use an absolute address, jr an offset relative to the
//     next instruction and rst one of the fixed vectors
//   - ld and ldh with an absolute operand read or write memory
//   - ld rr, n16 loads a pointer and is treated as a read reference
//
// Targets are resolved to banked addresses through a Resolver that applies
// the user supplied context. An unresolved bank does not fail decoding, the
// target is returned without address.
//
// Writes into the ROM area access the registers of the memory bank
// controller and carry the register name instead of a target.
package sm83
