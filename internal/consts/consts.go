// Package consts contains the names of memory mapped hardware registers.
package consts

import (
	"maps"
	"slices"
)

// Constant is a named hardware register.
type Constant struct {
	Address uint16
	Name    string
}

var ioRegisters = map[uint16]string{
	0xFF00: "rP1",
	0xFF01: "rSB",
	0xFF02: "rSC",
	0xFF04: "rDIV",
	0xFF05: "rTIMA",
	0xFF06: "rTMA",
	0xFF07: "rTAC",
	0xFF0F: "rIF",
	0xFF10: "rNR10",
	0xFF11: "rNR11",
	0xFF12: "rNR12",
	0xFF13: "rNR13",
	0xFF14: "rNR14",
	0xFF16: "rNR21",
	0xFF17: "rNR22",
	0xFF18: "rNR23",
	0xFF19: "rNR24",
	0xFF1A: "rNR30",
	0xFF1B: "rNR31",
	0xFF1C: "rNR32",
	0xFF1D: "rNR33",
	0xFF1E: "rNR34",
	0xFF20: "rNR41",
	0xFF21: "rNR42",
	0xFF22: "rNR43",
	0xFF23: "rNR44",
	0xFF24: "rNR50",
	0xFF25: "rNR51",
	0xFF26: "rNR52",
	0xFF40: "rLCDC",
	0xFF41: "rSTAT",
	0xFF42: "rSCY",
	0xFF43: "rSCX",
	0xFF44: "rLY",
	0xFF45: "rLYC",
	0xFF46: "rDMA",
	0xFF47: "rBGP",
	0xFF48: "rOBP0",
	0xFF49: "rOBP1",
	0xFF4A: "rWY",
	0xFF4B: "rWX",
	0xFF4D: "rKEY1",
	0xFF4F: "rVBK",
	0xFF51: "rHDMA1",
	0xFF52: "rHDMA2",
	0xFF53: "rHDMA3",
	0xFF54: "rHDMA4",
	0xFF55: "rHDMA5",
	0xFF56: "rRP",
	0xFF68: "rBCPS",
	0xFF69: "rBCPD",
	0xFF6A: "rOCPS",
	0xFF6B: "rOCPD",
	0xFF70: "rSVBK",
	0xFFFF: "rIE",
}

// mbcRegisters maps the upper end of each register range of the memory bank
// controller that is mapped to writes into the ROM area.
var mbcRegisters = []Constant{
	{Address: 0x1FFF, Name: "SRAM_ENABLE"},
	{Address: 0x2FFF, Name: "ROM_BANK_LO"},
	{Address: 0x3FFF, Name: "ROM_BANK_HI"},
	{Address: 0x5FFF, Name: "SRAM_BANK"},
	{Address: 0x7FFF, Name: "MBC_MODE"},
}

// Register returns the I/O register at the CPU address.
func Register(cpu uint16) (Constant, bool) {
	name, ok := ioRegisters[cpu]
	if !ok {
		return Constant{}, false
	}
	return Constant{Address: cpu, Name: name}, true
}

// MBCRegister returns the memory bank controller register that a write to
// the CPU address in the ROM area accesses.
func MBCRegister(cpu uint16) (Constant, bool) {
	for _, c := range mbcRegisters {
		if cpu <= c.Address {
			return Constant{Address: cpu, Name: c.Name}, true
		}
	}
	return Constant{}, false
}

// Registers returns all I/O registers sorted by address.
func Registers() []Constant {
	constants := make([]Constant, 0, len(ioRegisters))
	for _, addr := range slices.Sorted(maps.Keys(ioRegisters)) {
		constants = append(constants, Constant{Address: addr, Name: ioRegisters[addr]})
	}
	return constants
}
