package consts

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestRegister(t *testing.T) {
	c, ok := Register(0xFF40)
	assert.True(t, ok)
	assert.Equal(t, "rLCDC", c.Name)

	c, ok = Register(0xFFFF)
	assert.True(t, ok)
	assert.Equal(t, "rIE", c.Name)

	_, ok = Register(0xFF03)
	assert.False(t, ok)
}

func TestMBCRegister(t *testing.T) {
	tests := []struct {
		cpu  uint16
		want string
	}{
		{0x0000, "SRAM_ENABLE"},
		{0x1FFF, "SRAM_ENABLE"},
		{0x2000, "ROM_BANK_LO"},
		{0x3000, "ROM_BANK_HI"},
		{0x4000, "SRAM_BANK"},
		{0x6000, "MBC_MODE"},
	}
	for _, tt := range tests {
		c, ok := MBCRegister(tt.cpu)
		assert.True(t, ok)
		assert.Equal(t, tt.want, c.Name)
		assert.Equal(t, tt.cpu, c.Address)
	}

	_, ok := MBCRegister(0x8000)
	assert.False(t, ok)
}

func TestRegisters(t *testing.T) {
	regs := Registers()
	assert.Len(t, regs, len(ioRegisters))
	assert.Equal(t, uint16(0xFF00), regs[0].Address)
	assert.Equal(t, uint16(0xFFFF), regs[len(regs)-1].Address)
}
