package program

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestOffset_Types(t *testing.T) {
	offset := &Offset{}
	assert.False(t, offset.IsType(CodeOffset))

	offset.SetType(CodeOffset)
	offset.SetType(JumpDestination)
	assert.True(t, offset.IsType(CodeOffset))
	assert.True(t, offset.IsType(DataOffset|JumpDestination))
	assert.False(t, offset.IsType(DataOffset|CodeAsData))

	offset.ClearType(CodeOffset)
	assert.False(t, offset.IsType(CodeOffset))
	assert.True(t, offset.IsType(JumpDestination))
	assert.Equal(t, "jump-destination", offset.Type.String())
}

func TestProgram_Empty(t *testing.T) {
	var p Program
	assert.True(t, p.Empty())

	p.Comments = append(p.Comments, Comment{Text: "init"})
	assert.False(t, p.Empty())
}

func TestOffsetType_String(t *testing.T) {
	assert.Equal(t, "unknown", UnknownOffset.String())
	assert.Equal(t, "code", CodeOffset.String())
	assert.Equal(t, "code,call-destination", (CodeOffset | CallDestination).String())
}

func TestOffset_HexCodeComment(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{
			name:     "single byte",
			data:     []byte{0x00},
			expected: "00",
		},
		{
			name:     "two bytes",
			data:     []byte{0x18, 0xFE},
			expected: "18 FE",
		},
		{
			name:     "three bytes",
			data:     []byte{0xC3, 0x00, 0x40},
			expected: "C3 00 40",
		},
		{
			name:     "empty data",
			data:     []byte{},
			expected: "",
		},
		{
			name:     "multiple bytes with different values",
			data:     []byte{0x00, 0x01, 0xFE, 0xFF},
			expected: "00 01 FE FF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset := &Offset{
				Data: tt.data,
			}
			comment, err := offset.HexCodeComment()
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, comment)
		})
	}
}
