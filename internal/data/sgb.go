package data

import "fmt"

// sgbPacketSize is the size of one Super Game Boy packet, the lower 3 bits
// of the first byte give the number of packets of a command.
const sgbPacketSize = 16

type sgbCommand struct {
	name        string
	explanation string
}

var sgbCommands = []sgbCommand{
	{"PAL01", "Set SGB Palette 0,1 Data"},
	{"PAL23", "Set SGB Palette 2,3 Data"},
	{"PAL03", "Set SGB Palette 0,3 Data"},
	{"PAL12", "Set SGB Palette 1,2 Data"},
	{"ATTR_BLK", "\"Block\" Area Designation Mode"},
	{"ATTR_LIN", "\"Line\" Area Designation Mode"},
	{"ATTR_DIV", "\"Divide\" Area Designation Mode"},
	{"ATTR_CHR", "\"1CHR\" Area Designation Mode"},
	{"SOUND", "Sound On/Off"},
	{"SOU_TRN", "Transfer Sound PRG/DATA"},
	{"PAL_SET", "Set SGB Palette Indirect"},
	{"PAL_TRN", "Set System Color Palette Data"},
	{"ATRC_EN", "Enable/disable Attraction Mode"},
	{"TEST_EN", "Speed Function"},
	{"ICON_EN", "SGB Function"},
	{"DATA_SND", "SUPER NES WRAM Transfer 1"},
	{"DATA_TRN", "SUPER NES WRAM Transfer 2"},
	{"MLT_REG", "Controller 2 Request"},
	{"JUMP", "Set SNES Program Counter"},
	{"CHR_TRN", "Transfer Character Font Data"},
	{"PCT_TRN", "Set Screen Data Color Data"},
	{"ATTR_TRN", "Set Attribute from ATF"},
	{"ATTR_SET", "Set Data to ATF"},
	{"MASK_EN", "Game Boy Window Mask"},
	{"OBJ_TRN", "Super NES OBJ Mode"},
}

// DecodeSGB decodes a Super Game Boy command. Its size is determined by the
// packet count in the first byte, the upper 5 bits select the command.
func DecodeSGB(raw []byte) (Result, error) {
	if len(raw) == 0 {
		return Result{}, fmt.Errorf("%w: no SGB packet data", ErrMalformedStructure)
	}

	length := sgbPacketSize * int(raw[0]&0x07)
	if length == 0 {
		return Result{}, fmt.Errorf("%w: SGB packet count is 0", ErrMalformedStructure)
	}
	if length > len(raw) {
		return Result{}, fmt.Errorf("%w: SGB packet length %d exceeds %d available bytes",
			ErrMalformedStructure, length, len(raw))
	}

	result, err := DecodeSimple(raw, length)
	if err != nil {
		return Result{}, err
	}
	result.Kind = SGB
	result.Description = sgbDescription(raw[0] >> 3)
	return result, nil
}

func sgbDescription(code byte) string {
	if int(code) >= len(sgbCommands) {
		return "SGB Packet: unknown"
	}
	cmd := sgbCommands[code]
	return fmt.Sprintf("SGB Packet: $%02x %s (%s)", code, cmd.name, cmd.explanation)
}
