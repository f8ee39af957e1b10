package cart

import (
	"encoding/binary"
	"fmt"
	"strings"

	"gbcore/internal/gberr"
)

// headerEnd is the last byte of the cartridge header; a ROM shorter than
// this can't be parsed at all.
const headerEnd = 0x014F

// nintendoLogo is the fixed 48-byte logo every official DMG cartridge
// repeats at 0x0104; it sits directly before the title field this core
// reads, so ParseHeader carries it only as a documented offset landmark,
// not as a validation gate (real emulators running homebrew/test ROMs
// routinely see it altered or absent).
var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Header is the slice of the cartridge header this no-mapper-only core
// actually consumes: a title worth logging, the cartridge-type byte
// Load/LoadBytes gate on (only type 0x00 is accepted), and the checksums a
// caller can use to sanity-check a ROM image. Bank-count tables, licensee
// codes, and destination/version bytes are MBC-era bookkeeping with no
// consumer here and are not decoded.
type Header struct {
	Title          string // 0x0134-0x0143, trimmed of NUL padding
	CartType       byte   // 0x0147
	CartTypeStr    string // human-readable label for log/error messages
	HeaderChecksum byte   // 0x014D
	GlobalChecksum uint16 // 0x014E-0x014F
}

// ParseHeader reads the handful of header fields Header carries out of rom.
// It returns gberr.ErrIO, wrapped with context, if rom is too short to hold
// a header at all.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, fmt.Errorf("%w: rom is %d bytes, need at least %d for a header", gberr.ErrIO, len(rom), headerEnd+1)
	}

	title := strings.TrimRight(string(rom[0x0134:0x0144]), "\x00")
	cartType := rom[0x0147]

	return &Header{
		Title:          title,
		CartType:       cartType,
		CartTypeStr:    cartTypeString(cartType),
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
	}, nil
}

// HeaderChecksumOK recomputes the Pan Docs header-checksum algorithm over
// 0x0134-0x014C and compares it against the stored byte at 0x014D.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < 0x014E {
		return false
	}
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

// cartTypeString labels the cartridge-type byte for log/error messages when
// Load/LoadBytes rejects anything but plain ROM.
func cartTypeString(code byte) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01, 0x02, 0x03:
		return "MBC1 (unsupported)"
	case 0x05, 0x06:
		return "MBC2 (unsupported)"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3 (unsupported)"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5 (unsupported)"
	default:
		return "unknown"
	}
}
