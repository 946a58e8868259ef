package fetch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned by [ParseMode] for unrecognised compression modes.
var ErrUnknownMode = errors.New("unknown compression mode")

// Mode selects what happens to a file's bytes between the network and disk.
type Mode uint8

const (
	// ModeDefault writes files exactly as distributed.
	ModeDefault Mode = iota
	// ModeDecompress decodes .bz2, .xz and .zst files before writing.
	ModeDecompress
	// ModeLZ4 decodes like ModeDecompress, then writes every file as an
	// LZ4 frame with a ".lz4" suffix appended to its name.
	ModeLZ4
)

// ParseMode maps a command line compression value to a Mode. The codec
// names bz2, xz, zst and zstd all request decompression; which decoder
// runs is still decided per file by its suffix.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return ModeDefault, nil
	case "bz2", "xz", "zst", "zstd", "decompress":
		return ModeDecompress, nil
	case "lz4":
		return ModeLZ4, nil
	default:
		return ModeDefault, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeDecompress:
		return "decompress"
	case ModeLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// decodes reports whether files are decompressed in this mode.
func (m Mode) decodes() bool {
	return m != ModeDefault
}
