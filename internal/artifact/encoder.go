package artifact

import (
	"fmt"
	"io"
	"strings"

	"github.com/interop-labs/modreg/internal/registry"
)

// Encoder renders a record list.
type Encoder interface {
	Encode(w io.Writer, records []registry.Record) error
}

// Format names accepted by NewEncoder.
const (
	FormatPHP = "php"
	FormatHCL = "hcl"
)

// Formats lists the supported artifact formats.
func Formats() []string {
	return []string{FormatPHP, FormatHCL}
}

// NewEncoder returns the encoder for format.
func NewEncoder(format string) (Encoder, error) {
	switch strings.ToLower(format) {
	case FormatPHP:
		return PHPEncoder{}, nil
	case FormatHCL:
		return HCLEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown artifact format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
}
