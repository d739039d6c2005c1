// Package table turns uploaded bytes into a grid of records and extracts
// header-keyed rows from it.
package table

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	xunicode "golang.org/x/text/encoding/unicode"
)

// Encoding names reported in Candidate.Encoding and ImportMeta.EncodingUsed.
const (
	EncodingAuto    = "auto"
	EncodingUTF8    = "utf-8"
	EncodingUTF8SIG = "utf-8-sig"
	EncodingUTF16LE = "utf-16le"
	EncodingUTF16BE = "utf-16be"
	EncodingCP1252  = "windows-1252"
	EncodingLatin1  = "iso-8859-1"
)

// ErrUnknownEncoding is returned for encoding names that cannot be resolved.
var ErrUnknownEncoding = errors.New("unknown encoding")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

var aliases = map[string]encoding.Encoding{
	EncodingUTF8:    encoding.Nop,
	"utf8":          encoding.Nop,
	EncodingUTF8SIG: encoding.Nop,
	EncodingUTF16LE: xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM),
	EncodingUTF16BE: xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM),
	EncodingCP1252:  charmap.Windows1252,
	"cp1252":        charmap.Windows1252,
	EncodingLatin1:  charmap.ISO8859_1,
	"latin-1":       charmap.ISO8859_1,
	"latin1":        charmap.ISO8859_1,
}

// DetectEncoding guesses the text encoding of raw from byte-level evidence:
// a BOM wins, then UTF-8 validity, then the presence of bytes only
// Windows-1252 assigns printable characters to.
func DetectEncoding(raw []byte) string {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return EncodingUTF8SIG
	case bytes.HasPrefix(raw, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(raw, bomUTF16BE):
		return EncodingUTF16BE
	case utf8.Valid(raw):
		return EncodingUTF8
	}
	for _, b := range raw {
		if b >= 0x80 && b <= 0x9F {
			return EncodingCP1252
		}
	}
	return EncodingLatin1
}

// Decode converts raw to UTF-8 text. name may be "auto" or any IANA name.
// A leading BOM is removed. It returns the encoding actually used.
func Decode(raw []byte, name string) (string, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == EncodingAuto {
		name = DetectEncoding(raw)
	}

	enc, err := lookup(name)
	if err != nil {
		return "", "", err
	}

	switch name {
	case EncodingUTF16LE, EncodingUTF16BE:
		raw = bytes.TrimPrefix(bytes.TrimPrefix(raw, bomUTF16LE), bomUTF16BE)
	default:
		raw = bytes.TrimPrefix(raw, bomUTF8)
	}

	var text string
	if enc == encoding.Nop {
		text = strings.ToValidUTF8(string(raw), "\ufffd")
	} else {
		out, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", "", fmt.Errorf("decoding %s: %w", name, err)
		}
		text = string(out)
	}
	return strings.TrimPrefix(text, "\ufeff"), name, nil
}

func lookup(name string) (encoding.Encoding, error) {
	if enc, ok := aliases[name]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}
