package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sampleSize is how much of the input is inspected before decoding starts.
const sampleSize = 4096

const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Single-byte charsets chardet may report, keyed by its names. Cyrillic ones
// cover statements exported by Ukrainian banks.
var charsets = map[string]encoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-5":   charmap.ISO8859_5,
	"ISO-8859-9":   charmap.ISO8859_9,
	"windows-1251": charmap.Windows1251,
	"KOI8-R":       charmap.KOI8R,
}

// Detect guesses the charset of sample. A nil encoding means the bytes are
// already UTF-8 (after any BOM, which the caller must skip). bomLen is the
// number of leading BOM bytes.
func Detect(sample []byte) (name string, enc encoding.Encoding, bomLen int) {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return UTF8, nil, len(bomUTF8)
	case bytes.HasPrefix(sample, bomUTF16LE):
		return UTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), 0
	case bytes.HasPrefix(sample, bomUTF16BE):
		return UTF16BE, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), 0
	}

	if utf8.Valid(trimPartialRune(sample)) {
		return UTF8, nil, 0
	}

	if result, err := chardet.NewTextDetector().DetectBest(sample); err == nil {
		if result.Charset == UTF8 {
			return UTF8, nil, 0
		}

		if enc, ok := charsets[result.Charset]; ok {
			return result.Charset, enc, 0
		}
	}

	return Windows1252, charmap.Windows1252, 0
}

// trimPartialRune drops a multi-byte sequence cut off by the end of the sample.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if utf8.RuneStart(c) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			break
		}
	}

	return b
}

// NewUTF8Reader returns a reader that decodes r to UTF-8 along with the name
// of the detected source charset.
func NewUTF8Reader(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sampleSize)

	sample, err := br.Peek(sampleSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	name, enc, bomLen := Detect(sample)

	if bomLen > 0 {
		_, _ = br.Discard(bomLen)
	}

	if enc == nil {
		return br, name, nil
	}

	return transform.NewReader(br, enc.NewDecoder()), name, nil
}
