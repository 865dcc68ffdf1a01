package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetflow/internal/encoding"
)

func readAll(t *testing.T, input []byte) (string, string) {
	t.Helper()

	r, name, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), name
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "type;amount;category;description\nexpense;12.50;Кава;Café\n"

	got, name := readAll(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, encoding.UTF8, name)
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// Windows-1252: ç = 0xE7, ã = 0xE3.
	latin1 := []byte{
		'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
		'a', 'm', 'o', 'u', 'n', 't', '\n',
	}

	got, _ := readAll(t, latin1)
	assert.Equal(t, "Descrição;amount\n", got)
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("amount;category\n")...)

	got, name := readAll(t, input)
	assert.Equal(t, "amount;category\n", got)
	assert.Equal(t, encoding.UTF8, name)
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	// "ab" with a little-endian BOM.
	input := []byte{0xFF, 0xFE, 'a', 0x00, 'b', 0x00}

	got, name := readAll(t, input)
	assert.Equal(t, "ab", got)
	assert.Equal(t, encoding.UTF16LE, name)
}

func TestNewUTF8Reader_MultiByteRuneAcrossSampleBoundary(t *testing.T) {
	// Place a two-byte rune so that the sample ends between its bytes.
	input := strings.Repeat("a", 4095) + "é" + "tail"

	got, name := readAll(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, encoding.UTF8, name)
}

func TestDetect_Empty(t *testing.T) {
	name, enc, bom := encoding.Detect(nil)

	assert.Equal(t, encoding.UTF8, name)
	assert.Nil(t, enc)
	assert.Zero(t, bom)
}
