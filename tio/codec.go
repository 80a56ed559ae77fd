package tio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

/*
Request format, before raw DEFLATE:
	V lang \0 1 \0 <language> \0
	F .code.tio \0 <byte length> \0 <code>
	F .input.tio \0 0 \0
	V args \0 0 \0
	R
Variables are V, name, count, then each value NUL-terminated. Files are F,
name, byte length, then the contents without a terminator.

The response is gzipped. Its first 16 bytes are a separator which splits the
rest into the program output and the debug output.
*/

func variable(b *bytes.Buffer, name string, vals ...string) {
	b.WriteByte('V')
	b.WriteString(name)
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(len(vals)))
	b.WriteByte(0)
	for _, v := range vals {
		b.WriteString(v)
		b.WriteByte(0)
	}
}

func file(b *bytes.Buffer, name, content string) {
	b.WriteByte('F')
	b.WriteString(name)
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(len(content)))
	b.WriteByte(0)
	b.WriteString(content)
}

// payload builds the uncompressed request body.
func payload(lang, code string) []byte {
	var b bytes.Buffer
	variable(&b, "lang", lang)
	file(&b, ".code.tio", code)
	file(&b, ".input.tio", "")
	variable(&b, "args")
	b.WriteByte('R')
	return b.Bytes()
}

// encode builds the compressed request body.
func encode(lang, code string) ([]byte, error) {
	var b bytes.Buffer
	w, err := flate.NewWriter(&b, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("couldn't make compressor: %w", err)
	}
	if _, err := w.Write(payload(lang, code)); err != nil {
		return nil, fmt.Errorf("couldn't compress request: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("couldn't compress request: %w", err)
	}
	return b.Bytes(), nil
}

var errShort = errors.New("response too short")

// decode extracts the program output and debug output from a response body.
// Bodies which are not gzipped are accepted as-is.
func decode(body []byte) (out, debug string, err error) {
	if len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b {
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return "", "", fmt.Errorf("couldn't decompress response: %w", err)
		}
		body, err = io.ReadAll(io.LimitReader(r, 16<<20))
		if err != nil {
			return "", "", fmt.Errorf("couldn't decompress response: %w", err)
		}
	}
	if len(body) < 16 {
		return "", "", fmt.Errorf("couldn't decode response: %w", errShort)
	}
	sep, rest := body[:16], body[16:]
	parts := bytes.SplitN(rest, sep, 3)
	out = string(parts[0])
	if len(parts) > 1 {
		debug = string(parts[1])
	}
	return out, debug, nil
}
