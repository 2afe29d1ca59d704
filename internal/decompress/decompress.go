// Package decompress decodes HTTP response bodies according to their
// Content-Encoding.
package decompress

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// Type is the kind of content coding.
type Type int8

const (
	TypeNone Type = iota
	TypeGzip
	TypeDeflate
	TypeBrotli
)

// LookupMap maps normalized Content-Encoding values to a Type.
var LookupMap = map[string]Type{
	"":         TypeNone,
	"identity": TypeNone,
	"gzip":     TypeGzip,
	"deflate":  TypeDeflate,
	"br":       TypeBrotli,
}

// Normalize trims and lower-cases a Content-Encoding value.
func Normalize(encoding string) string {
	return strings.ToLower(strings.TrimSpace(encoding))
}

// TypeFor returns the Type for the given Content-Encoding. Unknown
// codings map to TypeNone.
func TypeFor(encoding string) Type {
	return LookupMap[Normalize(encoding)] // zero value is TypeNone
}

// Decompress decodes data according to encoding. The gzip coding is
// gzip, deflate is raw DEFLATE, and br is brotli. Any other coding,
// including the empty one, returns data unchanged.
func Decompress(data []byte, encoding string) ([]byte, error) {
	switch TypeFor(encoding) {
	case TypeGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip decompression failed: %w", err)
		}
		defer zr.Close()
		return readAll("gzip", zr)
	case TypeDeflate:
		fr := flate.NewReader(bytes.NewReader(data))
		defer fr.Close()
		return readAll("deflate", fr)
	case TypeBrotli:
		return readAll("brotli", brotli.NewReader(bytes.NewReader(data)))
	default:
		return data, nil
	}
}

func readAll(name string, r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s decompression failed: %w", name, err)
	}
	return out, nil
}
