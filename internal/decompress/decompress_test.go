package decompress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

func compressWith(t *testing.T, encoding string, data []byte) []byte {
	var buf bytes.Buffer
	var w interface {
		Write([]byte) (int, error)
		Close() error
	}
	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "deflate":
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			t.Fatal(err)
		}
		w = fw
	case "br":
		w = brotli.NewWriter(&buf)
	default:
		t.Fatal("unknown encoding", encoding)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecompress(t *testing.T) {
	payload := []byte(strings.Repeat("hello, world! ", 128))

	for _, encoding := range []string{"gzip", "deflate", "br"} {
		t.Run("round trip with "+encoding, func(t *testing.T) {
			data := compressWith(t, encoding, payload)
			out, err := Decompress(data, encoding)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(payload, out); diff != "" {
				t.Fatal(diff)
			}
		})
	}

	t.Run("normalizes the encoding", func(t *testing.T) {
		data := compressWith(t, "gzip", payload)
		out, err := Decompress(data, "  GZip ")
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(payload, out) {
			t.Fatal("unexpected output")
		}
	})

	t.Run("passes through unknown encodings", func(t *testing.T) {
		for _, encoding := range []string{"", "identity", "zstd", "compress"} {
			out, err := Decompress([]byte("abc"), encoding)
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != "abc" {
				t.Fatal("unexpected output", string(out))
			}
		}
	})

	t.Run("fails on corrupt gzip", func(t *testing.T) {
		_, err := Decompress([]byte("not gzip"), "gzip")
		if err == nil || !strings.HasPrefix(err.Error(), "gzip decompression failed") {
			t.Fatal("unexpected err", err)
		}
	})

	t.Run("fails on truncated deflate", func(t *testing.T) {
		data := compressWith(t, "deflate", payload)
		_, err := Decompress(data[:len(data)/2], "deflate")
		if err == nil || !strings.HasPrefix(err.Error(), "deflate decompression failed") {
			t.Fatal("unexpected err", err)
		}
	})

	t.Run("fails on truncated brotli", func(t *testing.T) {
		data := compressWith(t, "br", payload)
		_, err := Decompress(data[:len(data)/2], "br")
		if err == nil || !strings.HasPrefix(err.Error(), "brotli decompression failed") {
			t.Fatal("unexpected err", err)
		}
	})
}

func TestTypeFor(t *testing.T) {
	cases := map[string]Type{
		"gzip":    TypeGzip,
		"Deflate": TypeDeflate,
		" br":     TypeBrotli,
		"zstd":    TypeNone,
		"":        TypeNone,
	}
	for input, expect := range cases {
		if got := TypeFor(input); got != expect {
			t.Fatal("input", input, "expected", expect, "got", got)
		}
	}
}
