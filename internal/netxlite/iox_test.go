package netxlite

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

type blockingReader struct {
	done chan struct{}
}

func (r *blockingReader) Read(b []byte) (int, error) {
	<-r.done
	return 0, io.EOF
}

func TestReadAllContext(t *testing.T) {
	t.Run("with success", func(t *testing.T) {
		data, err := ReadAllContext(context.Background(), strings.NewReader("abc"))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "abc" {
			t.Fatal("unexpected data")
		}
	})

	t.Run("with a read error", func(t *testing.T) {
		r := io.MultiReader(strings.NewReader("abc"), &errReader{
			err: NewErrWrapper(ClassifyGenericError, ReadOperation, io.ErrClosedPipe),
		})
		_, err := ReadAllContext(context.Background(), r)
		var ew *ErrWrapper
		if !errors.As(err, &ew) {
			t.Fatal("expected an ErrWrapper", err)
		}
	})

	t.Run("with expired context", func(t *testing.T) {
		r := &blockingReader{done: make(chan struct{})}
		defer close(r.done)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		data, err := ReadAllContext(ctx, r)
		var ew *ErrWrapper
		if !errors.As(err, &ew) || ew.Failure != FailureGenericTimeoutError {
			t.Fatal("unexpected err", err)
		}
		if data != nil {
			t.Fatal("expected nil data")
		}
	})
}

type errReader struct {
	err error
}

func (r *errReader) Read(b []byte) (int, error) {
	return 0, r.err
}
