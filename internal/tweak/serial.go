package tweak

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/xodrun/internal/ctxlog"
)

// OpenSerial opens a serial device, a named pipe or a plain file as a command
// channel. The path "-" stands for standard input.
func OpenSerial(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open debug serial %q: %w", path, err)
	}
	return f, nil
}

// Pump copies r into buf until r is exhausted or ctx is cancelled. Pump owns
// r: when it is an io.Closer it is closed exactly once before Pump returns,
// which on cancellation also unblocks a pending read on devices and pipes.
func Pump(ctx context.Context, r io.Reader, buf *LineBuffer) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Debug channel reader started.")
	defer logger.Debug("Debug channel reader finished.")

	closeReader := func() {
		if c, ok := r.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warn("Failed to close debug channel.", "error", err)
			}
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(buf, r)
		done <- err
	}()

	select {
	case err := <-done:
		closeReader()
		return err
	case <-ctx.Done():
		// A reader that cannot be closed, such as standard input, is left
		// behind; its goroutine ends with the process.
		closeReader()
		return nil
	}
}
