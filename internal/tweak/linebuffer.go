package tweak

import (
	"bytes"
	"sync"
)

// MaxLineLength bounds a single command line. Longer lines are cut and the
// remainder up to the next newline is discarded.
const MaxLineLength = 256

// LineBuffer queues complete lines written by channel sources until the
// injector polls them. It is safe for concurrent use. When the queue is full
// new lines are dropped.
type LineBuffer struct {
	mu      sync.Mutex
	lines   [][]byte
	partial []byte
	cut     bool
	size    int
	dropped uint64
}

// NewLineBuffer returns a buffer holding at most size lines.
func NewLineBuffer(size int) *LineBuffer {
	if size < 1 {
		size = 1
	}
	return &LineBuffer{size: size}
}

// Write splits p on '\n' and queues every completed line. It never fails.
func (b *LineBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		chunk := p
		if i >= 0 {
			chunk = p[:i]
		}
		b.appendPartial(chunk)
		if i < 0 {
			break
		}
		b.push()
		p = p[i+1:]
	}
	return n, nil
}

func (b *LineBuffer) appendPartial(chunk []byte) {
	if b.cut {
		return
	}
	if room := MaxLineLength - len(b.partial); len(chunk) > room {
		chunk = chunk[:room]
		b.cut = true
	}
	b.partial = append(b.partial, chunk...)
}

func (b *LineBuffer) push() {
	line := b.partial
	b.partial = nil
	b.cut = false
	if len(b.lines) >= b.size {
		b.dropped++
		return
	}
	b.lines = append(b.lines, line)
}

// Poll removes and returns the oldest complete line, without its newline.
func (b *LineBuffer) Poll() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lines) == 0 {
		return nil, false
	}
	line := b.lines[0]
	b.lines[0] = nil
	b.lines = b.lines[1:]
	return line, true
}

// Len returns the number of queued lines.
func (b *LineBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Dropped returns how many lines were discarded because the queue was full.
func (b *LineBuffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
