package device

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

var errExhausted = errors.New("port closed")

// fakePort replays scripted read chunks; an empty chunk simulates a read timeout.
type fakePort struct {
	mu sync.Mutex

	reads   [][]byte
	written bytes.Buffer
	writes  int

	maxWrite   int // bytes accepted per Write call; 0 = all
	writeErr   error
	timeoutErr error

	timeout    time.Duration
	closeCalls int
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.reads) == 0 {
		return 0, errExhausted
	}
	chunk := p.reads[0]
	n := copy(b, chunk)
	if n < len(chunk) {
		p.reads[0] = chunk[n:]
	} else {
		p.reads = p.reads[1:]
	}
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	n := len(b)
	if p.maxWrite > 0 && n > p.maxWrite {
		n = p.maxWrite
	}
	p.writes++
	p.written.Write(b[:n])
	// yield so that concurrent writers get a chance to interleave if unguarded
	p.mu.Unlock()
	time.Sleep(time.Microsecond)
	p.mu.Lock()
	return n, nil
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalls++
	return nil
}

func (p *fakePort) SetReadTimeout(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timeoutErr != nil {
		return p.timeoutErr
	}
	p.timeout = d
	return nil
}

func (p *fakePort) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}
