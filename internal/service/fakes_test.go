package service

import (
	"sync"

	"telemetry_bridge/internal/device"
)

type readResult struct {
	line []byte
	err  error
}

// fakeLink is a scripted DeviceLink. Once the script is exhausted ReadLine
// behaves like an idle port.
type fakeLink struct {
	name string

	mu       sync.Mutex
	reads    []readResult
	readN    int
	writes   []string
	writeErr error
}

func (f *fakeLink) Name() string { return f.name }

func (f *fakeLink) ReadLine() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readN++
	if len(f.reads) == 0 {
		return nil, nil
	}
	r := f.reads[0]
	f.reads = f.reads[1:]
	return r.line, r.err
}

func (f *fakeLink) WriteLine(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, text)
	return nil
}

func (f *fakeLink) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakeLink) readCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readN
}

type scannerStub struct {
	ports []device.PortInfo
	calls int
}

func (s *scannerStub) Discover() []device.PortInfo {
	s.calls++
	return s.ports
}
