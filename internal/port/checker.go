package port

import (
	"fmt"
	"net"
)

// Checker probes the operating system for TCP port availability on the
// loopback interface.
//
// The struct is currently stateless, but is defined as a struct (rather
// than bare functions) so the Store can take it as an injected dependency
// and so future options (bind address, probe timeout) can be added without
// breaking the API.
type Checker struct{}

// NewChecker creates a new Checker instance.
func NewChecker() *Checker {
	return &Checker{}
}

// IsPortFree reports whether a TCP port can currently be bound on
// 127.0.0.1. The listener is closed immediately — we only need the
// bind result, not a working socket.
//
// A port lingering in TIME_WAIT after a recent close is reported as NOT
// free. That occasionally skips a usable port, but the alternative —
// probing in address-reuse mode — can report a port as free while another
// process actively holds it, which would hand out a double-bound port.
func (c *Checker) IsPortFree(port uint16) bool {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return false
	}
	defer func() { _ = ln.Close() }()
	return true
}

// FindConsecutiveFree scans [rangeStart, rangeEnd) upward for the first
// run of count consecutive ports that are all outside excluded and all
// individually bindable. It returns the run and true, or nil and false if
// no such run exists before rangeEnd.
//
// count == 0 is trivially satisfied and returns an empty run immediately.
//
// The scan is not a naive sliding window: when a port at position P fails
// (excluded or bound), the window restarts at P+1 rather than one past the
// old window start. A single busy port therefore eliminates every window
// containing it in one step, which keeps the scan linear in the range size
// regardless of count.
func (c *Checker) FindConsecutiveFree(count int, rangeStart, rangeEnd uint16, excluded map[uint16]bool) ([]uint16, bool) {
	if count == 0 {
		return []uint16{}, true
	}

	// Widen to int so the window arithmetic cannot wrap near 65535.
	start := int(rangeStart)
	end := int(rangeEnd)

	for start+count <= end {
		run := make([]uint16, 0, count)
		ok := true
		for i := 0; i < count; i++ {
			p := uint16(start + i)
			if excluded[p] || !c.IsPortFree(p) {
				// Restart just past the failing port.
				start = int(p) + 1
				ok = false
				break
			}
			run = append(run, p)
		}
		if ok {
			return run, true
		}
	}

	return nil, false
}
