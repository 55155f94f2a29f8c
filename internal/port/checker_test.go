package port

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireRangeFree skips the test when the test range [start, start+count)
// is not fully bindable on this machine. The port-window tests assert on
// exact port numbers, so a busy CI machine with something listening in
// the range would otherwise produce false failures.
func requireRangeFree(t *testing.T, start uint16, count int) {
	t.Helper()
	c := NewChecker()
	for i := 0; i < count; i++ {
		if !c.IsPortFree(start + uint16(i)) {
			t.Skipf("port %d is in use on this machine, skipping", start+uint16(i))
		}
	}
}

// TestIsPortFree_FreePort verifies that a port nothing is listening on
// is reported free. We probe first rather than hardcoding an assumption
// about the machine.
func TestIsPortFree_FreePort(t *testing.T) {
	checker := NewChecker()

	var free uint16
	for p := uint16(52000); p < 52100; p++ {
		if checker.IsPortFree(p) {
			free = p
			break
		}
	}
	require.NotZero(t, free, "should find at least one free port in 52000-52100")

	assert.True(t, checker.IsPortFree(free))
}

// TestIsPortFree_BoundPort verifies that a port held by a live listener
// is reported as busy.
func TestIsPortFree_BoundPort(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to start test listener")
	defer func() { _ = listener.Close() }()

	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	require.True(t, ok)

	checker := NewChecker()
	assert.False(t, checker.IsPortFree(uint16(tcpAddr.Port)),
		"port %d should be busy (we hold a listener on it)", tcpAddr.Port)
}

// TestFindConsecutiveFree_HappyPath verifies that the scan returns the
// first run at the bottom of the range when nothing is in the way.
func TestFindConsecutiveFree_HappyPath(t *testing.T) {
	requireRangeFree(t, 52200, 10)
	checker := NewChecker()

	ports, ok := checker.FindConsecutiveFree(5, 52200, 52210, nil)
	require.True(t, ok)
	assert.Equal(t, []uint16{52200, 52201, 52202, 52203, 52204}, ports)
}

// TestFindConsecutiveFree_SkipsPastBusyPort verifies that a busy port in
// the middle of a candidate run restarts the window just past it, not
// merely one position along. With 52302 bound, the run [52300..52304]
// fails at 52302 and the next candidate window starts at 52303.
func TestFindConsecutiveFree_SkipsPastBusyPort(t *testing.T) {
	requireRangeFree(t, 52300, 10)

	listener, err := net.Listen("tcp", "127.0.0.1:52302")
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	checker := NewChecker()
	ports, ok := checker.FindConsecutiveFree(5, 52300, 52310, nil)
	require.True(t, ok)
	assert.Equal(t, []uint16{52303, 52304, 52305, 52306, 52307}, ports)
}

// TestFindConsecutiveFree_ExcludedPorts verifies that ports in the
// exclusion set are treated exactly like busy ports even though nothing
// is listening on them. This is how already-allocated ports stay
// reserved between processes.
func TestFindConsecutiveFree_ExcludedPorts(t *testing.T) {
	requireRangeFree(t, 52400, 10)
	checker := NewChecker()

	excluded := map[uint16]bool{52400: true, 52401: true, 52402: true}
	ports, ok := checker.FindConsecutiveFree(3, 52400, 52410, excluded)
	require.True(t, ok)
	assert.Equal(t, []uint16{52403, 52404, 52405}, ports)
}

// TestFindConsecutiveFree_ZeroCount verifies the count==0 edge case:
// trivially satisfiable, returning an empty (non-nil) slice.
func TestFindConsecutiveFree_ZeroCount(t *testing.T) {
	checker := NewChecker()

	ports, ok := checker.FindConsecutiveFree(0, 52500, 52510, nil)
	require.True(t, ok)
	assert.NotNil(t, ports)
	assert.Empty(t, ports)
}

// TestFindConsecutiveFree_RangeTooSmall verifies that a request larger
// than the range itself fails cleanly.
func TestFindConsecutiveFree_RangeTooSmall(t *testing.T) {
	checker := NewChecker()

	ports, ok := checker.FindConsecutiveFree(20, 52600, 52610, nil)
	assert.False(t, ok)
	assert.Nil(t, ports)
}

// TestFindConsecutiveFree_NoneAvailable verifies failure when every port
// in the range is held by a listener.
func TestFindConsecutiveFree_NoneAvailable(t *testing.T) {
	requireRangeFree(t, 52700, 5)

	var listeners []net.Listener
	for p := 52700; p < 52705; p++ {
		l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p))
		require.NoError(t, err)
		listeners = append(listeners, l)
	}
	defer func() {
		for _, l := range listeners {
			_ = l.Close()
		}
	}()

	checker := NewChecker()
	_, ok := checker.FindConsecutiveFree(2, 52700, 52705, nil)
	assert.False(t, ok)
}
