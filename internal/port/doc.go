// Package port implements port availability checking and the persistent
// port allocation store for coppice.
//
// Every worktree reserves a contiguous run of TCP ports at creation time.
// The reservations live in a single JSON file (a flat map of allocation key
// to port list) shared by all projects on the machine, and the core
// invariant is global exclusivity: no two records ever share a port value.
// New allocations exclude the union of every existing record's ports, and
// records are only ever inserted or removed whole — a worktree's ports are
// assigned once and never mutated.
//
// The Checker probes actual OS-level availability by binding a TCP socket
// on loopback. Binding is the most reliable signal because it asks the
// kernel directly instead of parsing /proc or shelling out to lsof/ss.
//
// Coordination between concurrent command invocations is intentionally
// absent: allocation is a read-modify-write cycle against the shared file
// with no advisory lock, so two simultaneous allocations can race. This is
// an accepted limitation of single-machine, low-frequency usage; see the
// notes on Store.Allocate.
package port
