// Package event implements the per-module system-event registry and the
// periodic tick scheduler of spec §4.6: a module records its on_error and
// on_tick handler entry points by executing an EFI instruction, and the VM
// consults this package to decide whether and where to dispatch.
package event

import "time"

// Kind distinguishes the two system events a module may handle (spec §4.6).
// The numeric value is the EFI instruction's operand, so it is as
// wire-format-load-bearing as an opcode.
type Kind int64

const (
	KindError Kind = iota
	KindTick
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "on_error"
	case KindTick:
		return "on_tick"
	default:
		return "unknown"
	}
}

// Table records, per module id, the entry-point instruction index for each
// event kind an EFI instruction has announced (spec §4.6: "EFI ... records,
// for a given module id, the entry address of a system event handler").
type Table struct {
	entries map[int]map[Kind]int64
}

// NewTable returns an empty registry.
func NewTable() *Table {
	return &Table{entries: make(map[int]map[Kind]int64)}
}

// Register records that moduleID's kind handler begins at entry.
func (t *Table) Register(moduleID int, kind Kind, entry int64) {
	m, ok := t.entries[moduleID]
	if !ok {
		m = make(map[Kind]int64)
		t.entries[moduleID] = m
	}
	m[kind] = entry
}

// Lookup returns the recorded entry point for moduleID's kind handler, if
// any was ever registered via EFI.
func (t *Table) Lookup(moduleID int, kind Kind) (int64, bool) {
	m, ok := t.entries[moduleID]
	if !ok {
		return 0, false
	}
	entry, ok := m[kind]
	return entry, ok
}

// TicksPerSecond is the original interpreter's fixed tick rate (spec §4.6:
// "current time + 1/10 s"), kept as a named constant since it is the
// Scheduler's only tunable.
const TicksPerSecond = 100 * time.Millisecond

// Scheduler tracks the deadline for the next on_tick dispatch (spec §4.6).
// A zero Scheduler is not ready to use; call NewScheduler.
type Scheduler struct {
	interval time.Duration
	next     time.Time
}

// NewScheduler returns a Scheduler whose first tick is due immediately.
func NewScheduler(now time.Time) *Scheduler {
	return &Scheduler{interval: TicksPerSecond, next: now}
}

// Due reports whether now has reached the scheduled deadline. It does not
// advance the deadline; callers that dispatch on a true result must call
// Reset afterward (mirroring the original VM setting nextTick only once the
// handler has actually been invoked).
func (s *Scheduler) Due(now time.Time) bool {
	return !now.Before(s.next)
}

// Reset pushes the next deadline interval past now.
func (s *Scheduler) Reset(now time.Time) {
	s.next = now.Add(s.interval)
}
