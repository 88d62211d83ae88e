package usercopy

import (
	"fmt"
	"sync/atomic"
)

// Stats counts the invocations of the copy routines. The counters only grow.
// A Stats may be shared by any number of goroutines.
type Stats struct {
	copyIn    atomic.Uint64
	copyInStr atomic.Uint64
}

// StatsSnapshot is a point-in-time reading of a Stats.
type StatsSnapshot struct {
	CopyIn    uint64 `json:"copyin"`
	CopyInStr uint64 `json:"copyinstr"`
}

var defaultStats Stats

// DefaultStats returns the process-wide counters. They are never reset.
func DefaultStats() *Stats {
	return &defaultStats
}

// FormatStats renders the process-wide counters into buf and returns the
// number of bytes written. The report is cut short if buf is too small.
func FormatStats(buf []byte) int {
	return defaultStats.Format(buf)
}

func (s *Stats) countCopyIn() {
	s.copyIn.Add(1)
}

func (s *Stats) countCopyInStr() {
	s.copyInStr.Add(1)
}

// Snapshot reads both counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		CopyIn:    s.copyIn.Load(),
		CopyInStr: s.copyInStr.Load(),
	}
}

// String returns the full text report.
func (s *Stats) String() string {
	snapshot := s.Snapshot()

	return fmt.Sprintf("copyin: %d\ncopyinstr: %d\n",
		snapshot.CopyIn, snapshot.CopyInStr)
}

// Format writes the text report into buf and returns the number of bytes
// written.
func (s *Stats) Format(buf []byte) int {
	return copy(buf, s.String())
}
