// Package history implements the editor's undo stack of buffer snapshots.
package history

import (
	"errors"

	pximage "pixedit/internal/image"
)

// ErrEmpty is returned by Pop when there is nothing to undo.
var ErrEmpty = errors.New("history is empty")

// Stack is a LIFO of buffer snapshots. The zero value is an empty,
// unbounded stack.
type Stack struct {
	// Limit caps the number of snapshots kept; 0 means unbounded.
	// When full, the oldest snapshot is discarded.
	Limit int

	snapshots []*pximage.Buffer
}

// New creates a stack holding at most limit snapshots (0 = unbounded).
func New(limit int) *Stack {
	if limit < 0 {
		limit = 0
	}
	return &Stack{Limit: limit}
}

// Push stores a deep copy of snapshot.
func (s *Stack) Push(snapshot *pximage.Buffer) {
	if s.Limit > 0 && len(s.snapshots) >= s.Limit {
		// Drop the oldest; release its reference for the GC
		s.snapshots[0] = nil
		s.snapshots = s.snapshots[1:]
	}
	s.snapshots = append(s.snapshots, snapshot.Clone())
}

// Pop removes and returns the most recent snapshot.
func (s *Stack) Pop() (*pximage.Buffer, error) {
	n := len(s.snapshots)
	if n == 0 {
		return nil, ErrEmpty
	}
	top := s.snapshots[n-1]
	s.snapshots[n-1] = nil
	s.snapshots = s.snapshots[:n-1]
	return top, nil
}

// Peek returns the most recent snapshot without removing it.
func (s *Stack) Peek() (*pximage.Buffer, bool) {
	if len(s.snapshots) == 0 {
		return nil, false
	}
	return s.snapshots[len(s.snapshots)-1], true
}

// Len returns the number of stored snapshots.
func (s *Stack) Len() int {
	return len(s.snapshots)
}

// Clear drops every snapshot.
func (s *Stack) Clear() {
	s.snapshots = nil
}
