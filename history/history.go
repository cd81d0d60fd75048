// This file is part of ifsession.
//
// ifsession is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ifsession is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ifsession.  If not, see <https://www.gnu.org/licenses/>.

package history

import (
	"fmt"

	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/logger"
	"github.com/jetsetilly/ifsession/snapshot"
)

// Sentinal error patterns.
const (
	// there is no entry in the requested direction
	NoHistory = "history: nothing to %s"

	// a snapshot was pushed with a turn number not greater than the current
	// turn
	OutOfOrder = "history: turn %d does not follow turn %d"
)

type entry struct {
	snap *snapshot.Snapshot
	size int
}

// History contains the snapshots of the session, one per turn.
type History struct {
	entries []entry

	// index of the active entry. entries after the cursor form the redo buffer
	cursor int

	// maximum total size of all entries and the current total
	capacity int
	bytes    int
}

// New is the preferred method of initialisation for the History type. The
// capacity argument is the maximum total size in bytes of the snapshots.
func New(capacity int) *History {
	return &History{
		capacity: capacity,
	}
}

func (h *History) String() string {
	if len(h.entries) == 0 {
		return "empty"
	}
	s := h.Summary()
	return fmt.Sprintf("turns %d to %d, at %d (%d of %d bytes)", s.Start, s.End, s.Current, h.bytes, h.capacity)
}

// Push adds the snapshot after the current entry. Any entries in the redo
// buffer are dropped and the new entry becomes the current entry.
func (h *History) Push(snap *snapshot.Snapshot) error {
	if len(h.entries) > 0 {
		c := h.entries[h.cursor].snap
		if snap.Turn <= c.Turn {
			return curated.Errorf(OutOfOrder, snap.Turn, c.Turn)
		}

		// truncate redo buffer
		for _, e := range h.entries[h.cursor+1:] {
			h.bytes -= e.size
		}
		clear(h.entries[h.cursor+1:])
		h.entries = h.entries[:h.cursor+1]
	}

	e := entry{snap: snap, size: snap.Size()}
	h.entries = append(h.entries, e)
	h.bytes += e.size
	h.cursor = len(h.entries) - 1

	h.evict()

	return nil
}

// remove entries from the front until the history fits the capacity. the
// entry at the cursor is never removed.
func (h *History) evict() {
	var n int
	for h.bytes > h.capacity && n < h.cursor {
		h.bytes -= h.entries[n].size
		logger.Logf(logger.Allow, "history", "forgetting turn %d (%d bytes)", h.entries[n].snap.Turn, h.entries[n].size)
		h.entries[n] = entry{}
		n++
	}

	if n > 0 {
		h.entries = h.entries[n:]
		h.cursor -= n
	}
}

// SetCapacity changes the maximum total size in bytes. Entries are forgotten
// immediately if necessary.
func (h *History) SetCapacity(capacity int) {
	h.capacity = capacity
	h.evict()
}

// Undo moves the cursor to the previous entry and returns a copy of it.
func (h *History) Undo() (*snapshot.Snapshot, error) {
	if !h.CanUndo() {
		return nil, curated.Errorf(NoHistory, "undo")
	}
	h.cursor--
	return h.entries[h.cursor].snap.Clone(), nil
}

// Redo moves the cursor to the next entry and returns a copy of it.
func (h *History) Redo() (*snapshot.Snapshot, error) {
	if !h.CanRedo() {
		return nil, curated.Errorf(NoHistory, "redo")
	}
	h.cursor++
	return h.entries[h.cursor].snap.Clone(), nil
}

// CanUndo returns true if there is an entry before the current entry.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo returns true if there is an entry after the current entry.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Current returns a copy of the current entry. Returns false if the history is
// empty.
func (h *History) Current() (*snapshot.Snapshot, bool) {
	if len(h.entries) == 0 {
		return nil, false
	}
	return h.entries[h.cursor].snap.Clone(), true
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Bytes returns the total size of all entries.
func (h *History) Bytes() int {
	return h.bytes
}

// Cursor returns the index of the current entry.
func (h *History) Cursor() int {
	return h.cursor
}

// Reset removes all entries.
func (h *History) Reset() {
	h.entries = nil
	h.cursor = 0
	h.bytes = 0
}

// Summary of the turns in the history.
type Summary struct {
	Start   uint32
	End     uint32
	Current uint32
}

// Summary returns the turn numbers of the earliest entry, the most recent
// entry and the current entry. The zero value is returned if the history is
// empty.
func (h *History) Summary() Summary {
	if len(h.entries) == 0 {
		return Summary{}
	}
	return Summary{
		Start:   h.entries[0].snap.Turn,
		End:     h.entries[len(h.entries)-1].snap.Turn,
		Current: h.entries[h.cursor].snap.Turn,
	}
}
