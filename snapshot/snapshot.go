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

package snapshot

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jetsetilly/ifsession/quetzal"
)

// Sentinal error patterns.
const (
	// the snapshot is for a different story
	ChecksumMismatch = "snapshot: checksum mismatch: snapshot is for story %04x, loaded story is %04x"

	// the snapshot, or the state being encoded, is malformed
	CorruptChunk = "snapshot: corrupt %s chunk: %v"
)

// MaxAddress is the largest value that can be stored as a program counter or
// return address.
const MaxAddress = 0xffffff

// Frame is a single call-stack frame.
type Frame struct {
	// the address execution returns to
	ReturnPC uint32

	// whether the result of the routine is discarded. if not, the result is
	// stored in ResultVar
	Discard   bool
	ResultVar uint8

	// number of arguments supplied to the routine. maximum of 7
	ArgCount int

	// local variables. maximum of 15
	Locals []uint16

	// the evaluation stack for the frame
	Stack []uint16
}

// Equal returns true if the frames are the same.
func (f Frame) Equal(g Frame) bool {
	if f.ReturnPC != g.ReturnPC || f.Discard != g.Discard || f.ResultVar != g.ResultVar || f.ArgCount != g.ArgCount {
		return false
	}
	if len(f.Locals) != len(g.Locals) || len(f.Stack) != len(g.Stack) {
		return false
	}
	for i := range f.Locals {
		if f.Locals[i] != g.Locals[i] {
			return false
		}
	}
	for i := range f.Stack {
		if f.Stack[i] != g.Stack[i] {
			return false
		}
	}
	return true
}

func (f Frame) clone() Frame {
	c := f
	c.Locals = append([]uint16(nil), f.Locals...)
	c.Stack = append([]uint16(nil), f.Stack...)
	return c
}

func cloneFrames(frames []Frame) []Frame {
	if frames == nil {
		return nil
	}
	c := make([]Frame, len(frames))
	for i := range frames {
		c[i] = frames[i].clone()
	}
	return c
}

// State is the state of the virtual machine that is captured by a snapshot.
type State struct {
	Memory []byte
	Frames []Frame
	PC     uint32
}

// Equal returns true if the states are the same.
func (s State) Equal(t State) bool {
	if s.PC != t.PC || !bytes.Equal(s.Memory, t.Memory) || len(s.Frames) != len(t.Frames) {
		return false
	}
	for i := range s.Frames {
		if !s.Frames[i].Equal(t.Frames[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	return State{
		Memory: append([]byte(nil), s.Memory...),
		Frames: cloneFrames(s.Frames),
		PC:     s.PC,
	}
}

// Snapshot is a captured State at a point in time.
type Snapshot struct {
	Turn      uint32
	Timestamp time.Time

	// identification of the story the snapshot was taken from
	Release  uint16
	Serial   string
	Checksum uint16

	// Delta is the run-length encoded difference to the original story memory
	// if Compressed is true. Otherwise it is the memory itself
	Compressed bool
	Delta      []byte

	// the length of the memory region. a negative value means that the length
	// is not known. this happens when reading a save file created by another
	// interpreter. see Decode() for how this is handled
	Length int

	Frames []Frame
	PC     uint32

	// free text note. not required for decoding
	Annotation string
}

func (s *Snapshot) String() string {
	form := "raw"
	if s.Compressed {
		form = "compressed"
	}
	return fmt.Sprintf("turn %d: %d bytes %s, %d frames, pc %06x", s.Turn, len(s.Delta), form, len(s.Frames), s.PC)
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Delta = append([]byte(nil), s.Delta...)
	c.Frames = cloneFrames(s.Frames)
	return &c
}

// Size returns the number of bytes the snapshot occupies when serialised with
// Write().
func (s *Snapshot) Size() int {
	l := []int{ifhdLength, len(s.Delta), stacksLength(s.Frames), turnLength}
	if s.Annotation != "" {
		l = append(l, len(s.Annotation))
	}
	return quetzal.FormSize(l...)
}
