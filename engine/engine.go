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

package engine

import (
	"fmt"

	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/snapshot"
)

// Status of the virtual machine after a turn.
type Status int

// List of valid Status values.
const (
	Continues Status = iota
	Quit
	Fault
)

func (s Status) String() string {
	switch s {
	case Continues:
		return "continues"
	case Quit:
		return "quit"
	case Fault:
		return "fault"
	}
	return fmt.Sprintf("unknown status (%d)", int(s))
}

// Result of executing a single turn.
type Result struct {
	Status Status

	// description of a quit or fault status
	Reason string

	// a Fault status caused by a request for a feature that is not supported.
	// the session can continue
	Unsupported bool
}

func (r Result) String() string {
	if r.Reason == "" {
		return r.Status.String()
	}
	return fmt.Sprintf("%s: %s", r.Status, r.Reason)
}

// Adapter is implemented by the virtual machine.
//
// Values returned by the read functions are copies. Values passed to the write
// functions are not retained by the implementation.
type Adapter interface {
	ReadDynamicMemory() []byte
	WriteDynamicMemory(mem []byte) error

	CallStack() []snapshot.Frame
	SetCallStack(frames []snapshot.Frame) error

	ProgramCounter() uint32
	SetProgramCounter(pc uint32) error

	// StepTurn runs the virtual machine until it next requires input. The
	// input argument is the player's input for the turn
	StepTurn(input string) Result
}

// Capture returns the current state of the virtual machine.
func Capture(a Adapter) snapshot.State {
	return snapshot.State{
		Memory: a.ReadDynamicMemory(),
		Frames: a.CallStack(),
		PC:     a.ProgramCounter(),
	}
}

// Apply the state to the virtual machine. The virtual machine may be partially
// changed if an error is returned.
func Apply(a Adapter, state snapshot.State) error {
	if err := a.WriteDynamicMemory(state.Memory); err != nil {
		return curated.Errorf("engine: memory: %v", err)
	}
	if err := a.SetCallStack(state.Frames); err != nil {
		return curated.Errorf("engine: call stack: %v", err)
	}
	if err := a.SetProgramCounter(state.PC); err != nil {
		return curated.Errorf("engine: program counter: %v", err)
	}
	return nil
}
