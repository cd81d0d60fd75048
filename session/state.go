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

package session

import "fmt"

// State of the session.
type State int

// List of valid State values.
const (
	Idle State = iota
	Loaded
	Running
	Undoing
	Redoing
	Saving
	Restoring
	Quit
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Running:
		return "running"
	case Undoing:
		return "undoing"
	case Redoing:
		return "redoing"
	case Saving:
		return "saving"
	case Restoring:
		return "restoring"
	case Quit:
		return "quit"
	}
	return fmt.Sprintf("unknown state (%d)", int(s))
}
