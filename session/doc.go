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

// Package session ties together the story, the virtual machine, the history
// of turns, the autosave scheduler and the save catalogue.
//
// A Session moves through the following states:
//
//	Idle -> Loaded -> Running -> Quit
//
// While Running, the transient states Undoing, Redoing, Saving and Restoring
// are entered for the duration of the operation. A transient state returns to
// Running when the operation completes, whether or not it succeeded. If the
// virtual machine could not be returned to its previous state after a failed
// operation the session returns to Loaded instead, and must be started again.
//
// Every call to the virtual machine is made while holding the session's turn
// lock. Operations on the session are therefore safe to call from more than
// one goroutine, and are serialised.
//
// Notices intended for the user (undo and redo markers, unsupported features,
// autosave failures, etc.) are collected and can be retrieved with Notices().
package session
