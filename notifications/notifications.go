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

package notifications

import "fmt"

// Notice describes events that somehow change the presentation of the
// session. These notifications can be used to present additional information
// to the user.
type Notice string

// List of defined notifications.
const (
	// the session has been returned to a previous turn
	NotifyUndo Notice = "UNDO"

	// a previously undone turn has been returned to
	NotifyRedo Notice = "REDO"

	// an undo or redo was requested but there is nothing in that direction
	NotifyNoHistory Notice = "NOHISTORY"

	// the session state has been restored from a save
	NotifyRestored Notice = "RESTORED"

	// the session state has been saved
	NotifySaved Notice = "SAVED"

	// an autosave has failed twice. play continues but the autosave slot is
	// out of date
	NotifyAutosaveFailed Notice = "AUTOSAVEFAILED"

	// the story requested a feature that is not supported (eg. sound effects)
	NotifyUnsupported Notice = "UNSUPPORTED"

	// the story has ended the session
	NotifyQuit Notice = "QUIT"
)

// Message is a Notice along with any detail.
type Message struct {
	Notice Notice
	Detail string
}

func (m Message) String() string {
	if m.Detail == "" {
		return fmt.Sprintf("[%s]", m.Notice)
	}
	return fmt.Sprintf("[%s] %s", m.Notice, m.Detail)
}

// Notify is implemented by anything that wants to receive notices as they
// happen.
type Notify interface {
	Notify(msg Message)
}
