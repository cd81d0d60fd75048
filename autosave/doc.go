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

// Package autosave writes snapshots of the session to a rotating set of slot
// files in the background.
//
// The Scheduler decides when a snapshot should be written according to a
// Policy. Every request to write a snapshot is given an epoch number. The
// background writer always writes the most recent epoch. If a newer request
// arrives while an older snapshot is being written, the older one is
// discarded before it reaches a slot.
//
// Slot files are written to a temporary file in the slot directory, synced
// and then renamed over the slot file. A slot file is therefore always either
// the previous complete snapshot or the new complete snapshot.
//
// A failed write is retried once. If the retry also fails the failure is
// reported through the warning hook (see SetWarningHook()) and the session
// continues.
package autosave
