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

// Package history keeps a bounded list of snapshots, one per turn, and allows
// the session to move backwards and forwards through them.
//
// The list is bounded by the total number of bytes the snapshots would occupy
// if they were written to disk (see snapshot.Size()). When the bound is
// exceeded the oldest snapshots are forgotten. The snapshot at the cursor is
// never forgotten, even if on its own it exceeds the bound.
//
// Snapshots passed to Push() become owned by the History. Snapshots returned
// by Undo(), Redo() and Current() are copies and can be changed freely.
//
// The History type is not safe for concurrent use.
package history
