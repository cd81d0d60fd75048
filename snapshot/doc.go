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

// Package snapshot captures the state of a running story in a compact form.
//
// Encode() takes a State (the dynamic memory, call stack and program counter
// of the virtual machine) and returns a Snapshot. Memory is stored as the
// difference to the original story memory, as held by a story.Image. The
// difference is found by an exclusive-or of the two memories and then
// compressed with a run-length encoding of zero bytes. If the compressed form
// is larger than the memory itself then the memory is stored uncompressed.
//
// Decode() reverses the process. It requires the same story.Image that was
// used to encode the snapshot and will fail with ChecksumMismatch otherwise.
//
// A Snapshot can be written to and read from a Quetzal save file with the
// Write() and Read() functions. The memory compression is the same as the
// compression used by the CMem chunk of the Quetzal format, so the snapshot
// data is written as is.
//
// Snapshots are owned by exactly one container. Use Clone() to give a copy of
// a snapshot to another container.
package snapshot
