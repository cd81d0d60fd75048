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

// Package story represents the story file as it was when it was loaded. The
// Image type is immutable for the lifetime of a session and is used as the
// baseline against which snapshots of the running story are compressed. It is
// also used to check that a save file is compatible with the loaded story.
//
// An Image is usually created from a Z-code file with Load() or FromZCode().
// The release number, serial and checksum are taken from the story header.
//
// Images can also be created directly with NewImage(). This is useful when
// the story is not a Z-code file or for testing purposes.
package story
