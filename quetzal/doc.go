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

// Package quetzal reads and writes the IFF container used by the Quetzal
// standard for Z-machine save files.
//
// The container is an IFF FORM of type IFZS:
//
//	"FORM" <u32 length> "IFZS" <chunk> <chunk> ...
//
// Each chunk is a four character ID, a u32 length and the chunk data. Chunks
// with an odd length are followed by a single pad byte which is not counted in
// the length. All numbers are big-endian.
//
// This package knows nothing about the contents of the chunks. See the
// snapshot package for that.
package quetzal
