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

package story

import (
	"encoding/binary"

	"github.com/jetsetilly/ifsession/curated"
)

// Sentinal error patterns.
const (
	// the data does not look like a Z-code story file
	NotZCode = "story: not a z-code file: %s"
)

// offsets of fields in the Z-machine header.
const (
	hdrVersion    = 0x00
	hdrRelease    = 0x02
	hdrStaticBase = 0x0e
	hdrSerial     = 0x12
	hdrFileLength = 0x1a
	hdrChecksum   = 0x1c

	// the length of the header. this is also the first byte included in the
	// checksum calculation
	headerLength = 0x40
)

// FromZCode creates an Image from the contents of a Z-code file. The data is
// copied.
func FromZCode(data []byte) (*Image, error) {
	if len(data) < headerLength {
		return nil, curated.Errorf(NotZCode, "file too short")
	}

	version := int(data[hdrVersion])
	if version < 1 || version > 8 {
		return nil, curated.Errorf(NotZCode, "unrecognised version")
	}

	img := NewImage(data,
		binary.BigEndian.Uint16(data[hdrRelease:]),
		string(data[hdrSerial:hdrSerial+SerialLength]),
		binary.BigEndian.Uint16(data[hdrChecksum:]),
	)
	img.version = version

	// dynamic memory runs from the start of the file to the base of static
	// memory
	img.dynamicLength = int(binary.BigEndian.Uint16(data[hdrStaticBase:]))
	if img.dynamicLength < headerLength || img.dynamicLength > len(data) {
		return nil, curated.Errorf(NotZCode, "static memory base out of range")
	}

	// some very early stories have no checksum in the header
	if img.checksum == 0 {
		img.checksum = Checksum(data)
	}

	return img, nil
}

// fileLength returns the length of the story as stated in the header. the
// value in the header is scaled according to the version of the story.
func fileLength(data []byte) int {
	l := int(binary.BigEndian.Uint16(data[hdrFileLength:]))
	switch v := data[hdrVersion]; {
	case v <= 3:
		l *= 2
	case v <= 5:
		l *= 4
	default:
		l *= 8
	}
	return l
}

// Checksum calculates the checksum of the Z-code data in the same way as the
// Z-machine verify instruction. That is, the sum of every byte after the
// header up to the file length stated in the header, modulo 0x10000.
//
// A file length of zero, or one longer than the data, is treated as being the
// length of the data.
func Checksum(data []byte) uint16 {
	if len(data) < headerLength {
		return 0
	}

	l := fileLength(data)
	if l == 0 || l > len(data) {
		l = len(data)
	}

	var sum uint16
	for _, b := range data[headerLength:l] {
		sum += uint16(b)
	}
	return sum
}
