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
	"fmt"
	"os"
	"strings"

	"github.com/jetsetilly/ifsession/curated"
)

// SerialLength is the number of characters in a story serial.
const SerialLength = 6

// Image is an immutable copy of the original story memory.
type Image struct {
	memory   []byte
	release  uint16
	serial   string
	checksum uint16

	// the number of bytes at the start of memory that the story can change
	dynamicLength int

	// the Z-machine version number. zero if the image was not created from
	// a Z-code file
	version int
}

// NewImage is the preferred method of initialisation for the Image type when
// the story is not being loaded from a Z-code file. The memory is copied and
// the whole of it is considered to be dynamic memory.
//
// The serial is truncated or padded with spaces to SerialLength characters.
func NewImage(memory []byte, release uint16, serial string, checksum uint16) *Image {
	m := make([]byte, len(memory))
	copy(m, memory)
	return &Image{
		memory:        m,
		release:       release,
		serial:        normaliseSerial(serial),
		checksum:      checksum,
		dynamicLength: len(m),
	}
}

func normaliseSerial(serial string) string {
	if len(serial) > SerialLength {
		return serial[:SerialLength]
	}
	return serial + strings.Repeat(" ", SerialLength-len(serial))
}

func (img *Image) String() string {
	return fmt.Sprintf("release %d serial %s checksum %04x", img.release, img.serial, img.checksum)
}

// Identity returns a string that identifies the story. Two images with the
// same identity are the same story, as far as the story header is concerned.
func (img *Image) Identity() string {
	return fmt.Sprintf("%d-%s-%04x", img.release, strings.TrimSpace(img.serial), img.checksum)
}

// Memory returns a copy of the original memory.
func (img *Image) Memory() []byte {
	m := make([]byte, len(img.memory))
	copy(m, img.memory)
	return m
}

// Len returns the length of the original memory.
func (img *Image) Len() int {
	return len(img.memory)
}

// DynamicLength returns the length of the region of memory that can be changed
// by the story.
func (img *Image) DynamicLength() int {
	return img.dynamicLength
}

// Release returns the release number of the story.
func (img *Image) Release() uint16 {
	return img.release
}

// Serial returns the six character serial of the story.
func (img *Image) Serial() string {
	return img.serial
}

// Checksum returns the story checksum.
func (img *Image) Checksum() uint16 {
	return img.checksum
}

// Version returns the Z-machine version of the story. Zero if the Image was
// created with NewImage().
func (img *Image) Version() int {
	return img.version
}

// Load reads the Z-code file at path and returns a new Image.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, curated.Errorf("story: %v", err)
	}
	return FromZCode(data)
}
