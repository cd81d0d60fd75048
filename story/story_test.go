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

package story_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/story"
	"github.com/jetsetilly/ifsession/test"
)

// zcode returns a minimal version 3 story file of the specified length.
func zcode(length int, staticBase uint16, checksum uint16) []byte {
	d := make([]byte, length)
	d[0x00] = 3
	binary.BigEndian.PutUint16(d[0x02:], 88)
	binary.BigEndian.PutUint16(d[0x0e:], staticBase)
	copy(d[0x12:], "840726")
	binary.BigEndian.PutUint16(d[0x1a:], uint16(length/2))
	binary.BigEndian.PutUint16(d[0x1c:], checksum)
	for i := 0x40; i < length; i++ {
		d[i] = byte(i)
	}
	return d
}

func TestNewImage(t *testing.T) {
	mem := []byte{1, 2, 3, 4}
	img := story.NewImage(mem, 1, "ABC", 0xabcd)

	test.ExpectEquality(t, img.Len(), 4)
	test.ExpectEquality(t, img.DynamicLength(), 4)
	test.ExpectEquality(t, img.Serial(), "ABC   ")
	test.ExpectEquality(t, img.Checksum(), uint16(0xabcd))
	test.ExpectEquality(t, img.Identity(), "1-ABC-abcd")

	// the image is not affected by changes to the original slice or to the
	// slice returned by Memory()
	mem[0] = 100
	m := img.Memory()
	test.ExpectEquality(t, m[0], byte(1))
	m[1] = 100
	test.ExpectEquality(t, img.Memory()[1], byte(2))
}

func TestFromZCode(t *testing.T) {
	d := zcode(0x200, 0x100, 0x1234)
	img, err := story.FromZCode(d)
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, img.Version(), 3)
	test.ExpectEquality(t, img.Release(), uint16(88))
	test.ExpectEquality(t, img.Serial(), "840726")
	test.ExpectEquality(t, img.Checksum(), uint16(0x1234))
	test.ExpectEquality(t, img.DynamicLength(), 0x100)
	test.ExpectEquality(t, img.Len(), 0x200)
}

func TestMissingChecksum(t *testing.T) {
	d := zcode(0x200, 0x100, 0)
	img, err := story.FromZCode(d)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, img.Checksum(), story.Checksum(d))
	test.ExpectInequality(t, img.Checksum(), uint16(0))
}

func TestChecksum(t *testing.T) {
	d := zcode(0x44, 0x40, 0)
	test.ExpectEquality(t, story.Checksum(d), uint16(0x40+0x41+0x42+0x43))

	// bytes beyond the stated file length are not included
	d = zcode(0x48, 0x40, 0)
	binary.BigEndian.PutUint16(d[0x1a:], 0x22)
	test.ExpectEquality(t, story.Checksum(d), uint16(0x40+0x41+0x42+0x43))
}

func TestNotZCode(t *testing.T) {
	_, err := story.FromZCode([]byte{1, 2, 3})
	test.ExpectSuccess(t, curated.Is(err, story.NotZCode))

	d := zcode(0x200, 0x100, 0x1234)
	d[0] = 0
	_, err = story.FromZCode(d)
	test.ExpectSuccess(t, curated.Is(err, story.NotZCode))

	d = zcode(0x200, 0x300, 0x1234)
	_, err = story.FromZCode(d)
	test.ExpectSuccess(t, curated.Is(err, story.NotZCode))
}

func TestLoad(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "story.z3")
	test.DemandSuccess(t, os.WriteFile(fn, zcode(0x200, 0x100, 0x1234), 0o600))

	img, err := story.Load(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, img.Identity(), "88-840726-1234")

	_, err = story.Load(filepath.Join(t.TempDir(), "missing.z3"))
	test.ExpectFailure(t, err)
}
