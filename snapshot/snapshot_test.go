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

package snapshot_test

import (
	"bytes"
	"testing"

	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/quetzal"
	"github.com/jetsetilly/ifsession/snapshot"
	"github.com/jetsetilly/ifsession/story"
	"github.com/jetsetilly/ifsession/test"
)

func image(length int, checksum uint16) *story.Image {
	mem := make([]byte, length)
	for i := range mem {
		mem[i] = byte(i * 7)
	}
	return story.NewImage(mem, 1, "TESTER", checksum)
}

func state(img *story.Image) snapshot.State {
	mem := img.Memory()
	mem[10] = 0xff
	mem[500] ^= 0x55
	return snapshot.State{
		Memory: mem,
		PC:     0x12345,
		Frames: []snapshot.Frame{
			{},
			{ReturnPC: 0x4321, ResultVar: 3, ArgCount: 2, Locals: []uint16{1, 2, 3}, Stack: []uint16{0xffff}},
			{ReturnPC: 0xffffff, Discard: true, ArgCount: 7, Locals: make([]uint16, 15)},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	img := image(1024, 0xabcd)
	st := state(img)

	snp, err := snapshot.Encode(st, img, 5)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, snp.Compressed)
	test.ExpectEquality(t, snp.Turn, uint32(5))
	test.ExpectEquality(t, snp.Checksum, uint16(0xabcd))

	// changing the state after encoding does not affect the snapshot
	st.Memory[0] = 0x99
	st.Frames[1].Locals[0] = 100

	st = state(img)
	dec, err := snapshot.Decode(snp, img)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, dec.Equal(st))
}

func TestUnchangedMemory(t *testing.T) {
	img := image(1024, 1)
	snp, err := snapshot.Encode(snapshot.State{Memory: img.Memory()}, img, 0)
	test.DemandSuccess(t, err)

	// four runs of 256 zeroes
	test.ExpectSuccess(t, snp.Compressed)
	test.ExpectEquality(t, len(snp.Delta), 8)

	dec, err := snapshot.Decode(snp, img)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(dec.Memory, img.Memory()))
}

func TestZeroLength(t *testing.T) {
	img := image(16, 1)
	snp, err := snapshot.Encode(snapshot.State{Memory: []byte{}}, img, 0)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(snp.Delta), 0)

	dec, err := snapshot.Decode(snp, img)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(dec.Memory), 0)
}

func TestRawFallback(t *testing.T) {
	// an original memory of zeroes and a live memory with no zeroes means
	// that every byte of the xor is a literal. a single zero in the live
	// memory is then encoded as two bytes and the raw form is smaller
	img := story.NewImage(make([]byte, 32), 1, "RAW", 2)
	mem := bytes.Repeat([]byte{1}, 32)
	mem[5] = 0xff
	mem[6] = 0

	snp, err := snapshot.Encode(snapshot.State{Memory: mem}, img, 0)
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, snp.Compressed)

	dec, err := snapshot.Decode(snp, img)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(dec.Memory, mem))
}

func TestChecksumMismatch(t *testing.T) {
	img := image(64, 0xabcd)
	snp, err := snapshot.Encode(snapshot.State{Memory: img.Memory()}, img, 0)
	test.DemandSuccess(t, err)

	_, err = snapshot.Decode(snp, image(64, 0x1234))
	test.ExpectSuccess(t, curated.Is(err, snapshot.ChecksumMismatch))
}

func TestStoryTooSmall(t *testing.T) {
	img := image(16, 1)
	_, err := snapshot.Encode(snapshot.State{Memory: make([]byte, 17)}, img, 0)
	test.ExpectSuccess(t, curated.Is(err, snapshot.CorruptChunk))
}

func TestUnrepresentableFrames(t *testing.T) {
	img := image(16, 1)

	_, err := snapshot.Encode(snapshot.State{Frames: []snapshot.Frame{{ArgCount: 8}}}, img, 0)
	test.ExpectSuccess(t, curated.Is(err, snapshot.CorruptChunk))

	_, err = snapshot.Encode(snapshot.State{Frames: []snapshot.Frame{{Locals: make([]uint16, 16)}}}, img, 0)
	test.ExpectSuccess(t, curated.Is(err, snapshot.CorruptChunk))

	_, err = snapshot.Encode(snapshot.State{PC: 0x1000000}, img, 0)
	test.ExpectSuccess(t, curated.Is(err, snapshot.CorruptChunk))
}

func TestCorruptDelta(t *testing.T) {
	img := image(16, 1)

	// dangling run marker
	snp := &snapshot.Snapshot{Checksum: 1, Compressed: true, Delta: []byte{1, 0}, Length: -1}
	_, err := snapshot.Decode(snp, img)
	test.ExpectSuccess(t, curated.Is(err, snapshot.CorruptChunk))

	// run longer than the story
	snp = &snapshot.Snapshot{Checksum: 1, Compressed: true, Delta: []byte{0, 20}, Length: -1}
	_, err = snapshot.Decode(snp, img)
	test.ExpectSuccess(t, curated.Is(err, snapshot.CorruptChunk))

	// raw memory longer than the story
	snp = &snapshot.Snapshot{Checksum: 1, Delta: make([]byte, 17), Length: 17}
	_, err = snapshot.Decode(snp, img)
	test.ExpectSuccess(t, curated.Is(err, snapshot.CorruptChunk))
}

func TestUnknownLength(t *testing.T) {
	mem := make([]byte, 64)
	for i := range mem {
		mem[i] = byte(i + 1)
	}
	img := story.NewImage(mem, 1, "PAD", 3)

	// a delta that changes only the first byte, with the trailing zeroes
	// omitted, is padded to the dynamic length with the original memory
	snp := &snapshot.Snapshot{Checksum: 3, Compressed: true, Delta: []byte{0x80}, Length: -1}
	dec, err := snapshot.Decode(snp, img)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(dec.Memory), 64)
	test.ExpectEquality(t, dec.Memory[0], byte(0x81))
	test.ExpectSuccess(t, bytes.Equal(dec.Memory[1:], mem[1:]))
}

func TestWriteRead(t *testing.T) {
	img := image(1024, 0xabcd)
	snp, err := snapshot.Encode(state(img), img, 42)
	test.DemandSuccess(t, err)
	snp.Annotation = "before the troll"

	var b bytes.Buffer
	test.DemandSuccess(t, snp.Write(&b))
	test.ExpectEquality(t, b.Len(), snp.Size())

	rd, err := snapshot.Read(&b)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, rd.Turn, uint32(42))
	test.ExpectEquality(t, rd.Release, uint16(1))
	test.ExpectEquality(t, rd.Serial, "TESTER")
	test.ExpectEquality(t, rd.PC, uint32(0x12345))
	test.ExpectEquality(t, rd.Annotation, "before the troll")
	test.ExpectEquality(t, rd.Length, 1024)
	test.ExpectSuccess(t, rd.Timestamp.Equal(snp.Timestamp.Truncate(1e6)))

	dec, err := snapshot.Decode(rd, img)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, dec.Equal(state(img)))
}

func TestReadForeign(t *testing.T) {
	img := image(64, 0x0102)

	// a save file without a TURN chunk and with an unknown chunk
	hd := []byte{0, 1, 'T', 'E', 'S', 'T', 'E', 'R', 0x01, 0x02, 0x00, 0x10, 0x00}
	var b bytes.Buffer
	err := quetzal.Write(&b, []quetzal.Chunk{
		{ID: quetzal.IFhd, Data: hd},
		{ID: quetzal.ID{'A', 'U', 'T', 'H'}, Data: []byte("someone")},
		{ID: quetzal.CMem, Data: []byte{0, 2, 0xff}},
		{ID: quetzal.Stks, Data: []byte{0, 0, 0, 0, 0, 0, 0, 0}},
	})
	test.DemandSuccess(t, err)

	rd, err := snapshot.Parse(b.Bytes())
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, rd.Length, -1)
	test.ExpectEquality(t, rd.PC, uint32(0x1000))
	test.ExpectEquality(t, len(rd.Frames), 1)

	dec, err := snapshot.Decode(rd, img)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(dec.Memory), 64)
	test.ExpectEquality(t, dec.Memory[3], img.Memory()[3]^0xff)
}

func TestReadMalformed(t *testing.T) {
	hd := []byte{0, 1, 'T', 'E', 'S', 'T', 'E', 'R', 0x01, 0x02, 0x00, 0x10, 0x00}

	cases := map[string][]quetzal.Chunk{
		"no header": {
			{ID: quetzal.UMem, Data: []byte{1}},
			{ID: quetzal.Stks},
		},
		"two memory chunks": {
			{ID: quetzal.IFhd, Data: hd},
			{ID: quetzal.UMem, Data: []byte{1}},
			{ID: quetzal.CMem, Data: []byte{1}},
			{ID: quetzal.Stks},
		},
		"no stacks": {
			{ID: quetzal.IFhd, Data: hd},
			{ID: quetzal.UMem, Data: []byte{1}},
		},
		"truncated frame": {
			{ID: quetzal.IFhd, Data: hd},
			{ID: quetzal.UMem, Data: []byte{1}},
			{ID: quetzal.Stks, Data: []byte{0, 0, 0, 0x01, 0, 0, 0, 0}},
		},
		"short header": {
			{ID: quetzal.IFhd, Data: hd[:12]},
			{ID: quetzal.UMem, Data: []byte{1}},
			{ID: quetzal.Stks},
		},
	}

	for name, chunks := range cases {
		var b bytes.Buffer
		test.DemandSuccess(t, quetzal.Write(&b, chunks), name)
		_, err := snapshot.Parse(b.Bytes())
		test.ExpectSuccess(t, curated.Is(err, snapshot.CorruptChunk), name)
	}

	_, err := snapshot.Parse([]byte("FORM"))
	test.ExpectSuccess(t, curated.Is(err, snapshot.CorruptChunk))
}
