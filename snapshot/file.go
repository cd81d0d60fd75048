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

package snapshot

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/quetzal"
	"github.com/jetsetilly/ifsession/story"
)

// length of the IFhd chunk.
const ifhdLength = 13

// length of the TURN chunk. turn number, timestamp in milliseconds and length
// of memory.
const turnLength = 16

// Write the snapshot to w as a Quetzal save file.
func (s *Snapshot) Write(w io.Writer) error {
	if err := validateFrames(s.Frames); err != nil {
		return err
	}

	hd := make([]byte, 0, ifhdLength)
	hd = binary.BigEndian.AppendUint16(hd, s.Release)
	hd = append(hd, []byte(serial(s.Serial))...)
	hd = binary.BigEndian.AppendUint16(hd, s.Checksum)
	hd = append(hd, byte(s.PC>>16), byte(s.PC>>8), byte(s.PC))

	mem := quetzal.Chunk{ID: quetzal.UMem, Data: s.Delta}
	if s.Compressed {
		mem.ID = quetzal.CMem
	}

	length := s.Length
	if length < 0 {
		length = -1
	}
	turn := make([]byte, 0, turnLength)
	turn = binary.BigEndian.AppendUint32(turn, s.Turn)
	turn = binary.BigEndian.AppendUint64(turn, uint64(s.Timestamp.UnixMilli()))
	turn = binary.BigEndian.AppendUint32(turn, uint32(int32(length)))

	chunks := []quetzal.Chunk{
		{ID: quetzal.IFhd, Data: hd},
		mem,
		{ID: quetzal.Stks, Data: encodeStacks(s.Frames)},
		{ID: quetzal.TURN, Data: turn},
	}
	if s.Annotation != "" {
		chunks = append(chunks, quetzal.Chunk{ID: quetzal.ANNO, Data: []byte(s.Annotation)})
	}

	return quetzal.Write(w, chunks)
}

func serial(s string) string {
	if len(s) >= story.SerialLength {
		return s[:story.SerialLength]
	}
	for len(s) < story.SerialLength {
		s += " "
	}
	return s
}

// Read a Quetzal save file from r. The snapshot is not checked against any
// story. Use Decode() for that.
func Read(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse the data of a Quetzal save file.
func Parse(data []byte) (*Snapshot, error) {
	chunks, err := quetzal.Parse(data)
	if err != nil {
		return nil, curated.Errorf(CorruptChunk, "FORM", err)
	}

	if quetzal.Count(chunks, quetzal.IFhd) != 1 {
		return nil, curated.Errorf(CorruptChunk, "IFhd", "exactly one header chunk required")
	}
	hd, _ := quetzal.Find(chunks, quetzal.IFhd)
	if len(hd.Data) < ifhdLength {
		return nil, curated.Errorf(CorruptChunk, "IFhd", "too short")
	}

	s := &Snapshot{
		Release:  binary.BigEndian.Uint16(hd.Data[0:]),
		Serial:   string(hd.Data[2:8]),
		Checksum: binary.BigEndian.Uint16(hd.Data[8:]),
		PC:       uint32(hd.Data[10])<<16 | uint32(hd.Data[11])<<8 | uint32(hd.Data[12]),
		Length:   -1,
	}

	nc := quetzal.Count(chunks, quetzal.CMem)
	nu := quetzal.Count(chunks, quetzal.UMem)
	switch {
	case nc == 1 && nu == 0:
		c, _ := quetzal.Find(chunks, quetzal.CMem)
		s.Compressed = true
		s.Delta = c.Data
	case nc == 0 && nu == 1:
		c, _ := quetzal.Find(chunks, quetzal.UMem)
		s.Delta = c.Data
		s.Length = len(c.Data)
	default:
		return nil, curated.Errorf(CorruptChunk, "CMem/UMem", "exactly one memory chunk required")
	}

	if quetzal.Count(chunks, quetzal.Stks) != 1 {
		return nil, curated.Errorf(CorruptChunk, "Stks", "exactly one stacks chunk required")
	}
	stks, _ := quetzal.Find(chunks, quetzal.Stks)
	s.Frames, err = decodeStacks(stks.Data)
	if err != nil {
		return nil, err
	}

	if c, ok := quetzal.Find(chunks, quetzal.TURN); ok {
		if len(c.Data) != turnLength {
			return nil, curated.Errorf(CorruptChunk, "TURN", "wrong length")
		}
		s.Turn = binary.BigEndian.Uint32(c.Data[0:])
		s.Timestamp = time.UnixMilli(int64(binary.BigEndian.Uint64(c.Data[4:])))
		if l := int32(binary.BigEndian.Uint32(c.Data[12:])); l >= 0 {
			if !s.Compressed && int(l) != len(s.Delta) {
				return nil, curated.Errorf(CorruptChunk, "TURN", "length does not match memory")
			}
			s.Length = int(l)
		}
	}

	if c, ok := quetzal.Find(chunks, quetzal.ANNO); ok {
		s.Annotation = string(c.Data)
	}

	return s, nil
}
