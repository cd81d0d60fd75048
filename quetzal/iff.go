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

package quetzal

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/jetsetilly/ifsession/curated"
)

// Sentinal error patterns.
const (
	// the container is malformed or truncated
	Malformed = "iff: malformed container: %s"
)

// ID is a four character chunk or form ID.
type ID [4]byte

func (id ID) String() string {
	return string(id[:])
}

// list of IDs used by the container and by the Quetzal chunks.
var (
	FORM = ID{'F', 'O', 'R', 'M'}
	IFZS = ID{'I', 'F', 'Z', 'S'}
	IFhd = ID{'I', 'F', 'h', 'd'}
	CMem = ID{'C', 'M', 'e', 'm'}
	UMem = ID{'U', 'M', 'e', 'm'}
	Stks = ID{'S', 't', 'k', 's'}
	ANNO = ID{'A', 'N', 'N', 'O'}
	TURN = ID{'T', 'U', 'R', 'N'}
)

// Chunk is a single chunk in the container.
type Chunk struct {
	ID   ID
	Data []byte
}

// size returns the number of bytes the chunk occupies in the container,
// including the chunk header and any pad byte.
func (c Chunk) size() int {
	return ChunkSize(len(c.Data))
}

// ChunkSize returns the number of bytes a chunk with the specified amount of
// data occupies in a container.
func ChunkSize(dataLen int) int {
	return 8 + dataLen + dataLen&1
}

// FormSize returns the total size of a container made up of chunks with the
// specified data lengths.
func FormSize(dataLens ...int) int {
	n := 12
	for _, l := range dataLens {
		n += ChunkSize(l)
	}
	return n
}

// Write the chunks to w as an IFZS form.
func Write(w io.Writer, chunks []Chunk) error {
	var l int
	for _, c := range chunks {
		l += c.size()
	}

	b := bytes.Buffer{}
	b.Grow(12 + l)

	b.Write(FORM[:])
	binary.Write(&b, binary.BigEndian, uint32(4+l))
	b.Write(IFZS[:])

	for _, c := range chunks {
		b.Write(c.ID[:])
		binary.Write(&b, binary.BigEndian, uint32(len(c.Data)))
		b.Write(c.Data)
		if len(c.Data)&1 == 1 {
			b.WriteByte(0)
		}
	}

	_, err := w.Write(b.Bytes())
	return err
}

// Parse the data as an IFZS form and return the chunks in the order they
// appear. The chunk data is copied.
func Parse(data []byte) ([]Chunk, error) {
	if len(data) < 12 {
		return nil, curated.Errorf(Malformed, "too short")
	}
	if !bytes.Equal(data[0:4], FORM[:]) {
		return nil, curated.Errorf(Malformed, "not an IFF form")
	}
	if !bytes.Equal(data[8:12], IFZS[:]) {
		return nil, curated.Errorf(Malformed, "not a quetzal save")
	}

	l := int(binary.BigEndian.Uint32(data[4:8]))
	if l < 4 || 8+l > len(data) {
		return nil, curated.Errorf(Malformed, "form length does not match data")
	}

	// ignore anything after the end of the form
	data = data[12 : 8+l]

	var chunks []Chunk
	for len(data) > 0 {
		if len(data) < 8 {
			return nil, curated.Errorf(Malformed, "truncated chunk header")
		}

		var c Chunk
		copy(c.ID[:], data[0:4])
		n := int(binary.BigEndian.Uint32(data[4:8]))
		data = data[8:]

		if n > len(data) {
			return nil, curated.Errorf(Malformed, "truncated "+c.ID.String()+" chunk")
		}

		c.Data = make([]byte, n)
		copy(c.Data, data[:n])
		chunks = append(chunks, c)

		// skip pad byte. a missing pad byte at the very end of the form is
		// tolerated
		n += n & 1
		if n > len(data) {
			n = len(data)
		}
		data = data[n:]
	}

	return chunks, nil
}

// Find returns the first chunk with the ID. Returns false if there is no such
// chunk.
func Find(chunks []Chunk, id ID) (Chunk, bool) {
	for _, c := range chunks {
		if c.ID == id {
			return c, true
		}
	}
	return Chunk{}, false
}

// Count returns the number of chunks with the ID.
func Count(chunks []Chunk, id ID) int {
	var n int
	for _, c := range chunks {
		if c.ID == id {
			n++
		}
	}
	return n
}
