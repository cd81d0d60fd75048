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
	"time"

	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/logger"
	"github.com/jetsetilly/ifsession/story"
)

// the longest run of zeroes that can be represented by a single run marker.
const maxRun = 256

// Encode the state as a snapshot of the turn. Memory is stored relative to the
// original memory of the story image. The snapshot is timestamped with the
// current time.
//
// The state is copied and can be changed after Encode() returns without
// affecting the snapshot.
func Encode(state State, img *story.Image, turn uint32) (*Snapshot, error) {
	if len(state.Memory) > img.Len() {
		// this can only happen if the engine and the story do not belong
		// together
		logger.Logf(logger.Allow, "snapshot", "live memory (%d bytes) larger than story (%d bytes)", len(state.Memory), img.Len())
		return nil, curated.Errorf(CorruptChunk, "memory", "story image smaller than live memory")
	}

	if state.PC > MaxAddress {
		return nil, curated.Errorf(CorruptChunk, "IFhd", "program counter out of range")
	}

	if err := validateFrames(state.Frames); err != nil {
		return nil, err
	}

	s := &Snapshot{
		Turn:      turn,
		Timestamp: time.Now(),
		Release:   img.Release(),
		Serial:    img.Serial(),
		Checksum:  img.Checksum(),
		Length:    len(state.Memory),
		Frames:    cloneFrames(state.Frames),
		PC:        state.PC,
	}

	orig := img.Memory()
	for i := range state.Memory {
		orig[i] ^= state.Memory[i]
	}
	delta := compress(orig[:len(state.Memory)])

	if len(delta) > len(state.Memory) {
		s.Delta = append([]byte{}, state.Memory...)
	} else {
		s.Delta = delta
		s.Compressed = true
	}

	return s, nil
}

// Decode the snapshot into a State using the original memory of the story
// image. The snapshot is not changed.
//
// If the length of the memory region is not known (see the Length field of
// the Snapshot type) and the compressed data is shorter than the dynamic
// memory of the story then the remaining memory is unchanged from the
// original.
func Decode(s *Snapshot, img *story.Image) (State, error) {
	if s.Checksum != img.Checksum() {
		return State{}, curated.Errorf(ChecksumMismatch, s.Checksum, img.Checksum())
	}

	state := State{
		Frames: cloneFrames(s.Frames),
		PC:     s.PC,
	}

	if !s.Compressed {
		if len(s.Delta) > img.Len() {
			return State{}, curated.Errorf(CorruptChunk, "UMem", "memory larger than story")
		}
		state.Memory = append([]byte{}, s.Delta...)
		return state, nil
	}

	xor, err := decompress(s.Delta, img.Len())
	if err != nil {
		return State{}, err
	}

	n := s.Length
	if n < 0 {
		n = img.DynamicLength()
		if len(xor) > n {
			n = len(xor)
		}
	}

	if n > img.Len() {
		return State{}, curated.Errorf(CorruptChunk, "CMem", "memory larger than story")
	}
	if len(xor) > n {
		return State{}, curated.Errorf(CorruptChunk, "CMem", "data longer than memory")
	}

	state.Memory = img.Memory()[:n]
	for i := range xor {
		state.Memory[i] ^= xor[i]
	}

	return state, nil
}

// compress the data with a run length encoding of zeroes. a zero byte is
// followed by a count byte, one less than the number of zeroes in the run.
// other bytes are stored as is.
func compress(data []byte) []byte {
	out := make([]byte, 0, len(data))

	for i := 0; i < len(data); {
		if data[i] != 0 {
			out = append(out, data[i])
			i++
			continue
		}

		run := 0
		for i < len(data) && data[i] == 0 {
			run++
			i++
		}

		for run > 0 {
			n := run
			if n > maxRun {
				n = maxRun
			}
			out = append(out, 0, byte(n-1))
			run -= n
		}
	}

	return out
}

// decompress reverses compress(). the limit argument is the maximum length of
// the decompressed data.
func decompress(data []byte, limit int) ([]byte, error) {
	out := make([]byte, 0, limit)

	for i := 0; i < len(data); i++ {
		if data[i] != 0 {
			out = append(out, data[i])
		} else {
			i++
			if i >= len(data) {
				return nil, curated.Errorf(CorruptChunk, "CMem", "run marker without count")
			}
			for n := int(data[i]) + 1; n > 0; n-- {
				out = append(out, 0)
			}
		}

		if len(out) > limit {
			return nil, curated.Errorf(CorruptChunk, "CMem", "data longer than story")
		}
	}

	return out, nil
}
