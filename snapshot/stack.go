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
	"fmt"
	"math/bits"

	"github.com/jetsetilly/ifsession/curated"
)

// limits imposed by the Stks chunk format.
const (
	maxArgs       = 7
	maxLocals     = 15
	maxStackWords = 0xffff
)

// flag in the flags byte of a frame record indicating that the result of the
// routine is discarded. the lower four bits are the number of locals.
const flagDiscard = 0x10

// the length of a frame record without the locals and evaluation stack.
const frameHeaderLength = 8

func validateFrames(frames []Frame) error {
	for i, f := range frames {
		var reason string
		switch {
		case f.ReturnPC > MaxAddress:
			reason = "return address out of range"
		case f.ArgCount < 0 || f.ArgCount > maxArgs:
			reason = fmt.Sprintf("%d arguments", f.ArgCount)
		case len(f.Locals) > maxLocals:
			reason = fmt.Sprintf("%d locals", len(f.Locals))
		case len(f.Stack) > maxStackWords:
			reason = "evaluation stack too deep"
		default:
			continue
		}
		return curated.Errorf(CorruptChunk, "Stks", fmt.Sprintf("frame %d: %s", i, reason))
	}
	return nil
}

func stacksLength(frames []Frame) int {
	var n int
	for _, f := range frames {
		n += frameHeaderLength + 2*len(f.Locals) + 2*len(f.Stack)
	}
	return n
}

// encodeStacks returns the data for a Stks chunk. frames must have been
// validated.
func encodeStacks(frames []Frame) []byte {
	data := make([]byte, 0, stacksLength(frames))

	for _, f := range frames {
		flags := byte(len(f.Locals))
		if f.Discard {
			flags |= flagDiscard
		}

		data = append(data,
			byte(f.ReturnPC>>16), byte(f.ReturnPC>>8), byte(f.ReturnPC),
			flags,
			f.ResultVar,
			byte(1<<f.ArgCount-1),
		)
		data = binary.BigEndian.AppendUint16(data, uint16(len(f.Stack)))

		for _, v := range f.Locals {
			data = binary.BigEndian.AppendUint16(data, v)
		}
		for _, v := range f.Stack {
			data = binary.BigEndian.AppendUint16(data, v)
		}
	}

	return data
}

func decodeStacks(data []byte) ([]Frame, error) {
	var frames []Frame

	for len(data) > 0 {
		if len(data) < frameHeaderLength {
			return nil, curated.Errorf(CorruptChunk, "Stks", "truncated frame")
		}

		f := Frame{
			ReturnPC:  uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2]),
			Discard:   data[3]&flagDiscard == flagDiscard,
			ResultVar: data[4],
			ArgCount:  bits.OnesCount8(data[5] & 0x7f),
		}

		numLocals := int(data[3] & 0x0f)
		numStack := int(binary.BigEndian.Uint16(data[6:]))
		data = data[frameHeaderLength:]

		if len(data) < 2*(numLocals+numStack) {
			return nil, curated.Errorf(CorruptChunk, "Stks", "truncated frame")
		}

		if numLocals > 0 {
			f.Locals = make([]uint16, numLocals)
			for i := range f.Locals {
				f.Locals[i] = binary.BigEndian.Uint16(data)
				data = data[2:]
			}
		}

		if numStack > 0 {
			f.Stack = make([]uint16, numStack)
			for i := range f.Stack {
				f.Stack[i] = binary.BigEndian.Uint16(data)
				data = data[2:]
			}
		}

		frames = append(frames, f)
	}

	return frames, nil
}
