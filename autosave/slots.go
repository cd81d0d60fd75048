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

package autosave

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/logger"
	"github.com/jetsetilly/ifsession/snapshot"
	"github.com/jetsetilly/ifsession/story"
)

// Sentinal error patterns.
const (
	// reading or writing a slot file failed
	IOFailure = "autosave: i/o failure: %v"

	// there is no slot that can be used with the story
	NoSlot = "autosave: no slot for story %04x in %s"
)

func ioFailure(err error) error {
	if curated.Is(err, IOFailure) {
		return err
	}
	return curated.Errorf(IOFailure, err)
}

// glob pattern matching all slot files
const slotGlob = "autosave-*.qzl"

// SlotPath returns the path of slot n in dir.
func SlotPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("autosave-%d.qzl", n))
}

// Slot is a snapshot that has been read from a slot file.
type Slot struct {
	Path          string
	ModTime       time.Time
	StoryChecksum uint16
	Snapshot      *snapshot.Snapshot
}

func (s Slot) String() string {
	return fmt.Sprintf("%s: story %04x: %s", filepath.Base(s.Path), s.StoryChecksum, s.Snapshot)
}

// newer returns true if slot a was written more recently than slot b. the
// time recorded in the snapshot is preferred. files that do not record the
// time are ordered by modification time.
func newer(a Slot, b Slot) bool {
	if !a.Snapshot.Timestamp.Equal(b.Snapshot.Timestamp) {
		return a.Snapshot.Timestamp.After(b.Snapshot.Timestamp)
	}
	return a.ModTime.After(b.ModTime)
}

func readSlot(path string) (Slot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Slot{}, ioFailure(err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Slot{}, ioFailure(err)
	}

	snp, err := snapshot.Read(f)
	if err != nil {
		if curated.Is(err, snapshot.CorruptChunk) {
			return Slot{}, err
		}
		return Slot{}, ioFailure(err)
	}

	return Slot{
		Path:          path,
		ModTime:       st.ModTime(),
		StoryChecksum: snp.Checksum,
		Snapshot:      snp,
	}, nil
}

// Slots returns all readable slots in dir, most recent first. Slots that
// cannot be read are logged and skipped.
func Slots(dir string) ([]Slot, error) {
	paths, err := filepath.Glob(filepath.Join(dir, slotGlob))
	if err != nil {
		return nil, ioFailure(err)
	}

	var slots []Slot
	for _, p := range paths {
		s, err := readSlot(p)
		if err != nil {
			logger.Logf(logger.Allow, "autosave", "skipping slot: %v", err)
			continue
		}
		slots = append(slots, s)
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return newer(slots[i], slots[j])
	})

	return slots, nil
}

// LoadSlot reads the slot file at path and decodes it for the story.
func LoadSlot(path string, img *story.Image) (Slot, snapshot.State, error) {
	s, err := readSlot(path)
	if err != nil {
		return Slot{}, snapshot.State{}, err
	}

	state, err := snapshot.Decode(s.Snapshot, img)
	if err != nil {
		return Slot{}, snapshot.State{}, err
	}

	return s, state, nil
}

// Latest returns the most recent slot in dir that can be used with the story.
func Latest(dir string, img *story.Image) (Slot, snapshot.State, error) {
	slots, err := Slots(dir)
	if err != nil {
		return Slot{}, snapshot.State{}, err
	}

	for _, s := range slots {
		if s.StoryChecksum != img.Checksum() {
			continue
		}
		state, err := snapshot.Decode(s.Snapshot, img)
		if err != nil {
			logger.Logf(logger.Allow, "autosave", "skipping slot: %v", err)
			continue
		}
		return s, state, nil
	}

	return Slot{}, snapshot.State{}, curated.Errorf(NoSlot, img.Checksum(), dir)
}
