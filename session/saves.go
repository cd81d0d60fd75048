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

package session

import (
	"bytes"
	"context"

	"github.com/jetsetilly/ifsession/autosave"
	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/logger"
	"github.com/jetsetilly/ifsession/notifications"
	"github.com/jetsetilly/ifsession/savedb"
	"github.com/jetsetilly/ifsession/snapshot"
)

// Sentinal error patterns.
const (
	// named saves require a save catalogue
	NoDatabase = "session: no save database"

	// autosaves in the catalogue can not be restored by name
	AutosaveRestore = "session: cannot restore an autosave manually: %s"
)

// Save the current turn to a Quetzal file at path. The annotation is stored in
// the file and can be empty.
func (s *Session) Save(path string, annotation string) error {
	s.crit.Lock()
	defer s.crit.Unlock()

	if err := s.requireState("save", Running); err != nil {
		return err
	}

	s.state = Saving
	defer func() {
		s.state = Running
	}()

	snap, _ := s.hist.Current()
	snap.Annotation = annotation

	if err := autosave.WriteFile(path, snap); err != nil {
		return curated.Errorf("session: save: %v", err)
	}

	s.notify(notifications.NotifySaved, "turn %d to %s", snap.Turn, path)

	return nil
}

// Restore the Quetzal file at path. On success the restored state becomes a
// new turn in the history, and any undone turns can no longer be redone. On
// failure the session is unchanged.
func (s *Session) Restore(path string) error {
	s.crit.Lock()
	defer s.crit.Unlock()

	if err := s.requireState("restore", Running); err != nil {
		return err
	}

	slot, state, err := autosave.LoadSlot(path, s.img)
	if err != nil {
		return curated.Errorf("session: restore: %v", err)
	}

	if err := s.restore(state); err != nil {
		return err
	}

	s.notify(notifications.NotifyRestored, "%s (saved at turn %d)", path, slot.Snapshot.Turn)

	return nil
}

// restore the state and push it to the history as a new turn. must be called
// with the turn lock held and the session in the Running state.
func (s *Session) restore(state snapshot.State) error {
	s.state = Restoring

	if err := s.apply(state); err != nil {
		if s.state == Restoring {
			s.state = Running
		}
		return curated.Errorf("session: restore: %v", err)
	}

	s.state = Running

	snap, err := snapshot.Encode(state, s.img, s.turn()+1)
	if err != nil {
		return curated.Errorf("session: restore: %v", err)
	}
	if err := s.hist.Push(snap.Clone()); err != nil {
		return curated.Errorf("session: restore: %v", err)
	}
	s.sch.Turn(snap)

	return nil
}

// storeSave adds the snapshot to the save catalogue. must be called with the
// turn lock held and the catalogue open.
func (s *Session) storeSave(ctx context.Context, snap *snapshot.Snapshot, name string, kind savedb.Kind) (string, error) {
	var b bytes.Buffer
	if err := snap.Write(&b); err != nil {
		return "", err
	}

	id, err := s.db.Store(ctx, savedb.Save{
		Identity:  s.img.Identity(),
		Name:      name,
		Kind:      kind,
		SavedWhen: snap.Timestamp,
		Turn:      snap.Turn,
		Data:      b.Bytes(),
		ParentID:  s.lastSaveID,
	}, kind == savedb.Normal)
	if err != nil {
		return "", err
	}

	s.lastSaveID = id
	return id, nil
}

// SaveNamed adds the current turn to the save catalogue under the name. An
// existing save with the same name is replaced. The ID of the save is
// returned.
func (s *Session) SaveNamed(ctx context.Context, name string) (string, error) {
	s.crit.Lock()
	defer s.crit.Unlock()

	if err := s.requireState("save", Running); err != nil {
		return "", err
	}
	if s.db == nil {
		return "", curated.Errorf(NoDatabase)
	}

	s.state = Saving
	defer func() {
		s.state = Running
	}()

	snap, _ := s.hist.Current()
	id, err := s.storeSave(ctx, snap, name, savedb.Normal)
	if err != nil {
		return "", curated.Errorf("session: save: %v", err)
	}

	s.notify(notifications.NotifySaved, "turn %d as %q", snap.Turn, name)

	return id, nil
}

// RestoreNamed restores the save with the name from the save catalogue. See
// Restore() for how the history is changed.
func (s *Session) RestoreNamed(ctx context.Context, name string) error {
	s.crit.Lock()
	defer s.crit.Unlock()

	if err := s.requireState("restore", Running); err != nil {
		return err
	}
	if s.db == nil {
		return curated.Errorf(NoDatabase)
	}

	save, err := s.db.Get(ctx, s.img.Identity(), name)
	if err != nil {
		return curated.Errorf("session: restore: %v", err)
	}
	if save.Kind == savedb.Autosave {
		return curated.Errorf(AutosaveRestore, name)
	}

	snap, err := snapshot.Parse(save.Data)
	if err != nil {
		return curated.Errorf("session: restore: %v", err)
	}
	state, err := snapshot.Decode(snap, s.img)
	if err != nil {
		return curated.Errorf("session: restore: %v", err)
	}

	if err := s.restore(state); err != nil {
		return err
	}
	s.lastSaveID = save.ID

	logger.Logf(logger.Allow, "session", "restored %s", save)
	s.notify(notifications.NotifyRestored, "%q (saved at turn %d)", name, save.Turn)

	return nil
}

// ListSaves returns the saves in the catalogue for the story, most recent
// first.
func (s *Session) ListSaves(ctx context.Context) ([]savedb.Save, error) {
	s.crit.Lock()
	defer s.crit.Unlock()

	if s.db == nil {
		return nil, curated.Errorf(NoDatabase)
	}

	saves, err := s.db.List(ctx, s.img.Identity())
	if err != nil {
		return nil, curated.Errorf("session: %v", err)
	}
	return saves, nil
}
