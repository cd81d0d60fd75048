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

package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/ifsession/autosave"
	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/engine"
	"github.com/jetsetilly/ifsession/metadata"
	"github.com/jetsetilly/ifsession/notifications"
	"github.com/jetsetilly/ifsession/savedb"
	"github.com/jetsetilly/ifsession/session"
	"github.com/jetsetilly/ifsession/snapshot"
	"github.com/jetsetilly/ifsession/story"
	"github.com/jetsetilly/ifsession/test"
)

// vm is a virtual machine that counts turns in the second byte of memory.
type vm struct {
	mem    []byte
	frames []snapshot.Frame
	pc     uint32

	// number of calls to WriteDynamicMemory() that will fail
	failWrites int
}

func newVM(img *story.Image) *vm {
	return &vm{mem: img.Memory(), pc: 0x400}
}

func (v *vm) ReadDynamicMemory() []byte {
	return append([]byte(nil), v.mem...)
}

func (v *vm) WriteDynamicMemory(mem []byte) error {
	if v.failWrites > 0 {
		v.failWrites--
		return curated.Errorf("vm: memory is read only")
	}
	v.mem = append(v.mem[:0], mem...)
	return nil
}

func (v *vm) CallStack() []snapshot.Frame {
	return append([]snapshot.Frame(nil), v.frames...)
}

func (v *vm) SetCallStack(frames []snapshot.Frame) error {
	v.frames = append([]snapshot.Frame(nil), frames...)
	return nil
}

func (v *vm) ProgramCounter() uint32 {
	return v.pc
}

func (v *vm) SetProgramCounter(pc uint32) error {
	v.pc = pc
	return nil
}

func (v *vm) StepTurn(input string) engine.Result {
	switch input {
	case "quit":
		return engine.Result{Status: engine.Quit, Reason: "player quit"}
	case "crash":
		return engine.Result{Status: engine.Fault, Reason: "illegal opcode"}
	}

	v.mem[1]++
	v.mem[2] = byte(len(input))
	v.pc += 0x10
	v.frames = []snapshot.Frame{{ReturnPC: v.pc, Locals: []uint16{uint16(v.mem[1])}}}

	if input == "sound" {
		return engine.Result{Status: engine.Fault, Reason: "sound effect 3", Unsupported: true}
	}
	return engine.Result{Status: engine.Continues}
}

var img = story.NewImage(make([]byte, 128), 1, "SCENE", 0xabcd)

func preferences(t *testing.T) *session.Preferences {
	t.Helper()
	p, err := session.NewPreferences(filepath.Join(t.TempDir(), "prefs"))
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, p.SlotDir.Set(t.TempDir()))
	return p
}

func start(t *testing.T, p *session.Preferences, v *vm) *session.Session {
	t.Helper()
	s := session.NewSession(p)
	test.DemandSuccess(t, s.Load(img, v, nil))
	test.DemandSuccess(t, s.Start(context.Background()))
	test.DemandEquality(t, s.State(), session.Running)
	t.Cleanup(func() {
		s.End()
	})
	return s
}

func step(t *testing.T, s *session.Session, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := s.Step("look")
		test.DemandSuccess(t, err)
	}
}

func hasNotice(msgs []notifications.Message, notice notifications.Notice) bool {
	for _, m := range msgs {
		if m.Notice == notice {
			return true
		}
	}
	return false
}

func TestScenario(t *testing.T) {
	v := newVM(img)
	s := start(t, preferences(t), v)

	for i := uint32(1); i <= 5; i++ {
		out, err := s.Step("look")
		test.DemandSuccess(t, err)
		test.ExpectEquality(t, out.Turn, i)
		test.ExpectEquality(t, out.Status, engine.Continues)
	}
	test.ExpectEquality(t, len(s.Notices()), 0)

	out, err := s.Undo()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.Turn, uint32(4))

	out, err = s.Undo()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.Turn, uint32(3))
	test.ExpectEquality(t, v.mem[1], byte(3))
	test.ExpectEquality(t, v.pc, uint32(0x430))
	test.DemandEquality(t, len(v.frames), 1)
	test.ExpectEquality(t, v.frames[0].Locals[0], uint16(3))

	out, err = s.Redo()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.Turn, uint32(4))
	test.ExpectEquality(t, v.mem[1], byte(4))
	test.ExpectEquality(t, s.Turn(), uint32(4))

	msgs := s.Notices()
	test.DemandEquality(t, len(msgs), 3)
	test.ExpectEquality(t, msgs[0].Notice, notifications.NotifyUndo)
	test.ExpectEquality(t, msgs[1].String(), "[UNDO] turn 3")
	test.ExpectEquality(t, msgs[2].Notice, notifications.NotifyRedo)

	// notices are drained
	test.ExpectEquality(t, len(s.Notices()), 0)
}

func TestNoHistory(t *testing.T) {
	v := newVM(img)
	s := start(t, preferences(t), v)

	out, err := s.Undo()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, out.NoOp)
	test.ExpectEquality(t, out.Turn, uint32(0))
	test.ExpectSuccess(t, hasNotice(s.Notices(), notifications.NotifyNoHistory))

	out, err = s.Redo()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, out.NoOp)
	test.ExpectEquality(t, s.State(), session.Running)
}

func TestRedoInvalidation(t *testing.T) {
	v := newVM(img)
	s := start(t, preferences(t), v)
	step(t, s, 3)

	_, err := s.Undo()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, s.CanRedo())

	out, err := s.Step("north")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.Turn, uint32(3))
	test.ExpectFailure(t, s.CanRedo())

	out, err = s.Redo()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, out.NoOp)
}

func TestWrongState(t *testing.T) {
	s := session.NewSession(preferences(t))
	test.ExpectEquality(t, s.State(), session.Idle)

	_, err := s.Step("look")
	test.ExpectSuccess(t, curated.Is(err, session.WrongState))
	err = s.Start(context.Background())
	test.ExpectSuccess(t, curated.Is(err, session.WrongState))

	test.DemandSuccess(t, s.Load(img, newVM(img), nil))
	test.ExpectEquality(t, s.State(), session.Loaded)
	_, err = s.Undo()
	test.ExpectSuccess(t, curated.Is(err, session.WrongState))
	err = s.Load(img, newVM(img), nil)
	test.ExpectSuccess(t, curated.Is(err, session.WrongState))

	test.DemandSuccess(t, s.End())
	test.ExpectEquality(t, s.State(), session.Quit)
	test.DemandSuccess(t, s.End())
}

func TestTitle(t *testing.T) {
	cat, err := metadata.NewCatalog([]byte("stories:\n  - identity: 1-SCENE-abcd\n    title: The Scene\n"))
	test.DemandSuccess(t, err)

	s := session.NewSession(preferences(t))
	test.DemandSuccess(t, s.Load(img, newVM(img), cat))
	test.ExpectEquality(t, s.Title(), "The Scene")

	s = session.NewSession(preferences(t))
	test.DemandSuccess(t, s.Load(img, newVM(img), nil))
	test.ExpectEquality(t, s.Title(), "1-SCENE-abcd")
}

func TestSaveRestore(t *testing.T) {
	v := newVM(img)
	s := start(t, preferences(t), v)
	pth := filepath.Join(t.TempDir(), "save.qzl")

	step(t, s, 2)
	test.DemandSuccess(t, s.Save(pth, "at the door"))
	test.ExpectSuccess(t, hasNotice(s.Notices(), notifications.NotifySaved))

	step(t, s, 2)
	_, err := s.Undo()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, s.CanRedo())

	test.DemandSuccess(t, s.Restore(pth))
	test.ExpectEquality(t, v.mem[1], byte(2))
	test.ExpectEquality(t, v.pc, uint32(0x420))

	// the restore is a new turn following the current turn
	test.ExpectEquality(t, s.Turn(), uint32(4))
	test.ExpectFailure(t, s.CanRedo())
	test.ExpectSuccess(t, s.CanUndo())
	test.ExpectSuccess(t, hasNotice(s.Notices(), notifications.NotifyRestored))

	// undoing the restore returns to the turn before it
	out, err := s.Undo()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.Turn, uint32(3))
	test.ExpectEquality(t, v.mem[1], byte(3))

	data, err := os.ReadFile(pth)
	test.DemandSuccess(t, err)
	snp, err := snapshot.Parse(data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, snp.Annotation, "at the door")
	test.ExpectEquality(t, snp.Turn, uint32(2))
}

func TestRestoreRejected(t *testing.T) {
	v := newVM(img)
	s := start(t, preferences(t), v)
	step(t, s, 2)
	dir := t.TempDir()

	// save for a different story
	other := story.NewImage(make([]byte, 128), 1, "OTHER", 0x1234)
	snp, err := snapshot.Encode(snapshot.State{Memory: other.Memory()}, other, 1)
	test.DemandSuccess(t, err)
	pth := filepath.Join(dir, "other.qzl")
	test.DemandSuccess(t, autosave.WriteFile(pth, snp))

	err = s.Restore(pth)
	test.ExpectSuccess(t, curated.Has(err, snapshot.ChecksumMismatch))

	corrupt := filepath.Join(dir, "corrupt.qzl")
	test.DemandSuccess(t, os.WriteFile(corrupt, []byte("FORM\x00\x00\x00\x04IFZS"), 0o600))
	err = s.Restore(corrupt)
	test.ExpectSuccess(t, curated.Has(err, snapshot.CorruptChunk))

	err = s.Restore(filepath.Join(dir, "missing.qzl"))
	test.ExpectSuccess(t, curated.Has(err, autosave.IOFailure))

	// nothing has changed
	test.ExpectEquality(t, s.State(), session.Running)
	test.ExpectEquality(t, s.Turn(), uint32(2))
	test.ExpectEquality(t, v.mem[1], byte(2))
	test.ExpectFailure(t, hasNotice(s.Notices(), notifications.NotifyRestored))
}

func TestRollback(t *testing.T) {
	v := newVM(img)
	s := start(t, preferences(t), v)
	step(t, s, 3)

	// the undo fails but the previous state is put back
	v.failWrites = 1
	_, err := s.Undo()
	test.ExpectSuccess(t, curated.Has(err, session.EngineFault))
	test.ExpectEquality(t, s.State(), session.Running)
	test.ExpectEquality(t, s.Turn(), uint32(3))
	test.ExpectEquality(t, v.mem[1], byte(3))
	test.ExpectFailure(t, s.CanRedo())

	out, err := s.Undo()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.Turn, uint32(2))

	// the previous state can not be put back either
	v.failWrites = 2
	_, err = s.Redo()
	test.ExpectSuccess(t, curated.Has(err, session.EngineFault))
	test.ExpectEquality(t, s.State(), session.Loaded)

	// the session can be started again
	test.DemandSuccess(t, s.Start(context.Background()))
	test.ExpectEquality(t, s.Turn(), uint32(0))
	test.ExpectFailure(t, s.CanUndo())
}

func TestUnsupported(t *testing.T) {
	v := newVM(img)
	s := start(t, preferences(t), v)

	out, err := s.Step("sound")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.Turn, uint32(1))
	test.ExpectEquality(t, s.State(), session.Running)

	msgs := s.Notices()
	test.DemandEquality(t, len(msgs), 1)
	test.ExpectEquality(t, msgs[0].String(), "[UNSUPPORTED] sound effect 3")
}

func TestFault(t *testing.T) {
	v := newVM(img)
	s := start(t, preferences(t), v)
	step(t, s, 1)

	out, err := s.Step("crash")
	test.ExpectSuccess(t, curated.Is(err, session.EngineFault))
	test.ExpectEquality(t, out.Status, engine.Fault)
	test.ExpectEquality(t, out.Turn, uint32(1))
	test.ExpectEquality(t, s.State(), session.Quit)
	test.ExpectEquality(t, s.QuitReason(), "illegal opcode")
	test.ExpectSuccess(t, hasNotice(s.Notices(), notifications.NotifyQuit))

	_, err = s.Step("look")
	test.ExpectSuccess(t, curated.Is(err, session.WrongState))
}

func TestQuit(t *testing.T) {
	v := newVM(img)
	s := start(t, preferences(t), v)

	out, err := s.Step("quit")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.Status, engine.Quit)
	test.ExpectEquality(t, out.Reason, "player quit")
	test.ExpectEquality(t, s.State(), session.Quit)
}

func TestResumeAutosave(t *testing.T) {
	p := preferences(t)
	test.DemandSuccess(t, p.EveryTurns.Set(0))

	v := newVM(img)
	s := start(t, p, v)
	step(t, s, 3)
	test.DemandSuccess(t, s.End())

	// the end of the session wrote a single slot
	slots, err := autosave.Slots(p.SlotDir.Get().(string))
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(slots), 1)
	test.ExpectEquality(t, slots[0].Snapshot.Turn, uint32(3))

	test.DemandSuccess(t, p.ResumeAutosave.Set(true))
	w := newVM(img)
	s = start(t, p, w)
	test.ExpectEquality(t, s.Turn(), uint32(3))
	test.ExpectEquality(t, w.mem[1], byte(3))
	test.ExpectEquality(t, w.pc, uint32(0x430))

	out, err := s.Step("look")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.Turn, uint32(4))
}

func TestRisky(t *testing.T) {
	s := session.NewSession(preferences(t))
	test.ExpectSuccess(t, curated.Is(s.Risky(), session.WrongState))

	s = start(t, preferences(t), newVM(img))
	test.ExpectSuccess(t, s.Risky())
}

func TestHistoryCapacity(t *testing.T) {
	p := preferences(t)
	s := start(t, p, newVM(img))
	step(t, s, 3)
	test.ExpectSuccess(t, s.CanUndo())

	test.DemandSuccess(t, p.HistoryCapacity.Set(1))
	test.ExpectFailure(t, s.CanUndo())
	test.ExpectEquality(t, s.Turn(), uint32(3))
}

func TestNamedSaves(t *testing.T) {
	p := preferences(t)
	dbPath := filepath.Join(t.TempDir(), "saves.db")
	test.DemandSuccess(t, p.Database.Set(dbPath))

	v := newVM(img)
	s := start(t, p, v)
	ctx := context.Background()

	step(t, s, 2)
	id, err := s.SaveNamed(ctx, "two")
	test.DemandSuccess(t, err)
	test.ExpectInequality(t, id, "")

	step(t, s, 2)
	test.DemandSuccess(t, s.RestoreNamed(ctx, "two"))
	test.ExpectEquality(t, v.mem[1], byte(2))
	test.ExpectEquality(t, s.Turn(), uint32(5))

	err = s.RestoreNamed(ctx, "missing")
	test.ExpectSuccess(t, curated.Has(err, savedb.NotFound))

	saves, err := s.ListSaves(ctx)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(saves), 1)
	test.ExpectEquality(t, saves[0].Name, "two")
	test.ExpectEquality(t, saves[0].Turn, uint32(2))

	// ending the session stores an autosave in the catalogue
	test.DemandSuccess(t, s.End())

	s = start(t, p, newVM(img))
	saves, err = s.ListSaves(ctx)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(saves), 2)
	test.ExpectEquality(t, saves[0].Kind, savedb.Autosave)

	err = s.RestoreNamed(ctx, saves[0].Name)
	test.ExpectSuccess(t, curated.Is(err, session.AutosaveRestore))
}

func TestNoDatabase(t *testing.T) {
	s := start(t, preferences(t), newVM(img))
	_, err := s.SaveNamed(context.Background(), "one")
	test.ExpectSuccess(t, curated.Is(err, session.NoDatabase))
	err = s.RestoreNamed(context.Background(), "one")
	test.ExpectSuccess(t, curated.Is(err, session.NoDatabase))
}
