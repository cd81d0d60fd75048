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
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jetsetilly/ifsession/autosave"
	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/engine"
	"github.com/jetsetilly/ifsession/history"
	"github.com/jetsetilly/ifsession/logger"
	"github.com/jetsetilly/ifsession/metadata"
	"github.com/jetsetilly/ifsession/notifications"
	"github.com/jetsetilly/ifsession/paths"
	"github.com/jetsetilly/ifsession/prefs"
	"github.com/jetsetilly/ifsession/savedb"
	"github.com/jetsetilly/ifsession/snapshot"
	"github.com/jetsetilly/ifsession/story"
)

// Sentinal error patterns.
const (
	// the operation is not possible in the current state
	WrongState = "session: cannot %s while %s"

	// the virtual machine failed in a way that ends the session, or could not
	// be put into a requested state
	EngineFault = "session: engine fault: %v"
)

// Outcome of an operation that changes the turn.
type Outcome struct {
	// the turn the session is at after the operation
	Turn uint32

	// the status of the virtual machine. only meaningful for Step()
	Status engine.Status
	Reason string

	// the operation did nothing. for example, an undo with no history
	NoOp bool
}

func (o Outcome) String() string {
	if o.NoOp {
		return fmt.Sprintf("turn %d (no change)", o.Turn)
	}
	if o.Reason != "" {
		return fmt.Sprintf("turn %d: %s: %s", o.Turn, o.Status, o.Reason)
	}
	return fmt.Sprintf("turn %d: %s", o.Turn, o.Status)
}

// Session is a single play session of a story.
type Session struct {
	prefs *Preferences

	// the turn lock. held for every call to the virtual machine and for every
	// change of state
	crit  sync.Mutex
	state State

	img  *story.Image
	eng  engine.Adapter
	info metadata.Info

	hist *history.History
	sch  *autosave.Scheduler
	db   *savedb.DB

	// ID of the most recent named save made or restored
	lastSaveID string

	// when the session was started. used to record play time
	started time.Time

	// reason for the end of the session
	quitReason string

	noticesCrit sync.Mutex
	notices     []notifications.Message
}

// NewSession is the preferred method of initialisation for the Session type.
func NewSession(p *Preferences) *Session {
	s := &Session{
		prefs: p,
		state: Idle,
	}

	s.prefs.HistoryCapacity.SetHookPost(func(v prefs.Value) error {
		s.crit.Lock()
		defer s.crit.Unlock()
		if s.hist != nil {
			s.hist.SetCapacity(v.(int))
		}
		return nil
	})

	return s
}

func (s *Session) String() string {
	s.crit.Lock()
	defer s.crit.Unlock()
	if s.img == nil {
		return s.state.String()
	}
	return fmt.Sprintf("%s: %s", s.title(), s.state)
}

// Notify implements the notifications.Notify interface.
func (s *Session) Notify(msg notifications.Message) {
	s.noticesCrit.Lock()
	defer s.noticesCrit.Unlock()
	s.notices = append(s.notices, msg)
}

func (s *Session) notify(notice notifications.Notice, detail string, args ...any) {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	msg := notifications.Message{Notice: notice, Detail: detail}
	logger.Log(logger.Allow, "session", msg.String())
	s.Notify(msg)
}

// Notices returns all notices since the previous call to Notices().
func (s *Session) Notices() []notifications.Message {
	s.noticesCrit.Lock()
	defer s.noticesCrit.Unlock()
	n := s.notices
	s.notices = nil
	return n
}

// State returns the current state of the session.
func (s *Session) State() State {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.state
}

// Turn returns the turn number of the current entry in the history.
func (s *Session) Turn() uint32 {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.turn()
}

func (s *Session) turn() uint32 {
	if s.hist == nil {
		return 0
	}
	return s.hist.Summary().Current
}

// Title returns the title of the story, if it is known, or the identity of the
// story.
func (s *Session) Title() string {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.title()
}

func (s *Session) title() string {
	if s.info.Title != "" {
		return s.info.Title
	}
	if s.img != nil {
		return s.img.Identity()
	}
	return ""
}

// QuitReason returns the reason the session ended. Empty if the session has
// not ended or was ended with End().
func (s *Session) QuitReason() string {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.quitReason
}

// CanUndo returns true if Undo() would change the turn.
func (s *Session) CanUndo() bool {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.hist != nil && s.hist.CanUndo()
}

// CanRedo returns true if Redo() would change the turn.
func (s *Session) CanRedo() bool {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.hist != nil && s.hist.CanRedo()
}

// requireState returns a WrongState error if the session is not in the
// specified state. must be called with the turn lock held.
func (s *Session) requireState(operation string, state State) error {
	if s.state != state {
		return curated.Errorf(WrongState, operation, s.state)
	}
	return nil
}

// Load the story and the virtual machine that will play it. The lookup
// argument can be nil.
func (s *Session) Load(img *story.Image, eng engine.Adapter, lookup metadata.Lookup) error {
	s.crit.Lock()
	defer s.crit.Unlock()

	if err := s.requireState("load", Idle); err != nil {
		return err
	}

	s.img = img
	s.eng = eng
	if lookup != nil {
		s.info, _ = lookup.Lookup(img.Identity())
	}

	s.state = Loaded
	logger.Logf(logger.Allow, "session", "loaded %s (%s)", s.title(), img)

	return nil
}

// Start the session. The state of the virtual machine becomes the first entry
// in the history. If the ResumeAutosave preference is set then the most
// recent autosave for the story is restored first.
//
// The context is used by the autosave scheduler. Cancelling it stops
// autosaving without ending the session.
func (s *Session) Start(ctx context.Context) error {
	s.crit.Lock()
	defer s.crit.Unlock()

	if err := s.requireState("start", Loaded); err != nil {
		return err
	}

	dir := s.prefs.SlotDir.Get().(string)
	if dir == "" {
		var err error
		dir, err = paths.ResourcePath("autosave", s.img.Identity())
		if err != nil {
			return curated.Errorf("session: %v", err)
		}
	}

	var turn uint32
	if s.prefs.ResumeAutosave.Get().(bool) {
		slot, state, err := autosave.Latest(dir, s.img)
		if err != nil {
			logger.Logf(logger.Allow, "session", "not resuming: %v", err)
		} else if err := s.apply(state); err != nil {
			return err
		} else {
			turn = slot.Snapshot.Turn
			logger.Logf(logger.Allow, "session", "resumed from %s", slot)
		}
	}

	snap, err := snapshot.Encode(engine.Capture(s.eng), s.img, turn)
	if err != nil {
		return curated.Errorf(EngineFault, err)
	}

	sch, err := autosave.NewScheduler(dir, s.prefs.Slots.Get().(int), s.prefs.Policy(), s.img.Checksum())
	if err != nil {
		return curated.Errorf("session: %v", err)
	}

	if pth := s.prefs.Database.Get().(string); pth != "" {
		s.db, err = savedb.Open(pth)
		if err != nil {
			return curated.Errorf("session: %v", err)
		}
	}

	s.hist = history.New(s.prefs.HistoryCapacity.Get().(int))
	if err := s.hist.Push(snap); err != nil {
		return curated.Errorf("session: %v", err)
	}

	s.sch = sch
	s.sch.SetWarningHook(func(err error) {
		s.notify(notifications.NotifyAutosaveFailed, "%v", err)
	})
	s.sch.Start(ctx)

	s.started = time.Now()
	s.state = Running

	return nil
}

// apply the state to the virtual machine. if the state could not be applied
// the previous state of the virtual machine is put back. if that fails the
// session is returned to the Loaded state.
//
// must be called with the turn lock held.
func (s *Session) apply(state snapshot.State) error {
	prev := engine.Capture(s.eng)

	err := engine.Apply(s.eng, state)
	if err == nil {
		return nil
	}

	if rerr := engine.Apply(s.eng, prev); rerr != nil {
		logger.Logf(logger.Allow, "session", "cannot roll back: %v", rerr)
		s.state = Loaded
		s.shutdown()
		return curated.Errorf(EngineFault, rerr)
	}

	return curated.Errorf(EngineFault, err)
}

// Step runs the virtual machine for one turn with the player's input.
func (s *Session) Step(input string) (Outcome, error) {
	s.crit.Lock()
	defer s.crit.Unlock()

	if err := s.requireState("step", Running); err != nil {
		return Outcome{}, err
	}

	res := s.eng.StepTurn(input)

	if res.Status == engine.Fault {
		if !res.Unsupported {
			out := Outcome{Turn: s.turn(), Status: res.Status, Reason: res.Reason}
			s.end(res.Reason)
			return out, curated.Errorf(EngineFault, res.Reason)
		}
		s.notify(notifications.NotifyUnsupported, res.Reason)
	}

	snap, err := snapshot.Encode(engine.Capture(s.eng), s.img, s.turn()+1)
	if err != nil {
		return Outcome{Turn: s.turn()}, curated.Errorf(EngineFault, err)
	}

	if err := s.hist.Push(snap.Clone()); err != nil {
		return Outcome{Turn: s.turn()}, curated.Errorf("session: %v", err)
	}
	s.sch.Turn(snap)

	out := Outcome{Turn: snap.Turn, Status: res.Status, Reason: res.Reason}

	if res.Status == engine.Quit {
		s.end(res.Reason)
	}

	return out, nil
}

// Risky should be called before the player attempts something that is likely
// to go badly. The current turn is autosaved if the policy says so.
func (s *Session) Risky() error {
	s.crit.Lock()
	defer s.crit.Unlock()

	if err := s.requireState("autosave", Running); err != nil {
		return err
	}

	if snap, ok := s.hist.Current(); ok {
		s.sch.Risky(snap)
	}

	return nil
}

// Undo returns the session to the previous turn. If there is no previous turn
// the returned Outcome is a no-op.
func (s *Session) Undo() (Outcome, error) {
	return s.move(Undoing, notifications.NotifyUndo)
}

// Redo returns the session to the turn that was most recently undone. If there
// is no such turn the returned Outcome is a no-op.
func (s *Session) Redo() (Outcome, error) {
	return s.move(Redoing, notifications.NotifyRedo)
}

func (s *Session) move(transient State, notice notifications.Notice) (Outcome, error) {
	s.crit.Lock()
	defer s.crit.Unlock()

	operation := "undo"
	if transient == Redoing {
		operation = "redo"
	}

	if err := s.requireState(operation, Running); err != nil {
		return Outcome{}, err
	}

	move, back := s.hist.Undo, s.hist.Redo
	if transient == Redoing {
		move, back = s.hist.Redo, s.hist.Undo
	}

	s.state = transient

	snap, err := move()
	if err != nil {
		s.state = Running
		if curated.Is(err, history.NoHistory) {
			s.notify(notifications.NotifyNoHistory, "nothing to %s", operation)
			return Outcome{Turn: s.turn(), NoOp: true}, nil
		}
		return Outcome{Turn: s.turn()}, curated.Errorf("session: %v", err)
	}

	state, err := snapshot.Decode(snap, s.img)
	if err == nil {
		err = s.apply(state)
	}
	if err != nil {
		// the history cursor is only moved back if the session is still
		// running. a session returned to Loaded has no history
		if s.state == transient {
			_, _ = back()
			s.state = Running
		}
		return Outcome{Turn: s.turn()}, curated.Errorf("session: %s: %v", operation, err)
	}

	s.state = Running
	s.notify(notice, "turn %d", snap.Turn)

	return Outcome{Turn: snap.Turn}, nil
}

// End the session. The current turn is autosaved and play time is recorded.
// It is safe to call End() more than once.
func (s *Session) End() error {
	s.crit.Lock()
	defer s.crit.Unlock()

	if s.state == Quit {
		return nil
	}

	if s.state == Running {
		if snap, ok := s.hist.Current(); ok {
			s.sch.Notify(snap)
		}
	}

	s.end("")
	return nil
}

// end the session. must be called with the turn lock held.
func (s *Session) end(reason string) {
	s.quitReason = reason
	s.shutdown()
	s.state = Quit
	s.notify(notifications.NotifyQuit, reason)
}

// shutdown stops the autosave scheduler and closes the save catalogue. the
// history is discarded. must be called with the turn lock held.
func (s *Session) shutdown() {
	if s.sch != nil {
		s.sch.Close()
		s.sch = nil
	}

	if s.db != nil {
		ctx := context.Background()
		if s.img != nil && !s.started.IsZero() {
			if err := s.db.AddPlayTime(ctx, s.img.Identity(), time.Since(s.started)); err != nil {
				logger.Logf(logger.Allow, "session", "%v", err)
			}
			if s.hist != nil {
				if snap, ok := s.hist.Current(); ok {
					if _, err := s.storeSave(ctx, snap, "autosave", savedb.Autosave); err != nil {
						logger.Logf(logger.Allow, "session", "%v", err)
					}
				}
			}
		}
		if err := s.db.Close(); err != nil {
			logger.Logf(logger.Allow, "session", "%v", err)
		}
		s.db = nil
	}

	s.started = time.Time{}
	s.hist = nil
}
