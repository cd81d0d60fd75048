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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/logger"
	"github.com/jetsetilly/ifsession/snapshot"
)

// Policy decides when a snapshot is written. Triggers are independent of one
// another. A snapshot is written when any trigger is due.
type Policy struct {
	// write a snapshot every n turns. zero disables the trigger
	EveryTurns int

	// write the most recent turn if it has not been written after the
	// duration. zero disables the trigger
	Every time.Duration

	// write a snapshot before an operation that is likely to fail, as
	// signalled by a call to Risky()
	BeforeRisky bool
}

func (p Policy) String() string {
	return fmt.Sprintf("every %d turns, every %v, before risky %v", p.EveryTurns, p.Every, p.BeforeRisky)
}

// Scheduler decides when to write snapshots and writes them in the
// background.
type Scheduler struct {
	dir      string
	slots    int
	policy   Policy
	checksum uint16

	fs   FS
	warn func(error)

	// crit protects all fields below it
	crit sync.Mutex
	cond *sync.Cond

	// the most recently requested epoch and the snapshot for that epoch
	epoch   uint64
	pending *snapshot.Snapshot

	// the most recent epoch that has been written or that has failed
	written uint64

	// the most recent turn and the number of turns since the last request
	candidate  *snapshot.Snapshot
	turnsSince int

	// the slot to write next
	next int

	running bool
	quit    chan struct{}
	done    chan struct{}
	wake    chan struct{}
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type. The dir argument is created if it does not exist. The checksum
// argument is the checksum of the story being played. Only snapshots for that
// story can be written.
func NewScheduler(dir string, slots int, policy Policy, checksum uint16) (*Scheduler, error) {
	if slots < 1 {
		return nil, curated.Errorf("autosave: number of slots must be at least one")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, ioFailure(err)
	}

	sch := &Scheduler{
		dir:      dir,
		slots:    slots,
		policy:   policy,
		checksum: checksum,
		fs:       Disk,
		warn:     func(error) {},
		wake:     make(chan struct{}, 1),
	}
	sch.cond = sync.NewCond(&sch.crit)

	sch.next = sch.oldestSlot()
	logger.Logf(logger.Allow, "autosave", "%d slots in %s (%s). next slot is %d", slots, dir, policy, sch.next)

	return sch, nil
}

// oldestSlot returns the number of the slot that should be written first. an
// unused slot is preferred. otherwise the slot written longest ago.
func (sch *Scheduler) oldestSlot() int {
	used := make(map[string]Slot)
	slots, _ := Slots(sch.dir)
	for _, s := range slots {
		used[filepath.Base(s.Path)] = s
	}

	oldest := -1
	for n := 0; n < sch.slots; n++ {
		s, ok := used[filepath.Base(SlotPath(sch.dir, n))]
		if !ok {
			return n
		}
		if oldest == -1 || newer(used[filepath.Base(SlotPath(sch.dir, oldest))], s) {
			oldest = n
		}
	}

	return oldest
}

// SetFS changes the file system used to write slots. Must be called before
// Start().
func (sch *Scheduler) SetFS(fsys FS) {
	sch.fs = fsys
}

// SetWarningHook sets the function that is called when a snapshot could not
// be written. The error will be an IOFailure. The function is called from the
// background writer. Must be called before Start().
func (sch *Scheduler) SetWarningHook(f func(err error)) {
	sch.warn = f
}

// Start the background writer. The writer stops when the context is cancelled
// or when Close() is called.
func (sch *Scheduler) Start(ctx context.Context) {
	sch.crit.Lock()
	defer sch.crit.Unlock()

	if sch.running {
		return
	}
	sch.running = true
	sch.quit = make(chan struct{})
	sch.done = make(chan struct{})
	done := sch.done

	var tick <-chan time.Time
	if sch.policy.Every > 0 {
		t := time.NewTicker(sch.policy.Every)
		tick = t.C
		go func() {
			<-done
			t.Stop()
		}()
	}

	go sch.run(ctx, tick, sch.quit, done)
}

// Close flushes the most recent request and stops the background writer.
func (sch *Scheduler) Close() {
	sch.crit.Lock()
	quit := sch.quit
	done := sch.done
	sch.quit = nil
	sch.crit.Unlock()

	if quit != nil {
		close(quit)
	}
	if done != nil {
		<-done
	}
}

// Wait blocks until the most recent request has been written or has failed.
func (sch *Scheduler) Wait() {
	sch.crit.Lock()
	defer sch.crit.Unlock()
	for sch.running && sch.written < sch.epoch {
		sch.cond.Wait()
	}
}

// Turn should be called after every turn with the snapshot of the turn. The
// snapshot becomes owned by the Scheduler.
func (sch *Scheduler) Turn(snap *snapshot.Snapshot) {
	sch.crit.Lock()
	sch.candidate = snap
	sch.turnsSince++
	due := sch.policy.EveryTurns > 0 && sch.turnsSince >= sch.policy.EveryTurns
	sch.crit.Unlock()

	if due {
		sch.Notify(snap)
	}
}

// Risky should be called before an operation that is likely to fail. The
// snapshot is written if the policy says so. The snapshot becomes owned by the
// Scheduler.
func (sch *Scheduler) Risky(snap *snapshot.Snapshot) {
	if sch.policy.BeforeRisky {
		sch.Notify(snap)
	}
}

// Notify requests that the snapshot be written. Any earlier request that has
// not yet been written is superseded. The snapshot becomes owned by the
// Scheduler.
//
// Notify does not wait for the snapshot to be written.
func (sch *Scheduler) Notify(snap *snapshot.Snapshot) {
	if snap.Checksum != sch.checksum {
		logger.Logf(logger.Allow, "autosave", "ignoring snapshot for story %04x", snap.Checksum)
		return
	}

	sch.crit.Lock()
	sch.epoch++
	sch.pending = snap
	sch.candidate = nil
	sch.turnsSince = 0
	sch.crit.Unlock()

	select {
	case sch.wake <- struct{}{}:
	default:
	}
}

func (sch *Scheduler) run(ctx context.Context, tick <-chan time.Time, quit chan struct{}, done chan struct{}) {
	defer func() {
		sch.crit.Lock()
		sch.running = false
		sch.cond.Broadcast()
		sch.crit.Unlock()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			sch.flush()
			return
		case <-sch.wake:
			sch.flush()
		case <-tick:
			sch.crit.Lock()
			if sch.candidate != nil {
				sch.epoch++
				sch.pending = sch.candidate
				sch.candidate = nil
				sch.turnsSince = 0
			}
			sch.crit.Unlock()
			sch.flush()
		}
	}
}

// flush writes the most recent request until there are no newer requests.
func (sch *Scheduler) flush() {
	for {
		sch.crit.Lock()
		epoch := sch.epoch
		snap := sch.pending
		if epoch == sch.written {
			sch.pending = nil
			sch.crit.Unlock()
			return
		}
		sch.crit.Unlock()

		sch.write(epoch, snap)
	}
}

// write the snapshot for the epoch to the next slot. returns without writing
// if the epoch is superseded before the slot is replaced.
func (sch *Scheduler) write(epoch uint64, snap *snapshot.Snapshot) {
	var err error

	for attempt := 0; attempt < 2; attempt++ {
		var tmp string
		tmp, err = writeTemp(sch.fs, sch.dir, snap)
		if err != nil {
			logger.Logf(logger.Allow, "autosave", "turn %d: %v", snap.Turn, err)
			continue
		}

		sch.crit.Lock()
		stale := sch.epoch > epoch
		sch.crit.Unlock()
		if stale {
			_ = sch.fs.Remove(tmp)
			logger.Logf(logger.Allow, "autosave", "turn %d superseded", snap.Turn)
			return
		}

		pth := SlotPath(sch.dir, sch.next)
		err = sch.fs.Rename(tmp, pth)
		if err != nil {
			_ = sch.fs.Remove(tmp)
			logger.Logf(logger.Allow, "autosave", "turn %d: %v", snap.Turn, err)
			continue
		}

		logger.Logf(logger.Allow, "autosave", "turn %d written to %s", snap.Turn, filepath.Base(pth))
		sch.next = (sch.next + 1) % sch.slots
		break
	}

	if err != nil {
		sch.warn(ioFailure(err))
	}

	sch.crit.Lock()
	if sch.written < epoch {
		sch.written = epoch
	}
	sch.cond.Broadcast()
	sch.crit.Unlock()
}
