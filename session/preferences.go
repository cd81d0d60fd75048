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
	"time"

	"github.com/jetsetilly/ifsession/autosave"
	"github.com/jetsetilly/ifsession/paths"
	"github.com/jetsetilly/ifsession/prefs"
)

// Preferences for the session.
type Preferences struct {
	dsk *prefs.Disk

	// the Z-code file to play. used by the command line tools
	StoryFile prefs.String

	// directory for autosave slots. if empty a directory for the story is
	// created in the resource path
	SlotDir prefs.String

	// path to the save catalogue. if empty named saves are not available
	Database prefs.String

	// restore the most recent autosave when the session starts
	ResumeAutosave prefs.Bool

	// autosave policy
	Slots        prefs.Int
	EveryTurns   prefs.Int
	EverySeconds prefs.Int
	BeforeRisky  prefs.Bool

	// maximum size in bytes of the undo history
	HistoryCapacity prefs.Int
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// default values for preferences.
const (
	defaultSlots           = 3
	defaultEveryTurns      = 1
	defaultEverySeconds    = 0
	defaultBeforeRisky     = true
	defaultHistoryCapacity = 1 << 20
	defaultResumeAutosave  = false
)

// PreferencesPath returns the default path of the preferences file.
func PreferencesPath() (string, error) {
	return paths.ResourcePath("", prefs.DefaultPrefsFile)
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. Values are loaded from the file at path if it exists.
func NewPreferences(path string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	var err error

	p.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Add("session.storyFile", &p.StoryFile)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("session.slotDir", &p.SlotDir)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("session.database", &p.Database)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("session.resumeAutosave", &p.ResumeAutosave)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("autosave.slots", &p.Slots)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("autosave.everyTurns", &p.EveryTurns)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("autosave.everySeconds", &p.EverySeconds)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("autosave.beforeRisky", &p.BeforeRisky)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("history.capacity", &p.HistoryCapacity)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Load()
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all settings to default values.
func (p *Preferences) SetDefaults() {
	p.StoryFile.Set("")
	p.SlotDir.Set("")
	p.Database.Set("")
	p.ResumeAutosave.Set(defaultResumeAutosave)
	p.Slots.Set(defaultSlots)
	p.EveryTurns.Set(defaultEveryTurns)
	p.EverySeconds.Set(defaultEverySeconds)
	p.BeforeRisky.Set(defaultBeforeRisky)
	p.HistoryCapacity.Set(defaultHistoryCapacity)
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load()
}

// Save preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// Policy returns the autosave policy described by the preferences.
func (p *Preferences) Policy() autosave.Policy {
	return autosave.Policy{
		EveryTurns:  p.EveryTurns.Get().(int),
		Every:       time.Duration(p.EverySeconds.Get().(int)) * time.Second,
		BeforeRisky: p.BeforeRisky.Get().(bool),
	}
}
