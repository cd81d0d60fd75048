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

// Package prefs facilitates the storage of preferred values. Preference
// values are declared with one of the types Bool, Int, Float or String and
// are added to a Disk instance with a key:
//
//	var slots prefs.Int
//	dsk, _ := prefs.NewDisk(paths.ResourcePath(prefs.DefaultPrefsFile))
//	dsk.Add("autosave.slots", &slots)
//	dsk.Load()
//
// The prefs file is shared by every Disk instance that points to it. Saving
// a Disk only updates the keys that have been added to it. Other keys in the
// file are preserved.
//
// The on-disk format is line based. Each line is a key and a value separated
// by " :: ". The first line of the file is the WarningBoilerPlate string.
//
// Values can also be specified on the command line. Command line preferences
// are pushed onto a stack with PushCommandLineStack() and take priority over
// the values in the prefs file when Load() is called. Command line values are
// consumed when they are used.
//
// Values can be given hooks. A pre-hook can refuse a new value by returning an
// error. A post-hook is called after the value has been changed.
package prefs
