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

package prefs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/ifsession/prefs"
	"github.com/jetsetilly/ifsession/test"
)

func cmpFile(t *testing.T, fn string, expected string) {
	t.Helper()

	data, err := os.ReadFile(fn)
	test.DemandSuccess(t, err)

	expected = fmt.Sprintf("%s\n%s", prefs.WarningBoilerPlate, expected)
	test.ExpectEquality(t, string(data), expected)
}

func TestBool(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	var w prefs.Bool
	var x prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, dsk.Add("testB", &w))
	test.ExpectSuccess(t, dsk.Add("testC", &x))

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectSuccess(t, w.Set("foo"))
	test.ExpectSuccess(t, x.Set("TRUE"))

	test.DemandSuccess(t, dsk.Save())
	cmpFile(t, fn, "test :: true\ntestB :: false\ntestC :: true\n")
}

func TestIntAndString(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var n prefs.Int
	var s prefs.String
	test.ExpectSuccess(t, dsk.Add("autosave.slots", &n))
	test.ExpectSuccess(t, dsk.Add("session.slotDir", &s))

	test.ExpectSuccess(t, n.Set(3))
	test.ExpectFailure(t, n.Set("three"))
	test.ExpectSuccess(t, s.Set("/tmp/slots"))

	test.DemandSuccess(t, dsk.Save())
	cmpFile(t, fn, "autosave.slots :: 3\nsession.slotDir :: /tmp/slots\n")

	// load into a second disk instance
	dsk2, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)
	var m prefs.Int
	test.ExpectSuccess(t, dsk2.Add("autosave.slots", &m))
	test.ExpectSuccess(t, dsk2.Load())
	test.ExpectEquality(t, m.Get().(int), 3)
}

func TestPreserveOtherKeys(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "prefs")

	dskA, _ := prefs.NewDisk(fn)
	var a prefs.Int
	dskA.Add("history.capacity", &a)
	a.Set(1024)
	test.DemandSuccess(t, dskA.Save())

	dskB, _ := prefs.NewDisk(fn)
	var b prefs.Bool
	dskB.Add("autosave.beforeRisky", &b)
	b.Set(true)
	test.DemandSuccess(t, dskB.Save())

	cmpFile(t, fn, "autosave.beforeRisky :: true\nhistory.capacity :: 1024\n")
}

func TestDuplicateKey(t *testing.T) {
	dsk, _ := prefs.NewDisk(filepath.Join(t.TempDir(), "prefs"))
	var a prefs.Int
	test.ExpectSuccess(t, dsk.Add("history.capacity", &a))
	test.ExpectFailure(t, dsk.Add("history.capacity", &a))
	test.ExpectFailure(t, dsk.Add("bad:key", &a))
}

func TestHooks(t *testing.T) {
	var v prefs.Int
	var post int
	v.SetHookPre(func(nv prefs.Value) error {
		if nv.(int) <= 0 {
			return fmt.Errorf("must be positive")
		}
		return nil
	})
	v.SetHookPost(func(nv prefs.Value) error {
		post = nv.(int)
		return nil
	})

	test.ExpectFailure(t, v.Set(0))
	test.ExpectEquality(t, v.Get().(int), 0)
	test.ExpectSuccess(t, v.Set(5))
	test.ExpectEquality(t, post, 5)
}

func TestFloat(t *testing.T) {
	var f prefs.Float
	test.ExpectEquality(t, f.String(), "0.000")
	test.ExpectSuccess(t, f.Set("1.5"))
	test.ExpectEquality(t, f.Get().(float64), 1.5)
}
