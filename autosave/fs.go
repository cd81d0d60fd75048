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
	"io"
	"os"
	"path/filepath"

	"github.com/jetsetilly/ifsession/snapshot"
)

// File is a file created by an FS implementation.
type File interface {
	io.Writer
	Sync() error
	Close() error
	Name() string
}

// FS is the file system used to write slot files. The Disk implementation is
// used unless SetFS() is called.
type FS interface {
	CreateTemp(dir string, pattern string) (File, error)
	Rename(oldpath string, newpath string) error
	Remove(name string) error
}

type disk struct{}

func (disk) CreateTemp(dir string, pattern string) (File, error) {
	return os.CreateTemp(dir, pattern)
}

func (disk) Rename(oldpath string, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (disk) Remove(name string) error {
	return os.Remove(name)
}

// Disk is the FS implementation for the operating system's file system.
var Disk FS = disk{}

// pattern for temporary files. the pattern must not match slotGlob
const tempPattern = ".autosave-*.tmp"

// writeTemp writes the snapshot to a new temporary file in dir. the name of
// the temporary file is returned. the temporary file is removed on error.
func writeTemp(fsys FS, dir string, snap *snapshot.Snapshot) (string, error) {
	f, err := fsys.CreateTemp(dir, tempPattern)
	if err != nil {
		return "", err
	}

	fail := func(err error) (string, error) {
		_ = f.Close()
		_ = fsys.Remove(f.Name())
		return "", err
	}

	if err := snap.Write(f); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(f.Name())
		return "", err
	}

	return f.Name(), nil
}

// writeAtomic writes the snapshot to path using a temporary file in the same
// directory.
func writeAtomic(fsys FS, path string, snap *snapshot.Snapshot) error {
	tmp, err := writeTemp(fsys, filepath.Dir(path), snap)
	if err != nil {
		return err
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return nil
}

// WriteFile writes the snapshot to path. The file at path is either unchanged
// or completely replaced. The write is retried once if it fails.
func WriteFile(path string, snap *snapshot.Snapshot) error {
	err := writeAtomic(Disk, path, snap)
	if err != nil {
		err = writeAtomic(Disk, path, snap)
		if err != nil {
			return ioFailure(err)
		}
	}
	return nil
}
