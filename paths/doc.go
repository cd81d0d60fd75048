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

// Package paths contains functions to prepare paths to ifsession resources.
//
// The ResourcePath() function returns the supplied resource path prepended
// with the base resource directory. For example, the following returns the
// path to the default autosave directory.
//
//	d, err := paths.ResourcePath("autosave", "")
//
// The policy of ResourcePath() is simple: if the directory ".ifsession" is
// present in the program's current directory then that is the base path. If it
// is not present then the user's config directory is used, as returned by
// os.UserConfigDir(). On a modern Linux system that means the path returned by
// the example above will be:
//
//	/home/user/.config/ifsession/autosave
//
// The directory part of the returned path is created if it does not exist.
package paths
