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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface and are created with the
// Errorf() function. Errorf() takes a pattern and placeholder values, in the
// same way as the fmt.Errorf() function.
//
// The pattern is what identifies a curated error. Patterns that represent a
// category of error are stored as const strings in the package that raises
// them. For example, the snapshot package has:
//
//	const ChecksumMismatch = "checksum mismatch: save is for story %04x, loaded story is %04x"
//
// The Is() function checks whether an error was created with a specific
// pattern:
//
//	err := curated.Errorf(snapshot.ChecksumMismatch, 0x1234, 0xabcd)
//	if curated.Is(err, snapshot.ChecksumMismatch) {
//		...
//	}
//
// The Has() function is similar but looks for the pattern anywhere in the
// chain of curated errors. This is the function to use once an error has
// been wrapped by another package:
//
//	f := curated.Errorf("session: %v", err)
//	curated.Is(f, snapshot.ChecksumMismatch)  // false
//	curated.Has(f, snapshot.ChecksumMismatch) // true
//
// IsAny() answers whether the error is curated at all. Put another way, it
// distinguishes expected errors from unexpected errors.
//
// The Error() implementation normalises the error chain by removing duplicate
// adjacent parts. Chains are thought of as parts separated by the sub-string
// ": ". This means that the following:
//
//	curated.Errorf("autosave: %v", curated.Errorf("autosave: %v", err))
//
// prints "autosave: ..." rather than "autosave: autosave: ...".
//
// Curated errors also implement Unwrap() so that the errors package in the
// standard library can reach any plain error values used as placeholder
// values. For example, errors.Is(err, fs.ErrNotExist) works for a curated
// error that wraps a failed os.Open().
package curated
