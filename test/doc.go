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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect*() functions test for a condition and report a test error if the
// condition is not met. The Demand*() functions are the same except that a
// failed condition is fatal for the test. Use Demand*() when subsequent tests
// rely on the value being correct. For example, testing that the length of a
// slice is correct before iterating over it.
//
// ExpectSuccess() and ExpectFailure() test for a 'success' or 'failure' value
// suitable for the type of the value. See the documentation of those functions
// for the supported types. Note that the nil value is considered a success.
// This is because of how errors usually work, a nil error indicating no
// error.
//
// The CompareWriter type implements the io.Writer interface and should be used
// to capture output. The Compare() function can then be used to test for
// equality.
package test
