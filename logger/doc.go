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

// Package logger is the central log for the application. There is only one
// log and it is accessed through the package level functions.
//
// Entries are made up of a tag and a detail string. The tag is usually the
// name of the package making the entry:
//
//	logger.Logf(logger.Allow, "autosave", "wrote epoch %d to %s", epoch, pth)
//
// Every logging call takes a Permission argument. Permission implementations
// decide whether the call is allowed to create an entry. logger.Allow is used
// when an entry should always be made.
//
// Consecutive entries that are identical are not repeated. Instead the
// existing entry is marked as repeated.
//
// The log is capped at a maximum number of entries. Older entries are
// forgotten once the cap is reached.
package logger
