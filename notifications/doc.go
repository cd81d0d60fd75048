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

// Package notifications allow communication from the session to the
// surrounding application. Notices describe events that the user should be
// told about but which are not errors as far as the caller is concerned. For
// example, an undo that has taken place or an autosave that has failed.
//
// How a notice is presented is up to the application. The Notice value is a
// short identifier and the accompanying detail string, if any, is suitable for
// display as is.
package notifications
