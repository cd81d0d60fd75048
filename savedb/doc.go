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

// Package savedb is a catalogue of named saves and of play time, stored in an
// SQLite database.
//
// Saves are identified by the identity of the story (see
// story.Image.Identity()) and a name. The data of a save is the serialised
// Quetzal file. Every save records the save it was played on from (the parent
// save). Storing a save with the same data and parent as an existing save of
// the same kind returns the existing save rather than creating a new one.
package savedb
