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

// Package metadata provides descriptive information about stories, such as
// the title and author. The information is only used for display and for
// logging.
//
// The Catalog type reads the information from a YAML file of the form:
//
//	stories:
//	  - identity: 88-840726-a129
//	    title: Zork I
//	    author: Infocom
//	    release: 88
//
// The identity of a story is the value returned by story.Image.Identity().
package metadata
