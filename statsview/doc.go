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

// Package statsview launches a local HTTP server showing runtime statistics
// for a long running session: heap growth from the history and goroutines
// belonging to the autosave writer are the things to watch.
//
// The server is only built with the statsview build tag. Without the tag
// Available() returns false and Launch() only logs the request.
//
// Graphs are served at localhost:12600/debug/statsview and the standard pprof
// endpoints at localhost:12600/debug/pprof/.
package statsview
