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

package metadata

import (
	"fmt"
	"os"
	"strings"

	"github.com/jetsetilly/ifsession/curated"
	"github.com/jetsetilly/ifsession/logger"
	"gopkg.in/yaml.v3"
)

// Info about a story.
type Info struct {
	Title   string `yaml:"title"`
	Author  string `yaml:"author"`
	Release int    `yaml:"release"`
}

func (i Info) String() string {
	if i.Author == "" {
		return i.Title
	}
	return fmt.Sprintf("%s by %s", i.Title, i.Author)
}

// Lookup is implemented by any source of story information.
type Lookup interface {
	Lookup(identity string) (Info, bool)
}

// None is a Lookup implementation that knows about no stories.
type None struct{}

// Lookup implements the Lookup interface.
func (None) Lookup(_ string) (Info, bool) {
	return Info{}, false
}

type entry struct {
	Identity string `yaml:"identity"`
	Info     `yaml:",inline"`
}

type file struct {
	Stories []entry `yaml:"stories"`
}

// Catalog is a Lookup implementation backed by a YAML file.
type Catalog struct {
	stories map[string]Info
}

// NewCatalog is the preferred method of initialisation for the Catalog type.
func NewCatalog(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, curated.Errorf("metadata: %v", err)
	}

	cat := &Catalog{
		stories: make(map[string]Info, len(f.Stories)),
	}

	for _, e := range f.Stories {
		id := strings.TrimSpace(e.Identity)
		if id == "" {
			logger.Logf(logger.Allow, "metadata", "ignoring entry without identity (%s)", e.Info)
			continue
		}
		if _, ok := cat.stories[id]; ok {
			logger.Logf(logger.Allow, "metadata", "duplicate entry for %s", id)
		}
		cat.stories[id] = e.Info
	}

	return cat, nil
}

// LoadCatalog reads the YAML file at path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, curated.Errorf("metadata: %v", err)
	}
	return NewCatalog(data)
}

// Lookup implements the Lookup interface.
func (cat *Catalog) Lookup(identity string) (Info, bool) {
	i, ok := cat.stories[identity]
	return i, ok
}

// Len returns the number of stories in the catalog.
func (cat *Catalog) Len() int {
	return len(cat.stories)
}
