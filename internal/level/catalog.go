package level

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"
)

//go:embed levels/*.yaml
var levelFS embed.FS

// DefaultName is the level sessions start with when none is requested.
const DefaultName = "town"

// Catalog holds the levels a server can start sessions on.
type Catalog struct {
	levels map[string]*Level
	mu     sync.RWMutex
}

// NewCatalog creates a catalog holding the given levels.
func NewCatalog(levels ...*Level) *Catalog {
	c := &Catalog{levels: make(map[string]*Level, len(levels))}
	for _, l := range levels {
		c.levels[l.Name] = l
	}
	return c
}

// LoadEmbedded parses every level shipped with the binary.
func LoadEmbedded() (*Catalog, error) {
	entries, err := fs.ReadDir(levelFS, "levels")
	if err != nil {
		return nil, fmt.Errorf("read embedded levels: %w", err)
	}

	c := NewCatalog()
	for _, entry := range entries {
		data, err := levelFS.ReadFile(path.Join("levels", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read embedded level %s: %w", entry.Name(), err)
		}
		l, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("embedded level %s: %w", entry.Name(), err)
		}
		c.Add(l)
	}
	return c, nil
}

// Default returns the embedded default level.
func Default() (*Level, error) {
	data, err := levelFS.ReadFile("levels/" + DefaultName + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("read default level: %w", err)
	}
	return Parse(data)
}

// Add registers l, replacing any level with the same name.
func (c *Catalog) Add(l *Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels[l.Name] = l
}

// Get returns the level with the given name.
func (c *Catalog) Get(name string) (*Level, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.levels[name]
	return l, ok
}

// Names returns the level names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.levels))
	for name := range c.levels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
