// internal/themes/catalog.go
//
// Theme catalog: named item pools the game builds rows and trays from.
//
// Responsibilities:
//   - Parse catalogs from the line format "name: item, item, ...".
//   - Load from a file, from SQLite, or fall back to the embedded default.
//   - Serve the game through the ThemeSource interface.
//
// Constraints:
//   • Theme and item names are trimmed and lowercased.
//   • Items must be distinct within a theme; duplicates are dropped.
//   • Themes with fewer than MinItems items are rejected at load time,
//     since they could never fill the widest row.
//
// Loading behavior (Load):
//   1. THEMES_DB set: open the database, migrate, seed it from the file or
//      embedded catalog if empty, then read it back.
//   2. THEMES_FILE set: parse that file.
//   3. Neither: parse the embedded assets/themes.txt.

package themes

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/robalobadob/matchup/assets"
	"github.com/robalobadob/matchup/internal/game"
)

// MinItems is the widest row's slot count.
const MinItems = game.GridWidth

// Catalog is an immutable set of themes. Safe for concurrent reads.
type Catalog struct {
	names []string
	items map[string][]string
}

var _ game.ThemeSource = (*Catalog)(nil)

// New builds a catalog from a map, normalizing names and checking sizes.
func New(m map[string][]string) (*Catalog, error) {
	c := &Catalog{items: make(map[string][]string, len(m))}
	for name, list := range m {
		if err := c.add(name, list); err != nil {
			return nil, err
		}
	}
	sort.Strings(c.names)
	return c, nil
}

func (c *Catalog) add(name string, list []string) error {
	name = normalize(name)
	if name == "" {
		return fmt.Errorf("themes: empty theme name")
	}
	if _, dup := c.items[name]; dup {
		return fmt.Errorf("themes: duplicate theme %q", name)
	}
	seen := make(map[string]bool, len(list))
	var items []string
	for _, it := range list {
		it = normalize(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		items = append(items, it)
	}
	if len(items) < MinItems {
		return fmt.Errorf("themes: %q has %d items, need %d: %w", name, len(items), MinItems, game.ErrInsufficientThemeItems)
	}
	c.names = append(c.names, name)
	c.items[name] = items
	return nil
}

// Parse reads the line format. Blank lines and # comments are skipped.
func Parse(r io.Reader) (*Catalog, error) {
	c := &Catalog{items: map[string][]string{}}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		name, rest, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("themes: line %d: missing ':'", line)
		}
		if err := c.add(name, strings.Split(rest, ",")); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(c.names) < game.RowsPerLevel {
		return nil, fmt.Errorf("themes: %d themes, need at least %d: %w", len(c.names), game.RowsPerLevel, game.ErrNotEnoughThemes)
	}
	sort.Strings(c.names)
	return c, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Catalog, error) { return Parse(strings.NewReader(s)) }

// LoadFile parses the catalog at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	text, err := assets.ThemesText()
	if err != nil {
		return nil, err
	}
	return ParseString(text)
}

// ListThemes returns theme names in sorted order.
func (c *Catalog) ListThemes() []string { return append([]string(nil), c.names...) }

// ItemsForTheme returns a copy of the theme's item pool.
func (c *Catalog) ItemsForTheme(name string) ([]string, error) {
	items, ok := c.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", game.ErrUnknownTheme, name)
	}
	return append([]string(nil), items...), nil
}

// Len is the number of themes.
func (c *Catalog) Len() int { return len(c.names) }

// Summary lists themes with their item counts.
type Summary struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Summaries returns every theme in name order.
func (c *Catalog) Summaries() []Summary {
	out := make([]Summary, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, Summary{Name: n, Items: append([]string(nil), c.items[n]...)})
	}
	return out
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
