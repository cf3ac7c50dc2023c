package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/keytutor/internal/model"
)

// FileLayout is the TOML representation of a layout.
//
//	name = "de-custom"
//	extends = "de-qwertz"
//	non-typing = ["control", "alt"]
//
//	[keys.KeyQ]
//	base = "q"
//	shift = "Q"
//	altgr = "@"
type FileLayout struct {
	Name      string             `toml:"name"`
	Extends   string             `toml:"extends"`
	Backspace string             `toml:"backspace"`
	NonTyping []string           `toml:"non-typing"`
	Keys      map[string]FileRow `toml:"keys"`
}

// FileRow is the TOML representation of a Row.
type FileRow struct {
	Base       string `toml:"base"`
	Shift      string `toml:"shift"`
	AltGr      string `toml:"altgr"`
	ShiftAltGr string `toml:"shift-altgr"`
}

// DecodeFile reads a layout description without resolving it.
func DecodeFile(path string) (FileLayout, error) {
	var fl FileLayout
	if _, err := toml.DecodeFile(path, &fl); err != nil {
		return FileLayout{}, fmt.Errorf("failed to decode layout %s: %w", path, err)
	}
	if strings.TrimSpace(fl.Name) == "" {
		fl.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return fl, nil
}

// Resolve builds a Layout, starting from the layout named by Extends when
// set.
func (r *Registry) Resolve(fl FileLayout) (*Layout, error) {
	keys := map[model.KeyIdentity]Row{}
	backspace := model.KeyIdentity(fl.Backspace)
	nonTyping := model.ModNone

	if fl.Extends != "" {
		base, err := r.Get(fl.Extends)
		if err != nil {
			return nil, fmt.Errorf("layout %q: %w", fl.Name, err)
		}
		for key, row := range base.keys {
			keys[key] = row
		}
		if backspace == "" {
			backspace = base.backspace
		}
		nonTyping = base.nonTyping
	}
	if len(fl.NonTyping) > 0 {
		nonTyping = model.ModNone
		for _, name := range fl.NonTyping {
			mod, err := model.ParseModifier(name)
			if err != nil {
				return nil, fmt.Errorf("layout %q: %w", fl.Name, err)
			}
			nonTyping |= mod
		}
	}
	if nonTyping.Any(model.ModShift | model.ModAltGr) {
		return nil, fmt.Errorf("layout %q: shift and altgr select rows and cannot be non-typing", fl.Name)
	}
	for key, row := range fl.Keys {
		keys[model.KeyIdentity(key)] = Row(row)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("layout %q has no keys", fl.Name)
	}
	return New(fl.Name, backspace, nonTyping, keys), nil
}

// LoadDir registers every *.toml layout in dir. A missing directory is not
// an error. Files are loaded in name order, so a layout may extend one
// defined in an earlier file.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read layout directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		fl, err := DecodeFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		l, err := r.Resolve(fl)
		if err != nil {
			return err
		}
		r.Add(l)
	}
	return nil
}
