package ai

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tactics/internal/game/command"
)

// Profile modulates a resolved behaviour according to a stance.
type Profile struct {
	Stance      command.Stance `yaml:"stance"`
	Description string         `yaml:"description"`
	// LowHPThreshold turns attacks into dodges while the henchman's HP
	// fraction is below it. Zero disables the rule.
	LowHPThreshold float64 `yaml:"low_hp_threshold"`
	// PressWhenIdle turns a dodge into an attack on the nearest enemy.
	PressWhenIdle bool `yaml:"press_when_idle"`
	// KeepDistance adds a keep_distance move to attacks on targets in the
	// henchman's own band.
	KeepDistance bool `yaml:"keep_distance"`
}

// Validate checks required fields.
//
// Postcondition: nil return guarantees a known stance and a threshold in [0,1].
func (p *Profile) Validate() error {
	switch p.Stance {
	case command.Aggressive, command.Defensive, command.Ranged, command.Balanced:
	case "":
		return errors.New("ai.Profile: stance must not be empty")
	default:
		return fmt.Errorf("ai.Profile: unknown stance %q", p.Stance)
	}
	if p.LowHPThreshold < 0 || p.LowHPThreshold > 1 {
		return fmt.Errorf("ai.Profile %q: low_hp_threshold must be within [0,1]", p.Stance)
	}
	return nil
}

// Profiles indexes stance profiles.
type Profiles struct {
	byStance map[command.Stance]*Profile
}

// For returns the profile for stance, or a neutral profile if none is loaded.
func (ps *Profiles) For(stance command.Stance) *Profile {
	if p, ok := ps.byStance[stance]; ok {
		return p
	}
	return &Profile{Stance: command.Balanced}
}

// Len returns the number of loaded profiles.
func (ps *Profiles) Len() int { return len(ps.byStance) }

// yamlProfileFile wraps the YAML top-level key.
type yamlProfileFile struct {
	Profile *Profile `yaml:"profile"`
}

//go:embed profiles/*.yaml
var builtinProfiles embed.FS

// DefaultProfiles returns the built-in stance profiles.
func DefaultProfiles() *Profiles {
	ps, err := loadProfiles(builtinProfiles, "profiles")
	if err != nil {
		panic(fmt.Sprintf("loading built-in profiles: %v", err))
	}
	return ps
}

// LoadProfiles reads all *.yaml files from dir over the built-in profiles.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
func LoadProfiles(dir string) (*Profiles, error) {
	overlay, err := loadProfiles(os.DirFS(dir), ".")
	if err != nil {
		return nil, fmt.Errorf("ai.LoadProfiles: %q: %w", dir, err)
	}
	ps := DefaultProfiles()
	for s, p := range overlay.byStance {
		ps.byStance[s] = p
	}
	return ps, nil
}

func loadProfiles(fsys fs.FS, dir string) (*Profiles, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	ps := &Profiles{byStance: make(map[command.Stance]*Profile)}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		var f yamlProfileFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", e.Name(), err)
		}
		if f.Profile == nil {
			return nil, fmt.Errorf("%s missing top-level 'profile' key", e.Name())
		}
		if err := f.Profile.Validate(); err != nil {
			return nil, err
		}
		if _, dup := ps.byStance[f.Profile.Stance]; dup {
			return nil, fmt.Errorf("duplicate profile for stance %q", f.Profile.Stance)
		}
		ps.byStance[f.Profile.Stance] = f.Profile
	}
	return ps, nil
}
