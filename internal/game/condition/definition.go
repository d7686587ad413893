// Package condition tracks status effects on combatants and derives their
// mechanical consequences: attack advantage and disadvantage, automatic
// critical hits, and whether a combatant may act or move.
package condition

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type identifies a condition, e.g. "poisoned".
type Type string

const (
	Blinded       Type = "blinded"
	Charmed       Type = "charmed"
	Deafened      Type = "deafened"
	Frightened    Type = "frightened"
	Grappled      Type = "grappled"
	Incapacitated Type = "incapacitated"
	Invisible     Type = "invisible"
	Paralyzed     Type = "paralyzed"
	Petrified     Type = "petrified"
	Poisoned      Type = "poisoned"
	Prone         Type = "prone"
	Restrained    Type = "restrained"
	Stunned       Type = "stunned"
	Unconscious   Type = "unconscious"
)

// Definition is the static description of a condition, loaded from YAML.
type Definition struct {
	ID          Type   `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Flags set on the bearer while the condition is active.
	Incapacitating   bool `yaml:"incapacitating"`
	SpeedZero        bool `yaml:"speed_zero"`
	StealthAdvantage bool `yaml:"stealth_advantage"`

	// Attack roll consequences.
	AttackAdvantage      bool `yaml:"attack_advantage"`       // bearer attacks with advantage
	AttackDisadvantage   bool `yaml:"attack_disadvantage"`    // bearer attacks with disadvantage
	SourceRelative       bool `yaml:"source_relative"`        // disadvantage only against the source
	GrantsAdvantage      bool `yaml:"grants_advantage"`       // attacks against the bearer have advantage
	GrantsMeleeAdvantage bool `yaml:"grants_melee_advantage"` // melee attacks against the bearer have advantage
	ImposesDisadvantage  bool `yaml:"imposes_disadvantage"`   // attacks against the bearer have disadvantage
	MeleeAutoCrit        bool `yaml:"melee_auto_crit"`        // melee hits against the bearer are critical
}

// Registry holds all known Definitions keyed by type together with the
// effect table derived from them. A Registry is read-only after loading.
type Registry struct {
	defs    map[Type]*Definition
	effects map[Type]Effect
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Type]*Definition), effects: make(map[Type]Effect)}
}

// Register adds def, overwriting any existing entry with the same ID, and
// derives its effect strategy.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Definition) {
	r.defs[def.ID] = def
	r.effects[def.ID] = effectFor(def)
}

// Get returns the Definition for id, or (nil, false) if not found.
func (r *Registry) Get(id Type) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Effect returns the apply/remove strategy for id.
func (r *Registry) Effect(id Type) (Effect, bool) {
	e, ok := r.effects[id]
	return e, ok
}

// All returns all registered Definitions sorted by ID.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

//go:embed defs/*.yaml
var builtin embed.FS

// DefaultRegistry returns a Registry holding the built-in condition set.
//
// Postcondition: Every Type constant in this package is registered.
func DefaultRegistry() *Registry {
	reg, err := loadFS(builtin, "defs")
	if err != nil {
		panic(fmt.Sprintf("loading built-in conditions: %v", err))
	}
	return reg
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Definition,
// and returns a Registry holding the built-ins overlaid with dir's entries.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse.
func LoadDirectory(dir string) (*Registry, error) {
	overlay, err := loadFS(os.DirFS(dir), ".")
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := DefaultRegistry()
	for _, def := range overlay.All() {
		reg.Register(def)
	}
	return reg, nil
}

func loadFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		p := path.Join(dir, e.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		var def Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", p, err)
		}
		if def.ID == "" {
			return nil, fmt.Errorf("parsing %q: id must not be empty", p)
		}
		reg.Register(&def)
	}
	return reg, nil
}
