// Package config handles loading tgsix configuration from files.
//
// Configuration can be specified in a JSON file named tgsix.json or .tgsixrc.
// The config file is searched for in the input's directory and its parents.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogpu/tgsi"
	"github.com/gogpu/tgsi/aapoint"
	"github.com/gogpu/tgsi/ir"
)

// Config represents the configuration file structure.
// All fields are optional and will use default values if not specified.
type Config struct {
	// Pass is the rewrite to run, one of tgsi.Passes.
	Pass string `json:"pass,omitempty"`

	// Capacity is the initial output buffer size in words.
	Capacity *int `json:"capacity,omitempty"`

	AAPoint  *AAPointConfig  `json:"aapoint,omitempty"`
	Sprite   *SpriteConfig   `json:"sprite,omitempty"`
	PStipple *PStippleConfig `json:"pstipple,omitempty"`
}

// AAPointConfig configures the aapoint pass.
type AAPointConfig struct {
	// Mode is "squared" or "normalized".
	Mode string `json:"mode,omitempty"`

	// CoordIndex and UseTexcoordSemantic name the coordinate input
	// aapoint-coord reads.
	CoordIndex          *uint32 `json:"coordIndex,omitempty"`
	UseTexcoordSemantic *bool   `json:"useTexcoordSemantic,omitempty"`
}

// SpriteConfig configures the sprite pass.
type SpriteConfig struct {
	CoordEnable           *uint32 `json:"coordEnable,omitempty"`
	SpriteOriginLowerLeft *bool   `json:"spriteOriginLowerLeft,omitempty"`
	StreamOutPointPos     *bool   `json:"streamOutPointPos,omitempty"`
	UseTexcoordSemantic   *bool   `json:"useTexcoordSemantic,omitempty"`
	AA                    *bool   `json:"aa,omitempty"`
	AAMode                string  `json:"aaMode,omitempty"`
}

// PStippleConfig configures the pstipple pass.
type PStippleConfig struct {
	// FixedUnit pins the pattern sampler; absent picks a free one.
	FixedUnit *int `json:"fixedUnit,omitempty"`

	// Position is "IN" or "SV".
	Position string `json:"position,omitempty"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"tgsix.json",
	".tgsixrc",
	".tgsixrc.json",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. Returns nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// ToOptions converts a Config to tgsi.Options, using defaults for unset
// fields. A nil Config yields the defaults.
func (c *Config) ToOptions() (tgsi.Options, error) {
	opts := tgsi.DefaultOptions()
	if c == nil {
		return opts, nil
	}

	if c.Pass != "" {
		p, ok := tgsi.ParsePass(c.Pass)
		if !ok {
			return opts, fmt.Errorf("unknown pass %q", c.Pass)
		}
		opts.Pass = p
	}
	if c.Capacity != nil {
		opts.AAPoint.Capacity = *c.Capacity
		opts.Sprite.Capacity = *c.Capacity
		opts.PStipple.Capacity = *c.Capacity
	}

	if a := c.AAPoint; a != nil {
		if a.Mode != "" {
			mode, err := ParseMode(a.Mode)
			if err != nil {
				return opts, err
			}
			opts.AAPoint.Mode = mode
		}
		if a.CoordIndex != nil {
			opts.Coord.Index = *a.CoordIndex
		}
		if a.UseTexcoordSemantic != nil {
			opts.Coord.UseTexcoord = *a.UseTexcoordSemantic
		}
	}

	if s := c.Sprite; s != nil {
		if s.CoordEnable != nil {
			opts.Sprite.CoordEnable = *s.CoordEnable
		}
		if s.SpriteOriginLowerLeft != nil {
			opts.Sprite.SpriteOriginLowerLeft = *s.SpriteOriginLowerLeft
		}
		if s.StreamOutPointPos != nil {
			opts.Sprite.StreamOutPointPos = *s.StreamOutPointPos
		}
		if s.UseTexcoordSemantic != nil {
			opts.Sprite.UseTexcoordSemantic = *s.UseTexcoordSemantic
		}
		if s.AA != nil {
			opts.Sprite.AA = *s.AA
		}
		if s.AAMode != "" {
			mode, err := ParseMode(s.AAMode)
			if err != nil {
				return opts, err
			}
			opts.Sprite.AAMode = mode
		}
	}

	if p := c.PStipple; p != nil {
		if p.FixedUnit != nil {
			unit := *p.FixedUnit
			opts.PStipple.FixedUnit = &unit
		}
		if p.Position != "" {
			file, err := ParsePositionFile(p.Position)
			if err != nil {
				return opts, err
			}
			opts.PStipple.PositionFile = file
		}
	}

	return opts, nil
}

// MergeOptions holds CLI flags. Nil or empty fields were not given on the
// command line.
type MergeOptions struct {
	Pass        string
	Capacity    *int
	Mode        string
	CoordIndex  *uint32
	CoordEnable *uint32
	LowerLeft   *bool
	StreamOut   *bool
	Texcoord    *bool
	AA          *bool
	FixedUnit   *int
	Position    string
}

// Merge merges CLI options with config file options.
// CLI options override config file options when specified.
func (c *Config) Merge(cli MergeOptions) (tgsi.Options, error) {
	merged := Config{}
	if c != nil {
		merged = *c
	}
	if cli.Pass != "" {
		merged.Pass = cli.Pass
	}
	if cli.Capacity != nil {
		merged.Capacity = cli.Capacity
	}

	a := AAPointConfig{}
	if merged.AAPoint != nil {
		a = *merged.AAPoint
	}
	s := SpriteConfig{}
	if merged.Sprite != nil {
		s = *merged.Sprite
	}
	p := PStippleConfig{}
	if merged.PStipple != nil {
		p = *merged.PStipple
	}

	if cli.Mode != "" {
		a.Mode = cli.Mode
		s.AAMode = cli.Mode
	}
	if cli.CoordIndex != nil {
		a.CoordIndex = cli.CoordIndex
	}
	if cli.CoordEnable != nil {
		s.CoordEnable = cli.CoordEnable
	}
	if cli.LowerLeft != nil {
		s.SpriteOriginLowerLeft = cli.LowerLeft
	}
	if cli.StreamOut != nil {
		s.StreamOutPointPos = cli.StreamOut
	}
	if cli.Texcoord != nil {
		s.UseTexcoordSemantic = cli.Texcoord
		a.UseTexcoordSemantic = cli.Texcoord
	}
	if cli.AA != nil {
		s.AA = cli.AA
	}
	if cli.FixedUnit != nil {
		p.FixedUnit = cli.FixedUnit
	}
	if cli.Position != "" {
		p.Position = cli.Position
	}
	merged.AAPoint, merged.Sprite, merged.PStipple = &a, &s, &p

	return merged.ToOptions()
}

// ParseMode resolves an anti-aliasing distance mode name.
func ParseMode(name string) (aapoint.Mode, error) {
	for _, m := range []aapoint.Mode{aapoint.ModeSquared, aapoint.ModeNormalized} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown aa mode %q (want squared or normalized)", name)
}

// ParsePositionFile resolves the register file pstipple reads the
// fragment position from.
func ParsePositionFile(name string) (ir.File, error) {
	f, ok := ir.ParseFile(name)
	if !ok || (f != ir.FileInput && f != ir.FileSystemValue) {
		return 0, fmt.Errorf("unknown position file %q (want IN or SV)", name)
	}
	return f, nil
}
