// Package config loads a settlement run from a YAML file: the build area and
// terrain, the structure catalog, search limits and the phases, whose rewards
// and predicates are written as expressions.
package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/IlikeChooros/go-settlement/pkg/catalog"
	"github.com/IlikeChooros/go-settlement/pkg/geom"
	"github.com/IlikeChooros/go-settlement/pkg/mcts"
	"github.com/IlikeChooros/go-settlement/pkg/settlement"
	"github.com/IlikeChooros/go-settlement/pkg/terrain"
)

var ErrInvalid = errors.New("config: invalid")

const (
	TerrainFlat  = "flat"
	TerrainNoise = "noise"
)

type Config struct {
	Name string `yaml:"name"`
	// Builtin catalog name or a path to a catalog document, relative to the config file
	Catalog        string   `yaml:"catalog"`
	SettlementType string   `yaml:"settlementType"`
	Seed           int64    `yaml:"seed"`
	Roots          []string `yaml:"roots"`
	Area           Area     `yaml:"area"`
	Terrain        Terrain  `yaml:"terrain"`
	Search         Search   `yaml:"search"`
	// Requirements available to the expressions as 'required', either given
	// directly or derived from the number of inhabitants
	Inhabitants  int                `yaml:"inhabitants"`
	Requirements map[string]float64 `yaml:"requirements"`
	Phases       []PhaseConfig      `yaml:"phases"`
	Output       Output             `yaml:"output"`

	dir string
}

type Area struct {
	X     int `yaml:"x"`
	Z     int `yaml:"z"`
	Width int `yaml:"width"`
	Depth int `yaml:"depth"`
}

func (a Area) Rect() geom.Rect {
	return geom.Rect{Offset: geom.Vec2{X: a.X, Z: a.Z}, Size: geom.Vec2{X: a.Width, Z: a.Depth}}
}

type Terrain struct {
	Kind string `yaml:"kind"`
	// Ground height of a flat terrain
	Height int `yaml:"height"`
	// Parameters of a noise terrain
	Noise terrain.Params `yaml:"noise"`
}

type Search struct {
	Cycles   uint32 `yaml:"cycles"`
	Movetime int    `yaml:"movetime"` // ms
}

type PhaseConfig struct {
	Name        string  `yaml:"name"`
	Reward      string  `yaml:"reward"`
	Terminate   string  `yaml:"terminate"`
	Filter      string  `yaml:"filter"`
	Exploration float64 `yaml:"exploration"`
	Cycles      uint32  `yaml:"cycles"`
	Movetime    int     `yaml:"movetime"`
	Fresh       bool    `yaml:"fresh"`
	AllowReuse  bool    `yaml:"allowReuse"`
}

type Output struct {
	Database string `yaml:"database"`
	Snapshot string `yaml:"snapshot"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.dir = filepath.Dir(path)
	return c, nil
}

// Decode a YAML document, apply defaults and validate it
func Parse(raw []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "settlement"
	}
	if c.Catalog == "" {
		c.Catalog = "debug"
	}
	if c.Terrain.Kind == "" {
		c.Terrain.Kind = TerrainFlat
	}
	if c.Terrain.Kind == TerrainNoise {
		defaults := terrain.DefaultParams()
		if c.Terrain.Noise.Base == 0 {
			c.Terrain.Noise.Base = defaults.Base
		}
		if c.Terrain.Noise.Amplitude == 0 {
			c.Terrain.Noise.Amplitude = defaults.Amplitude
		}
		if c.Terrain.Noise.Octaves == 0 {
			c.Terrain.Noise.Octaves = defaults.Octaves
		}
		if c.Terrain.Noise.Frequency == 0 {
			c.Terrain.Noise.Frequency = defaults.Frequency
		}
		if c.Terrain.Noise.Persistence == 0 {
			c.Terrain.Noise.Persistence = defaults.Persistence
		}
	}
	if c.Search.Cycles == 0 && c.Search.Movetime <= 0 {
		c.Search.Cycles = settlement.DefaultCycles
	}
	for i := range c.Phases {
		if c.Phases[i].Name == "" {
			c.Phases[i].Name = fmt.Sprintf("phase-%d", i+1)
		}
	}
}

func (c *Config) validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	if c.Area.Width <= 0 || c.Area.Depth <= 0 {
		return invalid("area %dx%d must not be empty", c.Area.Width, c.Area.Depth)
	}
	if !slices.Contains([]string{TerrainFlat, TerrainNoise}, c.Terrain.Kind) {
		return invalid("unknown terrain kind %q", c.Terrain.Kind)
	}
	if len(c.Phases) == 0 {
		return invalid("no phases")
	}
	if c.Inhabitants < 0 {
		return invalid("negative number of inhabitants")
	}
	if _, err := settlement.BookkeepingFromMap(c.Requirements); err != nil {
		return invalid("requirements: %v", err)
	}
	for _, p := range c.Phases {
		if p.Reward == "" {
			return invalid("phase %q has no reward", p.Name)
		}
	}
	return nil
}

// Environment oracle over the configured area
func (c *Config) Oracle() terrain.Oracle {
	area := c.Area.Rect()
	if c.Terrain.Kind == TerrainNoise {
		return terrain.Generate(area, c.Terrain.Noise)
	}
	return terrain.Flat(area, c.Terrain.Height)
}

// Builtin catalog with the configured name, or the catalog document at that path
func (c *Config) LoadCatalog(oracle terrain.Oracle) (*catalog.Catalog, error) {
	if slices.Contains(catalog.BuiltinNames(), c.Catalog) {
		return catalog.Builtin(c.Catalog, oracle)
	}
	path := c.Catalog
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, path)
	}
	return catalog.Load(path, oracle)
}

func (c *Config) Limits() *mcts.Limits {
	limits := mcts.DefaultLimits()
	if c.Search.Cycles > 0 {
		limits.SetCycles(c.Search.Cycles)
	}
	if c.Search.Movetime > 0 {
		limits.SetMovetime(c.Search.Movetime)
	}
	return limits
}

// Requirements exposed to the expressions. Explicit values win over the
// ones derived from the inhabitants
func (c *Config) Required() settlement.Bookkeeping {
	var req settlement.Bookkeeping
	if c.Inhabitants > 0 {
		req = settlement.ObservationPostRequirements(c.Inhabitants, rand.New(rand.NewSource(c.Seed)))
	}
	explicit, _ := settlement.BookkeepingFromMap(c.Requirements)
	for name := range c.Requirements {
		k, _ := settlement.ParseKey(name)
		req.Set(k, explicit.Get(k))
	}
	return req
}

// Settlement options: seed, settlement type and root structures
func (c *Config) Options() []settlement.Option {
	opts := []settlement.Option{
		settlement.WithRand(rand.New(rand.NewSource(c.Seed))),
		settlement.WithLimits(c.Limits()),
	}
	if c.SettlementType != "" {
		opts = append(opts, settlement.WithSettlementType(c.SettlementType))
	}
	if len(c.Roots) > 0 {
		opts = append(opts, settlement.WithRootStructure(c.Roots...))
	}
	return opts
}

// Compile the phases' expressions
func (c *Config) BuildPhases() ([]settlement.Phase, error) {
	required := c.Required().Map()
	phases := make([]settlement.Phase, 0, len(c.Phases))

	for _, pc := range c.Phases {
		p := settlement.Phase{
			Name:        pc.Name,
			Exploration: pc.Exploration,
			Fresh:       pc.Fresh,
		}
		p.AllowReuse = pc.AllowReuse

		var err error
		if p.Reward, err = CompileReward(pc.Reward, required); err != nil {
			return nil, fmt.Errorf("phase %q: %w", pc.Name, err)
		}
		if pc.Terminate != "" {
			if p.Terminate, err = CompileTerminate(pc.Terminate, required); err != nil {
				return nil, fmt.Errorf("phase %q: %w", pc.Name, err)
			}
		}
		if pc.Filter != "" {
			if p.Filter, err = CompileFilter(pc.Filter, required); err != nil {
				return nil, fmt.Errorf("phase %q: %w", pc.Name, err)
			}
		}

		if pc.Cycles > 0 || pc.Movetime > 0 {
			p.Limits = mcts.DefaultLimits()
			if pc.Cycles > 0 {
				p.Limits.SetCycles(pc.Cycles)
			}
			if pc.Movetime > 0 {
				p.Limits.SetMovetime(pc.Movetime)
			}
		}
		phases = append(phases, p)
	}
	return phases, nil
}
