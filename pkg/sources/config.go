// Package sources describes the independently curated catalogues that
// feed the combined catalogue: how their columns map onto cluster names
// and coordinates, and how their rows are loaded.
package sources

import (
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ucc-astro/ucc/pkg/constants"
	"github.com/ucc-astro/ucc/pkg/errors"
)

// Spec maps the columns of one source catalogue. Kinematic columns may
// be left empty when the source does not report them.
type Spec struct {
	File      string `yaml:"file,omitempty"`
	Names     string `yaml:"names"`
	Separator string `yaml:"separator,omitempty"`

	RA   string `yaml:"ra,omitempty"`
	Dec  string `yaml:"dec,omitempty"`
	Plx  string `yaml:"plx,omitempty"`
	PMRA string `yaml:"pmra,omitempty"`
	PMDE string `yaml:"pmde,omitempty"`

	// Pos is the compact form "ra,dec,plx,pmra,pmde[,rv]" where absent
	// columns are written as None. Explicit fields take precedence.
	Pos string `yaml:"pos,omitempty"`
}

// Config is the set of known source catalogues keyed by tag.
type Config struct {
	Sources map[string]Spec `yaml:"sources"`
}

// Columns returns the resolved column names with Pos expanded.
func (s Spec) Columns() Spec {
	out := s
	if out.Separator == "" {
		out.Separator = constants.DefaultNameSeparator
	}
	if s.Pos == "" {
		return out
	}

	parts := strings.Split(s.Pos, ",")
	get := func(i int) string {
		if i >= len(parts) {
			return ""
		}
		v := strings.TrimSpace(parts[i])
		if v == "None" || v == "none" || v == "null" {
			return ""
		}
		return v
	}
	for i, dst := range []*string{&out.RA, &out.Dec, &out.Plx, &out.PMRA, &out.PMDE} {
		if *dst == "" {
			*dst = get(i)
		}
	}
	return out
}

// Validate checks that the spec names every required column.
func (s Spec) Validate() error {
	c := s.Columns()
	if strings.TrimSpace(c.Names) == "" {
		return errors.NewValidationError("names", c.Names, "names column is required")
	}
	if c.RA == "" {
		return errors.NewValidationError("ra", c.RA, "ra column is required")
	}
	if c.Dec == "" {
		return errors.NewValidationError("dec", c.Dec, "dec column is required")
	}
	return nil
}

// Lookup returns the spec registered for tag.
func (c *Config) Lookup(tag string) (Spec, error) {
	s, ok := c.Sources[tag]
	if !ok {
		return Spec{}, errors.NewNotFoundError("source", tag)
	}
	if err := s.Validate(); err != nil {
		return Spec{}, errors.NewConfigError("source "+tag, "unresolvable column spec", err)
	}
	return s, nil
}

// Tags lists the configured source tags in lexical order.
func (c *Config) Tags() []string {
	tags := make([]string, 0, len(c.Sources))
	for t := range c.Sources {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// LoadConfig reads a source configuration file. Both the keyed form
// (a top-level "sources" mapping) and a bare tag mapping are accepted,
// in YAML or JSON syntax.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// ParseConfig decodes a source configuration document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewParseError("yaml", "", err.Error(), err)
	}
	if len(cfg.Sources) > 0 {
		return &cfg, nil
	}

	var bare map[string]Spec
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, errors.NewParseError("yaml", "", err.Error(), err)
	}
	delete(bare, "sources")
	cfg.Sources = bare
	if cfg.Sources == nil {
		cfg.Sources = map[string]Spec{}
	}
	return &cfg, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.MarshalWithOptions(c, yaml.Indent(2))
}
