package equationshift

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/equationshift/cas"
	"github.com/njchilds90/equationshift/token"
)

// SimplifyFunc rewrites an expression into an equivalent, simpler one.
type SimplifyFunc func(expr string) (string, error)

// SolvableFunc reports whether left = right can be solved for target.
type SolvableFunc func(left, right, target string) bool

// SolveFunc returns every solution of left = right for target.
type SolveFunc func(left, right, target string) ([]string, error)

// Config controls how an Equation restructures itself. Each Equation keeps its
// own copy.
type Config struct {
	// SupportiveMode appends every step to both sides instead of moving the
	// term out of its source side.
	SupportiveMode            bool `yaml:"supportive_mode" json:"supportiveMode"`
	GroupTokens               bool `yaml:"group_tokens" json:"groupTokens"`
	AutoSimplification        bool `yaml:"auto_simplification" json:"autoSimplification"`
	LockWhenSolved            bool `yaml:"lock_when_solved" json:"lockWhenSolved"`
	ShowPreview               bool `yaml:"show_preview" json:"showPreview"`
	PrettifyFractions         bool `yaml:"prettify_fractions" json:"prettifyFractions"`
	CheckIfEquationIsSolvable bool `yaml:"check_if_equation_is_solvable" json:"checkIfEquationIsSolvable"`

	Simplify   SimplifyFunc `yaml:"-" json:"-"`
	IsSolvable SolvableFunc `yaml:"-" json:"-"`
	Solve      SolveFunc    `yaml:"-" json:"-"`
}

// DefaultConfig enables everything except fraction prettifying and uses the
// cas package for simplifying and solving.
func DefaultConfig() Config {
	return Config{
		SupportiveMode:            true,
		GroupTokens:               true,
		AutoSimplification:        true,
		LockWhenSolved:            true,
		ShowPreview:               true,
		PrettifyFractions:         false,
		CheckIfEquationIsSolvable: true,
		Simplify:                  cas.SimplifyText,
		IsSolvable:                cas.IsSolvable,
		Solve:                     cas.SolveText,
	}
}

// LoadConfig reads a YAML file over DefaultConfig, so keys missing from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("equationshift: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("equationshift: parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.Simplify == nil {
		c.Simplify = cas.SimplifyText
	}
	if c.IsSolvable == nil {
		c.IsSolvable = cas.IsSolvable
	}
	if c.Solve == nil {
		c.Solve = cas.SolveText
	}
	return c
}

func (c Config) tokenOptions() token.Options {
	return token.Options{GroupTokens: c.GroupTokens, PrettifyFractions: c.PrettifyFractions}
}
