// Package scenario loads reactive graphs described in YAML and replays writes
// against them.
//
//	signals:
//	  a: 1
//	  b: 2
//	computeds:
//	  - name: total
//	    sum: [a, b]
//	    offset: 10
//	  - name: pick
//	    select: {if: a, then: total, else: b}
//	effects:
//	  - name: log
//	    watch: [total, pick]
//	steps:
//	  - {a: 5}
//	  - {a: 0, b: 7}
//
// Each step is one turn: its writes are applied, then pending effects flush.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidScenario = errors.New("scenario: invalid scenario")

type Scenario struct {
	Name      string           `yaml:"name,omitempty"`
	Signals   map[string]int   `yaml:"signals"`
	Computeds []Computed       `yaml:"computeds,omitempty"`
	Effects   []Effect         `yaml:"effects"`
	Steps     []map[string]int `yaml:"steps,omitempty"`
}

// Computed derives an int from earlier nodes, either as a sum or as a selection.
type Computed struct {
	Name   string   `yaml:"name"`
	Sum    []string `yaml:"sum,omitempty"`
	Offset int      `yaml:"offset,omitempty"`
	Select *Select  `yaml:"select,omitempty"`
}

// Select reads Then when If is non-zero, else Else.
type Select struct {
	If   string `yaml:"if"`
	Then string `yaml:"then"`
	Else string `yaml:"else"`
}

type Effect struct {
	Name  string   `yaml:"name"`
	Watch []string `yaml:"watch"`
}

// Load decodes and validates a scenario. Unknown fields are rejected.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
		}
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	return Load(bytes.NewReader(data))
}

// Validate checks names and references. Computeds may only read signals and
// computeds declared before them, which keeps every graph acyclic.
func (s *Scenario) Validate() error {
	if len(s.Effects) == 0 {
		return fmt.Errorf("%w: no effects", ErrInvalidScenario)
	}

	defined := make(map[string]bool, len(s.Signals)+len(s.Computeds))
	for name := range s.Signals {
		if name == "" {
			return fmt.Errorf("%w: signal with an empty name", ErrInvalidScenario)
		}
		defined[name] = true
	}

	for i, c := range s.Computeds {
		if c.Name == "" {
			return fmt.Errorf("%w: computed %d has no name", ErrInvalidScenario, i)
		}
		if defined[c.Name] {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidScenario, c.Name)
		}

		var refs []string
		switch {
		case c.Select != nil && len(c.Sum) > 0:
			return fmt.Errorf("%w: computed %q has both sum and select", ErrInvalidScenario, c.Name)
		case c.Select != nil:
			refs = []string{c.Select.If, c.Select.Then, c.Select.Else}
		case len(c.Sum) > 0:
			refs = c.Sum
		default:
			return fmt.Errorf("%w: computed %q has neither sum nor select", ErrInvalidScenario, c.Name)
		}

		for _, ref := range refs {
			if !defined[ref] {
				return fmt.Errorf("%w: computed %q reads unknown node %q", ErrInvalidScenario, c.Name, ref)
			}
		}

		defined[c.Name] = true
	}

	effects := make(map[string]bool, len(s.Effects))
	for i, e := range s.Effects {
		if e.Name == "" {
			return fmt.Errorf("%w: effect %d has no name", ErrInvalidScenario, i)
		}
		if effects[e.Name] {
			return fmt.Errorf("%w: duplicate effect %q", ErrInvalidScenario, e.Name)
		}
		effects[e.Name] = true

		for _, ref := range e.Watch {
			if !defined[ref] {
				return fmt.Errorf("%w: effect %q watches unknown node %q", ErrInvalidScenario, e.Name, ref)
			}
		}
	}

	for i, step := range s.Steps {
		for name := range step {
			if _, ok := s.Signals[name]; !ok {
				return fmt.Errorf("%w: step %d writes %q, which is not a signal", ErrInvalidScenario, i+1, name)
			}
		}
	}

	return nil
}
