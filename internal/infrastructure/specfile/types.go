package specfile

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/spec"
)

// Document is the on-disk form of a specification.
type Document struct {
	Version     string    `yaml:"version" validate:"required,docversion"`
	ID          string    `yaml:"id" validate:"required,min=1,max=100"`
	Lifecycle   string    `yaml:"lifecycle,omitempty" validate:"omitempty,oneof=draft active deprecated"`
	MaxRetries  int       `yaml:"max_retries,omitempty" validate:"omitempty,min=0,max=10"`
	Tags        []string  `yaml:"tags,omitempty"`
	LastUpdated time.Time `yaml:"last_updated,omitempty"`
	Steps       []StepDef `yaml:"steps" validate:"required,min=1,dive"`
}

// StepDef describes one step reference: the grammar key it names plus its
// cells, rows, or nested children. Cell order is significant, so cells and
// rows decode from mapping nodes directly instead of Go maps.
type StepDef struct {
	ID      string         `yaml:"id" validate:"omitempty,stepid"`
	Grammar string         `yaml:"grammar" validate:"required,grammarkey"`
	Cells   []spec.CellDef `yaml:"-"`
	Rows    [][]spec.CellDef
	Steps   []StepDef `yaml:"-" validate:"omitempty,dive"`
}

// UnmarshalYAML decodes a step reference, preserving the written order of
// cells and row columns.
func (s *StepDef) UnmarshalYAML(value *yaml.Node) error {
	type baseStep struct {
		ID      string `yaml:"id"`
		Grammar string `yaml:"grammar"`
	}

	var base baseStep
	if err := value.Decode(&base); err != nil {
		return err
	}
	s.ID = base.ID
	s.Grammar = base.Grammar

	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: step must be a mapping", value.Line)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "cells":
			cells, err := decodeCells(val)
			if err != nil {
				return err
			}
			s.Cells = cells
		case "rows":
			if val.Kind != yaml.SequenceNode {
				return fmt.Errorf("line %d: rows must be a sequence", val.Line)
			}
			for _, row := range val.Content {
				cells, err := decodeCells(row)
				if err != nil {
					return err
				}
				s.Rows = append(s.Rows, cells)
			}
		case "steps":
			var children []StepDef
			if err := val.Decode(&children); err != nil {
				return err
			}
			s.Steps = children
		}
	}

	return nil
}

func decodeCells(node *yaml.Node) ([]spec.CellDef, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: cells must be a mapping", node.Line)
	}
	cells := make([]spec.CellDef, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		cells = append(cells, spec.CellDef{
			Name:  node.Content[i].Value,
			Value: node.Content[i+1].Value,
		})
	}
	return cells, nil
}

// Definitions converts the document's step references into compiler input.
func (d *Document) Definitions() []spec.Definition {
	return defsFromSteps(d.ID, d.Steps)
}

func defsFromSteps(parentID string, steps []StepDef) []spec.Definition {
	defs := make([]spec.Definition, 0, len(steps))
	for i, s := range steps {
		id := s.ID
		if id == "" {
			id = fmt.Sprintf("%s/%d", parentID, i+1)
		}
		defs = append(defs, spec.Definition{
			ID:       id,
			Grammar:  s.Grammar,
			Cells:    s.Cells,
			Rows:     s.Rows,
			Children: defsFromSteps(id, s.Steps),
		})
	}
	return defs
}
