/* rubric.go
 * Contains the ranking point rubric as configuration data. Rubric variants are kept in a named table so the
 * rule set in use is picked explicitly by name, and extra variants can be loaded from a YAML file
 */

package logic

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// AutoRule names the condition for the auto ranking point
type AutoRule string

const (
	// AutoRuleAllianceMoved: this robot moved and both other alliance members moved
	AutoRuleAllianceMoved AutoRule = "alliance-moved"
	// AutoRuleCoralAndMoved: this robot moved and scored at least one coral in auto
	AutoRuleCoralAndMoved AutoRule = "coral-and-moved"
)

const (
	DefaultRubricName = "reefscape-2025"
	EarlyRubricName   = "reefscape-2025-early"

	maxMatchResultPoints = 3
)

// Rubric is one ranking point rule variant
type Rubric struct {
	Name      string   `yaml:"name"`
	WinPoints int      `yaml:"win_points"`
	TiePoints int      `yaml:"tie_points"`
	AutoRule  AutoRule `yaml:"auto_rule"`

	CoralLevelTarget           int `yaml:"coral_level_target"`
	CoralLevelsRequired        int `yaml:"coral_levels_required"`
	CoopertitionLevelsRequired int `yaml:"coopertition_levels_required"`
	CoopertitionProcessorMin   int `yaml:"coopertition_processor_min"`

	BargeThreshold int `yaml:"barge_threshold"`
}

// Validate checks a rubric can only ever award between 0 and 6 ranking points
func (r Rubric) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rubric name is required")
	}
	switch r.AutoRule {
	case AutoRuleAllianceMoved, AutoRuleCoralAndMoved:
	default:
		return fmt.Errorf("rubric %s: unknown auto rule %q", r.Name, r.AutoRule)
	}
	if r.WinPoints < 0 || r.WinPoints > maxMatchResultPoints {
		return fmt.Errorf("rubric %s: win points must be within 0..%d", r.Name, maxMatchResultPoints)
	}
	if r.TiePoints < 0 || r.TiePoints > r.WinPoints {
		return fmt.Errorf("rubric %s: tie points must be within 0..win points", r.Name)
	}
	if r.CoralLevelsRequired < 1 || r.CoralLevelsRequired > 4 {
		return fmt.Errorf("rubric %s: coral levels required must be within 1..4", r.Name)
	}
	if r.CoopertitionLevelsRequired < 1 || r.CoopertitionLevelsRequired > r.CoralLevelsRequired {
		return fmt.Errorf("rubric %s: coopertition levels required must be within 1..coral levels required", r.Name)
	}
	if r.CoralLevelTarget < 1 || r.BargeThreshold < 1 || r.CoopertitionProcessorMin < 1 {
		return fmt.Errorf("rubric %s: thresholds must be positive", r.Name)
	}
	return nil
}

// RubricSet is a table of rubric variants keyed by name
type RubricSet map[string]Rubric

// DefaultRubrics returns the built in variants. reefscape-2025 is the newest rule set and is the default,
// reefscape-2025-early is the auto rule used by the first version of the scouting form
func DefaultRubrics() RubricSet {
	current := Rubric{
		Name:                       DefaultRubricName,
		WinPoints:                  3,
		TiePoints:                  1,
		AutoRule:                   AutoRuleAllianceMoved,
		CoralLevelTarget:           5,
		CoralLevelsRequired:        4,
		CoopertitionLevelsRequired: 3,
		CoopertitionProcessorMin:   2,
		BargeThreshold:             14,
	}
	early := current
	early.Name = EarlyRubricName
	early.AutoRule = AutoRuleCoralAndMoved

	return RubricSet{
		current.Name: current,
		early.Name:   early,
	}
}

// DefaultRubric returns the reefscape-2025 rubric
func DefaultRubric() Rubric {
	return DefaultRubrics()[DefaultRubricName]
}

// Lookup returns the rubric with the given name. An empty name selects the default
func (s RubricSet) Lookup(name string) (Rubric, error) {
	if name == "" {
		name = DefaultRubricName
	}
	r, ok := s[name]
	if !ok {
		return Rubric{}, fmt.Errorf("unknown rubric %q, available: %v", name, s.Names())
	}
	return r, nil
}

// Names returns the rubric names in sorted order
func (s RubricSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type rubricFile struct {
	Rubrics []Rubric `yaml:"rubrics"`
}

// ParseRubrics decodes a YAML rubric table and merges it over the built in variants. A variant in the file with
// the same name as a built in one replaces it
func ParseRubrics(data []byte) (RubricSet, error) {
	var file rubricFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rubric file: %w", err)
	}

	set := DefaultRubrics()
	for _, r := range file.Rubrics {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		set[r.Name] = r
	}
	return set, nil
}

// LoadRubrics reads a YAML rubric table from disk. An empty path returns the built in variants
func LoadRubrics(path string) (RubricSet, error) {
	if path == "" {
		return DefaultRubrics(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric file: %w", err)
	}
	return ParseRubrics(data)
}
