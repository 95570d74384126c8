// Package inline replaces inline markdown constructs with their HTML tags.
//
// Substitutions are expressed as an ordered Pipeline of named stages. Every
// stage is a pure string transform, so stages can be tested in isolation and
// the ordering dependencies between them stay visible in one place.
package inline

import "strings"

// Stage is one named substitution
type Stage struct {
	Name  string
	Apply func(string) string
}

// Pipeline applies its stages left to right
type Pipeline []Stage

// Run passes s through every stage in order
func (p Pipeline) Run(s string) string {
	for _, stage := range p {
		s = stage.Apply(s)
	}
	return s
}

// Names returns the stage names in execution order
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, stage := range p {
		names[i] = stage.Name
	}
	return names
}

// Stage returns the stage with the given name
func (p Pipeline) Stage(name string) (Stage, bool) {
	for _, stage := range p {
		if stage.Name == name {
			return stage, true
		}
	}
	return Stage{}, false
}

// Without returns a copy of the pipeline minus the named stages
func (p Pipeline) Without(names ...string) Pipeline {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}

	out := make(Pipeline, 0, len(p))
	for _, stage := range p {
		if !skip[stage.Name] {
			out = append(out, stage)
		}
	}
	return out
}

// Lines runs the pipeline and splits the result into lines
func (p Pipeline) Lines(s string) []string {
	out := p.Run(s)
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
