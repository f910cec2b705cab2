package builder

import (
	"fmt"
	"slices"

	"github.com/arloliu/voicefont/errs"
)

// Standard pipeline stage names.
const (
	StageQuestions = "questions"
	StageAcoustic  = "acoustic"
	StageCost      = "cost"
	StageStrings   = "strings"
	StageAssemble  = "assemble"
)

// Stage is one named step of the build pipeline. A stage's inputs are typed
// fields on the stage struct, filled and validated by its factory; Run reads
// and writes the shared build State.
type Stage interface {
	// Name identifies the stage in the registry and in build logs.
	Name() string
	// Run executes the stage against the shared build state.
	Run(st *State) error
}

// StageFactory builds a stage from the builder's manifest. Factories do all
// manifest validation, so a misconfigured stage fails at construction rather
// than mid-build. A factory may return a nil stage to signal the manifest
// gives it nothing to do.
type StageFactory func(b *Builder) (Stage, error)

// Registry maps stage names to factories in registration order. Stages are
// registered once at startup; a build resolves and runs them in that order.
// The zero value is not usable, use NewRegistry.
type Registry struct {
	factories map[string]StageFactory
	order     []string
}

// NewRegistry creates an empty stage registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]StageFactory)}
}

// Register adds a named stage factory.
//
// Returns:
//   - error: errs.ErrStageExists if the name is already registered
func (r *Registry) Register(name string, factory StageFactory) error {
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %s", errs.ErrStageExists, name)
	}

	r.factories[name] = factory
	r.order = append(r.order, name)

	return nil
}

// Factory returns the factory registered under name.
//
// Returns:
//   - StageFactory: The registered factory
//   - error: errs.ErrStageUnknown if the name was never registered
func (r *Registry) Factory(name string) (StageFactory, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrStageUnknown, name)
	}

	return factory, nil
}

// Names returns the stage names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// DefaultRegistry returns a registry with the standard build pipeline:
// questions, acoustic, cost, strings, assemble. The order mirrors the font's
// section slot order; cost runs before assembly because its container is a
// sibling artifact, not a font section.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Literal unique names, Register cannot fail.
	_ = r.Register(StageQuestions, newQuestionStage)
	_ = r.Register(StageAcoustic, newAcousticStage)
	_ = r.Register(StageCost, newCostStage)
	_ = r.Register(StageStrings, newStringStage)
	_ = r.Register(StageAssemble, newAssembleStage)

	return r
}
