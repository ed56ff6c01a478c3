package pll

import (
	"log"

	"github.com/sarchlab/caravelpll/hooking"
	"github.com/sarchlab/caravelpll/idgen"
)

// Builder can be used to build a Configurator.
type Builder struct {
	ids    idgen.Generator
	logger *log.Logger
	hooks  []hooking.Hook
}

// MakeBuilder creates a new builder with a sequential run ID generator and
// no logging.
func MakeBuilder() Builder {
	return Builder{}
}

// WithIDGenerator sets the generator that names each Configure run.
func (b Builder) WithIDGenerator(ids idgen.Generator) Builder {
	b.ids = ids
	return b
}

// WithLogger attaches a SearchLogger writing into logger.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithHook attaches an additional hook to the Solver.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// Build builds the Configurator.
func (b Builder) Build() *Configurator {
	c := &Configurator{
		solver: NewSolver(),
		ids:    b.ids,
	}

	if c.ids == nil {
		c.ids = idgen.NewSequential()
	}

	if b.logger != nil {
		c.solver.AcceptHook(NewSearchLogger(b.logger))
	}

	for _, h := range b.hooks {
		c.solver.AcceptHook(h)
	}

	return c
}
