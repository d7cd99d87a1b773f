package renderer

import (
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

/**
 * @brief Binds a program for the duration of a block of uniform updates.
 * The program is bound only if it is not already the current one, and
 * Release only unbinds what this scope bound.
 *
 *	scope := renderer.NewShaderBindScope(backend, program)
 *	defer scope.Release()
 */
type ShaderBindScope struct {
	backend  Backend
	previous metadata.Program
	didBind  bool
	released bool
}

func NewShaderBindScope(backend Backend, program metadata.Program) *ShaderBindScope {
	s := &ShaderBindScope{
		backend:  backend,
		previous: backend.BoundProgram(),
	}
	if s.previous != program {
		backend.UseProgram(program)
		s.didBind = true
	}
	return s
}

// DidBind reports whether the scope changed the bound program.
func (s *ShaderBindScope) DidBind() bool {
	return s.didBind
}

// Release restores the previously bound program. Safe to call more than once.
func (s *ShaderBindScope) Release() {
	if s.released {
		return
	}
	s.released = true
	if s.didBind {
		s.backend.UseProgram(s.previous)
	}
}
