package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/qtk/engine/renderer"
	"github.com/spaghettifunk/qtk/engine/renderer/headless"
)

var _ renderer.Backend = (*headless.Backend)(nil)

const (
	vert = "#version 330 core\nvoid main() {}\n"
	frag = "#version 330 core\nout vec4 c;\nvoid main() { c = vec4(1.0); }\n"
)

func TestShaderBindScopeBindsAndReleases(t *testing.T) {
	b := headless.New()
	p, err := b.CreateProgram(vert, frag)
	require.NoError(t, err)

	scope := renderer.NewShaderBindScope(b, p)
	assert.True(t, scope.DidBind())
	assert.Equal(t, p, b.BoundProgram())

	scope.Release()
	assert.Zero(t, b.BoundProgram())
	assert.Equal(t, 2, b.ProgramBinds())
}

func TestShaderBindScopeSkipsWhenAlreadyBound(t *testing.T) {
	b := headless.New()
	p, err := b.CreateProgram(vert, frag)
	require.NoError(t, err)

	b.UseProgram(p)
	scope := renderer.NewShaderBindScope(b, p)
	assert.False(t, scope.DidBind())
	scope.Release()

	// The caller's binding survives and no extra binds were issued.
	assert.Equal(t, p, b.BoundProgram())
	assert.Equal(t, 1, b.ProgramBinds())
}

func TestShaderBindScopeRestoresPrevious(t *testing.T) {
	b := headless.New()
	p1, err := b.CreateProgram(vert, frag)
	require.NoError(t, err)
	p2, err := b.CreateProgram(vert, frag)
	require.NoError(t, err)

	b.UseProgram(p1)
	scope := renderer.NewShaderBindScope(b, p2)
	assert.Equal(t, p2, b.BoundProgram())
	scope.Release()
	scope.Release()
	assert.Equal(t, p1, b.BoundProgram())
	assert.Equal(t, 3, b.ProgramBinds())
}
