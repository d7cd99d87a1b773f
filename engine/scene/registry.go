package scene

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/qtk/engine/core"
)

// Registry indexes the objects of a scene by name. A name maps to at most
// one object across meshes and models.
type Registry struct {
	meshes map[string]*MeshRenderer
	models map[string]*Model
}

func NewRegistry() *Registry {
	return &Registry{
		meshes: make(map[string]*MeshRenderer),
		models: make(map[string]*Model),
	}
}

// Has reports whether name is taken by a mesh or a model.
func (r *Registry) Has(name string) bool {
	_, mesh := r.meshes[name]
	_, model := r.models[name]
	return mesh || model
}

func (r *Registry) RegisterMesh(m *MeshRenderer) error {
	if r.Has(m.Name()) {
		return fmt.Errorf("mesh '%s': %w", m.Name(), core.ErrDuplicateObjectName)
	}
	r.meshes[m.Name()] = m
	return nil
}

func (r *Registry) RegisterModel(m *Model) error {
	if r.Has(m.Name()) {
		return fmt.Errorf("model '%s': %w", m.Name(), core.ErrDuplicateObjectName)
	}
	r.models[m.Name()] = m
	return nil
}

// Unregister drops name from the registry. Returns false if it was unknown.
func (r *Registry) Unregister(name string) bool {
	if _, ok := r.meshes[name]; ok {
		delete(r.meshes, name)
		return true
	}
	if _, ok := r.models[name]; ok {
		delete(r.models, name)
		return true
	}
	return false
}

func (r *Registry) Mesh(name string) *MeshRenderer {
	return r.meshes[name]
}

func (r *Registry) Model(name string) *Model {
	return r.models[name]
}

func (r *Registry) Len() int {
	return len(r.meshes) + len(r.models)
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.Len())
	for name := range r.meshes {
		names = append(names, name)
	}
	for name := range r.models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
