package loaders

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

// ShaderLoader reads GLSL source text.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(fsys fs.FS, name string, params interface{}) (*metadata.Resource, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, core.ErrAssetNotFound)
	}
	return &metadata.Resource{
		Name:         path.Base(name),
		FullPath:     name,
		ResourceType: metadata.ResourceTypeShader,
		DataSize:     uint64(len(data)),
		Data:         string(data),
	}, nil
}

func (sl *ShaderLoader) Unload(*metadata.Resource) error {
	return nil
}
