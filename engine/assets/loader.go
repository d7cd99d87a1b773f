package assets

import (
	"io/fs"

	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

type Loader interface {
	// Load reads name from fsys. params are loader specific and may be nil.
	Load(fsys fs.FS, name string, params interface{}) (*metadata.Resource, error)
	Unload(*metadata.Resource) error
}
