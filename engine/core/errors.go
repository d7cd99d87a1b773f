package core

import (
	"errors"
)

var (
	ErrAssetNotFound       = errors.New("asset not found")
	ErrUnsupportedFormat   = errors.New("unsupported asset format")
	ErrShaderCompile       = errors.New("shader compilation failed")
	ErrUnsupportedUniform  = errors.New("unsupported uniform value")
	ErrDuplicateObjectName = errors.New("an object with this name is already registered")
	ErrIncompleteScene     = errors.New("imported scene is incomplete or has no root node")
	ErrSceneNotAttached    = errors.New("scene is not attached to a rendering context")
	ErrInvalidHandle       = errors.New("invalid or destroyed GPU handle")
)
