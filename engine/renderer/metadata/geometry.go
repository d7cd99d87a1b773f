package metadata

import (
	"github.com/spaghettifunk/qtk/engine/math"
)

/**
 * @brief Selects how a shape's vertices are laid out and submitted.
 */
type DrawMode int

const (
	/** @brief Expanded vertices, drawn without indices. */
	DrawArrays DrawMode = iota
	/** @brief Shared vertices with an index list. No normals or texture coordinates. */
	DrawElements
	/** @brief Per-face vertices with an index list, normals and texture coordinates. */
	DrawElementsNormals
)

func (d DrawMode) String() string {
	switch d {
	case DrawArrays:
		return "arrays"
	case DrawElements:
		return "elements"
	case DrawElementsNormals:
		return "elements_normals"
	default:
		return "unknown"
	}
}

// UsesIndices reports whether the mode submits geometry through an index list.
func (d DrawMode) UsesIndices() bool {
	return d == DrawElements || d == DrawElementsNormals
}

/** @brief The primitive topology used when submitting a draw call. */
type Primitive int

const (
	PrimitiveTriangles Primitive = iota
	PrimitiveLines
	PrimitivePoints
	PrimitiveLineLoop
	PrimitiveTriangleStrip
)

/** @brief Named colors used by the shape generators. */
var (
	ColorRed     = math.NewVec3(1.0, 0.0, 0.0)
	ColorGreen   = math.NewVec3(0.0, 1.0, 0.0)
	ColorBlue    = math.NewVec3(0.0, 0.0, 1.0)
	ColorYellow  = math.NewVec3(1.0, 1.0, 0.0)
	ColorCyan    = math.NewVec3(0.0, 1.0, 1.0)
	ColorMagenta = math.NewVec3(1.0, 0.0, 1.0)
	ColorWhite   = math.NewVec3(1.0, 1.0, 1.0)
	ColorBlack   = math.NewVec3(0.0, 0.0, 0.0)
)

/**
 * @brief Geometry ready to be uploaded: parallel per-vertex arrays plus an
 * optional index list. Shapes are treated as values; Clone before mutating
 * one that is shared.
 */
type Shape struct {
	/** @brief Vertex positions. */
	Vertices []math.Vec3
	/** @brief Per-vertex colors, parallel to Vertices. */
	Colors []math.Vec3
	/** @brief Indices into Vertices. Empty for DrawArrays. */
	Indices []uint32
	/** @brief Per-vertex texture coordinates. May be empty. */
	TexCoords []math.Vec2
	/** @brief Per-vertex normals. May be empty. */
	Normals []math.Vec3
	/** @brief How the shape is submitted. */
	DrawMode DrawMode
}

// Clone returns a deep copy of the shape.
func (s *Shape) Clone() *Shape {
	if s == nil {
		return nil
	}
	return &Shape{
		Vertices:  append([]math.Vec3(nil), s.Vertices...),
		Colors:    append([]math.Vec3(nil), s.Colors...),
		Indices:   append([]uint32(nil), s.Indices...),
		TexCoords: append([]math.Vec2(nil), s.TexCoords...),
		Normals:   append([]math.Vec3(nil), s.Normals...),
		DrawMode:  s.DrawMode,
	}
}
