package systems

import (
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

// Corners of the unit cube centered at the origin.
var cubeCorners = [8]math.Vec3{
	{X: 0.5, Y: 0.5, Z: 0.5},    // 0 front top right
	{X: -0.5, Y: 0.5, Z: 0.5},   // 1 front top left
	{X: -0.5, Y: -0.5, Z: 0.5},  // 2 front bottom left
	{X: 0.5, Y: -0.5, Z: 0.5},   // 3 front bottom right
	{X: 0.5, Y: 0.5, Z: -0.5},   // 4 back top right
	{X: -0.5, Y: 0.5, Z: -0.5},  // 5 back top left
	{X: -0.5, Y: -0.5, Z: -0.5}, // 6 back bottom left
	{X: 0.5, Y: -0.5, Z: -0.5},  // 7 back bottom right
}

// Cube faces as counter-clockwise quads seen from outside.
var cubeFaces = [6][4]uint32{
	{2, 3, 0, 1}, // front
	{3, 7, 4, 0}, // right
	{7, 6, 5, 4}, // back
	{6, 2, 1, 5}, // left
	{1, 0, 4, 5}, // top
	{6, 7, 3, 2}, // bottom
}

// Square pyramid: apex followed by the four base corners.
var pyramidCorners = [5]math.Vec3{
	{X: 0.0, Y: 0.5, Z: 0.0},    // 0 apex
	{X: -0.5, Y: -0.5, Z: 0.5},  // 1 front left
	{X: 0.5, Y: -0.5, Z: 0.5},   // 2 front right
	{X: 0.5, Y: -0.5, Z: -0.5},  // 3 back right
	{X: -0.5, Y: -0.5, Z: -0.5}, // 4 back left
}

var pyramidSides = [4][3]uint32{
	{1, 2, 0},
	{2, 3, 0},
	{3, 4, 0},
	{4, 1, 0},
}

var pyramidBase = [4]uint32{4, 3, 2, 1}

// Colors are picked by corner so every draw mode shows the same coloring.
var palette = [8]math.Vec3{
	metadata.ColorRed,
	metadata.ColorGreen,
	metadata.ColorBlue,
	metadata.ColorYellow,
	metadata.ColorCyan,
	metadata.ColorMagenta,
	metadata.ColorWhite,
	metadata.ColorBlack,
}

var (
	quadUVs     = [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	triangleUVs = [3]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 1}}
)

// quad triangulation as offsets into a,b,c,d
var quadTriangles = [6]uint32{0, 1, 2, 0, 2, 3}

/**
 * @brief Generates a unit cube centered at the origin.
 * ARRAYS: 36 vertices, no indices.
 * ELEMENTS: 8 shared vertices, 36 indices, no normals or texture coordinates.
 * ELEMENTS_NORMALS: 24 vertices (4 per face), 36 indices, per-face normals and UVs.
 */
func NewCube(mode metadata.DrawMode) *metadata.Shape {
	shape := &metadata.Shape{DrawMode: mode}

	switch mode {
	case metadata.DrawElements:
		for i, c := range cubeCorners {
			shape.Vertices = append(shape.Vertices, c)
			shape.Colors = append(shape.Colors, palette[i])
		}
		for _, face := range cubeFaces {
			for _, q := range quadTriangles {
				shape.Indices = append(shape.Indices, face[q])
			}
		}
	case metadata.DrawElementsNormals:
		for f, face := range cubeFaces {
			base := uint32(f * 4)
			normal := math.FaceNormal(cubeCorners[face[0]], cubeCorners[face[1]], cubeCorners[face[2]])
			for i, corner := range face {
				shape.Vertices = append(shape.Vertices, cubeCorners[corner])
				shape.Colors = append(shape.Colors, palette[corner])
				shape.TexCoords = append(shape.TexCoords, quadUVs[i])
				shape.Normals = append(shape.Normals, normal)
			}
			for _, q := range quadTriangles {
				shape.Indices = append(shape.Indices, base+q)
			}
		}
	default:
		shape.DrawMode = metadata.DrawArrays
		for _, face := range cubeFaces {
			normal := math.FaceNormal(cubeCorners[face[0]], cubeCorners[face[1]], cubeCorners[face[2]])
			for _, q := range quadTriangles {
				corner := face[q]
				shape.Vertices = append(shape.Vertices, cubeCorners[corner])
				shape.Colors = append(shape.Colors, palette[corner])
				shape.TexCoords = append(shape.TexCoords, quadUVs[q])
				shape.Normals = append(shape.Normals, normal)
			}
		}
	}
	return shape
}

/**
 * @brief Generates a square based pyramid centered at the origin.
 * ARRAYS: 18 vertices. ELEMENTS: 5 vertices, 18 indices.
 * ELEMENTS_NORMALS: 16 vertices, 18 indices, per-face normals and UVs.
 */
func NewTriangle(mode metadata.DrawMode) *metadata.Shape {
	shape := &metadata.Shape{DrawMode: mode}

	switch mode {
	case metadata.DrawElements:
		for i, c := range pyramidCorners {
			shape.Vertices = append(shape.Vertices, c)
			shape.Colors = append(shape.Colors, palette[i])
		}
		for _, side := range pyramidSides {
			shape.Indices = append(shape.Indices, side[:]...)
		}
		for _, q := range quadTriangles {
			shape.Indices = append(shape.Indices, pyramidBase[q])
		}
	case metadata.DrawElementsNormals:
		for _, side := range pyramidSides {
			for i, corner := range side {
				shape.Indices = append(shape.Indices, uint32(len(shape.Vertices)))
				shape.Vertices = append(shape.Vertices, pyramidCorners[corner])
				shape.Colors = append(shape.Colors, palette[corner])
				shape.TexCoords = append(shape.TexCoords, triangleUVs[i])
			}
		}
		base := uint32(len(shape.Vertices))
		for i, corner := range pyramidBase {
			shape.Vertices = append(shape.Vertices, pyramidCorners[corner])
			shape.Colors = append(shape.Colors, palette[corner])
			shape.TexCoords = append(shape.TexCoords, quadUVs[i])
		}
		for _, q := range quadTriangles {
			shape.Indices = append(shape.Indices, base+q)
		}
		// One normal per triangle, looked up through the indices.
		shape.Normals = make([]math.Vec3, len(shape.Vertices))
		for i := 0; i+2 < len(shape.Indices); i += 3 {
			i0, i1, i2 := shape.Indices[i], shape.Indices[i+1], shape.Indices[i+2]
			n := math.FaceNormal(shape.Vertices[i0], shape.Vertices[i1], shape.Vertices[i2])
			shape.Normals[i0], shape.Normals[i1], shape.Normals[i2] = n, n, n
		}
	default:
		shape.DrawMode = metadata.DrawArrays
		for _, side := range pyramidSides {
			for i, corner := range side {
				shape.Vertices = append(shape.Vertices, pyramidCorners[corner])
				shape.Colors = append(shape.Colors, palette[corner])
				shape.TexCoords = append(shape.TexCoords, triangleUVs[i])
			}
		}
		for _, q := range quadTriangles {
			corner := pyramidBase[q]
			shape.Vertices = append(shape.Vertices, pyramidCorners[corner])
			shape.Colors = append(shape.Colors, palette[corner])
			shape.TexCoords = append(shape.TexCoords, quadUVs[q])
		}
		for i := 0; i+2 < len(shape.Vertices); i += 3 {
			n := math.FaceNormal(shape.Vertices[i], shape.Vertices[i+1], shape.Vertices[i+2])
			shape.Normals = append(shape.Normals, n, n, n)
		}
	}
	return shape
}

/**
 * @brief Generates a flat plane on the XZ axes facing +Y, split in segments.
 *
 * @param width The overall width of the plane. Must be non-zero.
 * @param depth The overall depth of the plane. Must be non-zero.
 * @param xSegmentCount The number of segments along the x-axis. Must be non-zero.
 * @param zSegmentCount The number of segments along the z-axis. Must be non-zero.
 * @param tileX The number of times the texture should tile across the x-axis. Must be non-zero.
 * @param tileZ The number of times the texture should tile across the z-axis. Must be non-zero.
 * @return An ELEMENTS_NORMALS shape.
 */
func NewPlane(width, depth float32, xSegmentCount, zSegmentCount uint32, tileX, tileZ float32) *metadata.Shape {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1.0
	}
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if zSegmentCount < 1 {
		core.LogWarn("zSegmentCount must be a positive number. Defaulting to one.")
		zSegmentCount = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileZ == 0 {
		core.LogWarn("tileZ must be nonzero. Defaulting to one.")
		tileZ = 1.0
	}

	segments := xSegmentCount * zSegmentCount
	shape := &metadata.Shape{
		DrawMode:  metadata.DrawElementsNormals,
		Vertices:  make([]math.Vec3, 0, segments*4),
		Colors:    make([]math.Vec3, 0, segments*4),
		TexCoords: make([]math.Vec2, 0, segments*4),
		Normals:   make([]math.Vec3, 0, segments*4),
		Indices:   make([]uint32, 0, segments*6),
	}

	segWidth := width / float32(xSegmentCount)
	segDepth := depth / float32(zSegmentCount)
	halfWidth := width * 0.5
	halfDepth := depth * 0.5
	up := math.NewVec3(0, 1, 0)

	for z := uint32(0); z < zSegmentCount; z++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := (float32(x) * segWidth) - halfWidth
			minZ := (float32(z) * segDepth) - halfDepth
			maxX := minX + segWidth
			maxZ := minZ + segDepth
			minU := (float32(x) / float32(xSegmentCount)) * tileX
			minV := (float32(z) / float32(zSegmentCount)) * tileZ
			maxU := (float32(x+1) / float32(xSegmentCount)) * tileX
			maxV := (float32(z+1) / float32(zSegmentCount)) * tileZ

			base := uint32(len(shape.Vertices))
			shape.Vertices = append(shape.Vertices,
				math.NewVec3(minX, 0, maxZ),
				math.NewVec3(maxX, 0, maxZ),
				math.NewVec3(maxX, 0, minZ),
				math.NewVec3(minX, 0, minZ),
			)
			shape.TexCoords = append(shape.TexCoords,
				math.NewVec2(minU, minV),
				math.NewVec2(maxU, minV),
				math.NewVec2(maxU, maxV),
				math.NewVec2(minU, maxV),
			)
			for i := 0; i < 4; i++ {
				shape.Normals = append(shape.Normals, up)
				shape.Colors = append(shape.Colors, metadata.ColorWhite)
			}
			for _, q := range quadTriangles {
				shape.Indices = append(shape.Indices, base+q)
			}
		}
	}
	return shape
}
