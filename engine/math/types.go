package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/**
 * @brief a 4x4 matrix, typically used to represent object transformations.
 * Elements are stored column-major, the layout expected by the GPU.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief Represents a single vertex of an imported model mesh.
 */
type ModelVertex struct {
	/** @brief The position of the vertex */
	Position Vec3
	/** @brief The normal of the vertex. */
	Normal Vec3
	/** @brief The tangent of the vertex. */
	Tangent Vec3
	/** @brief The bitangent of the vertex. */
	Bitangent Vec3
	/** @brief The texture coordinate of the vertex. */
	Texcoord Vec2
}

/**
 * @brief Represents the transform of an object in the world.
 * The properties are only reachable through the methods in
 * transform.go so the cached matrix is always rebuilt when needed.
 */
type Transform struct {
	/** @brief The position in the world. */
	translation Vec3
	/** @brief The rotation in the world. Always a unit quaternion. */
	rotation Quaternion
	/** @brief The scale in the world. */
	scale Vec3
	/**
	 * @brief Indicates if the position, rotation or scale have changed,
	 * indicating that the world matrix needs to be recalculated.
	 */
	dirty bool
	/**
	 * @brief The world transformation matrix, updated whenever
	 * the position, rotation or scale have changed.
	 */
	world Mat4
}
