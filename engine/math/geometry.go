package math

// FaceNormal returns the unit normal of the triangle (v0, v1, v2),
// following counter-clockwise winding.
func FaceNormal(v0, v1, v2 Vec3) Vec3 {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	return edge1.Cross(edge2).Normalized()
}

// GeometryGenerateNormals assigns each vertex referenced by a triangle the
// face normal of that triangle. Vertices shared between faces keep the
// normal of the last face that references them.
func GeometryGenerateNormals(vertices []ModelVertex, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		normal := FaceNormal(vertices[i0].Position, vertices[i1].Position, vertices[i2].Position)
		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

// GeometryGenerateTangents computes per-face tangents and bitangents from
// positions and texture coordinates.
func GeometryGenerateTangents(vertices []ModelVertex, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		deltaU1 := vertices[i1].Texcoord.X - vertices[i0].Texcoord.X
		deltaV1 := vertices[i1].Texcoord.Y - vertices[i0].Texcoord.Y

		deltaU2 := vertices[i2].Texcoord.X - vertices[i0].Texcoord.X
		deltaV2 := vertices[i2].Texcoord.Y - vertices[i0].Texcoord.Y

		dividend := deltaU1*deltaV2 - deltaU2*deltaV1
		if kabs(dividend) < K_FLOAT_EPSILON {
			// Degenerate UVs, fall back to an axis orthogonal to the normal.
			n := vertices[i0].Normal
			if n.LengthSquared() == 0 {
				n = FaceNormal(vertices[i0].Position, vertices[i1].Position, vertices[i2].Position)
			}
			tangent := edge1.Normalized()
			bitangent := n.Cross(tangent).Normalized()
			for _, idx := range []uint32{i0, i1, i2} {
				vertices[idx].Tangent = tangent
				vertices[idx].Bitangent = bitangent
			}
			continue
		}
		fc := 1.0 / dividend

		tangent := Vec3{
			fc * (deltaV2*edge1.X - deltaV1*edge2.X),
			fc * (deltaV2*edge1.Y - deltaV1*edge2.Y),
			fc * (deltaV2*edge1.Z - deltaV1*edge2.Z)}.Normalized()

		bitangent := Vec3{
			fc * (-deltaU2*edge1.X + deltaU1*edge2.X),
			fc * (-deltaU2*edge1.Y + deltaU1*edge2.Y),
			fc * (-deltaU2*edge1.Z + deltaU1*edge2.Z)}.Normalized()

		for _, idx := range []uint32{i0, i1, i2} {
			vertices[idx].Tangent = tangent
			vertices[idx].Bitangent = bitangent
		}
	}
}

// FlattenVec3 packs vectors into a tightly packed float slice.
func FlattenVec3(data []Vec3) []float32 {
	out := make([]float32, 0, len(data)*3)
	for _, v := range data {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}

// FlattenVec2 packs vectors into a tightly packed float slice.
func FlattenVec2(data []Vec2) []float32 {
	out := make([]float32, 0, len(data)*2)
	for _, v := range data {
		out = append(out, v.X, v.Y)
	}
	return out
}
