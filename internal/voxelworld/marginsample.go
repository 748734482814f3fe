package voxelworld

// SampleMarginFaces samples a voxel at coordinates in [-1, S] inclusive from
// a chunk's raw voxel snapshot plus its (possibly incomplete) six face
// neighbor snapshots, indexed by Face. It is the snapshot-only counterpart
// to (*Chunk).SampleWithMargin, used by background mesh workers that only
// ever receive the center chunk plus its six face neighbors, never full
// world chunk lookups. A coordinate that overflows more than one axis at
// once (a true diagonal neighbor) has no corresponding snapshot here and
// falls back to the clamp rule, same as a missing face neighbor.
func SampleMarginFaces(voxels [ChunkVolume]uint16, neighbors [6]*[ChunkVolume]uint16, x, y, z int) uint16 {
	if inBounds(x, y, z) {
		return voxels[VoxelIndex(x, y, z, S)]
	}

	axesOut := 0
	dx, dy, dz := 0, 0, 0
	if x < 0 {
		dx = -1
		axesOut++
	} else if x >= S {
		dx = 1
		axesOut++
	}
	if y < 0 {
		dy = -1
		axesOut++
	} else if y >= S {
		dy = 1
		axesOut++
	}
	if z < 0 {
		dz = -1
		axesOut++
	} else if z >= S {
		dz = 1
		axesOut++
	}

	if axesOut == 1 {
		face := faceFromOffset(dx, dy, dz)
		if nb := neighbors[int(face)]; nb != nil {
			lx, ly, lz := mod(x, S), mod(y, S), mod(z, S)
			return nb[VoxelIndex(lx, ly, lz, S)]
		}
	}

	cx := clampInt(x, 0, S-1)
	cy := clampInt(y, 0, S-1)
	cz := clampInt(z, 0, S-1)
	return voxels[VoxelIndex(cx, cy, cz, S)]
}

func faceFromOffset(dx, dy, dz int) Face {
	switch {
	case dx == -1:
		return FaceNegX
	case dx == 1:
		return FacePosX
	case dy == -1:
		return FaceNegY
	case dy == 1:
		return FacePosY
	case dz == -1:
		return FaceNegZ
	default:
		return FacePosZ
	}
}
