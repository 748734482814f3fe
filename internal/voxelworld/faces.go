package voxelworld

import "fmt"

// Face identifies one of the six cube faces of a chunk.
type Face int

const (
	FaceNegX Face = iota
	FacePosX
	FaceNegY
	FacePosY
	FaceNegZ
	FacePosZ
	faceCount
)

// faceOffsets gives the unit step in chunk-space for crossing each face.
var faceOffsets = [faceCount]ChunkCoord{
	FaceNegX: {X: -1},
	FacePosX: {X: 1},
	FaceNegY: {Y: -1},
	FacePosY: {Y: 1},
	FaceNegZ: {Z: -1},
	FacePosZ: {Z: 1},
}

// Opposite returns the face on the other side of the same axis.
func (f Face) Opposite() Face {
	switch f {
	case FaceNegX:
		return FacePosX
	case FacePosX:
		return FaceNegX
	case FaceNegY:
		return FacePosY
	case FacePosY:
		return FaceNegY
	case FaceNegZ:
		return FacePosZ
	case FacePosZ:
		return FaceNegZ
	}
	panic(fmt.Sprintf("voxelworld: invalid face %d", f))
}

// facePairBit maps every unordered pair of distinct faces to a bit index in
// [0,15), giving the 15-bit per-chunk visibility bitset BFS reads face
// transitions out of. The table is filled once at init time rather than
// computed per call.
var facePairBit [faceCount][faceCount]int

func init() {
	bit := 0
	for i := Face(0); i < faceCount; i++ {
		for j := i + 1; j < faceCount; j++ {
			facePairBit[i][j] = bit
			facePairBit[j][i] = bit
			bit++
		}
	}
}

// PairBit returns the visibility-bitset bit index for the unordered pair
// (a,b). a == b is not a valid pair and panics.
func PairBit(a, b Face) int {
	if a == b {
		panic("voxelworld: PairBit called with identical faces")
	}
	return facePairBit[a][b]
}

// allFaces is a convenience iteration order used throughout the package.
var allFaces = [faceCount]Face{FaceNegX, FacePosX, FaceNegY, FacePosY, FaceNegZ, FacePosZ}
