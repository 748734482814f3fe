package voxelworld

import "github.com/go-gl/mathgl/mgl32"

// SubMesh is one material layer of a chunk's extracted surface: positions
// and normals are 1:1, and the two triplanar-ready material arrays sum to 1
// per vertex so a shader can blend up to three materials at a boundary.
type SubMesh struct {
	Positions       []mgl32.Vec3
	Normals         []mgl32.Vec3
	MaterialIDs     [][3]uint8
	MaterialWeights [][3]float32
	Light           []uint8
	Indices         []uint32
}

// ChunkMesh is the three-layer output of the Surface Mesher for one chunk:
// solid (opaque terrain), transparent (e.g. glass-like materials) and
// liquid (water) are kept separate so the renderer can sort and shade them
// differently.
type ChunkMesh struct {
	Coord       ChunkCoord
	Solid       SubMesh
	Transparent SubMesh
	Liquid      SubMesh
}

// MeshJob is a self-contained unit of mesh work: a snapshot of the target
// chunk's voxels plus whichever of its six face neighbors were loaded at
// submission time, so a worker thread never touches live chunk state and
// the tick thread never has to hold a lock while a mesh is extracted.
type MeshJob struct {
	Coord     ChunkCoord
	Voxels    [ChunkVolume]uint16
	Neighbors [6]*[ChunkVolume]uint16
}

// MeshResult is the opaque payload a mesh worker hands back for atomic
// swap-in by the tick thread.
type MeshResult struct {
	Coord ChunkCoord
	Mesh  ChunkMesh
	Err   error
}

// Mesher dispatches mesh extraction work, synchronously or on a worker
// pool, and delivers completed results on a channel the World Manager
// drains once per tick. Submit must never block the tick thread; a full
// queue should return false so the caller can re-enqueue for a later tick.
type Mesher interface {
	Submit(job MeshJob) bool
	Results() <-chan MeshResult
}
