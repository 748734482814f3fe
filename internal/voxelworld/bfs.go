package voxelworld

import "github.com/dan0net/worldify/internal/profiling"

// ChunkStatus is what a ChunkProvider reports for a given coordinate during
// BFS: a chunk that is fully loaded carries its visibility bits; a chunk
// that is pending or missing is treated as transparent so the streaming
// frontier is never blocked by data that simply hasn't arrived yet.
type ChunkStatus int

const (
	ChunkMissing ChunkStatus = iota
	ChunkPending
	ChunkLoaded
)

// ChunkProvider answers "what do we know about this chunk" for BFS.
type ChunkProvider interface {
	ChunkState(coord ChunkCoord) (chunk *Chunk, status ChunkStatus)
}

// BFSResult is the output of a single Visibility BFS pass.
type BFSResult struct {
	Reachable map[ChunkCoord]struct{}
	ToRequest map[ChunkCoord]struct{}
}

// RunBFS computes, from observer, the set of chunks reachable under the
// face-connectivity graph derived from per-chunk visibility bits, clipped to
// Chebyshev radius R, plus the subset of missing reachable chunks worth
// requesting given the camera's frustum and forward direction. Visibility
// bits decide reachability; the frustum and forward check only decide what
// is worth asking the server for, so a chunk can be reachable without ever
// being requested.
func RunBFS(observer ChunkCoord, camera CameraView, radius int, provider ChunkProvider) BFSResult {
	defer profiling.Track("voxelworld.RunBFS")()

	visited := map[ChunkCoord]struct{}{observer: {}}
	enteredVia := map[ChunkCoord]Face{}
	statusOf := map[ChunkCoord]ChunkStatus{}

	queue := []ChunkCoord{observer}
	for len(queue) > 0 {
		coord := queue[0]
		queue = queue[1:]

		chunk, status := provider.ChunkState(coord)
		statusOf[coord] = status

		for _, fOut := range allFaces {
			admissible := coord == observer || status != ChunkLoaded
			if !admissible {
				fIn := enteredVia[coord]
				// fOut == fIn would re-cross the face just entered through;
				// there is no (f,f) bit in the pair table for that.
				admissible = fOut != fIn && chunk.VisibilityBits()&(1<<uint(PairBit(fIn, fOut))) != 0
			}
			if !admissible {
				continue
			}

			neighbor := coord.Neighbor(fOut)
			if neighbor.ChebyshevDistance(observer) > radius {
				continue
			}
			if _, seen := visited[neighbor]; seen {
				continue
			}
			visited[neighbor] = struct{}{}
			enteredVia[neighbor] = fOut.Opposite()
			queue = append(queue, neighbor)
		}
	}

	result := BFSResult{
		Reachable: visited,
		ToRequest: make(map[ChunkCoord]struct{}),
	}

	if camera == nil {
		return result
	}
	frustum := camera.Frustum()
	forward := camera.Forward()
	observerCenter := ChunkCenter(observer)

	for coord := range visited {
		if statusOf[coord] != ChunkMissing {
			continue
		}
		min, max := ChunkAABB(coord)
		if !frustum.IntersectsAABB(min, max) {
			continue
		}
		toCenter := ChunkCenter(coord).Sub(observerCenter)
		if toCenter.Dot(forward) < 0 {
			continue
		}
		result.ToRequest[coord] = struct{}{}
	}

	return result
}
