package voxelworld

// Benchmark dispatching the remesh queue under a realistic load: a cube of
// loaded, freshly-ingested chunks around the observer, mirroring how a
// server-driven client drains its queue after a burst of chunk arrivals.

import "testing"

func BenchmarkManagerDrainRemesh(b *testing.B) {
	opts := DefaultOptions()
	mgr := NewManager(opts, Hooks{}, newFakeMesher(), nil)

	voxels := make([]uint16, ChunkVolume)
	for i := range voxels {
		voxels[i] = Pack(0.5, 1, 15)
	}

	const half = 3
	for cx := -half; cx <= half; cx++ {
		for cy := -half; cy <= half; cy++ {
			for cz := -half; cz <= half; cz++ {
				mgr.IngestChunkData(ChunkCoord{X: cx, Y: cy, Z: cz}, voxels, 0)
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for cx := -half; cx <= half; cx++ {
			for cy := -half; cy <= half; cy++ {
				for cz := -half; cz <= half; cz++ {
					mgr.enqueueRemesh(ChunkCoord{X: cx, Y: cy, Z: cz})
				}
			}
		}
		mgr.drainRemesh(ChunkCoord{})
	}
}
