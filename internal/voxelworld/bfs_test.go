package voxelworld

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// fakeProvider is a trivial ChunkProvider backed by a fixed map, used to
// drive BFS without a full Manager.
type fakeProvider struct {
	chunks  map[ChunkCoord]*Chunk
	pending map[ChunkCoord]bool
}

func (p *fakeProvider) ChunkState(coord ChunkCoord) (*Chunk, ChunkStatus) {
	if c, ok := p.chunks[coord]; ok {
		return c, ChunkLoaded
	}
	if p.pending[coord] {
		return nil, ChunkPending
	}
	return nil, ChunkMissing
}

// unculledCamera never frustum-clips, isolating BFS tests that only care
// about the forward-hemisphere direction check from frustum-plane math.
type unculledCamera struct {
	pos, fwd mgl32.Vec3
}

func (c unculledCamera) Frustum() Frustum     { return AlwaysVisible }
func (c unculledCamera) Position() mgl32.Vec3 { return c.pos }
func (c unculledCamera) Forward() mgl32.Vec3  { return c.fwd }

func TestBFSReachableContainsObserverAndIsBounded(t *testing.T) {
	provider := &fakeProvider{chunks: map[ChunkCoord]*Chunk{}}
	observer := ChunkCoord{}
	result := RunBFS(observer, nil, 3, provider)

	if _, ok := result.Reachable[observer]; !ok {
		t.Fatal("reachable must contain the observer chunk")
	}
	maxSize := (2*3 + 1) * (2*3 + 1) * (2*3 + 1)
	if len(result.Reachable) > maxSize {
		t.Errorf("reachable size %d exceeds (2R+1)^3 = %d", len(result.Reachable), maxSize)
	}
}

func TestBFSMissingChunksAreTransparent(t *testing.T) {
	// No chunks loaded at all: BFS should still flood-fill through every
	// missing chunk up to the radius, since missing/pending chunks never
	// block the frontier.
	provider := &fakeProvider{chunks: map[ChunkCoord]*Chunk{}}
	observer := ChunkCoord{}
	result := RunBFS(observer, nil, 2, provider)

	want := ChunkCoord{X: 2, Y: 0, Z: 0}
	if _, ok := result.Reachable[want]; !ok {
		t.Errorf("expected %v reachable through missing chunks, got %d reachable", want, len(result.Reachable))
	}
}

// TestBFSTunnelOnlyExitsOppositeFace checks that a solid chunk with a -X to
// +X tunnel only lets BFS pass straight through, never out the Y or Z
// faces.
func TestBFSTunnelOnlyExitsOppositeFace(t *testing.T) {
	tunnel := NewChunk(ChunkCoord{0, 0, 0})
	tunnel.Fill(0.5, 1, 0)
	midY, midZ := S/2, S/2
	for x := 0; x < S; x++ {
		tunnel.Set(x, midY, midZ, Pack(-0.5, 0, 0))
	}
	tunnel.SetVisibilityBits(ComputeVisibilityBits(tunnel))

	// Every other chunk around the observer and the tunnel is loaded and
	// fully solid: missing chunks are transparent to BFS, so leaving them
	// unloaded would let the search route around the tunnel chunk.
	chunks := map[ChunkCoord]*Chunk{{0, 0, 0}: tunnel}
	for x := -2; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				coord := ChunkCoord{x, y, z}
				if _, ok := chunks[coord]; ok {
					continue
				}
				solid := NewChunk(coord)
				solid.Fill(0.5, 1, 0)
				solid.SetVisibilityBits(ComputeVisibilityBits(solid))
				chunks[coord] = solid
			}
		}
	}
	provider := &fakeProvider{chunks: chunks}

	observer := ChunkCoord{-1, 0, 0}
	result := RunBFS(observer, nil, 4, provider)

	mustReach := []ChunkCoord{{-1, 0, 0}, {0, 0, 0}, {1, 0, 0}}
	for _, c := range mustReach {
		if _, ok := result.Reachable[c]; !ok {
			t.Errorf("expected %v reachable through the tunnel", c)
		}
	}
	mustNotReach := []ChunkCoord{{0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for _, c := range mustNotReach {
		if _, ok := result.Reachable[c]; ok {
			t.Errorf("%v should not be reachable: the tunnel chunk only connects -X to +X", c)
		}
	}
}

func TestBFSToRequestOnlyIncludesMissingChunks(t *testing.T) {
	loaded := NewChunk(ChunkCoord{1, 0, 0})
	loaded.Fill(-0.5, 0, 0) // all air, fully connected
	loaded.SetVisibilityBits(ComputeVisibilityBits(loaded))

	provider := &fakeProvider{
		chunks:  map[ChunkCoord]*Chunk{{1, 0, 0}: loaded},
		pending: map[ChunkCoord]bool{{2, 0, 0}: true},
	}
	observer := ChunkCoord{}
	cam := unculledCamera{pos: mgl32.Vec3{}, fwd: mgl32.Vec3{1, 0, 0}}
	result := RunBFS(observer, cam, 3, provider)

	if _, ok := result.ToRequest[ChunkCoord{1, 0, 0}]; ok {
		t.Error("a loaded chunk must never appear in toRequest")
	}
	if _, ok := result.ToRequest[ChunkCoord{2, 0, 0}]; ok {
		t.Error("a pending chunk must never appear in toRequest")
	}
	if _, ok := result.ToRequest[ChunkCoord{-1, 0, 0}]; ok {
		t.Error("a chunk behind the camera must not be requested")
	}
}
