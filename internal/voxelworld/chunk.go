package voxelworld

const (
	// S is the canonical chunk edge length in voxels.
	S = 32
	// V is the world-space size of one voxel, in meters.
	V = 0.25
	// ChunkVolume is the number of voxels in a chunk, S^3.
	ChunkVolume = S * S * S
	// ChunkFootprint is the world-space size of one chunk edge, in meters.
	ChunkFootprint = S * V
)

// Chunk is a fixed S^3 array of packed voxels at an integer chunk coordinate.
// It owns a dirty flag, the sequence number of the last authoritative build it
// applied, and a 15-bit face-to-face visibility summary. Chunks never hold
// pointers to their neighbors — samplers and meshers take a neighbor lookup
// as an explicit argument instead, so a chunk can be unloaded without
// leaving any other chunk holding a dangling reference to it.
type Chunk struct {
	Coord ChunkCoord

	voxels [ChunkVolume]uint16

	dirty          bool
	lastBuildSeq   uint32
	visibilityBits uint16
}

// NewChunk creates an empty (all-air) chunk at the given coordinate.
func NewChunk(coord ChunkCoord) *Chunk {
	return &Chunk{Coord: coord}
}

func inBounds(x, y, z int) bool {
	return x >= 0 && x < S && y >= 0 && y < S && z >= 0 && z < S
}

// Get returns the packed voxel at local coordinates (x,y,z). Out-of-bounds
// reads return 0 (air).
func (c *Chunk) Get(x, y, z int) uint16 {
	if !inBounds(x, y, z) {
		return 0
	}
	return c.voxels[VoxelIndex(x, y, z, S)]
}

// Set writes the packed voxel at local coordinates (x,y,z). Out-of-bounds
// writes are a silent no-op and never set dirty — the base behavior callers
// building an editable wrapper (the World Manager's ingest/build paths) rely
// on to only mark the flag when data actually changed.
func (c *Chunk) Set(x, y, z int, v uint16) {
	if !inBounds(x, y, z) {
		return
	}
	c.voxels[VoxelIndex(x, y, z, S)] = v
}

// SetDirty sets the packed voxel and marks the chunk dirty iff the write was
// in-bounds and the value actually changed. This is the entry point used by
// voxel ingest and build application — the paths that actually edit terrain,
// as opposed to Set's silent no-op base behavior.
func (c *Chunk) SetDirty(x, y, z int, v uint16) (changed bool) {
	if !inBounds(x, y, z) {
		return false
	}
	idx := VoxelIndex(x, y, z, S)
	if c.voxels[idx] == v {
		return false
	}
	c.voxels[idx] = v
	c.dirty = true
	return true
}

// Dirty reports whether the chunk needs remeshing.
func (c *Chunk) Dirty() bool { return c.dirty }

// ClearDirty clears the dirty flag after a successful remesh.
func (c *Chunk) ClearDirty() { c.dirty = false }

// LastBuildSeq returns the sequence number of the last applied authoritative
// build operation.
func (c *Chunk) LastBuildSeq() uint32 { return c.lastBuildSeq }

// SetLastBuildSeq records the sequence number of the last applied build.
func (c *Chunk) SetLastBuildSeq(seq uint32) { c.lastBuildSeq = seq }

// VisibilityBits returns the current 15-bit face-to-face visibility summary.
func (c *Chunk) VisibilityBits() uint16 { return c.visibilityBits }

// SetVisibilityBits stores a freshly computed visibility summary.
func (c *Chunk) SetVisibilityBits(bits uint16) { c.visibilityBits = bits }

// Fill sets every voxel in the chunk to the given weight/material/light and
// marks it dirty.
func (c *Chunk) Fill(weight float32, material, light uint8) {
	v := Pack(weight, material, light)
	for i := range c.voxels {
		c.voxels[i] = v
	}
	c.dirty = true
}

// GenerateFlat fills every voxel below local y (exclusive) solid with
// material 1 and everything at or above it with air. A utility for tests and
// offline-mode bootstrapping.
func (c *Chunk) GenerateFlat(y int) {
	solid := Pack(0.5, 1, 15)
	air := Pack(-0.5, 0, 0)
	for lx := 0; lx < S; lx++ {
		for lz := 0; lz < S; lz++ {
			for ly := 0; ly < S; ly++ {
				if ly < y {
					c.Set(lx, ly, lz, solid)
				} else {
					c.Set(lx, ly, lz, air)
				}
			}
		}
	}
	c.dirty = true
}

// CopyVoxels overwrites the chunk's voxel data wholesale, e.g. on ingest of a
// VOXEL_CHUNK_DATA message. Length mismatches are truncated/zero-padded
// rather than panicking, since the data originates from untrusted network
// input and a malformed or short payload must never crash the client.
func (c *Chunk) CopyVoxels(data []uint16) {
	n := copy(c.voxels[:], data)
	for i := n; i < len(c.voxels); i++ {
		c.voxels[i] = 0
	}
	c.dirty = true
}

// Voxels returns a read-only view of the packed voxel buffer, e.g. for
// snapshotting into a worker-thread mesh job.
func (c *Chunk) Voxels() *[ChunkVolume]uint16 {
	return &c.voxels
}

// Snapshot returns a shallow copy of the voxel buffer, suitable for handing
// to a background mesh worker without holding any lock across the call.
func (c *Chunk) Snapshot() [ChunkVolume]uint16 {
	return c.voxels
}

// NeighborLookup resolves the chunk across a face, or nil if not loaded.
// Implemented by the World Manager's chunk store.
type NeighborLookup func(coord ChunkCoord) *Chunk

// SampleWithMargin samples a voxel at local coordinates that may range over
// [-1, S] inclusive — one voxel of margin on every side, used by the mesher
// to stitch neighbor-seamed boundaries. Coordinates inside [0,S) are read
// directly from this chunk. Coordinates outside are resolved against the
// neighbor chunk across the appropriate face/edge/corner; if that neighbor is
// missing, the coordinate is clamped back into range and sampled from this
// chunk instead, so an unloaded border never fabricates a false surface.
func (c *Chunk) SampleWithMargin(x, y, z int, lookup NeighborLookup) uint16 {
	if inBounds(x, y, z) {
		return c.voxels[VoxelIndex(x, y, z, S)]
	}

	dx, dy, dz := 0, 0, 0
	if x < 0 {
		dx = -1
	} else if x >= S {
		dx = 1
	}
	if y < 0 {
		dy = -1
	} else if y >= S {
		dy = 1
	}
	if z < 0 {
		dz = -1
	} else if z >= S {
		dz = 1
	}

	neighborCoord := ChunkCoord{X: c.Coord.X + dx, Y: c.Coord.Y + dy, Z: c.Coord.Z + dz}
	if lookup != nil {
		if nb := lookup(neighborCoord); nb != nil {
			lx := mod(x, S)
			ly := mod(y, S)
			lz := mod(z, S)
			return nb.voxels[VoxelIndex(lx, ly, lz, S)]
		}
	}

	// Neighbor missing: extrapolate by clamping into this chunk's range.
	cx := clampInt(x, 0, S-1)
	cy := clampInt(y, 0, S-1)
	cz := clampInt(z, 0, S-1)
	return c.voxels[VoxelIndex(cx, cy, cz, S)]
}
