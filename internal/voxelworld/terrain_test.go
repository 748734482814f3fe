package voxelworld

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

// flatTerrain returns a minimal config with the overlays disabled, enough to
// exercise the base height field and material stratification deterministically.
func flatTerrain() TerrainConfig {
	return TerrainConfig{
		Seed:       1,
		BaseHeight: 20,
		HeightLayers: []NoiseLayer{
			{Seed: 1, Amplitude: 4, Frequency: 0.01, Octaves: 3, Persistence: 0.5, Lacunarity: 2},
		},
		Materials: MaterialTable{
			Layers: []MaterialLayer{
				{Material: 1, MaxDepth: 1},
				{Material: 2, MaxDepth: 6},
			},
			Default: 3,
		},
		DefaultLight: 15,
	}
}

// chunkDigest hashes a chunk's packed voxel buffer, giving a compact
// fingerprint for determinism comparisons.
func chunkDigest(c *Chunk) [32]byte {
	buf := make([]byte, ChunkVolume*2)
	v := c.Voxels()
	for i, val := range v {
		binary.LittleEndian.PutUint16(buf[i*2:], val)
	}
	return sha256.Sum256(buf)
}

func BenchmarkGenerateChunk(b *testing.B) {
	cfg := flatTerrain()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cfg.GenerateChunk(ChunkCoord{X: i, Y: 0, Z: -i})
	}
}

func TestGenerateChunkIsDeterministic(t *testing.T) {
	cfg := flatTerrain()
	a := cfg.GenerateChunk(ChunkCoord{2, 0, -3})
	b := cfg.GenerateChunk(ChunkCoord{2, 0, -3})
	if chunkDigest(a) != chunkDigest(b) {
		t.Fatal("GenerateChunk must be a pure function of (config, coord); got different output for identical input")
	}
}

func TestGenerateChunkDiffersAcrossCoords(t *testing.T) {
	cfg := flatTerrain()
	a := cfg.GenerateChunk(ChunkCoord{0, 0, 0})
	b := cfg.GenerateChunk(ChunkCoord{5, 0, 0})
	if chunkDigest(a) == chunkDigest(b) {
		t.Error("distinct chunk coordinates should not generate identical terrain (extremely unlikely by chance)")
	}
}

func TestGenerateChunkMarksDirtyAndVisibility(t *testing.T) {
	cfg := flatTerrain()
	c := cfg.GenerateChunk(ChunkCoord{})
	if !c.Dirty() {
		t.Error("GenerateChunk must mark the chunk dirty so it gets meshed")
	}
	// A terrain chunk straddling its base height is neither fully solid nor
	// fully air, so it should report nonzero visibility connectivity.
	if c.VisibilityBits() == 0 {
		t.Error("expected nonzero visibility bits for a chunk spanning the terrain surface")
	}
}

func TestGenerateChunkStratifiesMaterialByDepth(t *testing.T) {
	cfg := flatTerrain()
	c := cfg.GenerateChunk(ChunkCoord{})

	// Find the topmost solid voxel in the (0,0) column by direct scan,
	// rather than trusting a derived height estimate, so the test doesn't
	// depend on exactly reproducing the noise field by hand.
	topSolid := -1
	for y := S - 1; y >= 0; y-- {
		if IsSolid(c.Get(0, y, 0)) {
			topSolid = y
			break
		}
	}
	if topSolid < 0 || topSolid >= S-1 {
		t.Fatalf("test fixture assumption violated: no usable solid/air transition inside one chunk (topSolid=%d)", topSolid)
	}

	shallow := c.Get(0, topSolid, 0)
	if Material(shallow) != 1 {
		t.Errorf("shallow subsurface material = %d, want 1 (first material band)", Material(shallow))
	}
	if topSolid >= 10 {
		deep := c.Get(0, topSolid-10, 0)
		if !IsSolid(deep) {
			t.Fatal("test fixture assumption violated: expected solid voxel 10 levels below the surface")
		}
		if Material(deep) != 3 {
			t.Errorf("deep subsurface material = %d, want 3 (table default)", Material(deep))
		}
	}
	air := c.Get(0, topSolid+1, 0)
	if IsSolid(air) {
		t.Error("voxel immediately above the surface must be air")
	}
}

func TestStampIntoScalesFootprintRadius(t *testing.T) {
	cfg := flatTerrain()
	cfg.Stamps = StampConfig{Enabled: true}

	small := StampCandidate{X: S / 2, Z: S / 2, Def: StampDef{Material: 9, Radius: 1, Height: 1}, Scale: 1}
	big := StampCandidate{X: S / 2, Z: S / 2, Def: StampDef{Material: 9, Radius: 1, Height: 1}, Scale: 3}

	countMaterial := func(cand StampCandidate) int {
		c := cfg.GenerateChunk(ChunkCoord{})
		cfg.stampInto(c, cand)
		n := 0
		for x := 0; x < S; x++ {
			for z := 0; z < S; z++ {
				for y := 0; y < S; y++ {
					if Material(c.Get(x, y, z)) == 9 {
						n++
					}
				}
			}
		}
		return n
	}

	smallCount := countMaterial(small)
	bigCount := countMaterial(big)
	if smallCount == 0 {
		t.Fatal("expected at least one voxel written at scale=1")
	}
	if bigCount <= smallCount {
		t.Errorf("scale=3 footprint (%d voxels) should cover strictly more than scale=1 (%d)", bigCount, smallCount)
	}
}

func TestStampIntoRotationIsDeterministic(t *testing.T) {
	cfg := flatTerrain()
	cand := StampCandidate{X: S / 2, Z: S / 2, Def: StampDef{Material: 9, Radius: 2, Height: 2}, Rotation: 0.7, Scale: 1}

	digest := func() [32]byte {
		c := cfg.GenerateChunk(ChunkCoord{})
		cfg.stampInto(c, cand)
		return chunkDigest(c)
	}
	if digest() != digest() {
		t.Fatal("stampInto must be a pure function of (cfg, chunk contents, candidate)")
	}
}

func TestPathMaterialWallsOutEmptyAllowListAllowsEverything(t *testing.T) {
	cfg := TerrainConfig{}
	if !cfg.pathMaterialWallsOut(0) || !cfg.pathMaterialWallsOut(42) {
		t.Error("an empty WallMaterials allow-list must allow every path material to grow a wall")
	}
}

func TestPathMaterialWallsOutRespectsAllowList(t *testing.T) {
	cfg := TerrainConfig{Pathways: PathwayConfig{WallMaterials: map[uint8]bool{5: true}}}
	if !cfg.pathMaterialWallsOut(5) {
		t.Error("material 5 is in the allow-list and must grow a wall")
	}
	if cfg.pathMaterialWallsOut(6) {
		t.Error("material 6 is not in the allow-list and must not grow a wall")
	}
	if cfg.pathMaterialWallsOut(0) {
		t.Error("material 0 must not grow a wall once a non-empty allow-list excludes it")
	}
}
