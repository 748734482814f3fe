package voxelworld

import (
	"math"

	"github.com/dan0net/worldify/internal/profiling"
)

// TerrainConfig is the full deterministic generation recipe for a world
// seed: a layered height field under domain warp, a depth-stratified
// material table, and the two optional overlays (pathways, stamps).
// GenerateChunk is a pure function of (cfg, coord): the same config and
// coordinate always produce the same voxel buffer, regardless of
// generation order, which is what lets the client and server agree on
// offline-generated terrain without exchanging a single voxel.
type TerrainConfig struct {
	Seed         int64
	BaseHeight   float64
	HeightLayers []NoiseLayer
	Warp         DomainWarp
	Materials    MaterialTable
	Pathways     PathwayConfig
	Stamps       StampConfig
	DefaultLight uint8
}

// HeightAt evaluates the warped fractal height field at a world (x,z)
// position.
func (cfg TerrainConfig) HeightAt(worldX, worldZ float64) float64 {
	wx, wz := cfg.Warp.Warp(worldX, worldZ)
	h := cfg.BaseHeight
	for _, layer := range cfg.HeightLayers {
		h += layer.Sample(wx, wz)
	}
	return h
}

// GenerateChunk produces the packed voxel buffer for one chunk coordinate.
func (cfg TerrainConfig) GenerateChunk(coord ChunkCoord) *Chunk {
	defer profiling.Track("voxelworld.GenerateChunk")()

	c := NewChunk(coord)
	baseX := coord.X * S
	baseY := coord.Y * S
	baseZ := coord.Z * S

	for lz := 0; lz < S; lz++ {
		worldZ := float64(baseZ + lz)
		for lx := 0; lx < S; lx++ {
			worldX := float64(baseX + lx)

			h := cfg.HeightAt(worldX, worldZ)
			pw := cfg.Pathways.evaluate(worldX, worldZ)
			surface := h
			if pw.OnPath {
				surface = h - pw.Dip
			}

			for ly := 0; ly < S; ly++ {
				voxelY := float64(baseY + ly)
				weight, material := cfg.columnVoxel(surface, h, voxelY, pw)
				v := Pack(float32(weight), material, cfg.DefaultLight)
				c.Set(lx, ly, lz, v)
			}
		}
	}

	cfg.applyStamps(c)
	c.dirty = true
	c.SetVisibilityBits(ComputeVisibilityBits(c))
	return c
}

// columnVoxel evaluates a single (weight, material) pair for one voxel,
// applying the base density field first and then the pathway wall/border/
// water overrides in that order, since each later override only makes
// sense layered on top of the one before it (a border only exists outside
// a wall, water only pools inside a dip).
func (cfg TerrainConfig) columnVoxel(surface, originalSurface, voxelY float64, pw pathwayInfo) (weight float64, material uint8) {
	distance := surface - voxelY
	weight = clampF64(distance*0.5, -0.5, 0.5)
	if weight > 0 {
		material = cfg.Materials.MaterialForDepth(surface - voxelY)
		if pw.OnPath {
			material = pw.Material
		}
	}

	switch {
	case pw.OnWall:
		if voxelY <= surface+cfg.Pathways.WallHeight && cfg.pathMaterialWallsOut(pw.Material) {
			weight = 0.5
			material = pw.WallMaterial
		}
	case pw.OnBorder:
		if voxelY <= surface {
			material = pw.BorderMaterial
		}
	}

	if pw.OnPath && cfg.Pathways.WaterEnabled && weight <= 0 {
		waterTop := originalSurface - cfg.Pathways.WaterDepth
		if voxelY > surface && voxelY <= waterTop {
			weight = clampF64((waterTop-voxelY)*0.5+0.01, 0.01, 0.5)
			material = cfg.Pathways.WaterMaterial
		}
	}

	return weight, material
}

// pathMaterialWallsOut reports whether a wall should grow next to the given
// path material, per the WallMaterials allow-list. An empty allow-list
// means every path grows a wall.
func (cfg TerrainConfig) pathMaterialWallsOut(pathMaterial uint8) bool {
	if len(cfg.Pathways.WallMaterials) == 0 {
		return true
	}
	return cfg.Pathways.WallMaterials[pathMaterial]
}

// applyStamps writes decoration voxels (trees, rocks, ...) into the chunk
// for every accepted stamp candidate whose footprint overlaps this chunk's
// XZ column range. Stamps are skipped on pathway ground.
func (cfg TerrainConfig) applyStamps(c *Chunk) {
	if !cfg.Stamps.Enabled {
		return
	}
	baseX := c.Coord.X * S
	baseZ := c.Coord.Z * S
	centerX := float64(baseX) + S/2
	centerZ := float64(baseZ) + S/2
	reach := S * 0.75

	for _, cand := range cfg.Stamps.StampsNear(centerX, centerZ, reach) {
		if cfg.Pathways.Enabled {
			if _, _, _, onPath := cfg.Pathways.probe(cand.X, cand.Z, cfg.Pathways.PathWidth/2); onPath {
				continue
			}
		}
		cfg.stampInto(c, cand)
	}
}

// stampInto writes one stamp's solid footprint into the chunk, clipped to
// chunk bounds, sitting on top of the terrain surface at the stamp's
// position. The footprint is a square column of the def's radius, scaled by
// the candidate's Scale and rotated about its vertical axis by Rotation, so
// two placements of the same def don't all read as an identical stencil.
func (cfg TerrainConfig) stampInto(c *Chunk, cand StampCandidate) {
	baseX := c.Coord.X * S
	baseY := c.Coord.Y * S
	baseZ := c.Coord.Z * S

	surface := cfg.HeightAt(cand.X, cand.Z)
	def := cand.Def

	scaledRadius := float64(def.Radius) * cand.Scale
	scaledHeight := int(math.Round(float64(def.Height) * cand.Scale))
	if scaledHeight < 1 {
		scaledHeight = 1
	}
	bound := scaledRadius*math.Sqrt2 + 1

	minWX := int(math.Floor(cand.X - bound))
	maxWX := int(math.Ceil(cand.X + bound))
	minWZ := int(math.Floor(cand.Z - bound))
	maxWZ := int(math.Ceil(cand.Z + bound))

	cosR := math.Cos(-cand.Rotation)
	sinR := math.Sin(-cand.Rotation)

	for wy := int(surface); wy < int(surface)+scaledHeight; wy++ {
		ly := wy - baseY
		if ly < 0 || ly >= S {
			continue
		}
		for wx := minWX; wx <= maxWX; wx++ {
			lx := wx - baseX
			if lx < 0 || lx >= S {
				continue
			}
			dx := float64(wx) - cand.X
			for wz := minWZ; wz <= maxWZ; wz++ {
				lz := wz - baseZ
				if lz < 0 || lz >= S {
					continue
				}
				dz := float64(wz) - cand.Z
				rx := dx*cosR - dz*sinR
				rz := dx*sinR + dz*cosR
				if math.Abs(rx) > scaledRadius || math.Abs(rz) > scaledRadius {
					continue
				}
				c.Set(lx, ly, lz, Pack(0.5, def.Material, cfg.DefaultLight))
			}
		}
	}
}

func clampF64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
