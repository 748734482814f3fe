package voxelworld

import "math"

// StampDef is one placeable decoration (tree, rock, ...): a small solid
// footprint of a given material, radius and height stamped onto the terrain
// surface at a placement point. MinScale/MaxScale bound the per-placement
// size variance rolled for each accepted candidate; leaving both at zero
// means every placement of this def is drawn at scale 1.
type StampDef struct {
	Material uint8
	Radius   int
	Height   int

	MinScale float64
	MaxScale float64
}

// StampConfig drives deterministic, chunk-independent decoration placement:
// one hashed candidate per cell of a coarse grid, rejected against its
// neighbors to approximate Poisson-disk minimum spacing. Because candidates
// are a pure function of world position, two chunks evaluating the same
// cell always agree without coordinating.
type StampConfig struct {
	Enabled     bool
	Seed        int64
	CellSize    float64
	Jitter      float64
	Density     float64 // [0,1] chance a cell produces a candidate at all
	MinDistance float64
	Defs        []StampDef
}

// StampCandidate is one accepted placement point: a world (x,z), the chosen
// def, and the rotation/scale rolled for this specific placement so that two
// stamps of the same def don't all look identical.
type StampCandidate struct {
	X, Z         float64
	Def          StampDef
	CellX, CellZ int64
	Rotation     float64 // radians about the vertical (Y) axis
	Scale        float64
}

// candidate deterministically derives the (possibly absent) candidate for a
// grid cell from a hash of its coordinates. Rotation and scale are drawn
// from a second, independently-salted hash of the same cell so that adding
// them never perturbs the position/density/def roll already in use.
func (cfg StampConfig) candidate(cellX, cellZ int64) (StampCandidate, bool) {
	if !cfg.Enabled || len(cfg.Defs) == 0 || cfg.CellSize <= 0 {
		return StampCandidate{}, false
	}
	h := hash2(cellX, cellZ, cfg.Seed)
	roll := float64(h&0xFFFF) / 65536
	if roll >= cfg.Density {
		return StampCandidate{}, false
	}
	jx := (float64((h>>16)&0xFFFF)/float64(0xFFFF) - 0.5) * 2 * cfg.Jitter
	jz := (float64((h>>32)&0xFFFF)/float64(0xFFFF) - 0.5) * 2 * cfg.Jitter
	x := (float64(cellX)+0.5)*cfg.CellSize + jx
	z := (float64(cellZ)+0.5)*cfg.CellSize + jz
	def := cfg.Defs[int((h>>48)&0xFFFF)%len(cfg.Defs)]

	h2 := hash2(cellX, cellZ, cfg.Seed^0x2545F4914F6CDD1D)
	rotation := (float64(h2&0xFFFF) / 65536) * 2 * math.Pi
	minScale, maxScale := def.MinScale, def.MaxScale
	if minScale == 0 && maxScale == 0 {
		minScale, maxScale = 1, 1
	}
	scaleRoll := float64((h2>>16)&0xFFFF) / float64(0xFFFF)
	scale := minScale + scaleRoll*(maxScale-minScale)

	return StampCandidate{X: x, Z: z, Def: def, CellX: cellX, CellZ: cellZ, Rotation: rotation, Scale: scale}, true
}

// cellOrderLess gives a stable total order over cells, used to break ties
// between two candidates that land within MinDistance of each other: the
// earlier cell in this order wins and the later one is rejected.
func cellOrderLess(ax, az, bx, bz int64) bool {
	if az != bz {
		return az < bz
	}
	return ax < bx
}

// accepted reports whether candidate c survives spacing rejection against
// its neighboring cells.
func (cfg StampConfig) accepted(c StampCandidate) bool {
	if cfg.CellSize <= 0 {
		return true
	}
	reach := int64(math.Ceil(cfg.MinDistance/cfg.CellSize)) + 1
	for dz := -reach; dz <= reach; dz++ {
		for dx := -reach; dx <= reach; dx++ {
			if dx == 0 && dz == 0 {
				continue
			}
			ocx, ocz := c.CellX+dx, c.CellZ+dz
			other, ok := cfg.candidate(ocx, ocz)
			if !ok {
				continue
			}
			if math.Hypot(other.X-c.X, other.Z-c.Z) >= cfg.MinDistance {
				continue
			}
			if cellOrderLess(ocx, ocz, c.CellX, c.CellZ) {
				return false
			}
		}
	}
	return true
}

// StampsNear returns every accepted stamp candidate within reach of a world
// (x,z) position, scanning the surrounding grid cells.
func (cfg StampConfig) StampsNear(worldX, worldZ, reach float64) []StampCandidate {
	var result []StampCandidate
	if !cfg.Enabled || cfg.CellSize <= 0 {
		return result
	}
	searchCells := int64(math.Ceil((reach+cfg.MinDistance)/cfg.CellSize)) + 1
	baseCX := int64(math.Floor(worldX / cfg.CellSize))
	baseCZ := int64(math.Floor(worldZ / cfg.CellSize))

	for dz := -searchCells; dz <= searchCells; dz++ {
		for dx := -searchCells; dx <= searchCells; dx++ {
			cx, cz := baseCX+dx, baseCZ+dz
			cand, ok := cfg.candidate(cx, cz)
			if !ok {
				continue
			}
			if math.Hypot(cand.X-worldX, cand.Z-worldZ) > reach+cfg.MinDistance {
				continue
			}
			if !cfg.accepted(cand) {
				continue
			}
			result = append(result, cand)
		}
	}
	return result
}
