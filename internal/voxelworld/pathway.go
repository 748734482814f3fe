package voxelworld

import "math"

// pathwayEdgeEpsilon separates the "wall" probe radius from the path-width
// half, and cellDiffEpsilon is the tolerance used when comparing two cell
// values so floating-point noise jitter never flips a cell boundary back
// and forth between adjacent voxels.
const (
	pathwayEdgeEpsilon = 0.05
	cellDiffEpsilon    = 1e-3
)

// PathwayConfig parameterizes the optional cellular "pathway" overlay:
// irregular cells carved by a domain-warped value-noise grid, with a
// dipped, paved interior, an optional retaining wall on the high side of
// the cut, a border strip beyond the wall, and optional water pooling in
// the dip.
type PathwayConfig struct {
	Enabled bool

	CellSeed  int64
	CellSize  float64
	CellWarp  DomainWarp
	PathWidth float64

	DipDepth     float64
	PathMaterial []uint8 // palette selected by a third low-frequency noise
	PaletteSeed  int64
	PaletteScale float64

	WallMaterial  uint8
	WallHeight    float64
	WallMaterials map[uint8]bool // path materials that grow a wall

	BorderWidth    float64
	BorderMaterial uint8

	WaterEnabled  bool
	WaterMaterial uint8
	WaterDepth    float64
}

// pathwayInfo is the per-column evaluation result consumed by GenerateChunk.
type pathwayInfo struct {
	OnPath   bool
	Dip      float64
	Material uint8

	OnWall       bool
	WallMaterial uint8

	OnBorder       bool
	BorderMaterial uint8
}

type axisDir struct{ dx, dz float64 }

var pathwayAxisDirs = [4]axisDir{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// cellValue returns the (irregular, due to domain warp) cell id's noise
// value for a world position.
func (cfg PathwayConfig) cellValue(x, z float64) float64 {
	wx, wz := cfg.CellWarp.Warp(x, z)
	cx := math.Floor(wx / cfg.CellSize)
	cz := math.Floor(wz / cfg.CellSize)
	return latticeValue(int64(cx), int64(cz), cfg.CellSeed)
}

// probe compares the cell value at (x,z) against the four axis-offset cell
// values at the given radius, returning the largest difference found,
// whether the center cell is the higher of the two at that offset, and the
// axis direction the winning offset was found in (so a caller can re-sample
// the neighboring cell the comparison was made against).
func (cfg PathwayConfig) probe(x, z, radius float64) (diff float64, centerHigher bool, dir axisDir, found bool) {
	center := cfg.cellValue(x, z)
	for _, d := range pathwayAxisDirs {
		nv := cfg.cellValue(x+d.dx*radius, z+d.dz*radius)
		dd := math.Abs(center - nv)
		if dd > cellDiffEpsilon && dd > diff {
			diff = dd
			centerHigher = center > nv
			dir = d
			found = true
		}
	}
	return
}

// evaluate computes the pathway overlay at a world (x,z) column.
func (cfg PathwayConfig) evaluate(x, z float64) pathwayInfo {
	if !cfg.Enabled {
		return pathwayInfo{}
	}

	pathRadius := cfg.PathWidth / 2
	if diff, _, _, onPath := cfg.probe(x, z, pathRadius); onPath {
		t := smoothstep(clamp01(diff))
		material := cfg.paletteMaterial(x, z)
		return pathwayInfo{OnPath: true, Dip: cfg.DipDepth * t, Material: material}
	}

	wallRadius := pathRadius + pathwayEdgeEpsilon
	if _, higher, dir, found := cfg.probe(x, z, wallRadius); found && higher {
		// The winning probe direction points at the lower, path-side cell;
		// sample its palette material there so the WallMaterials allow-list
		// checks the path actually growing this wall, not material 0.
		pathMaterial := cfg.paletteMaterial(x+dir.dx*pathRadius, z+dir.dz*pathRadius)
		return pathwayInfo{OnWall: true, WallMaterial: cfg.WallMaterial, Material: pathMaterial}
	}

	borderRadius := wallRadius + cfg.BorderWidth
	if _, higher, _, found := cfg.probe(x, z, borderRadius); found && higher {
		return pathwayInfo{OnBorder: true, BorderMaterial: cfg.BorderMaterial}
	}

	return pathwayInfo{}
}

// paletteMaterial picks a path material from the palette by a third,
// low-frequency noise channel.
func (cfg PathwayConfig) paletteMaterial(x, z float64) uint8 {
	if len(cfg.PathMaterial) == 0 {
		return 0
	}
	n := valueNoise2D(x*cfg.PaletteScale, z*cfg.PaletteScale, cfg.PaletteSeed)
	idx := int(n * float64(len(cfg.PathMaterial)))
	if idx >= len(cfg.PathMaterial) {
		idx = len(cfg.PathMaterial) - 1
	}
	return cfg.PathMaterial[idx]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
