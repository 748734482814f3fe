package voxelworld

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/dan0net/worldify/internal/profiling"
)

// ShapeKind selects the signed inside/outside test a BuildOp uses.
type ShapeKind int

const (
	ShapeCube ShapeKind = iota
	ShapeSphere
	ShapeCylinder
	ShapePrism
)

// BuildMode selects how a BuildOp combines with existing voxel state.
type BuildMode int

const (
	BuildAdd BuildMode = iota
	BuildSubtract
	BuildPaint
	BuildFill
)

// BuildOp is one authoritative edit: a parameterized volumetric shape in
// world space (meters), combined with existing voxels by Mode. The server
// is the source of truth for every op; the client only ever replays what it
// is told, so BuildOp carries everything needed to reproduce the edit
// byte-for-byte without consulting any other state.
type BuildOp struct {
	Seq      uint32
	Shape    ShapeKind
	Mode     BuildMode
	Center   mgl32.Vec3
	Rotation mgl32.Quat

	// Size holds shape-specific half-extents: cube half-width/height/depth;
	// sphere radius in X (Y,Z unused); cylinder/prism radius in X, half-height
	// in Y.
	Size mgl32.Vec3

	Thickness float32 // 0 = solid; >0 = hollow shell of this wall thickness
	Closed    bool    // cylinder/prism: plate the caps when hollow
	ArcSweep  float32 // radians; 0 or >=2π means no angular clip
	Sides     int     // prism side count; <3 falls back to a circular cross-section

	Material uint8
}

// WorldAABB returns a conservative axis-aligned bound of the operation in
// world space (meters), covering every orientation of its local box.
func (op BuildOp) WorldAABB() (min, max mgl32.Vec3) {
	he := mgl32.Vec3{
		maxF32(op.Size.X(), 0),
		maxF32(op.Size.Y(), 0),
		maxF32(op.Size.Z(), 0),
	}
	switch op.Shape {
	case ShapeSphere:
		he = mgl32.Vec3{he.X(), he.X(), he.X()}
	case ShapeCylinder, ShapePrism:
		he = mgl32.Vec3{he.X(), he.Y(), he.X()}
	}
	rot := op.Rotation
	if rot == (mgl32.Quat{}) {
		rot = mgl32.QuatIdent()
	}

	first := true
	for _, signs := range [8][3]float32{
		{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
		{-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}, {-1, -1, -1},
	} {
		corner := mgl32.Vec3{signs[0] * he.X(), signs[1] * he.Y(), signs[2] * he.Z()}
		world := op.Center.Add(rot.Rotate(corner))
		if first {
			min, max = world, world
			first = false
			continue
		}
		min = componentMin(min, world)
		max = componentMax(max, world)
	}
	return min, max
}

// AffectedChunks returns the set of chunk keys whose world-space AABB
// intersects the operation's AABB.
func (op BuildOp) AffectedChunks() map[ChunkCoord]struct{} {
	min, max := op.WorldAABB()
	minChunk := WorldToChunk(int(math.Floor(float64(min.X()/V))), int(math.Floor(float64(min.Y()/V))), int(math.Floor(float64(min.Z()/V))))
	maxChunk := WorldToChunk(int(math.Floor(float64(max.X()/V))), int(math.Floor(float64(max.Y()/V))), int(math.Floor(float64(max.Z()/V))))

	result := make(map[ChunkCoord]struct{})
	for cx := minChunk.X; cx <= maxChunk.X; cx++ {
		for cy := minChunk.Y; cy <= maxChunk.Y; cy++ {
			for cz := minChunk.Z; cz <= maxChunk.Z; cz++ {
				result[ChunkCoord{X: cx, Y: cy, Z: cz}] = struct{}{}
			}
		}
	}
	return result
}

// inverseRotate returns the operation's rotation inverse, identity if unset.
func (op BuildOp) inverseRotate(world mgl32.Vec3) mgl32.Vec3 {
	rot := op.Rotation
	if rot == (mgl32.Quat{}) {
		rot = mgl32.QuatIdent()
	}
	return rot.Inverse().Rotate(world.Sub(op.Center))
}

// Contains evaluates the shape's inside/outside test at a world position.
func (op BuildOp) Contains(world mgl32.Vec3) bool {
	local := op.inverseRotate(world)
	x, y, z := float64(local.X()), float64(local.Y()), float64(local.Z())

	switch op.Shape {
	case ShapeCube:
		return cubeInside(x, y, z, float64(op.Size.X()), float64(op.Size.Y()), float64(op.Size.Z()), float64(op.Thickness))
	case ShapeSphere:
		return sphereInside(x, y, z, float64(op.Size.X()), float64(op.Thickness))
	case ShapeCylinder:
		return radialInside(x, y, z, float64(op.Size.X()), float64(op.Size.Y()), float64(op.Thickness), op.Closed, float64(op.ArcSweep), 0)
	case ShapePrism:
		return radialInside(x, y, z, float64(op.Size.X()), float64(op.Size.Y()), float64(op.Thickness), op.Closed, float64(op.ArcSweep), op.Sides)
	default:
		return false
	}
}

func cubeInside(x, y, z, hx, hy, hz, thickness float64) bool {
	outer := math.Abs(x) <= hx && math.Abs(y) <= hy && math.Abs(z) <= hz
	if !outer || thickness <= 0 {
		return outer
	}
	inner := math.Abs(x) <= hx-thickness && math.Abs(y) <= hy-thickness && math.Abs(z) <= hz-thickness
	return outer && !inner
}

func sphereInside(x, y, z, radius, thickness float64) bool {
	r := math.Sqrt(x*x + y*y + z*z)
	outer := r <= radius
	if !outer || thickness <= 0 {
		return outer
	}
	return r > radius-thickness
}

// radialInside implements the shared cylinder/prism test: a height-capped
// radial cross-section (circle when sides < 3, regular polygon otherwise),
// optionally hollowed to a shell with plated caps, optionally clipped to an
// angular arc.
func radialInside(x, y, z, circumRadius, halfHeight, thickness float64, closed bool, arcSweep float64, sides int) bool {
	if math.Abs(y) > halfHeight {
		return false
	}
	radial := math.Hypot(x, z)
	angle := math.Atan2(z, x)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	if arcSweep > 0 && arcSweep < 2*math.Pi && angle > arcSweep {
		return false
	}

	allowed := polygonRadius(angle, sides, circumRadius)
	if thickness <= 0 {
		return radial <= allowed
	}

	innerAllowed := polygonRadius(angle, sides, circumRadius-thickness)
	if radial <= allowed && radial > innerAllowed {
		return true
	}
	if closed && radial <= allowed {
		if halfHeight-math.Abs(y) <= thickness {
			return true
		}
	}
	return false
}

// polygonRadius returns the boundary radius of a regular `sides`-gon with
// circumradius circumRadius at a given angle; sides < 3 degenerates to a
// circle.
func polygonRadius(angle float64, sides int, circumRadius float64) float64 {
	if sides < 3 || circumRadius <= 0 {
		return circumRadius
	}
	theta := 2 * math.Pi / float64(sides)
	a := math.Mod(angle, theta)
	if a < 0 {
		a += theta
	}
	apothemFactor := math.Cos(math.Pi / float64(sides))
	denom := math.Cos(a - theta/2)
	if denom <= 0 {
		return circumRadius
	}
	return circumRadius * apothemFactor / denom
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func componentMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{minF32(a.X(), b.X()), minF32(a.Y(), b.Y()), minF32(a.Z(), b.Z())}
}

func componentMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{maxF32(a.X(), b.X()), maxF32(a.Y(), b.Y()), maxF32(a.Z(), b.Z())}
}

func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// ApplyToChunk iterates the operation's local AABB clipped to this chunk and
// mutates voxels per Mode. Returns true iff any voxel's packed value
// changed.
func ApplyToChunk(c *Chunk, op BuildOp) bool {
	min, max := op.WorldAABB()
	baseX, baseY, baseZ := c.Coord.X*S, c.Coord.Y*S, c.Coord.Z*S

	minLX := clampInt(int(math.Floor(float64(min.X())/V))-baseX, 0, S-1)
	maxLX := clampInt(int(math.Ceil(float64(max.X())/V))-baseX, 0, S-1)
	minLY := clampInt(int(math.Floor(float64(min.Y())/V))-baseY, 0, S-1)
	maxLY := clampInt(int(math.Ceil(float64(max.Y())/V))-baseY, 0, S-1)
	minLZ := clampInt(int(math.Floor(float64(min.Z())/V))-baseZ, 0, S-1)
	maxLZ := clampInt(int(math.Ceil(float64(max.Z())/V))-baseZ, 0, S-1)

	changed := false
	for lx := minLX; lx <= maxLX; lx++ {
		wx := (float32(baseX+lx) + 0.5) * V
		for ly := minLY; ly <= maxLY; ly++ {
			wy := (float32(baseY+ly) + 0.5) * V
			for lz := minLZ; lz <= maxLZ; lz++ {
				wz := (float32(baseZ+lz) + 0.5) * V
				world := mgl32.Vec3{wx, wy, wz}
				if !op.Contains(world) {
					continue
				}
				if op.applyVoxel(c, lx, ly, lz) {
					changed = true
				}
			}
		}
	}
	return changed
}

// applyVoxel applies one mode transition to the voxel at local (lx,ly,lz).
func (op BuildOp) applyVoxel(c *Chunk, lx, ly, lz int) bool {
	current := c.Get(lx, ly, lz)
	weight, _, light := Unpack(current)

	var newWeight float32
	var newMaterial uint8

	switch op.Mode {
	case BuildAdd:
		newWeight = maxWeight
		newMaterial = op.Material
	case BuildSubtract:
		newWeight = minWeight
		newMaterial = 0
	case BuildPaint:
		if weight <= 0 {
			return false
		}
		newWeight = weight
		newMaterial = op.Material
	case BuildFill:
		newWeight = maxWeight
		newMaterial = op.Material
	default:
		return false
	}

	return c.SetDirty(lx, ly, lz, Pack(newWeight, newMaterial, light))
}

// ApplyBuildOperation applies op to every loaded chunk it affects (missing
// chunks are skipped — the server is authoritative and will have applied
// the op itself), recomputing visibility and collecting the set of changed
// chunks plus their six face neighbors for remeshing.
func ApplyBuildOperation(op BuildOp, lookup NeighborLookup) []ChunkCoord {
	defer profiling.Track("voxelworld.ApplyBuildOperation")()

	var changedKeys []ChunkCoord
	for coord := range op.AffectedChunks() {
		chunk := lookup(coord)
		if chunk == nil {
			continue
		}
		if op.Seq != 0 && chunk.LastBuildSeq() >= op.Seq {
			continue
		}
		if !ApplyToChunk(chunk, op) {
			continue
		}
		chunk.SetLastBuildSeq(op.Seq)
		chunk.SetVisibilityBits(ComputeVisibilityBits(chunk))
		changedKeys = append(changedKeys, coord)
		for _, f := range allFaces {
			changedKeys = append(changedKeys, coord.Neighbor(f))
		}
	}
	return changedKeys
}
