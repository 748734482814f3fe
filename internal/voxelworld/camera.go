package voxelworld

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// plane is a clip-space plane in ax+by+cz+d >= 0 = inside form.
type plane struct {
	a, b, c, d float32
}

func normalizePlane(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// Frustum is six inward-facing clip planes extracted from a combined
// projection*view matrix.
type Frustum struct {
	planes [6]plane
}

// ExtractFrustum builds a Frustum from a column-major projection*view matrix
// using the standard Gribb-Hartmann plane extraction.
func ExtractFrustum(clip mgl32.Mat4) Frustum {
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	var f Frustum
	f.planes[0] = normalizePlane(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03}) // left
	f.planes[1] = normalizePlane(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03}) // right
	f.planes[2] = normalizePlane(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13}) // bottom
	f.planes[3] = normalizePlane(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13}) // top
	f.planes[4] = normalizePlane(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23}) // near
	f.planes[5] = normalizePlane(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23}) // far
	return f
}

// IntersectsAABB reports whether the axis-aligned box [min,max] intersects
// (or lies inside) the frustum, testing the positive vertex against every
// plane.
func (f Frustum) IntersectsAABB(min, max mgl32.Vec3) bool {
	for _, p := range f.planes {
		px := max.X()
		if p.a < 0 {
			px = min.X()
		}
		py := max.Y()
		if p.b < 0 {
			py = min.Y()
		}
		pz := max.Z()
		if p.c < 0 {
			pz = min.Z()
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}

// AlwaysVisible is a Frustum with no culling planes; useful for tests and for
// offline/no-frustum modes.
var AlwaysVisible = Frustum{}

// CameraView is the opaque camera object the World Manager and BFS consume:
// it exposes only a frustum, a position and a forward direction, never its
// full state.
// Keeping it this narrow lets a headless test or a future non-OpenGL
// renderer stand one in without dragging along a GPU-bound camera type.
type CameraView interface {
	Frustum() Frustum
	Position() mgl32.Vec3
	Forward() mgl32.Vec3
}

// Camera is the concrete CameraView built from a view-projection matrix and
// pose, carrying no GPU state of its own.
type Camera struct {
	viewProj mgl32.Mat4
	position mgl32.Vec3
	forward  mgl32.Vec3
}

// NewCamera builds a Camera from its view-projection matrix, world position
// and normalized forward direction.
func NewCamera(viewProj mgl32.Mat4, position, forward mgl32.Vec3) *Camera {
	return &Camera{viewProj: viewProj, position: position, forward: forward}
}

func (c *Camera) Frustum() Frustum     { return ExtractFrustum(c.viewProj) }
func (c *Camera) Position() mgl32.Vec3 { return c.position }
func (c *Camera) Forward() mgl32.Vec3  { return c.forward }

// ChunkAABB returns the world-space AABB (in meters) of a chunk coordinate.
func ChunkAABB(coord ChunkCoord) (min, max mgl32.Vec3) {
	min = mgl32.Vec3{
		float32(coord.X) * ChunkFootprint,
		float32(coord.Y) * ChunkFootprint,
		float32(coord.Z) * ChunkFootprint,
	}
	max = min.Add(mgl32.Vec3{ChunkFootprint, ChunkFootprint, ChunkFootprint})
	return
}

// ChunkCenter returns the world-space center of a chunk coordinate.
func ChunkCenter(coord ChunkCoord) mgl32.Vec3 {
	min, max := ChunkAABB(coord)
	return min.Add(max).Mul(0.5)
}
