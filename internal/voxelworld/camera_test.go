package voxelworld

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAlwaysVisibleAcceptsAnyAABB(t *testing.T) {
	min, max := ChunkAABB(ChunkCoord{100, -50, 7})
	if !AlwaysVisible.IntersectsAABB(min, max) {
		t.Error("AlwaysVisible must accept any box, including far-off chunks")
	}
}

// TestExtractFrustumIdentityContainsOrigin checks the degenerate identity
// clip matrix: with no projection or view transform applied, the canonical
// clip cube [-1,1]^3 must still contain the world origin.
func TestExtractFrustumIdentityContainsOrigin(t *testing.T) {
	f := ExtractFrustum(mgl32.Ident4())
	if !f.IntersectsAABB(mgl32.Vec3{-0.1, -0.1, -0.1}, mgl32.Vec3{0.1, 0.1, 0.1}) {
		t.Error("identity clip matrix must contain a small box at the origin")
	}
}

func TestIntersectsAABBRejectsBoxBehindFarPlane(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := ExtractFrustum(proj.Mul4(view))

	nearMin, nearMax := ChunkAABB(ChunkCoord{0, 0, -1})
	if !f.IntersectsAABB(nearMin, nearMax) {
		t.Error("a chunk directly in front of the camera within range must intersect the frustum")
	}

	farMin, farMax := mgl32.Vec3{-1, -1, -1000}, mgl32.Vec3{1, 1, -999}
	if f.IntersectsAABB(farMin, farMax) {
		t.Error("a box far beyond the far plane must not intersect the frustum")
	}
}

func TestIntersectsAABBRejectsBoxBehindCamera(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := ExtractFrustum(proj.Mul4(view))

	behindMin, behindMax := mgl32.Vec3{-1, -1, 5}, mgl32.Vec3{1, 1, 10}
	if f.IntersectsAABB(behindMin, behindMax) {
		t.Error("a box behind the camera (positive Z when looking down -Z) must not intersect")
	}
}

func TestChunkAABBAndCenter(t *testing.T) {
	min, max := ChunkAABB(ChunkCoord{1, 0, -1})
	wantMin := mgl32.Vec3{ChunkFootprint, 0, -ChunkFootprint}
	if min != wantMin {
		t.Errorf("ChunkAABB min = %v, want %v", min, wantMin)
	}
	wantMax := wantMin.Add(mgl32.Vec3{ChunkFootprint, ChunkFootprint, ChunkFootprint})
	if max != wantMax {
		t.Errorf("ChunkAABB max = %v, want %v", max, wantMax)
	}

	center := ChunkCenter(ChunkCoord{1, 0, -1})
	wantCenter := wantMin.Add(wantMax).Mul(0.5)
	if center != wantCenter {
		t.Errorf("ChunkCenter = %v, want %v", center, wantCenter)
	}
}
