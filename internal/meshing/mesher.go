package meshing

import (
	"sort"

	"github.com/dan0net/worldify/internal/voxelworld"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialClass is the mesh layer a material belongs to.
type MaterialClass int

const (
	ClassSolid MaterialClass = iota
	ClassTransparent
	ClassLiquid
)

// Classifier assigns a mesh layer to a material id. A nil Classifier treats
// every material as solid.
type Classifier func(material uint8) MaterialClass

// Mesher extracts a three-layer triangle mesh from a chunk voxel snapshot
// and its up-to-six face neighbors, by a surface-nets-style dual contour:
// one vertex per boundary cell of the per-voxel density field, quads
// connecting cells across sign-changing edges. Surface nets gives smoother
// terrain than marching cubes' triangle soup while staying just as local
// and deterministic per cell.
type Mesher struct {
	classify Classifier
}

// NewMesher builds a Mesher. classify may be nil.
func NewMesher(classify Classifier) *Mesher {
	return &Mesher{classify: classify}
}

func (m *Mesher) classOf(material uint8) MaterialClass {
	if m.classify == nil {
		return ClassSolid
	}
	return m.classify(material)
}

// corner is one sampled lattice point of the dual grid.
type corner struct {
	weight   float32
	material uint8
	light    uint8
}

// Extract builds the three sub-meshes for one chunk.
func (m *Mesher) Extract(job voxelworld.MeshJob) voxelworld.ChunkMesh {
	const n = voxelworld.S

	sample := func(x, y, z int) corner {
		w, mat, l := voxelworld.Unpack(voxelworld.SampleMarginFaces(job.Voxels, job.Neighbors, x, y, z))
		return corner{weight: w, material: mat, light: l}
	}

	// vertex data per cell, indexed by flat cell index; -1 in vertexIndex
	// means the cell has no surface crossing.
	type cellVertex struct {
		pos   mgl32.Vec3
		norm  mgl32.Vec3
		mats  [3]uint8
		wts   [3]float32
		light uint8
		class MaterialClass
	}

	vertexIndex := make([]int32, n*n*n)
	for i := range vertexIndex {
		vertexIndex[i] = -1
	}
	vertices := make([]cellVertex, 0, n*n)

	cellIdx := func(cx, cy, cz int) int { return cx + cy*n + cz*n*n }

	for cz := 0; cz < n; cz++ {
		for cy := 0; cy < n; cy++ {
			for cx := 0; cx < n; cx++ {
				corners := [8]corner{
					sample(cx, cy, cz),
					sample(cx+1, cy, cz),
					sample(cx, cy+1, cz),
					sample(cx+1, cy+1, cz),
					sample(cx, cy, cz+1),
					sample(cx+1, cy, cz+1),
					sample(cx, cy+1, cz+1),
					sample(cx+1, cy+1, cz+1),
				}

				allSolid, allEmpty := true, true
				for _, c := range corners {
					if c.weight > 0 {
						allEmpty = false
					} else {
						allSolid = false
					}
				}
				if allSolid || allEmpty {
					continue
				}

				v := buildCellVertex(cx, cy, cz, corners, sample, m)
				vertexIndex[cellIdx(cx, cy, cz)] = int32(len(vertices))
				vertices = append(vertices, v)
			}
		}
	}

	layers := map[MaterialClass]*voxelworld.SubMesh{
		ClassSolid:       {},
		ClassTransparent: {},
		ClassLiquid:      {},
	}
	vertexRemap := make(map[MaterialClass]map[int32]uint32)
	for k := range layers {
		vertexRemap[k] = make(map[int32]uint32)
	}

	emit := func(class MaterialClass, vi int32) uint32 {
		remap := vertexRemap[class]
		if idx, ok := remap[vi]; ok {
			return idx
		}
		v := vertices[vi]
		sub := layers[class]
		idx := uint32(len(sub.Positions))
		sub.Positions = append(sub.Positions, v.pos)
		sub.Normals = append(sub.Normals, v.norm)
		sub.MaterialIDs = append(sub.MaterialIDs, v.mats)
		sub.MaterialWeights = append(sub.MaterialWeights, v.wts)
		sub.Light = append(sub.Light, v.light)
		remap[vi] = idx
		return idx
	}

	// Three perpendicular-axis permutations: (axis, perp1, perp2).
	type axisSpec struct{ a, p, q int }
	axes := [3]axisSpec{{0, 1, 2}, {1, 2, 0}, {2, 0, 1}}

	at := func(axis axisSpec, a, p, q int) (int, int, int) {
		coord := [3]int{}
		coord[axis.a] = a
		coord[axis.p] = p
		coord[axis.q] = q
		return coord[0], coord[1], coord[2]
	}

	for _, axis := range axes {
		for a := 0; a < n; a++ {
			for p := 1; p < n; p++ {
				for q := 1; q < n; q++ {
					x0, y0, z0 := at(axis, a, p, q)
					x1, y1, z1 := at(axis, a+1, p, q)
					c0 := sample(x0, y0, z0)
					c1 := sample(x1, y1, z1)
					solid0 := c0.weight > 0
					solid1 := c1.weight > 0
					if solid0 == solid1 {
						continue
					}

					cx00, cy00, cz00 := at(axis, a, p-1, q-1)
					cx10, cy10, cz10 := at(axis, a, p, q-1)
					cx01, cy01, cz01 := at(axis, a, p-1, q)
					cx11, cy11, cz11 := at(axis, a, p, q)

					i00 := vertexIndex[cellIdx(cx00, cy00, cz00)]
					i10 := vertexIndex[cellIdx(cx10, cy10, cz10)]
					i01 := vertexIndex[cellIdx(cx01, cy01, cz01)]
					i11 := vertexIndex[cellIdx(cx11, cy11, cz11)]
					if i00 < 0 || i10 < 0 || i01 < 0 || i11 < 0 {
						continue
					}

					class := vertices[i00].class
					a0 := emit(class, i00)
					a1 := emit(class, i10)
					a2 := emit(class, i11)
					a3 := emit(class, i01)

					sub := layers[class]
					if solid0 {
						sub.Indices = append(sub.Indices, a0, a1, a2, a0, a2, a3)
					} else {
						sub.Indices = append(sub.Indices, a0, a3, a2, a0, a2, a1)
					}
				}
			}
		}
	}

	return voxelworld.ChunkMesh{
		Coord:       job.Coord,
		Solid:       *layers[ClassSolid],
		Transparent: *layers[ClassTransparent],
		Liquid:      *layers[ClassLiquid],
	}
}

// buildCellVertex computes one dual-grid vertex: position averaged from the
// cell's sign-crossing edges, normal from the central-difference gradient at
// the cell's minimum corner, and up to three blended materials drawn from the solid
// corners.
func buildCellVertex(cx, cy, cz int, corners [8]corner, sample func(x, y, z int) corner, m *Mesher) struct {
	pos   mgl32.Vec3
	norm  mgl32.Vec3
	mats  [3]uint8
	wts   [3]float32
	light uint8
	class MaterialClass
} {
	type result = struct {
		pos   mgl32.Vec3
		norm  mgl32.Vec3
		mats  [3]uint8
		wts   [3]float32
		light uint8
		class MaterialClass
	}

	offsets := [8][3]float32{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	}
	edges := [12][2]int{
		{0, 1}, {2, 3}, {4, 5}, {6, 7},
		{0, 2}, {1, 3}, {4, 6}, {5, 7},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}

	var sum mgl32.Vec3
	count := 0
	for _, e := range edges {
		wA, wB := corners[e[0]].weight, corners[e[1]].weight
		if (wA > 0) == (wB > 0) {
			continue
		}
		t := wA / (wA - wB)
		pA := offsets[e[0]]
		pB := offsets[e[1]]
		pt := mgl32.Vec3{
			pA[0] + (pB[0]-pA[0])*t,
			pA[1] + (pB[1]-pA[1])*t,
			pA[2] + (pB[2]-pA[2])*t,
		}
		sum = sum.Add(pt)
		count++
	}
	var local mgl32.Vec3
	if count > 0 {
		local = sum.Mul(1 / float32(count))
	} else {
		local = mgl32.Vec3{0.5, 0.5, 0.5}
	}

	wx := float32(cx) + local.X()
	wy := float32(cy) + local.Y()
	wz := float32(cz) + local.Z()
	pos := mgl32.Vec3{wx * voxelworld.V, wy * voxelworld.V, wz * voxelworld.V}

	gx := sample(cx+1, cy, cz).weight - sample(cx-1, cy, cz).weight
	gy := sample(cx, cy+1, cz).weight - sample(cx, cy-1, cz).weight
	gz := sample(cx, cy, cz+1).weight - sample(cx, cy, cz-1).weight
	grad := mgl32.Vec3{gx, gy, gz}
	var norm mgl32.Vec3
	if grad.Len() > 1e-6 {
		norm = grad.Normalize().Mul(-1)
	} else {
		norm = mgl32.Vec3{0, 1, 0}
	}

	materialCounts := map[uint8]int{}
	var lightSum, lightN int
	for _, c := range corners {
		if c.weight <= 0 {
			continue
		}
		materialCounts[c.material]++
		lightSum += int(c.light)
		lightN++
	}
	mats, wts := blendMaterials(materialCounts)
	light := uint8(0)
	if lightN > 0 {
		light = uint8(lightSum / lightN)
	}

	primaryClass := ClassSolid
	if m != nil {
		primaryClass = m.classOf(mats[0])
	}

	return result{pos: pos, norm: norm, mats: mats, wts: wts, light: light, class: primaryClass}
}

// blendMaterials turns a corner material histogram into the fixed
// triplanar-ready (ids, weights) pair, weights proportional to corner
// count and summing to 1. Ties in count are broken by ascending material
// id so the result never depends on Go's randomized map iteration order —
// required for the mesher's bit-identical determinism guarantee.
func blendMaterials(counts map[uint8]int) ([3]uint8, [3]float32) {
	var mats [3]uint8
	var wts [3]float32
	if len(counts) == 0 {
		return mats, wts
	}

	type pair struct {
		mat   uint8
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for mat, c := range counts {
		pairs = append(pairs, pair{mat, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].mat < pairs[j].mat
	})
	if len(pairs) > 3 {
		pairs = pairs[:3]
	}
	total := 0
	for _, p := range pairs {
		total += p.count
	}
	for i, p := range pairs {
		mats[i] = p.mat
		if total > 0 {
			wts[i] = float32(p.count) / float32(total)
		}
	}
	return mats, wts
}
