package voxelworld

import (
	"sort"
	"time"

	"github.com/dan0net/worldify/internal/profiling"
	"github.com/go-gl/mathgl/mgl32"
)

// Options configures a Manager. Every knob is explicit and passed in at
// construction rather than read from a global singleton, so a process can
// run more than one world (e.g. tests) without shared mutable state.
type Options struct {
	UseServerChunks       bool
	ForceRegenerateChunks bool
	Radius                int
	Buffer                int
	MaxPendingChunks      int
	MaxPendingTiles       int
	RemeshBudget          time.Duration
}

// DefaultOptions returns sane defaults for a single-player or small-room
// session: enough request concurrency to keep the stream filled without
// flooding the server, and a remesh budget that leaves headroom in a 60Hz
// frame.
func DefaultOptions() Options {
	return Options{
		UseServerChunks:  true,
		Radius:           8,
		Buffer:           2,
		MaxPendingChunks: 4,
		MaxPendingTiles:  4,
		RemeshBudget:     4 * time.Millisecond,
	}
}

// Hooks are the Manager's outgoing edges: emitting a network request or
// notifying an external map-tile cache. A nil hook is simply not called.
type Hooks struct {
	RequestChunk         func(coord ChunkCoord, forceRegen bool)
	RequestSurfaceColumn func(col ColumnKey)
	RequestMapTile       func(col ColumnKey)
	NotifyTileCache      func(col ColumnKey, heights []int16, materials []uint8)
}

// ServerChunkPayload is one chunk's worth of voxel data as carried inside a
// surface-column response.
type ServerChunkPayload struct {
	Coord        ChunkCoord
	Voxels       []uint16
	LastBuildSeq uint32
}

type columnInfo struct {
	MaxCY int
}

// Stats is a point-in-time snapshot of Manager bookkeeping, useful for
// diagnostics and tests.
type Stats struct {
	LoadedChunks   int
	LoadedMeshes   int
	PendingChunks  int
	PendingColumns int
	PendingTiles   int
	RemeshQueued   int
	InFlightMeshes int
	VisibleChunks  int
}

// Manager owns every chunk, mesh and outstanding request in a world and
// drives them one tick at a time from a single thread. Every other package
// in this module is a pure function or a read-only view over data the
// Manager hands it; nothing else holds mutable world state.
type Manager struct {
	opts  Options
	hooks Hooks
	mesh  Mesher
	gen   *TerrainConfig

	chunks map[ChunkCoord]*Chunk
	meshes map[ChunkCoord]*ChunkMesh
	tiles  map[ColumnKey]*MapTile

	pendingChunks  map[ChunkCoord]struct{}
	pendingColumns map[ColumnKey]struct{}
	pendingTiles   map[ColumnKey]struct{}
	columnInfo     map[ColumnKey]columnInfo

	bootstrapped      bool
	haveObserverChunk bool
	lastObserverChunk ChunkCoord
	reachableValid    bool
	cachedReachable   map[ChunkCoord]struct{}

	remeshQueue map[ChunkCoord]struct{}
	inFlight    map[ChunkCoord]struct{}

	visible map[ChunkCoord]struct{}

	buildSeq uint32
}

// NewManager constructs an empty world. mesher may be nil, in which case
// Tick never dispatches mesh work (useful for headless tests of streaming
// logic alone). gen is the local terrain generator used when
// opts.UseServerChunks is false.
func NewManager(opts Options, hooks Hooks, mesher Mesher, gen *TerrainConfig) *Manager {
	return &Manager{
		opts:   opts,
		hooks:  hooks,
		mesh:   mesher,
		gen:    gen,
		chunks: make(map[ChunkCoord]*Chunk),
		meshes: make(map[ChunkCoord]*ChunkMesh),
		tiles:  make(map[ColumnKey]*MapTile),

		pendingChunks:  make(map[ChunkCoord]struct{}),
		pendingColumns: make(map[ColumnKey]struct{}),
		pendingTiles:   make(map[ColumnKey]struct{}),
		columnInfo:     make(map[ColumnKey]columnInfo),

		cachedReachable: make(map[ChunkCoord]struct{}),
		remeshQueue:     make(map[ChunkCoord]struct{}),
		inFlight:        make(map[ChunkCoord]struct{}),
		visible:         make(map[ChunkCoord]struct{}),
	}
}

// ChunkState implements ChunkProvider for RunBFS.
func (m *Manager) ChunkState(coord ChunkCoord) (*Chunk, ChunkStatus) {
	if c, ok := m.chunks[coord]; ok {
		return c, ChunkLoaded
	}
	if _, ok := m.pendingChunks[coord]; ok {
		return nil, ChunkPending
	}
	return nil, ChunkMissing
}

// Chunk returns the loaded chunk at coord, or nil.
func (m *Manager) Chunk(coord ChunkCoord) *Chunk { return m.chunks[coord] }

// lookup adapts Chunk for use as a NeighborLookup.
func (m *Manager) lookup(coord ChunkCoord) *Chunk { return m.chunks[coord] }

// Mesh returns the current mesh for coord, or nil if it has never been
// built.
func (m *Manager) Mesh(coord ChunkCoord) *ChunkMesh { return m.meshes[coord] }

// VisibleChunks returns the chunk coordinates the last Tick decided should
// be rendered.
func (m *Manager) VisibleChunks() []ChunkCoord {
	out := make([]ChunkCoord, 0, len(m.visible))
	for c := range m.visible {
		out = append(out, c)
	}
	return out
}

// Stats snapshots current bookkeeping sizes.
func (m *Manager) Stats() Stats {
	return Stats{
		LoadedChunks:   len(m.chunks),
		LoadedMeshes:   len(m.meshes),
		PendingChunks:  len(m.pendingChunks),
		PendingColumns: len(m.pendingColumns),
		PendingTiles:   len(m.pendingTiles),
		RemeshQueued:   len(m.remeshQueue),
		InFlightMeshes: len(m.inFlight),
		VisibleChunks:  len(m.visible),
	}
}

// Tick drives one frame of the World Manager given the observer's world
// position (meters) and camera, in a fixed order: drain mesh results → BFS
// (if needed) → request emission → visibility update → unload → remesh
// drain. The order matters — e.g. BFS must run before unload so a chunk
// that just became reachable again isn't evicted in the same tick.
func (m *Manager) Tick(observerPos mgl32.Vec3, camera CameraView) {
	defer profiling.Track("voxelworld.Manager.Tick")()

	m.drainMeshResults()

	observerChunk := WorldToChunk(
		int(observerPos.X()/V),
		int(observerPos.Y()/V),
		int(observerPos.Z()/V),
	)

	if !m.bootstrapped {
		col := observerChunk.Column()
		m.requestSurfaceColumn(col)
		return
	}

	chunkChanged := !m.haveObserverChunk || observerChunk != m.lastObserverChunk || !m.reachableValid
	m.lastObserverChunk = observerChunk
	m.haveObserverChunk = true

	if chunkChanged {
		result := RunBFS(observerChunk, camera, m.opts.Radius, m)
		m.cachedReachable = result.Reachable
		m.reachableValid = true
		m.emitTileRequests(result.Reachable, observerChunk)
		m.emitChunkRequests(result.ToRequest, observerChunk)
	}

	m.updateVisibility(observerChunk, camera)
	m.unloadFar(observerChunk)
	m.drainRemesh(observerChunk)
}

// emitTileRequests requests map tiles for every reachable column that has
// no column_info yet, nearest-first, up to MaxPendingTiles in flight.
func (m *Manager) emitTileRequests(reachable map[ChunkCoord]struct{}, observer ChunkCoord) {
	seen := make(map[ColumnKey]struct{})
	var unknown []ColumnKey
	for coord := range reachable {
		col := coord.Column()
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		if _, ok := m.columnInfo[col]; ok {
			continue
		}
		if _, ok := m.pendingTiles[col]; ok {
			continue
		}
		unknown = append(unknown, col)
	}
	sort.Slice(unknown, func(i, j int) bool {
		return columnDistance(unknown[i], observer) < columnDistance(unknown[j], observer)
	})
	for _, col := range unknown {
		if len(m.pendingTiles) >= m.opts.MaxPendingTiles {
			return
		}
		m.requestMapTile(col)
	}
}

// emitChunkRequests requests chunks from toRequest that have a known column
// (and are not above its surface), nearest-first, up to MaxPendingChunks.
func (m *Manager) emitChunkRequests(toRequest map[ChunkCoord]struct{}, observer ChunkCoord) {
	var candidates []ChunkCoord
	for coord := range toRequest {
		if _, ok := m.pendingChunks[coord]; ok {
			continue
		}
		info, ok := m.columnInfo[coord.Column()]
		if !ok || coord.Y > info.MaxCY {
			continue
		}
		candidates = append(candidates, coord)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ChebyshevDistance(observer) < candidates[j].ChebyshevDistance(observer)
	})
	for _, coord := range candidates {
		if len(m.pendingChunks) >= m.opts.MaxPendingChunks {
			return
		}
		m.requestChunk(coord)
	}
}

func (m *Manager) requestSurfaceColumn(col ColumnKey) {
	if _, ok := m.pendingColumns[col]; ok {
		return
	}
	m.pendingColumns[col] = struct{}{}
	if m.opts.UseServerChunks {
		if m.hooks.RequestSurfaceColumn != nil {
			m.hooks.RequestSurfaceColumn(col)
		}
		return
	}
	m.generateColumnLocally(col)
}

func (m *Manager) requestMapTile(col ColumnKey) {
	m.pendingTiles[col] = struct{}{}
	if m.opts.UseServerChunks {
		if m.hooks.RequestMapTile != nil {
			m.hooks.RequestMapTile(col)
		}
		return
	}
	m.generateColumnLocally(col)
}

func (m *Manager) requestChunk(coord ChunkCoord) {
	m.pendingChunks[coord] = struct{}{}
	if m.opts.UseServerChunks {
		if m.hooks.RequestChunk != nil {
			m.hooks.RequestChunk(coord, m.opts.ForceRegenerateChunks)
		}
		return
	}
	m.generateChunkLocally(coord)
}

// generateColumnLocally produces an offline-mode surface column: generate a
// reasonable vertical span of chunks and derive the tile from them,
// mirroring what a server would send in response to a column request.
func (m *Manager) generateColumnLocally(col ColumnKey) {
	if m.gen == nil {
		return
	}
	const localColumnSpan = 4 // cy in [0, localColumnSpan)
	tile := NewMapTile(col.TX, col.TZ)
	for cy := 0; cy < localColumnSpan; cy++ {
		coord := ChunkCoord{X: col.TX, Y: cy, Z: col.TZ}
		chunk := m.gen.GenerateChunk(coord)
		m.storeGeneratedChunk(chunk)
		UpdateTileFromChunk(tile, chunk, nil)
	}
	m.tiles[col] = tile
	m.columnInfo[col] = columnInfo{MaxCY: localColumnSpan - 1}
	delete(m.pendingColumns, col)
	delete(m.pendingTiles, col)
	m.bootstrapped = true
	if m.hooks.NotifyTileCache != nil {
		m.hooks.NotifyTileCache(col, tile.Heights[:], tile.Materials[:])
	}
}

func (m *Manager) generateChunkLocally(coord ChunkCoord) {
	if m.gen == nil {
		return
	}
	chunk := m.gen.GenerateChunk(coord)
	m.storeGeneratedChunk(chunk)
	delete(m.pendingChunks, coord)
}

func (m *Manager) storeGeneratedChunk(chunk *Chunk) {
	_, existed := m.chunks[chunk.Coord]
	m.chunks[chunk.Coord] = chunk
	m.enqueueRemesh(chunk.Coord)
	for _, f := range allFaces {
		m.enqueueRemesh(chunk.Coord.Neighbor(f))
	}
	if !existed {
		m.reachableValid = false
	}
}

// IngestChunkData applies an incoming VOXEL_CHUNK_DATA message.
func (m *Manager) IngestChunkData(coord ChunkCoord, voxels []uint16, lastBuildSeq uint32) {
	chunk, existed := m.chunks[coord]
	if !existed {
		chunk = NewChunk(coord)
		m.chunks[coord] = chunk
	}
	chunk.CopyVoxels(voxels)
	chunk.SetVisibilityBits(ComputeVisibilityBits(chunk))
	chunk.SetLastBuildSeq(lastBuildSeq)
	delete(m.pendingChunks, coord)

	m.enqueueRemesh(coord)
	for _, f := range allFaces {
		m.enqueueRemesh(coord.Neighbor(f))
	}
	if !existed {
		m.reachableValid = false
	}
}

// IngestSurfaceColumn applies a SURFACE_COLUMN_RESPONSE.
func (m *Manager) IngestSurfaceColumn(col ColumnKey, heights []int16, materials []uint8, chunks []ServerChunkPayload) {
	m.columnInfo[col] = columnInfo{MaxCY: maxHeightChunkY(heights)}
	delete(m.pendingColumns, col)
	m.bootstrapped = true
	if m.hooks.NotifyTileCache != nil {
		m.hooks.NotifyTileCache(col, heights, materials)
	}
	for _, cp := range chunks {
		m.IngestChunkData(cp.Coord, cp.Voxels, cp.LastBuildSeq)
	}
}

// IngestMapTile applies a MAP_TILE_RESPONSE (tile-only, no chunk voxels).
func (m *Manager) IngestMapTile(col ColumnKey, heights []int16, materials []uint8) {
	m.columnInfo[col] = columnInfo{MaxCY: maxHeightChunkY(heights)}
	delete(m.pendingTiles, col)
	if m.hooks.NotifyTileCache != nil {
		m.hooks.NotifyTileCache(col, heights, materials)
	}
}

// MarkBootstrapped records that the world has received enough data to begin
// normal streaming; called once the first surface column (or its local
// equivalent) has arrived.
func (m *Manager) MarkBootstrapped() { m.bootstrapped = true }

// IngestBuildCommit applies a VOXEL_BUILD_COMMIT, recomputing visibility on
// every changed chunk and enqueueing it and its neighbors for remesh.
func (m *Manager) IngestBuildCommit(op BuildOp) {
	if op.Seq > m.buildSeq {
		m.buildSeq = op.Seq
	}
	changed := ApplyBuildOperation(op, m.lookup)
	for _, coord := range changed {
		m.enqueueRemesh(coord)
	}
}

// NextBuildSeq returns a fresh, monotonically increasing sequence number for
// locally originated build operations.
func (m *Manager) NextBuildSeq() uint32 {
	m.buildSeq++
	return m.buildSeq
}

func (m *Manager) enqueueRemesh(coord ChunkCoord) {
	m.remeshQueue[coord] = struct{}{}
}

// updateVisibility recomputes which loaded chunks should be rendered this
// tick: reachable, or loaded and within radius+buffer, and inside the
// frustum.
func (m *Manager) updateVisibility(observer ChunkCoord, camera CameraView) {
	next := make(map[ChunkCoord]struct{}, len(m.visible))
	extended := m.opts.Radius + m.opts.Buffer

	candidate := func(coord ChunkCoord) bool {
		if _, ok := m.cachedReachable[coord]; ok {
			return true
		}
		return coord.ChebyshevDistance(observer) <= extended
	}

	var frustum Frustum
	if camera != nil {
		frustum = camera.Frustum()
	} else {
		frustum = AlwaysVisible
	}

	for coord := range m.chunks {
		if !candidate(coord) {
			continue
		}
		min, max := ChunkAABB(coord)
		if !frustum.IntersectsAABB(min, max) {
			continue
		}
		next[coord] = struct{}{}
	}
	m.visible = next
}

// unloadFar drops any loaded chunk that is neither reachable nor within the
// hysteresis radius.
func (m *Manager) unloadFar(observer ChunkCoord) {
	extended := m.opts.Radius + m.opts.Buffer
	for coord := range m.chunks {
		if _, ok := m.cachedReachable[coord]; ok {
			continue
		}
		if coord.ChebyshevDistance(observer) <= extended {
			continue
		}
		delete(m.chunks, coord)
		delete(m.meshes, coord)
		delete(m.remeshQueue, coord)
		delete(m.inFlight, coord)
		delete(m.visible, coord)
	}
}

// drainMeshResults pulls every completed mesh off the Mesher's result
// channel without blocking and swaps it in.
func (m *Manager) drainMeshResults() {
	if m.mesh == nil {
		return
	}
	for {
		select {
		case result, ok := <-m.mesh.Results():
			if !ok {
				return
			}
			delete(m.inFlight, result.Coord)
			chunk, stillLoaded := m.chunks[result.Coord]
			if !stillLoaded || result.Err != nil {
				continue
			}
			meshCopy := result.Mesh
			m.meshes[result.Coord] = &meshCopy
			chunk.ClearDirty()
		default:
			return
		}
	}
}

// drainRemesh time-budgets dispatch of the remesh queue, nearest-first,
// deferring any chunk whose face neighbors are still pending, and
// guaranteeing at least one chunk is dispatched per tick.
func (m *Manager) drainRemesh(observer ChunkCoord) {
	if len(m.remeshQueue) == 0 || m.mesh == nil {
		return
	}
	defer profiling.Track("voxelworld.Manager.drainRemesh")()

	ordered := make([]ChunkCoord, 0, len(m.remeshQueue))
	for coord := range m.remeshQueue {
		ordered = append(ordered, coord)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ChebyshevDistance(observer) < ordered[j].ChebyshevDistance(observer)
	})

	deadline := time.Now().Add(m.opts.RemeshBudget)
	dispatched := 0
	for _, coord := range ordered {
		if dispatched > 0 && time.Now().After(deadline) {
			break
		}

		chunk, loaded := m.chunks[coord]
		if !loaded {
			delete(m.remeshQueue, coord)
			continue
		}
		if _, busy := m.inFlight[coord]; busy {
			continue
		}
		if m.neighborPending(coord) {
			continue // keep queued; seam would be wrong
		}

		job := MeshJob{Coord: coord, Voxels: chunk.Snapshot()}
		for i, f := range allFaces {
			if nb, ok := m.chunks[coord.Neighbor(f)]; ok {
				snap := nb.Snapshot()
				job.Neighbors[i] = &snap
			}
		}
		if !m.mesh.Submit(job) {
			break // pool is saturated, try again next tick
		}
		m.inFlight[coord] = struct{}{}
		delete(m.remeshQueue, coord)
		dispatched++
	}
}

// neighborPending reports whether any of coord's six face neighbors is
// still an outstanding chunk request.
func (m *Manager) neighborPending(coord ChunkCoord) bool {
	for _, f := range allFaces {
		if _, ok := m.pendingChunks[coord.Neighbor(f)]; ok {
			return true
		}
	}
	return false
}

func columnDistance(col ColumnKey, observer ChunkCoord) int {
	return maxInt(absInt(col.TX-observer.X), absInt(col.TZ-observer.Z))
}

func maxHeightChunkY(heights []int16) int {
	if len(heights) == 0 {
		return 0
	}
	maxH := heights[0]
	for _, h := range heights[1:] {
		if h > maxH {
			maxH = h
		}
	}
	return floorDiv(int(maxH), S)
}
