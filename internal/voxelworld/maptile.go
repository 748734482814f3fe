package voxelworld

import "math"

// TileEmpty is the sentinel height recorded for a column that has never
// seen a solid voxel.
const TileEmpty int16 = math.MinInt16

// MapTile is the S×S per-column raster derived from every chunk sharing a
// (tx,tz) column: topmost solid voxel height and its material, indexed
// x + z*S with y collapsed. Collapsing y keeps the overview map a cheap 2D
// lookup instead of a full chunk scan every time the map overlay redraws.
type MapTile struct {
	TX, TZ    int
	Heights   [S * S]int16
	Materials [S * S]uint8
}

// NewMapTile creates an empty tile for the given column, every pixel
// unset.
func NewMapTile(tx, tz int) *MapTile {
	t := &MapTile{TX: tx, TZ: tz}
	for i := range t.Heights {
		t.Heights[i] = TileEmpty
	}
	return t
}

func tileIndex(lx, lz int) int { return lx + lz*S }

// FallbackRescan is called when a previously-recorded topmost voxel turns
// out to have been dug out and this chunk alone can't find a new one (the
// true surface may be in a chunk below that isn't loaded yet).
type FallbackRescan func(lx, lz int)

// UpdateTileFromChunk folds one chunk's column data into the tile. For each
// (lx,lz) it scans from the top of this chunk downward for the topmost
// solid voxel and raises the tile's recorded height if this chunk holds a
// higher one. If the tile's current recorded height falls within this
// chunk's Y range but that voxel is no longer solid (it was dug out), it
// re-derives the height from this chunk's own column, falling back to the
// caller's rescan hook (e.g. to pull in a chunk below) only when this chunk
// has nothing solid left in the column at all.
func UpdateTileFromChunk(tile *MapTile, chunk *Chunk, fallback FallbackRescan) {
	baseY := chunk.Coord.Y * S

	for lz := 0; lz < S; lz++ {
		for lx := 0; lx < S; lx++ {
			idx := tileIndex(lx, lz)
			currentHeight := tile.Heights[idx]

			topY, topMaterial, found := topmostSolid(chunk, lx, lz)

			if found && (currentHeight == TileEmpty || int16(topY) > currentHeight) {
				tile.Heights[idx] = int16(topY)
				tile.Materials[idx] = topMaterial
				continue
			}

			if currentHeight == TileEmpty {
				continue
			}

			inRange := int(currentHeight) >= baseY && int(currentHeight) < baseY+S
			if !inRange {
				continue
			}
			localY := int(currentHeight) - baseY
			if IsSolid(chunk.Get(lx, localY, lz)) {
				continue // still solid, nothing changed
			}

			// Dig case: the recorded surface voxel is gone.
			if found {
				tile.Heights[idx] = int16(topY)
				tile.Materials[idx] = topMaterial
				continue
			}
			if fallback != nil {
				fallback(lx, lz)
				continue
			}
			tile.Heights[idx] = TileEmpty
		}
	}
}

// topmostSolid scans one column of a chunk from top to bottom for the
// highest solid voxel.
func topmostSolid(chunk *Chunk, lx, lz int) (worldY int, material uint8, found bool) {
	baseY := chunk.Coord.Y * S
	for ly := S - 1; ly >= 0; ly-- {
		v := chunk.Get(lx, ly, lz)
		if IsSolid(v) {
			return baseY + ly, EffectiveMaterial(v), true
		}
	}
	return 0, 0, false
}
