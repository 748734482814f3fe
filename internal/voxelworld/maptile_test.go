package voxelworld

import "testing"

// TestUpdateTileFromChunkFlatColdStart checks that a freshly generated flat
// chunk folded into an empty tile records every column's height at the
// flat surface.
func TestUpdateTileFromChunkFlatColdStart(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	c.GenerateFlat(10)

	tile := NewMapTile(0, 0)
	UpdateTileFromChunk(tile, c, nil)

	idx := tileIndex(5, 5)
	if tile.Heights[idx] != 9 {
		t.Errorf("flat chunk filled below y=10 should record surface height 9, got %d", tile.Heights[idx])
	}
	if tile.Materials[idx] != 1 {
		t.Errorf("flat chunk material = %d, want 1", tile.Materials[idx])
	}
}

func TestUpdateTileFromChunkLeavesEmptyColumnUnset(t *testing.T) {
	c := NewChunk(ChunkCoord{}) // all air
	tile := NewMapTile(0, 0)
	UpdateTileFromChunk(tile, c, nil)

	idx := tileIndex(0, 0)
	if tile.Heights[idx] != TileEmpty {
		t.Errorf("an all-air chunk must leave the tile column unset, got %d", tile.Heights[idx])
	}
}

func TestUpdateTileFromChunkOnlyRaisesHeight(t *testing.T) {
	lower := NewChunk(ChunkCoord{0, 0, 0})
	lower.GenerateFlat(S) // solid all the way up

	upper := NewChunk(ChunkCoord{0, 1, 0})
	upper.GenerateFlat(10) // only solid up to local y=9, i.e. world y = S+9

	tile := NewMapTile(0, 0)
	UpdateTileFromChunk(tile, lower, nil)
	UpdateTileFromChunk(tile, upper, nil)

	idx := tileIndex(5, 5)
	want := int16(S + 9)
	if tile.Heights[idx] != want {
		t.Errorf("taller chunk should win regardless of fold order: got %d, want %d", tile.Heights[idx], want)
	}

	// Re-folding the lower (shorter) chunk afterward must not lower the
	// recorded height back down.
	UpdateTileFromChunk(tile, lower, nil)
	if tile.Heights[idx] != want {
		t.Errorf("re-folding a shorter chunk must never lower the recorded height: got %d, want %d", tile.Heights[idx], want)
	}
}

// TestUpdateTileFromChunkDigRevealsLowerSurface checks that digging out the
// recorded topmost voxel re-derives the height from what's left in the
// same chunk.
func TestUpdateTileFromChunkDigRevealsLowerSurface(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	c.GenerateFlat(10)

	tile := NewMapTile(0, 0)
	UpdateTileFromChunk(tile, c, nil)

	idx := tileIndex(5, 5)
	if tile.Heights[idx] != 9 {
		t.Fatalf("setup: expected initial height 9, got %d", tile.Heights[idx])
	}

	// Dig out the recorded surface voxel.
	c.SetDirty(5, 9, 5, Pack(-0.5, 0, 0))
	UpdateTileFromChunk(tile, c, nil)

	if tile.Heights[idx] != 8 {
		t.Errorf("after digging out the surface voxel, expected the next solid voxel (8), got %d", tile.Heights[idx])
	}
}

// TestUpdateTileFromChunkDigToEmptyInvokesFallback exercises the case where
// an entire column is dug out within one chunk: with nothing solid left in
// that chunk, the tile must call the fallback rescan hook instead of
// silently guessing.
func TestUpdateTileFromChunkDigToEmptyInvokesFallback(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	c.GenerateFlat(1) // only one solid layer at local y=0

	tile := NewMapTile(0, 0)
	UpdateTileFromChunk(tile, c, nil)

	idx := tileIndex(3, 3)
	if tile.Heights[idx] != 0 {
		t.Fatalf("setup: expected initial height 0, got %d", tile.Heights[idx])
	}

	c.SetDirty(3, 0, 3, Pack(-0.5, 0, 0))

	fallbackCalled := false
	UpdateTileFromChunk(tile, c, func(lx, lz int) {
		if lx == 3 && lz == 3 {
			fallbackCalled = true
		}
	})

	if !fallbackCalled {
		t.Error("digging a column down to nothing solid in this chunk must invoke the fallback rescan hook")
	}
	if tile.Heights[idx] != 0 {
		t.Error("the fallback hook is responsible for resolving the height; UpdateTileFromChunk must not clear it when a fallback is supplied")
	}
}

func TestUpdateTileFromChunkDigWithoutFallbackClearsToEmpty(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	c.GenerateFlat(1)

	tile := NewMapTile(0, 0)
	UpdateTileFromChunk(tile, c, nil)

	c.SetDirty(3, 0, 3, Pack(-0.5, 0, 0))
	UpdateTileFromChunk(tile, c, nil)

	idx := tileIndex(3, 3)
	if tile.Heights[idx] != TileEmpty {
		t.Errorf("with no fallback supplied, a fully-dug column must clear back to empty, got %d", tile.Heights[idx])
	}
}
