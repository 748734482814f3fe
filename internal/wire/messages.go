// Package wire implements the little-endian binary message shapes
// exchanged between a voxel-world client and server. Actual socket plumbing
// is out of scope: this package only encodes and decodes byte payloads.
package wire

import "github.com/dan0net/worldify/internal/voxelworld"

// Message ids, the leading byte of every encoded message.
const (
	MsgJoin                 uint8 = 0x01
	MsgAckBuild             uint8 = 0x02
	MsgPing                 uint8 = 0x03
	MsgVoxelChunkRequest    uint8 = 0x10
	MsgSurfaceColumnRequest uint8 = 0x11
	MsgMapTileRequest       uint8 = 0x12

	MsgWelcome               uint8 = 0x80
	MsgRoomInfo              uint8 = 0x81
	MsgSnapshot              uint8 = 0x82
	MsgVoxelChunkData        uint8 = 0x90
	MsgSurfaceColumnResponse uint8 = 0x91
	MsgMapTileResponse       uint8 = 0x92
	MsgVoxelBuildCommit      uint8 = 0x93
	MsgError                 uint8 = 0xFE
	MsgPong                  uint8 = 0xFF
)

// BuildResult reports whether a committed build operation was accepted.
type BuildResult uint8

const (
	ResultSuccess BuildResult = iota
	ResultRejected
	ResultOutOfRange
)

// Join is the client's handshake.
type Join struct {
	ProtocolVersion uint16
	PlayerID        uint16
}

// AckBuild acknowledges the last build commit a client has applied.
type AckBuild struct {
	LastSeenSeq uint32
}

// Ping/Pong carry a round-trip timestamp, opaque to the core.
type Ping struct{ Timestamp uint32 }
type Pong struct{ Timestamp uint32 }

// VoxelChunkRequest asks the server for one chunk's voxel data.
type VoxelChunkRequest struct {
	CX, CY, CZ int32
	ForceRegen bool
}

// SurfaceColumnRequest asks for the full bootstrap payload (tile + inner
// chunks) of a column.
type SurfaceColumnRequest struct {
	TX, TZ int32
}

// MapTileRequest asks for the map tile alone (no voxel chunks).
type MapTileRequest struct {
	TX, TZ int32
}

// Welcome is the server's handshake reply.
type Welcome struct {
	PlayerID uint16
	RoomID   [8]byte
}

// RoomInfo reports current room occupancy.
type RoomInfo struct {
	PlayerCount uint8
}

// PlayerState is one player's quantized pose inside a Snapshot.
type PlayerState struct {
	ID         uint16
	X, Y, Z    int16 // centimeters
	Yaw, Pitch int16 // π-normalized units
	Buttons    uint8
	Flags      uint8
}

// Snapshot is the periodic authoritative player-state broadcast.
type Snapshot struct {
	Tick    uint32
	Players []PlayerState
}

// VoxelChunkData carries one chunk's full voxel buffer.
type VoxelChunkData struct {
	CX, CY, CZ   int32
	LastBuildSeq uint32
	VoxelData    []uint16 // len voxelworld.ChunkVolume
}

// SurfaceColumnChunk is one inner chunk of a SurfaceColumnResponse; it
// omits cx/cz since those are shared with the column.
type SurfaceColumnChunk struct {
	CY           int32
	LastBuildSeq uint32
	VoxelData    []uint16
}

// SurfaceColumnResponse is the bootstrap payload for a column: its map tile
// plus whichever inner chunks the server has generated.
type SurfaceColumnResponse struct {
	TX, TZ    int32
	Heights   []int16 // len S*S
	Materials []uint8 // len S*S
	Chunks    []SurfaceColumnChunk
}

// MapTileResponse is a tile-only reply (no voxel chunks).
type MapTileResponse struct {
	TX, TZ    int32
	Heights   []int16
	Materials []uint8
}

// VoxelBuildCommit is the server's authoritative application of a build
// operation; Result != ResultSuccess means the op was not applied and the
// client should only log it.
type VoxelBuildCommit struct {
	PlayerID uint16
	Seq      uint32
	Result   BuildResult
	Op       voxelworld.BuildOp
}

// ErrorMsg reports a server-side error code.
type ErrorMsg struct {
	Code uint8
}
