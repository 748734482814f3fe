package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dan0net/worldify/internal/voxelworld"
	"github.com/go-gl/mathgl/mgl32"
)

// QuantizePosition packs a world-space meters value into centimeters,
// clamped to the int16 range — centimeter precision is plenty for player
// positions and halves the bytes a full float32 would cost on the wire.
func QuantizePosition(v float32) int16 {
	cm := math.Round(float64(v) * 100)
	return int16(clampF64(cm, -32768, 32767))
}

// DequantizePosition is the inverse of QuantizePosition.
func DequantizePosition(q int16) float32 {
	return float32(q) / 100
}

// QuantizeAngle packs a radian angle into π-normalized int16 units.
func QuantizeAngle(radians float32) int16 {
	q := math.Round(float64(radians) / math.Pi * 32767)
	return int16(clampF64(q, -32768, 32767))
}

// DequantizeAngle is the inverse of QuantizeAngle.
func DequantizeAngle(q int16) float32 {
	return float32(q) / 32767 * math.Pi
}

func clampF64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// writer appends little-endian fields to a growing byte buffer.
type writer struct{ buf []byte }

func newWriter(sizeHint int) *writer { return &writer{buf: make([]byte, 0, sizeHint)} }

func (w *writer) u8(v uint8) { w.buf = append(w.buf, v) }
func (w *writer) bool8(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}
func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *writer) i16(v int16) { w.u16(uint16(v)) }
func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *writer) i32(v int32)     { w.u32(uint32(v)) }
func (w *writer) f32(v float32)   { w.u32(math.Float32bits(v)) }
func (w *writer) bytes(v []byte)  { w.buf = append(w.buf, v...) }
func (w *writer) u16slice(v []uint16) {
	for _, x := range v {
		w.u16(x)
	}
}

// reader consumes little-endian fields from a byte slice, returning an
// error instead of panicking on a short read — decoding untrusted network
// input must never be able to crash the client.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader { return &reader{buf: buf} }

func (r *reader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return fmt.Errorf("wire: truncated message: need %d bytes at offset %d, have %d", n, r.pos, len(r.buf))
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) bool8() (bool, error) {
	v, err := r.u8()
	return v != 0, err
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) i16() (int16, error) {
	v, err := r.u16()
	return int16(v), err
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *reader) bytesN(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := make([]byte, n)
	copy(v, r.buf[r.pos:r.pos+n])
	r.pos += n
	return v, nil
}

func (r *reader) u16sliceN(n int) ([]uint16, error) {
	if err := r.need(n * 2); err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(r.buf[r.pos:])
		r.pos += 2
	}
	return out, nil
}

// --- Client -> Server ---

func EncodeJoin(m Join) []byte {
	w := newWriter(5)
	w.u8(MsgJoin)
	w.u16(m.ProtocolVersion)
	w.u16(m.PlayerID)
	return w.buf
}

func DecodeJoin(body []byte) (Join, error) {
	r := newReader(body)
	pv, err := r.u16()
	if err != nil {
		return Join{}, err
	}
	pid, err := r.u16()
	if err != nil {
		return Join{}, err
	}
	return Join{ProtocolVersion: pv, PlayerID: pid}, nil
}

func EncodeAckBuild(m AckBuild) []byte {
	w := newWriter(5)
	w.u8(MsgAckBuild)
	w.u32(m.LastSeenSeq)
	return w.buf
}

func DecodeAckBuild(body []byte) (AckBuild, error) {
	r := newReader(body)
	seq, err := r.u32()
	return AckBuild{LastSeenSeq: seq}, err
}

func EncodePing(m Ping) []byte {
	w := newWriter(5)
	w.u8(MsgPing)
	w.u32(m.Timestamp)
	return w.buf
}

func DecodePing(body []byte) (Ping, error) {
	r := newReader(body)
	ts, err := r.u32()
	return Ping{Timestamp: ts}, err
}

func EncodePong(m Pong) []byte {
	w := newWriter(5)
	w.u8(MsgPong)
	w.u32(m.Timestamp)
	return w.buf
}

func DecodePong(body []byte) (Pong, error) {
	r := newReader(body)
	ts, err := r.u32()
	return Pong{Timestamp: ts}, err
}

func EncodeVoxelChunkRequest(m VoxelChunkRequest) []byte {
	w := newWriter(14)
	w.u8(MsgVoxelChunkRequest)
	w.i32(m.CX)
	w.i32(m.CY)
	w.i32(m.CZ)
	w.bool8(m.ForceRegen)
	return w.buf
}

func DecodeVoxelChunkRequest(body []byte) (VoxelChunkRequest, error) {
	r := newReader(body)
	var m VoxelChunkRequest
	var err error
	if m.CX, err = r.i32(); err != nil {
		return m, err
	}
	if m.CY, err = r.i32(); err != nil {
		return m, err
	}
	if m.CZ, err = r.i32(); err != nil {
		return m, err
	}
	m.ForceRegen, err = r.bool8()
	return m, err
}

func EncodeSurfaceColumnRequest(m SurfaceColumnRequest) []byte {
	w := newWriter(9)
	w.u8(MsgSurfaceColumnRequest)
	w.i32(m.TX)
	w.i32(m.TZ)
	return w.buf
}

func DecodeSurfaceColumnRequest(body []byte) (SurfaceColumnRequest, error) {
	r := newReader(body)
	var m SurfaceColumnRequest
	var err error
	if m.TX, err = r.i32(); err != nil {
		return m, err
	}
	m.TZ, err = r.i32()
	return m, err
}

func EncodeMapTileRequest(m MapTileRequest) []byte {
	w := newWriter(9)
	w.u8(MsgMapTileRequest)
	w.i32(m.TX)
	w.i32(m.TZ)
	return w.buf
}

func DecodeMapTileRequest(body []byte) (MapTileRequest, error) {
	r := newReader(body)
	var m MapTileRequest
	var err error
	if m.TX, err = r.i32(); err != nil {
		return m, err
	}
	m.TZ, err = r.i32()
	return m, err
}

// --- Server -> Client ---

func EncodeWelcome(m Welcome) []byte {
	w := newWriter(11)
	w.u8(MsgWelcome)
	w.u16(m.PlayerID)
	w.bytes(m.RoomID[:])
	return w.buf
}

func DecodeWelcome(body []byte) (Welcome, error) {
	r := newReader(body)
	var m Welcome
	var err error
	if m.PlayerID, err = r.u16(); err != nil {
		return m, err
	}
	room, err := r.bytesN(8)
	if err != nil {
		return m, err
	}
	copy(m.RoomID[:], room)
	return m, nil
}

func EncodeRoomInfo(m RoomInfo) []byte {
	w := newWriter(2)
	w.u8(MsgRoomInfo)
	w.u8(m.PlayerCount)
	return w.buf
}

func DecodeRoomInfo(body []byte) (RoomInfo, error) {
	r := newReader(body)
	pc, err := r.u8()
	return RoomInfo{PlayerCount: pc}, err
}

func EncodeSnapshot(m Snapshot) []byte {
	w := newWriter(6 + len(m.Players)*15)
	w.u8(MsgSnapshot)
	w.u32(m.Tick)
	w.u8(uint8(len(m.Players)))
	for _, p := range m.Players {
		w.u16(p.ID)
		w.i16(p.X)
		w.i16(p.Y)
		w.i16(p.Z)
		w.i16(p.Yaw)
		w.i16(p.Pitch)
		w.u8(p.Buttons)
		w.u8(p.Flags)
	}
	return w.buf
}

func DecodeSnapshot(body []byte) (Snapshot, error) {
	r := newReader(body)
	var m Snapshot
	var err error
	if m.Tick, err = r.u32(); err != nil {
		return m, err
	}
	n, err := r.u8()
	if err != nil {
		return m, err
	}
	m.Players = make([]PlayerState, n)
	for i := range m.Players {
		p := &m.Players[i]
		if p.ID, err = r.u16(); err != nil {
			return m, err
		}
		if p.X, err = r.i16(); err != nil {
			return m, err
		}
		if p.Y, err = r.i16(); err != nil {
			return m, err
		}
		if p.Z, err = r.i16(); err != nil {
			return m, err
		}
		if p.Yaw, err = r.i16(); err != nil {
			return m, err
		}
		if p.Pitch, err = r.i16(); err != nil {
			return m, err
		}
		if p.Buttons, err = r.u8(); err != nil {
			return m, err
		}
		if p.Flags, err = r.u8(); err != nil {
			return m, err
		}
	}
	return m, nil
}

func EncodeVoxelChunkData(m VoxelChunkData) []byte {
	w := newWriter(17 + len(m.VoxelData)*2)
	w.u8(MsgVoxelChunkData)
	w.i32(m.CX)
	w.i32(m.CY)
	w.i32(m.CZ)
	w.u32(m.LastBuildSeq)
	w.u16slice(m.VoxelData)
	return w.buf
}

func DecodeVoxelChunkData(body []byte) (VoxelChunkData, error) {
	r := newReader(body)
	var m VoxelChunkData
	var err error
	if m.CX, err = r.i32(); err != nil {
		return m, err
	}
	if m.CY, err = r.i32(); err != nil {
		return m, err
	}
	if m.CZ, err = r.i32(); err != nil {
		return m, err
	}
	if m.LastBuildSeq, err = r.u32(); err != nil {
		return m, err
	}
	m.VoxelData, err = r.u16sliceN(voxelworld.ChunkVolume)
	return m, err
}

func EncodeSurfaceColumnResponse(m SurfaceColumnResponse) []byte {
	size := voxelworld.S * voxelworld.S
	w := newWriter(9 + size*3 + 1 + len(m.Chunks)*(8+size*voxelworld.S*2))
	w.u8(MsgSurfaceColumnResponse)
	w.i32(m.TX)
	w.i32(m.TZ)
	for _, h := range m.Heights {
		w.i16(h)
	}
	w.bytes(m.Materials)
	w.u8(uint8(len(m.Chunks)))
	for _, c := range m.Chunks {
		w.i32(c.CY)
		w.u32(c.LastBuildSeq)
		w.u16slice(c.VoxelData)
	}
	return w.buf
}

func DecodeSurfaceColumnResponse(body []byte) (SurfaceColumnResponse, error) {
	r := newReader(body)
	var m SurfaceColumnResponse
	var err error
	if m.TX, err = r.i32(); err != nil {
		return m, err
	}
	if m.TZ, err = r.i32(); err != nil {
		return m, err
	}
	size := voxelworld.S * voxelworld.S
	m.Heights = make([]int16, size)
	for i := range m.Heights {
		if m.Heights[i], err = r.i16(); err != nil {
			return m, err
		}
	}
	if m.Materials, err = r.bytesN(size); err != nil {
		return m, err
	}
	n, err := r.u8()
	if err != nil {
		return m, err
	}
	m.Chunks = make([]SurfaceColumnChunk, n)
	for i := range m.Chunks {
		c := &m.Chunks[i]
		if c.CY, err = r.i32(); err != nil {
			return m, err
		}
		if c.LastBuildSeq, err = r.u32(); err != nil {
			return m, err
		}
		if c.VoxelData, err = r.u16sliceN(voxelworld.ChunkVolume); err != nil {
			return m, err
		}
	}
	return m, nil
}

func EncodeMapTileResponse(m MapTileResponse) []byte {
	size := voxelworld.S * voxelworld.S
	w := newWriter(9 + size*3)
	w.u8(MsgMapTileResponse)
	w.i32(m.TX)
	w.i32(m.TZ)
	for _, h := range m.Heights {
		w.i16(h)
	}
	w.bytes(m.Materials)
	return w.buf
}

func DecodeMapTileResponse(body []byte) (MapTileResponse, error) {
	r := newReader(body)
	var m MapTileResponse
	var err error
	if m.TX, err = r.i32(); err != nil {
		return m, err
	}
	if m.TZ, err = r.i32(); err != nil {
		return m, err
	}
	size := voxelworld.S * voxelworld.S
	m.Heights = make([]int16, size)
	for i := range m.Heights {
		if m.Heights[i], err = r.i16(); err != nil {
			return m, err
		}
	}
	m.Materials, err = r.bytesN(size)
	return m, err
}

// buildOpFields is the number of fixed-size bytes in an encoded BuildOp,
// after which nothing follows.
const buildOpFields = 1 + 1 + 12 + 16 + 12 + 4 + 1 + 4 + 1 + 1

func writeBuildOp(w *writer, op voxelworld.BuildOp) {
	w.u8(uint8(op.Shape))
	w.u8(uint8(op.Mode))
	w.f32(op.Center.X())
	w.f32(op.Center.Y())
	w.f32(op.Center.Z())
	w.f32(op.Rotation.W)
	w.f32(op.Rotation.V.X())
	w.f32(op.Rotation.V.Y())
	w.f32(op.Rotation.V.Z())
	w.f32(op.Size.X())
	w.f32(op.Size.Y())
	w.f32(op.Size.Z())
	w.f32(op.Thickness)
	w.bool8(op.Closed)
	w.f32(op.ArcSweep)
	w.u8(uint8(op.Sides))
	w.u8(op.Material)
}

func readBuildOp(r *reader) (voxelworld.BuildOp, error) {
	var op voxelworld.BuildOp
	shape, err := r.u8()
	if err != nil {
		return op, err
	}
	op.Shape = voxelworld.ShapeKind(shape)
	mode, err := r.u8()
	if err != nil {
		return op, err
	}
	op.Mode = voxelworld.BuildMode(mode)

	cx, err := r.f32()
	if err != nil {
		return op, err
	}
	cy, err := r.f32()
	if err != nil {
		return op, err
	}
	cz, err := r.f32()
	if err != nil {
		return op, err
	}
	op.Center = mgl32.Vec3{cx, cy, cz}

	qw, err := r.f32()
	if err != nil {
		return op, err
	}
	qx, err := r.f32()
	if err != nil {
		return op, err
	}
	qy, err := r.f32()
	if err != nil {
		return op, err
	}
	qz, err := r.f32()
	if err != nil {
		return op, err
	}
	op.Rotation = mgl32.Quat{W: qw, V: mgl32.Vec3{qx, qy, qz}}

	sx, err := r.f32()
	if err != nil {
		return op, err
	}
	sy, err := r.f32()
	if err != nil {
		return op, err
	}
	sz, err := r.f32()
	if err != nil {
		return op, err
	}
	op.Size = mgl32.Vec3{sx, sy, sz}

	if op.Thickness, err = r.f32(); err != nil {
		return op, err
	}
	if op.Closed, err = r.bool8(); err != nil {
		return op, err
	}
	if op.ArcSweep, err = r.f32(); err != nil {
		return op, err
	}
	sides, err := r.u8()
	if err != nil {
		return op, err
	}
	op.Sides = int(sides)
	op.Material, err = r.u8()
	return op, err
}

func EncodeVoxelBuildCommit(m VoxelBuildCommit) []byte {
	w := newWriter(12 + buildOpFields)
	w.u8(MsgVoxelBuildCommit)
	w.u16(m.PlayerID)
	w.u32(m.Seq)
	w.u8(uint8(m.Result))
	writeBuildOp(w, m.Op)
	return w.buf
}

func DecodeVoxelBuildCommit(body []byte) (VoxelBuildCommit, error) {
	r := newReader(body)
	var m VoxelBuildCommit
	var err error
	if m.PlayerID, err = r.u16(); err != nil {
		return m, err
	}
	if m.Seq, err = r.u32(); err != nil {
		return m, err
	}
	result, err := r.u8()
	if err != nil {
		return m, err
	}
	m.Result = BuildResult(result)
	m.Op, err = readBuildOp(r)
	return m, err
}

func EncodeError(m ErrorMsg) []byte {
	w := newWriter(2)
	w.u8(MsgError)
	w.u8(m.Code)
	return w.buf
}

func DecodeError(body []byte) (ErrorMsg, error) {
	r := newReader(body)
	code, err := r.u8()
	return ErrorMsg{Code: code}, err
}

// DecodeMessageID extracts the leading message id byte, used by a dispatch
// loop to select the matching Decode* function.
func DecodeMessageID(data []byte) (id uint8, body []byte, err error) {
	if len(data) < 1 {
		return 0, nil, fmt.Errorf("wire: empty message")
	}
	return data[0], data[1:], nil
}
