package level

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/OCharnyshevich/mclevel/pkg/material"
	"github.com/OCharnyshevich/mclevel/pkg/nbt"
)

// WorldHeight is the fixed vertical extent of this world format.
const WorldHeight = 128

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// World is an infinite-world chunk store: it owns the mapping from
// chunk coordinate to Chunk and the on-disk hashed directory layout.
// A coordinate is present in the map iff a chunk file for it is known
// to exist. The store is single-owner: callers coordinate externally
// if they parallelize.
type World struct {
	dir    string
	height int
	log    *slog.Logger
	mats   *material.Table

	chunks map[ChunkPos]*Chunk

	rootTag nbt.Compound // level.dat contents, preserved opaquely
}

// Create makes a new world directory with a fresh level.dat and no
// chunks.
func Create(dir string, seed int64, log *slog.Logger) (*World, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create world directory: %w", err)
	}

	w := &World{
		dir:     dir,
		height:  WorldHeight,
		log:     log,
		mats:    material.Alpha(),
		chunks:  make(map[ChunkPos]*Chunk),
		rootTag: newLevelRootTag(seed),
	}
	if err := w.saveLevelDat(); err != nil {
		return nil, err
	}
	log.Info("created world", "dir", dir, "seed", seed)
	return w, nil
}

// Open reads an existing world's level.dat and registers every chunk
// file found in the hashed directory tree, without reading chunk
// contents. Chunk data is loaded lazily by Chunk.
func Open(dir string, log *slog.Logger) (*World, error) {
	if log == nil {
		log = slog.Default()
	}

	w := &World{
		dir:    dir,
		height: WorldHeight,
		log:    log,
		mats:   material.Alpha(),
		chunks: make(map[ChunkPos]*Chunk),
	}

	blob, err := os.ReadFile(w.levelDatPath())
	if err != nil {
		return nil, fmt.Errorf("read level.dat: %w", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("decompress level.dat: %w", err)
	}
	defer gz.Close()
	root, err := nbt.Parse(gz)
	if err != nil {
		return nil, fmt.Errorf("parse level.dat: %w", err)
	}
	w.rootTag = root

	if err := w.preloadChunkPaths(); err != nil {
		return nil, err
	}
	log.Info("opened world", "dir", dir, "chunks", len(w.chunks))
	return w, nil
}

// UseMaterials swaps the block palette consulted for light properties,
// for the world and every chunk it already knows about.
func (w *World) UseMaterials(t *material.Table) {
	w.mats = t
	for _, c := range w.chunks {
		c.mats = t
	}
}

// Materials returns the world's block palette.
func (w *World) Materials() *material.Table { return w.mats }

// Height returns the world's fixed vertical extent.
func (w *World) Height() int { return w.height }

// Dir returns the world directory.
func (w *World) Dir() string { return w.dir }

// RootTag returns the level.dat tag tree. Mutations are persisted by
// SaveInPlace.
func (w *World) RootTag() nbt.Compound { return w.rootTag }

func (w *World) levelDatPath() string {
	return filepath.Join(w.dir, "level.dat")
}

// newLevelRootTag builds the default level.dat contents for a fresh
// world, including a default single-player compound.
func newLevelRootTag(seed int64) nbt.Compound {
	player := nbt.Compound{
		"Air":          int16(300),
		"AttackTime":   int16(0),
		"DeathTime":    int16(0),
		"Fire":         int16(-20),
		"Health":       int16(20),
		"HurtTime":     int16(0),
		"Score":        int32(0),
		"FallDistance": float32(0),
		"OnGround":     byte(0),
		"Inventory":    nbt.List{ElemType: nbt.TagByte},
		"Motion": nbt.List{ElemType: nbt.TagDouble,
			Items: []any{float64(0), float64(0), float64(0)}},
		"Pos": nbt.List{ElemType: nbt.TagDouble,
			Items: []any{float64(0.5), float64(2.8), float64(0.5)}},
		"Rotation": nbt.List{ElemType: nbt.TagFloat,
			Items: []any{float32(0), float32(0)}},
	}
	if seed == 0 {
		seed = rand.Int63()
	}
	return nbt.Compound{
		"Data": nbt.Compound{
			"SpawnX":      int32(0),
			"SpawnY":      int32(2),
			"SpawnZ":      int32(0),
			"LastPlayed":  time.Now().Unix(),
			"RandomSeed":  seed,
			"SizeOnDisk":  int64(1048576),
			"Time":        int64(1),
			"SnowCovered": byte(0),
			"Player":      player,
		},
	}
}

// saveLevelDat writes the gzip-compressed level.dat atomically using a
// temp file and rename.
func (w *World) saveLevelDat() error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	nw := nbt.NewWriter(gz)
	nw.WriteCompound("", w.rootTag)
	if err := nw.Err(); err != nil {
		return fmt.Errorf("serialize level.dat: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress level.dat: %w", err)
	}

	path := w.levelDatPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write level.dat: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename level.dat: %w", err)
	}
	return nil
}

// SpawnPosition returns the world spawn point from level.dat.
func (w *World) SpawnPosition() (x, y, z int) {
	data, ok := w.rootTag.Compound("Data")
	if !ok {
		return 0, 0, 0
	}
	sx, _ := data.Int("SpawnX")
	sy, _ := data.Int("SpawnY")
	sz, _ := data.Int("SpawnZ")
	return int(sx), int(sy), int(sz)
}

// SetSpawnPosition updates the world spawn point in level.dat.
func (w *World) SetSpawnPosition(x, y, z int) {
	data, ok := w.rootTag.Compound("Data")
	if !ok {
		data = nbt.Compound{}
		w.rootTag["Data"] = data
	}
	data["SpawnX"] = int32(x)
	data["SpawnY"] = int32(y)
	data["SpawnZ"] = int32(z)
}

// dirhash maps a chunk coordinate onto one of 64 directory labels:
// base36 of n mod 64, with residues 36..63 spilling into a leading "1"
// digit. This bounds directory fan-out to 64x64 subdirectories.
func dirhash(n int) string {
	m := n & 63
	if m >= 36 {
		return "1" + string(base36Alphabet[m-36])
	}
	return string(base36Alphabet[m])
}

// base36 encodes n in lowercase base 36 with a leading "-" for
// negative values.
func base36(n int) string {
	if n == 0 {
		return "0"
	}
	neg := ""
	if n < 0 {
		neg = "-"
		n = -n
	}
	var sb []byte
	for n != 0 {
		sb = append([]byte{base36Alphabet[n%36]}, sb...)
		n /= 36
	}
	return neg + string(sb)
}

// parseBase36 is the inverse of base36.
func parseBase36(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty base36 string")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s); i++ {
		d := strings.IndexByte(base36Alphabet, s[i])
		if d < 0 {
			return 0, fmt.Errorf("bad base36 digit %q", s[i])
		}
		n = n*36 + d
	}
	if neg {
		n = -n
	}
	return n, nil
}

// ChunkFileName returns the chunk's path under the two-level hashed
// directory layout: dirhash(cx)/dirhash(cz)/c.<base36 cx>.<base36 cz>.dat.
func (w *World) ChunkFileName(cx, cz int) string {
	return filepath.Join(w.dir, dirhash(cx), dirhash(cz),
		"c."+base36(cx)+"."+base36(cz)+".dat")
}

// preloadChunkPaths scans the hashed directory tree and registers every
// chunk file found as present-but-unloaded. File contents are not read.
func (w *World) preloadChunkPaths() error {
	hashes := make(map[string]bool, 64)
	for n := 0; n < 64; n++ {
		hashes[dirhash(n)] = true
	}

	top, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan world directory: %w", err)
	}
	for _, d := range top {
		if !d.IsDir() || !hashes[d.Name()] {
			continue
		}
		subs, err := os.ReadDir(filepath.Join(w.dir, d.Name()))
		if err != nil {
			return fmt.Errorf("scan %s: %w", d.Name(), err)
		}
		for _, sub := range subs {
			if !sub.IsDir() || !hashes[sub.Name()] {
				continue
			}
			files, err := os.ReadDir(filepath.Join(w.dir, d.Name(), sub.Name()))
			if err != nil {
				return fmt.Errorf("scan %s/%s: %w", d.Name(), sub.Name(), err)
			}
			for _, f := range files {
				cx, cz, ok := parseChunkFileName(f.Name())
				if !ok {
					continue
				}
				pos := ChunkPos{X: cx, Z: cz}
				w.chunks[pos] = w.newChunk(pos)
			}
		}
	}
	return nil
}

// parseChunkFileName decodes "c.<base36 x>.<base36 z>.dat".
func parseChunkFileName(name string) (cx, cz int, ok bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 4 || strings.ToLower(parts[0]) != "c" || strings.ToLower(parts[3]) != "dat" {
		return 0, 0, false
	}
	cx, err := parseBase36(parts[1])
	if err != nil {
		return 0, 0, false
	}
	cz, err = parseBase36(parts[2])
	if err != nil {
		return 0, 0, false
	}
	return cx, cz, true
}

func (w *World) newChunk(pos ChunkPos) *Chunk {
	return &Chunk{
		pos:    pos,
		path:   w.ChunkFileName(pos.X, pos.Z),
		height: w.height,
		mats:   w.mats,
	}
}

// ContainsChunk reports whether the coordinate is known to the store.
func (w *World) ContainsChunk(cx, cz int) bool {
	_, ok := w.chunks[ChunkPos{X: cx, Z: cz}]
	return ok
}

// ContainsPoint reports whether the block coordinate falls inside a
// present chunk and the world's height range.
func (w *World) ContainsPoint(x, y, z int) bool {
	if y < 0 || y >= w.height {
		return false
	}
	return w.ContainsChunk(x>>4, z>>4)
}

// PresentChunks returns every known chunk coordinate, sorted.
func (w *World) PresentChunks() []ChunkPos {
	out := make([]ChunkPos, 0, len(w.chunks))
	for pos := range w.chunks {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

// PresentChunkCount returns the number of known chunks.
func (w *World) PresentChunkCount() int { return len(w.chunks) }

// Chunk returns the chunk at the coordinate, loading it from disk if
// needed. Unknown coordinates fail with ErrChunkNotPresent. A chunk
// that cannot be loaded fails with ErrChunkMalformed and is removed
// from the store.
func (w *World) Chunk(cx, cz int) (*Chunk, error) {
	pos := ChunkPos{X: cx, Z: cz}
	c, ok := w.chunks[pos]
	if !ok {
		return nil, fmt.Errorf("chunk (%d,%d): %w", cx, cz, ErrChunkNotPresent)
	}
	if err := c.Load(); err != nil {
		delete(w.chunks, pos)
		w.log.Warn("evicting malformed chunk", "cx", cx, "cz", cz, "error", err)
		return nil, err
	}
	return c, nil
}

// CreateChunk creates a fresh zero-filled chunk at the coordinate,
// makes its hashed directories, and writes the initial file. Fails if
// the coordinate is already present.
func (w *World) CreateChunk(cx, cz int) (*Chunk, error) {
	pos := ChunkPos{X: cx, Z: cz}
	if _, ok := w.chunks[pos]; ok {
		return nil, fmt.Errorf("chunk (%d,%d) already present", cx, cz)
	}
	c := w.newChunk(pos)
	if err := c.create(); err != nil {
		return nil, fmt.Errorf("create chunk (%d,%d): %w", cx, cz, err)
	}
	w.chunks[pos] = c
	return c, nil
}

// DeleteChunk removes the chunk's backing file and drops it from the
// store. A no-op for unknown coordinates.
func (w *World) DeleteChunk(cx, cz int) error {
	pos := ChunkPos{X: cx, Z: cz}
	c, ok := w.chunks[pos]
	if !ok {
		return nil
	}
	err := c.remove()
	delete(w.chunks, pos)
	return err
}

// MarkDirtyChunk flags the chunk as changed, recomputing its height
// map and fast light estimate. A no-op for unknown coordinates.
func (w *World) MarkDirtyChunk(cx, cz int) error {
	c, ok := w.chunks[ChunkPos{X: cx, Z: cz}]
	if !ok {
		return nil
	}
	return c.ChunkChanged(true)
}

// CompressChunk discards the chunk's array form, keeping the
// serialized blob. A no-op for unknown coordinates.
func (w *World) CompressChunk(cx, cz int) error {
	c, ok := w.chunks[ChunkPos{X: cx, Z: cz}]
	if !ok {
		return nil
	}
	return c.Compress()
}

// ChunkSlice describes one chunk's piece of a multi-chunk region: the
// local cell ranges to address within the chunk, and where that piece
// sits in the region's own coordinate frame.
type ChunkSlice struct {
	MinX, MaxX int // local X range within the chunk, 0..16
	MinZ, MaxZ int // local Z range within the chunk, 0..16
	MinY, MaxY int // vertical range, as requested by the region

	OffsetX, OffsetY, OffsetZ int // piece position in the region frame
}

// ForEachChunkSlice visits every present chunk whose footprint
// intersects the box, yielding the loaded chunk and its slice. Chunks
// not in the store are skipped silently; callers needing completeness
// should call CreateChunksInRange first. This is the single choke
// point for all bulk fill, copy and light-initialization operations.
//
// The yielded chunk's arrays are live references: mutate them in place,
// then call ChunkChanged on the chunk. The iterator never marks chunks
// itself. An error from fn aborts the iteration.
func (w *World) ForEachChunkSlice(box BoundingBox, fn func(c *Chunk, sl ChunkSlice) error) error {
	minCx, minCz, maxCx, maxCz := box.ChunkRange()

	minXOff := box.MinX() - minCx<<4
	minZOff := box.MinZ() - minCz<<4
	maxXOff := box.MaxX() - (maxCx-1)<<4
	maxZOff := box.MaxZ() - (maxCz-1)<<4

	for cx := minCx; cx < maxCx; cx++ {
		localMinX, localMaxX := 0, 16
		if cx == minCx {
			localMinX = minXOff
		}
		if cx == maxCx-1 {
			localMaxX = maxXOff
		}
		offX := localMinX + cx<<4 - box.MinX()

		for cz := minCz; cz < maxCz; cz++ {
			localMinZ, localMaxZ := 0, 16
			if cz == minCz {
				localMinZ = minZOff
			}
			if cz == maxCz-1 {
				localMaxZ = maxZOff
			}
			offZ := localMinZ + cz<<4 - box.MinZ()

			c, err := w.Chunk(cx, cz)
			if err != nil {
				if errors.Is(err, ErrChunkNotPresent) {
					continue
				}
				return err
			}
			sl := ChunkSlice{
				MinX: localMinX, MaxX: localMaxX,
				MinZ: localMinZ, MaxZ: localMaxZ,
				MinY: box.MinY(), MaxY: box.MaxY(),
				OffsetX: offX, OffsetY: 0, OffsetZ: offZ,
			}
			if err := fn(c, sl); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateChunksInRange creates every missing chunk whose footprint
// intersects the box. Idempotent for already-present chunks.
func (w *World) CreateChunksInRange(box BoundingBox) error {
	var firstErr error
	box.ForEachChunkPosition(func(cx, cz int) {
		if w.ContainsChunk(cx, cz) || firstErr != nil {
			return
		}
		if _, err := w.CreateChunk(cx, cz); err != nil {
			firstErr = err
		}
	})
	return firstErr
}

// clampBoxY limits the box's vertical extent to the world's height
// range; reads and writes outside it are silent no-ops.
func (w *World) clampBoxY(box BoundingBox) BoundingBox {
	if box.MinY() < 0 {
		box.SetMinY(0)
	}
	if box.MaxY() > w.height {
		box.SetMaxY(w.height)
	}
	return box
}

// FillBlocks sets every cell of the box in every present chunk to the
// given block type and data value, marking the chunks changed.
func (w *World) FillBlocks(box BoundingBox, blockType, blockData byte) error {
	box = w.clampBoxY(box)
	return w.ForEachChunkSlice(box, func(c *Chunk, sl ChunkSlice) error {
		for x := sl.MinX; x < sl.MaxX; x++ {
			for z := sl.MinZ; z < sl.MaxZ; z++ {
				base := c.index(x, z, 0)
				for y := sl.MinY; y < sl.MaxY; y++ {
					c.blocks[base+y] = blockType
					c.data[base+y] = blockData
				}
			}
		}
		return c.ChunkChanged(true)
	})
}

// CopyBlocksFrom copies the source box from another world into this one
// at the destination point, converting block ids across palettes by
// name. Cells whose destination chunk is absent are skipped, as are air
// (and optionally water) source blocks when the flags say so.
func (w *World) CopyBlocksFrom(src *World, srcBox BoundingBox, destX, destY, destZ int, copyAir, copyWater bool) error {
	conv := material.ConversionTable(src.mats, w.mats)

	destBox := NewBoundingBox(destX, destY, destZ, srcBox.Width(), srcBox.Height(), srcBox.Length())
	destBox = w.clampBoxY(destBox)

	return w.ForEachChunkSlice(destBox, func(c *Chunk, sl ChunkSlice) error {
		for x := sl.MinX; x < sl.MaxX; x++ {
			sx := srcBox.MinX() + sl.OffsetX + (x - sl.MinX)
			for z := sl.MinZ; z < sl.MaxZ; z++ {
				sz := srcBox.MinZ() + sl.OffsetZ + (z - sl.MinZ)
				base := c.index(x, z, 0)
				for y := sl.MinY; y < sl.MaxY; y++ {
					sy := srcBox.MinY() + (y - destBox.MinY())

					sb, err := src.BlockAt(sx, sy, sz)
					if err != nil {
						if errors.Is(err, ErrChunkNotPresent) {
							continue
						}
						return err
					}
					bt := conv[sb]
					if bt == 0 && !copyAir {
						continue
					}
					if (bt == 8 || bt == 9) && !copyWater {
						continue
					}
					sd, _ := src.BlockDataAt(sx, sy, sz)
					c.blocks[base+y] = bt
					c.data[base+y] = sd & 0x0F
				}
			}
		}
		return c.ChunkChanged(true)
	})
}

// SaveInPlace saves every present chunk (Save itself skips clean ones)
// and persists level.dat. It returns the number of chunks that were
// actually dirty. Per-chunk failures are logged and joined; the sweep
// continues past them.
func (w *World) SaveInPlace() (int, error) {
	dirty := 0
	var errs []error
	for _, pos := range w.PresentChunks() {
		c := w.chunks[pos]
		if c.dirty {
			dirty++
		}
		if err := c.Save(); err != nil {
			w.log.Warn("failed to save chunk", "cx", pos.X, "cz", pos.Z, "error", err)
			errs = append(errs, err)
		}
	}
	if err := w.saveLevelDat(); err != nil {
		errs = append(errs, err)
	}
	w.log.Info("saved world", "dirty_chunks", dirty, "chunks", len(w.chunks))
	return dirty, errors.Join(errs...)
}

// BlockAt returns the block id at a world coordinate, loading the
// owning chunk. Heights outside the world return 0 with no error.
func (w *World) BlockAt(x, y, z int) (byte, error) {
	if y < 0 || y >= w.height {
		return 0, nil
	}
	c, err := w.Chunk(x>>4, z>>4)
	if err != nil {
		return 0, err
	}
	return c.blocks[c.index(x&0xF, z&0xF, y)], nil
}

// SetBlockAt writes a block id at a world coordinate. It does not mark
// the chunk changed; batch mutations and call MarkDirtyChunk after.
// Heights outside the world are silent no-ops.
func (w *World) SetBlockAt(x, y, z int, id byte) error {
	if y < 0 || y >= w.height {
		return nil
	}
	c, err := w.Chunk(x>>4, z>>4)
	if err != nil {
		return err
	}
	c.blocks[c.index(x&0xF, z&0xF, y)] = id
	return nil
}

// BlockDataAt returns the 4-bit data value at a world coordinate.
func (w *World) BlockDataAt(x, y, z int) (byte, error) {
	if y < 0 || y >= w.height {
		return 0, nil
	}
	c, err := w.Chunk(x>>4, z>>4)
	if err != nil {
		return 0, err
	}
	return c.data[c.index(x&0xF, z&0xF, y)], nil
}

// SetBlockDataAt writes the 4-bit data value at a world coordinate.
// Like SetBlockAt, it does not mark the chunk changed.
func (w *World) SetBlockDataAt(x, y, z int, v byte) error {
	if y < 0 || y >= w.height {
		return nil
	}
	c, err := w.Chunk(x>>4, z>>4)
	if err != nil {
		return err
	}
	c.data[c.index(x&0xF, z&0xF, y)] = v & 0x0F
	return nil
}

// BlockLightAt returns the block-light level at a world coordinate.
func (w *World) BlockLightAt(x, y, z int) (byte, error) {
	if y < 0 || y >= w.height {
		return 0, nil
	}
	c, err := w.Chunk(x>>4, z>>4)
	if err != nil {
		return 0, err
	}
	return c.blockLight[c.index(x&0xF, z&0xF, y)], nil
}

// SkyLightAt returns the sky-light level at a world coordinate.
func (w *World) SkyLightAt(x, y, z int) (byte, error) {
	if y < 0 || y >= w.height {
		return 0, nil
	}
	c, err := w.Chunk(x>>4, z>>4)
	if err != nil {
		return 0, err
	}
	return c.skyLight[c.index(x&0xF, z&0xF, y)], nil
}

// SetSkyLightAt raises the sky-light level at a world coordinate to
// the given value if it is higher, reporting whether it was raised.
// Light only ever increases mid-relaxation.
func (w *World) SetSkyLightAt(x, y, z int, v byte) (bool, error) {
	if y < 0 || y >= w.height {
		return false, nil
	}
	c, err := w.Chunk(x>>4, z>>4)
	if err != nil {
		return false, err
	}
	i := c.index(x&0xF, z&0xF, y)
	if c.skyLight[i] < v {
		c.skyLight[i] = v
		return true, nil
	}
	return false, nil
}

// HeightMapAt returns the cached column height at a world coordinate.
func (w *World) HeightMapAt(x, z int) (byte, error) {
	c, err := w.Chunk(x>>4, z>>4)
	if err != nil {
		return 0, err
	}
	return c.heightMap[(z&0xF)*16+(x&0xF)], nil
}
