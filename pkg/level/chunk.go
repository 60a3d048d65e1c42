package level

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/OCharnyshevich/mclevel/pkg/material"
	"github.com/OCharnyshevich/mclevel/pkg/nbt"
)

// ChunkPos identifies a chunk column by its chunk coordinates
// (world coordinates >> 4).
type ChunkPos struct {
	X, Z int
}

// chunkState is the chunk's load lifecycle. A chunk moves
// unloaded -> compressed -> loaded as data is read and materialized,
// and back to compressed when Compress discards the array form.
type chunkState uint8

const (
	stateUnloaded chunkState = iota
	stateCompressed
	stateLoaded
)

// Chunk is one 16x16xHeight vertical column of world data, the unit of
// file storage and lighting.
//
// The block, data and light arrays are flat byte slices in (x, z, y)
// order with y varying fastest, matching the on-disk layout. The data,
// block-light and sky-light fields hold one 4-bit value per cell,
// unpacked to a byte per cell in memory and packed two-per-byte on disk.
// The height map is indexed [z*16+x], as on disk.
type Chunk struct {
	pos    ChunkPos
	path   string
	height int
	mats   *material.Table

	state      chunkState
	compressed []byte

	blocks     []byte
	data       []byte
	blockLight []byte
	skyLight   []byte
	heightMap  []byte

	entities     []nbt.Compound
	tileEntities []nbt.Compound

	terrainPopulated byte
	lastUpdate       int32

	dirty            bool // serialized form differs from the file on disk
	needsCompression bool // arrays changed since the blob was last built
	needsLighting    bool // height map seeded only; full relaxation pending
}

// X returns the chunk's X coordinate.
func (c *Chunk) X() int { return c.pos.X }

// Z returns the chunk's Z coordinate.
func (c *Chunk) Z() int { return c.pos.Z }

// Pos returns the chunk's coordinates.
func (c *Chunk) Pos() ChunkPos { return c.pos }

// Dirty reports whether the chunk needs a disk write.
func (c *Chunk) Dirty() bool { return c.dirty }

// NeedsLighting reports whether the chunk's light fields are stale.
func (c *Chunk) NeedsLighting() bool { return c.needsLighting }

// index converts local chunk coordinates to a flat array index.
func (c *Chunk) index(x, z, y int) int {
	return (x*16+z)*c.height + y
}

// Blocks returns the live block-id array. Callers that mutate it must
// call ChunkChanged afterward. The chunk must be loaded.
func (c *Chunk) Blocks() []byte { return c.blocks }

// Data returns the live block-data array (unpacked, one byte per cell).
func (c *Chunk) Data() []byte { return c.data }

// BlockLight returns the live block-light array.
func (c *Chunk) BlockLight() []byte { return c.blockLight }

// SkyLight returns the live sky-light array.
func (c *Chunk) SkyLight() []byte { return c.skyLight }

// HeightMap returns the live height map, indexed [z*16+x].
func (c *Chunk) HeightMap() []byte { return c.heightMap }

// Entities returns the chunk's entity tags.
func (c *Chunk) Entities() []nbt.Compound { return c.entities }

// TileEntities returns the chunk's block-entity tags.
func (c *Chunk) TileEntities() []nbt.Compound { return c.tileEntities }

// AddEntity appends an entity tag to the chunk. The chunk must be
// loaded, or the next decompression replaces the list.
func (c *Chunk) AddEntity(tag nbt.Compound) { c.entities = append(c.entities, tag) }

// AddTileEntity appends a block-entity tag to the chunk. Same loading
// requirement as AddEntity.
func (c *Chunk) AddTileEntity(tag nbt.Compound) { c.tileEntities = append(c.tileEntities, tag) }

// Block returns the block id at local coordinates. The chunk must be
// loaded.
func (c *Chunk) Block(x, z, y int) byte { return c.blocks[c.index(x, z, y)] }

// SetBlock writes a block id at local coordinates without marking the
// chunk changed; call ChunkChanged when the mutation batch is done.
func (c *Chunk) SetBlock(x, z, y int, id byte) { c.blocks[c.index(x, z, y)] = id }

// create materializes a fresh chunk with zero-filled arrays and default
// metadata, makes its hashed directories, and writes the initial file.
func (c *Chunk) create() error {
	n := 16 * 16 * c.height
	c.blocks = make([]byte, n)
	c.data = make([]byte, n)
	c.blockLight = make([]byte, n)
	c.skyLight = make([]byte, n)
	c.heightMap = make([]byte, 256)
	c.entities = nil
	c.tileEntities = nil
	c.terrainPopulated = 1
	c.lastUpdate = 0
	c.state = stateLoaded
	c.dirty = true
	c.needsCompression = true

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create chunk directories: %w", err)
	}
	return c.Save()
}

// Load ensures the chunk's arrays are materialized, reading the chunk
// file if no compressed blob is cached. Any failure is reported as
// ErrChunkMalformed; the caller must treat the chunk as not loadable.
func (c *Chunk) Load() error {
	if c.state == stateLoaded {
		return nil
	}
	if c.compressed == nil {
		blob, err := os.ReadFile(c.path)
		if err != nil {
			return fmt.Errorf("%w: chunk (%d,%d): %v", ErrChunkMalformed, c.pos.X, c.pos.Z, err)
		}
		c.compressed = blob
		c.state = stateCompressed
	}
	return c.Decompress()
}

// Decompress materializes the arrays from the cached compressed blob.
// It is idempotent: a no-op when already loaded or when no blob exists.
func (c *Chunk) Decompress() error {
	if c.state == stateLoaded || c.compressed == nil {
		return nil
	}
	if err := c.unmarshal(c.compressed); err != nil {
		return fmt.Errorf("%w: chunk (%d,%d): %v", ErrChunkMalformed, c.pos.X, c.pos.Z, err)
	}
	c.state = stateLoaded
	return nil
}

// Compress rebuilds the compressed blob if the arrays changed (or no
// blob is cached), then discards the array form. Idempotent: a no-op
// when nothing is materialized.
func (c *Chunk) Compress() error {
	if c.state != stateLoaded {
		return nil
	}
	if c.needsCompression || c.compressed == nil {
		blob, err := c.marshal()
		if err != nil {
			return fmt.Errorf("compress chunk (%d,%d): %w", c.pos.X, c.pos.Z, err)
		}
		c.compressed = blob
		c.needsCompression = false
	}
	c.blocks = nil
	c.data = nil
	c.blockLight = nil
	c.skyLight = nil
	c.heightMap = nil
	c.state = stateCompressed
	return nil
}

// ChunkChanged marks the chunk dirty after a mutation, recomputes the
// height map, and (when recalculateLighting is set) seeds a fast
// single-column light estimate so immediate reads are plausible before
// the full lighting pass runs. A no-op on an unloaded chunk with no
// cached blob.
func (c *Chunk) ChunkChanged(recalculateLighting bool) error {
	if c.state != stateLoaded && c.compressed == nil {
		return nil
	}
	c.needsCompression = true
	c.dirty = true
	c.needsLighting = true
	if err := c.GenerateHeightMap(); err != nil {
		return err
	}
	if recalculateLighting {
		c.genFastLights()
	}
	return nil
}

// GenerateHeightMap recomputes the per-column height map: one plus the
// highest y whose block absorbs light, or zero for columns with no
// absorbing block. Loads the chunk if needed.
func (c *Chunk) GenerateHeightMap() error {
	if err := c.Load(); err != nil {
		return err
	}
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			col := c.blocks[c.index(x, z, 0) : c.index(x, z, 0)+c.height]
			h := 0
			for y := c.height - 1; y >= 0; y-- {
				if c.mats.LightAbsorption(col[y]) != 0 {
					h = y + 1
					break
				}
			}
			c.heightMap[z*16+x] = byte(h)
		}
	}
	return nil
}

// genFastLights seeds the sky-light field from the height map: full
// brightness from the height map up, and a decaying column scan below
// it. The full relaxation pass refines this later.
func (c *Chunk) genFastLights() {
	clear(c.skyLight)
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			base := c.index(x, z, 0)
			hm := int(c.heightMap[z*16+x])
			for y := hm; y < c.height; y++ {
				c.skyLight[base+y] = 15
			}
			lv := 15
			for y := hm - 1; y >= 0; y-- {
				lv -= max(int(c.mats.LightAbsorption(c.blocks[base+y])), 1)
				if lv <= 0 {
					break
				}
				c.skyLight[base+y] = byte(lv)
			}
		}
	}
}

// Save compresses the chunk and, if dirty, writes the blob to the chunk
// file. The previous file is renamed to a .old sibling first and
// restored if the write fails; a restore failure is reported as fatal
// for this chunk and is not retried.
func (c *Chunk) Save() error {
	if err := c.Compress(); err != nil {
		return err
	}
	if !c.dirty {
		return nil
	}

	backup := c.path + ".old"
	hasBackup := os.Rename(c.path, backup) == nil

	if err := os.WriteFile(c.path, c.compressed, 0o644); err != nil {
		if hasBackup {
			if rerr := os.Rename(backup, c.path); rerr != nil {
				return fmt.Errorf("write chunk (%d,%d): %v; backup not restored: %w",
					c.pos.X, c.pos.Z, err, rerr)
			}
		}
		return fmt.Errorf("write chunk (%d,%d): %w", c.pos.X, c.pos.Z, err)
	}
	if hasBackup {
		os.Remove(backup)
	}
	c.dirty = false
	return nil
}

// remove deletes the backing file and clears all in-memory state.
func (c *Chunk) remove() error {
	err := os.Remove(c.path)
	c.compressed = nil
	c.blocks = nil
	c.data = nil
	c.blockLight = nil
	c.skyLight = nil
	c.heightMap = nil
	c.entities = nil
	c.tileEntities = nil
	c.state = stateUnloaded
	c.dirty = false
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove chunk (%d,%d): %w", c.pos.X, c.pos.Z, err)
	}
	return nil
}

// marshal serializes the chunk to a gzip-compressed tag tree, packing
// the nibble fields back to two cells per byte.
func (c *Chunk) marshal() ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	w := nbt.NewWriter(gz)

	w.BeginCompound("")
	w.BeginCompound("Level")
	w.WriteTagByte("TerrainPopulated", c.terrainPopulated)
	w.WriteInt("xPos", int32(c.pos.X))
	w.WriteInt("zPos", int32(c.pos.Z))
	w.WriteInt("LastUpdate", c.lastUpdate)
	w.WriteByteArray("Blocks", c.blocks)
	w.WriteByteArray("Data", packNibbles(c.data))
	w.WriteByteArray("BlockLight", packNibbles(c.blockLight))
	w.WriteByteArray("SkyLight", packNibbles(c.skyLight))
	w.WriteByteArray("HeightMap", c.heightMap)
	writeCompoundList(w, "Entities", c.entities)
	writeCompoundList(w, "TileEntities", c.tileEntities)
	w.EndCompound()
	w.EndCompound()

	if err := w.Err(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unmarshal parses a gzip-compressed tag tree into the chunk's arrays,
// unpacking the nibble fields to one byte per cell.
func (c *Chunk) unmarshal(blob []byte) error {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	root, err := nbt.Parse(gz)
	if err != nil {
		return fmt.Errorf("parse tag tree: %w", err)
	}
	lvl, ok := root.Compound("Level")
	if !ok {
		return fmt.Errorf("missing Level compound")
	}

	xPos, ok := lvl.Int("xPos")
	if !ok {
		return fmt.Errorf("missing xPos")
	}
	zPos, ok := lvl.Int("zPos")
	if !ok {
		return fmt.Errorf("missing zPos")
	}
	if int(xPos) != c.pos.X || int(zPos) != c.pos.Z {
		return fmt.Errorf("file identifies as chunk (%d,%d)", xPos, zPos)
	}

	n := 16 * 16 * c.height
	blocks, ok := lvl.ByteArray("Blocks")
	if !ok || len(blocks) != n {
		return fmt.Errorf("Blocks array missing or misshapen")
	}
	heightMap, ok := lvl.ByteArray("HeightMap")
	if !ok || len(heightMap) != 256 {
		return fmt.Errorf("HeightMap array missing or misshapen")
	}

	unpack := func(name string) ([]byte, error) {
		packed, ok := lvl.ByteArray(name)
		if !ok || len(packed) != n/2 {
			return nil, fmt.Errorf("%s array missing or misshapen", name)
		}
		return unpackNibbles(packed), nil
	}
	data, err := unpack("Data")
	if err != nil {
		return err
	}
	blockLight, err := unpack("BlockLight")
	if err != nil {
		return err
	}
	skyLight, err := unpack("SkyLight")
	if err != nil {
		return err
	}

	c.blocks = blocks
	c.data = data
	c.blockLight = blockLight
	c.skyLight = skyLight
	c.heightMap = heightMap
	c.entities = lvl.CompoundList("Entities")
	c.tileEntities = lvl.CompoundList("TileEntities")
	c.terrainPopulated, _ = lvl.Byte("TerrainPopulated")
	c.lastUpdate, _ = lvl.Int("LastUpdate")
	return nil
}

// unpackNibbles expands two 4-bit cells per byte to one byte per cell.
// The low nibble is the even cell, the high nibble the next cell up.
func unpackNibbles(packed []byte) []byte {
	out := make([]byte, len(packed)*2)
	for i, b := range packed {
		out[i*2] = b & 0x0F
		out[i*2+1] = b >> 4
	}
	return out
}

// packNibbles is the inverse of unpackNibbles: two consecutive cells
// fold into one byte, low cell in the low nibble.
func packNibbles(unpacked []byte) []byte {
	out := make([]byte, len(unpacked)/2)
	for i := range out {
		out[i] = unpacked[i*2]&0x0F | unpacked[i*2+1]<<4
	}
	return out
}

// writeCompoundList writes an entity-style list of compound tags.
func writeCompoundList(w *nbt.Writer, name string, items []nbt.Compound) {
	l := nbt.List{ElemType: nbt.TagCompound, Items: make([]any, len(items))}
	for i, item := range items {
		l.Items[i] = item
	}
	if len(items) == 0 {
		l.ElemType = nbt.TagByte
	}
	w.WriteList(name, l)
}
