package level

import (
	"sort"

	"github.com/OCharnyshevich/mclevel/pkg/material"
)

// lightPasses bounds relaxation per invocation: light travels at most
// one cell per pass, so 16 passes cover one chunk width. Wider darkness
// converges across repeated invocations.
const lightPasses = 16

// lightView is a chunk's arrays for one light channel. A view with a
// nil chunk is the synthetic zero chunk standing in for coordinates
// outside the store.
type lightView struct {
	c      *Chunk
	blocks []byte
	light  []byte
}

// zeroChunk backs neighbor lookups at world edges: all-air blocks and a
// scratch light buffer that outward propagation writes into and that is
// reset after each direction so it never leaks light between unrelated
// chunk pairs.
type zeroChunk struct {
	blocks []byte
	light  []byte
	used   bool
}

func newZeroChunk(height int) *zeroChunk {
	n := 16 * 16 * height
	return &zeroChunk{blocks: make([]byte, n), light: make([]byte, n)}
}

func (z *zeroChunk) view() lightView {
	z.used = true
	return lightView{blocks: z.blocks, light: z.light}
}

func (z *zeroChunk) reset() {
	if z.used {
		clear(z.light)
		z.used = false
	}
}

// GenerateLights relaxes block-light and sky-light across the given
// chunks and their lateral neighbors. A nil argument selects every
// chunk whose needsLighting flag is set; an explicit list is
// intersected with the present chunks. Each invocation runs a bounded
// number of relaxation passes and clears needsLighting on the chunks it
// processed.
func (w *World) GenerateLights(dirtyChunks []ChunkPos) error {
	var positions []ChunkPos
	if dirtyChunks == nil {
		for pos, c := range w.chunks {
			if c.needsLighting {
				positions = append(positions, pos)
			}
		}
	} else {
		for _, pos := range dirtyChunks {
			if _, ok := w.chunks[pos]; ok {
				positions = append(positions, pos)
			}
		}
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].X != positions[j].X {
			return positions[i].X < positions[j].X
		}
		return positions[i].Z < positions[j].Z
	})

	work := make([]*Chunk, 0, len(positions))
	for _, pos := range positions {
		c, err := w.Chunk(pos.X, pos.Z)
		if err != nil {
			w.log.Warn("skipping unlightable chunk", "cx", pos.X, "cz", pos.Z, "error", err)
			continue
		}
		if err := c.ChunkChanged(true); err != nil {
			return err
		}
		work = append(work, c)
	}
	if len(work) == 0 {
		return nil
	}
	w.log.Info("relighting chunks", "count", len(work), "passes", lightPasses)

	la := w.mats.AbsorptionTable()
	la[material.LeavesID] = 0
	em := w.mats.EmissionTable()

	for _, c := range work {
		for i, id := range c.blocks {
			c.blockLight[i] = em[id]
		}
	}

	zero := newZeroChunk(w.height)
	channels := []func(c *Chunk) []byte{
		func(c *Chunk) []byte { return c.blockLight },
		func(c *Chunk) []byte { return c.skyLight },
	}
	for _, sel := range channels {
		for pass := 0; pass < lightPasses; pass++ {
			for _, c := range work {
				w.relaxChunk(c, sel, zero, &la)
			}
		}
	}

	for _, c := range work {
		c.needsLighting = false
	}
	return nil
}

// lightNeighbor resolves the chunk at a neighbor coordinate for one
// light channel. Coordinates outside the store yield the zero chunk.
// A present chunk that fails to load yields ok=false and the direction
// is skipped.
func (w *World) lightNeighbor(cx, cz int, sel func(c *Chunk) []byte, zero *zeroChunk) (lightView, bool) {
	if !w.ContainsChunk(cx, cz) {
		return zero.view(), true
	}
	n, err := w.Chunk(cx, cz)
	if err != nil {
		// Present but unloadable: skip the direction, lighting at this
		// boundary stays incomplete until the chunk is repaired.
		return lightView{}, false
	}
	return lightView{c: n, blocks: n.blocks, light: sel(n)}, true
}

// relaxChunk runs one relaxation pass over one chunk: for each lateral
// axis it exchanges edge light with both neighbors and shifts light
// through the chunk body one cell in each direction, then relaxes
// vertically within the chunk. All merges are max-only with a per-cell
// absorption plus flat 1 falloff at the destination.
func (w *World) relaxChunk(c *Chunk, sel func(c *Chunk) []byte, zero *zeroChunk, la *[256]byte) {
	h := c.height
	self := lightView{c: c, blocks: c.blocks, light: sel(c)}

	minus, minusOK := w.lightNeighbor(c.pos.X-1, c.pos.Z, sel, zero)
	plus, plusOK := w.lightNeighbor(c.pos.X+1, c.pos.Z, sel, zero)
	if minusOK {
		spreadPlaneX(self, 0, minus, 15, h, la)
	}
	for x := 0; x < 15; x++ {
		spreadPlaneX(self, x+1, self, x, h, la)
	}
	if plusOK {
		spreadPlaneX(plus, 0, self, 15, h, la)
		spreadPlaneX(self, 15, plus, 0, h, la)
	}
	for x := 15; x >= 1; x-- {
		spreadPlaneX(self, x-1, self, x, h, la)
	}
	if minusOK {
		spreadPlaneX(minus, 15, self, 0, h, la)
	}
	zero.reset()

	minus, minusOK = w.lightNeighbor(c.pos.X, c.pos.Z-1, sel, zero)
	plus, plusOK = w.lightNeighbor(c.pos.X, c.pos.Z+1, sel, zero)
	if minusOK {
		spreadPlaneZ(self, 0, minus, 15, h, la)
	}
	for z := 0; z < 15; z++ {
		spreadPlaneZ(self, z+1, self, z, h, la)
	}
	if plusOK {
		spreadPlaneZ(plus, 0, self, 15, h, la)
		spreadPlaneZ(self, 15, plus, 0, h, la)
	}
	for z := 15; z >= 1; z-- {
		spreadPlaneZ(self, z-1, self, z, h, la)
	}
	if minusOK {
		spreadPlaneZ(minus, 15, self, 0, h, la)
	}
	zero.reset()

	spreadVertical(self, h, la)
}

// spreadPlaneX propagates light from the source view's x-plane sx into
// the destination view's x-plane dx. Loop order within a plane is
// irrelevant; across planes the callers order destinations so that each
// cell is read before it is written, keeping propagation to one cell
// per pass. Destination chunks that gain light are marked for
// recompression.
func spreadPlaneX(src lightView, sx int, dst lightView, dx int, h int, la *[256]byte) {
	changed := false
	for z := 0; z < 16; z++ {
		sBase := (sx*16 + z) * h
		dBase := (dx*16 + z) * h
		for y := 0; y < h; y++ {
			v := int(src.light[sBase+y]) - int(la[dst.blocks[dBase+y]]) - 1
			if v > 0 && byte(v) > dst.light[dBase+y] {
				dst.light[dBase+y] = byte(v)
				changed = true
			}
		}
	}
	if changed {
		markLightSpill(dst.c)
	}
}

// spreadPlaneZ is spreadPlaneX along the Z axis: z-plane sz into z-plane dz.
func spreadPlaneZ(src lightView, sz int, dst lightView, dz int, h int, la *[256]byte) {
	changed := false
	for x := 0; x < 16; x++ {
		sBase := (x*16 + sz) * h
		dBase := (x*16 + dz) * h
		for y := 0; y < h; y++ {
			v := int(src.light[sBase+y]) - int(la[dst.blocks[dBase+y]]) - 1
			if v > 0 && byte(v) > dst.light[dBase+y] {
				dst.light[dBase+y] = byte(v)
				changed = true
			}
		}
	}
	if changed {
		markLightSpill(dst.c)
	}
}

// spreadVertical relaxes light up and down within the chunk. Height is
// never chunked, so there is no neighbor exchange. Upward writes run
// top-down and downward writes bottom-up so each cell is read before it
// is written.
func spreadVertical(v lightView, h int, la *[256]byte) {
	for col := 0; col < 256; col++ {
		base := col * h
		for y := h - 1; y >= 1; y-- {
			lv := int(v.light[base+y-1]) - int(la[v.blocks[base+y]]) - 1
			if lv > 0 && byte(lv) > v.light[base+y] {
				v.light[base+y] = byte(lv)
			}
		}
		for y := 0; y < h-1; y++ {
			lv := int(v.light[base+y+1]) - int(la[v.blocks[base+y]]) - 1
			if lv > 0 && byte(lv) > v.light[base+y] {
				v.light[base+y] = byte(lv)
			}
		}
	}
}

// markLightSpill flags a chunk whose light arrays changed through
// neighbor propagation. The zero chunk has no backing chunk to mark.
func markLightSpill(c *Chunk) {
	if c == nil {
		return
	}
	c.dirty = true
	if c.state == stateLoaded {
		c.needsCompression = true
	}
}
