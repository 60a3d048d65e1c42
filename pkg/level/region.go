package level

// BoundingBox is an axis-aligned integer box over world coordinates,
// used to address multi-chunk operations. Intervals are half-open on
// every axis: min <= v < max.
type BoundingBox struct {
	ox, oy, oz int
	sx, sy, sz int
}

// NewBoundingBox creates a box from its origin corner and size.
// Negative size components are clamped to zero.
func NewBoundingBox(originX, originY, originZ, width, height, length int) BoundingBox {
	return BoundingBox{
		ox: originX, oy: originY, oz: originZ,
		sx: max(width, 0), sy: max(height, 0), sz: max(length, 0),
	}
}

// Min edge accessors.
func (b BoundingBox) MinX() int { return b.ox }
func (b BoundingBox) MinY() int { return b.oy }
func (b BoundingBox) MinZ() int { return b.oz }

// Max edge accessors: origin plus size.
func (b BoundingBox) MaxX() int { return b.ox + b.sx }
func (b BoundingBox) MaxY() int { return b.oy + b.sy }
func (b BoundingBox) MaxZ() int { return b.oz + b.sz }

// Size accessors. Width is the X extent, Height the Y extent, Length
// the Z extent.
func (b BoundingBox) Width() int  { return b.sx }
func (b BoundingBox) Height() int { return b.sy }
func (b BoundingBox) Length() int { return b.sz }

// SetMinX moves the minimum X edge, preserving the maximum edge. Moving
// the minimum past the maximum clamps the size to zero.
func (b *BoundingBox) SetMinX(x int) {
	b.sx = max(b.sx-(x-b.ox), 0)
	b.ox = x
}

// SetMinY moves the minimum Y edge, preserving the maximum edge.
func (b *BoundingBox) SetMinY(y int) {
	b.sy = max(b.sy-(y-b.oy), 0)
	b.oy = y
}

// SetMinZ moves the minimum Z edge, preserving the maximum edge.
func (b *BoundingBox) SetMinZ(z int) {
	b.sz = max(b.sz-(z-b.oz), 0)
	b.oz = z
}

// SetMaxX moves the maximum X edge, preserving the minimum edge. Values
// below the minimum clamp the size to zero.
func (b *BoundingBox) SetMaxX(x int) { b.sx = max(x-b.ox, 0) }

// SetMaxY moves the maximum Y edge, preserving the minimum edge.
func (b *BoundingBox) SetMaxY(y int) { b.sy = max(y-b.oy, 0) }

// SetMaxZ moves the maximum Z edge, preserving the minimum edge.
func (b *BoundingBox) SetMaxZ(z int) { b.sz = max(z-b.oz, 0) }

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(x, y, z int) bool {
	if x < b.MinX() || x >= b.MaxX() {
		return false
	}
	if y < b.MinY() || y >= b.MaxY() {
		return false
	}
	if z < b.MinZ() || z >= b.MaxZ() {
		return false
	}
	return true
}

// Volume returns the number of cells in the box.
func (b BoundingBox) Volume() int64 {
	return int64(b.sx) * int64(b.sy) * int64(b.sz)
}

// IsChunkAligned reports whether the origin sits on a chunk corner.
func (b BoundingBox) IsChunkAligned() bool {
	return b.ox&0xF == 0 && b.oz&0xF == 0
}

// ChunkRange returns the chunk coordinates spanned by the box's X/Z
// extent as half-open ranges [minCx, maxCx) and [minCz, maxCz).
func (b BoundingBox) ChunkRange() (minCx, minCz, maxCx, maxCz int) {
	minCx = b.ox >> 4
	minCz = b.oz >> 4
	maxCx = ((b.ox+b.sx-1)>>4 + 1)
	maxCz = ((b.oz+b.sz-1)>>4 + 1)
	return
}

// ForEachChunkPosition calls fn for every chunk coordinate whose 16x16
// footprint intersects the box's X/Z extent, row-major with cx as the
// outer axis.
func (b BoundingBox) ForEachChunkPosition(fn func(cx, cz int)) {
	minCx, minCz, maxCx, maxCz := b.ChunkRange()
	for cx := minCx; cx < maxCx; cx++ {
		for cz := minCz; cz < maxCz; cz++ {
			fn(cx, cz)
		}
	}
}
