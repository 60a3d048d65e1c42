package level

import "testing"

func TestBoundingBoxEdges(t *testing.T) {
	b := NewBoundingBox(-8, 0, 16, 24, 128, 10)

	if b.MinX() != -8 || b.MaxX() != 16 {
		t.Errorf("X edges = [%d,%d), want [-8,16)", b.MinX(), b.MaxX())
	}
	if b.MinY() != 0 || b.MaxY() != 128 {
		t.Errorf("Y edges = [%d,%d), want [0,128)", b.MinY(), b.MaxY())
	}
	if b.Width() != 24 || b.Height() != 128 || b.Length() != 10 {
		t.Errorf("size = %dx%dx%d", b.Width(), b.Height(), b.Length())
	}
}

func TestNegativeSizeClamped(t *testing.T) {
	b := NewBoundingBox(0, 0, 0, -5, 10, -1)
	if b.Width() != 0 || b.Length() != 0 {
		t.Errorf("negative sizes not clamped: %dx%dx%d", b.Width(), b.Height(), b.Length())
	}
	if b.Volume() != 0 {
		t.Errorf("volume = %d, want 0", b.Volume())
	}
}

func TestSettersPreserveOppositeEdge(t *testing.T) {
	b := NewBoundingBox(0, 0, 0, 16, 16, 16)

	b.SetMinX(4)
	if b.MinX() != 4 || b.MaxX() != 16 {
		t.Errorf("after SetMinX(4): [%d,%d), want [4,16)", b.MinX(), b.MaxX())
	}

	b.SetMaxY(8)
	if b.MinY() != 0 || b.MaxY() != 8 {
		t.Errorf("after SetMaxY(8): [%d,%d), want [0,8)", b.MinY(), b.MaxY())
	}

	// Driving the max below the min clamps size to zero, never negative.
	b.SetMaxZ(-100)
	if b.Length() != 0 || b.MaxZ() != b.MinZ() {
		t.Errorf("after SetMaxZ(-100): length = %d, edges [%d,%d)", b.Length(), b.MinZ(), b.MaxZ())
	}

	b.SetMinX(100)
	if b.Width() != 0 || b.MinX() != 100 {
		t.Errorf("after SetMinX(100): width = %d, min = %d", b.Width(), b.MinX())
	}
}

func TestContains(t *testing.T) {
	b := NewBoundingBox(0, 0, 0, 16, 128, 16)

	cases := []struct {
		x, y, z int
		want    bool
	}{
		{0, 0, 0, true},
		{15, 127, 15, true},
		{16, 0, 0, false}, // max edge is exclusive
		{0, 128, 0, false},
		{-1, 0, 0, false},
	}
	for _, c := range cases {
		if got := b.Contains(c.x, c.y, c.z); got != c.want {
			t.Errorf("Contains(%d,%d,%d) = %v, want %v", c.x, c.y, c.z, got, c.want)
		}
	}
}

func TestChunkRange(t *testing.T) {
	cases := []struct {
		box                        BoundingBox
		minCx, minCz, maxCx, maxCz int
	}{
		{NewBoundingBox(0, 0, 0, 16, 128, 16), 0, 0, 1, 1},
		{NewBoundingBox(0, 0, 0, 17, 128, 1), 0, 0, 2, 1},
		{NewBoundingBox(-8, 0, -8, 16, 128, 16), -1, -1, 1, 1},
		{NewBoundingBox(-32, 0, 0, 32, 128, 16), -2, 0, 0, 1},
	}
	for _, c := range cases {
		minCx, minCz, maxCx, maxCz := c.box.ChunkRange()
		if minCx != c.minCx || minCz != c.minCz || maxCx != c.maxCx || maxCz != c.maxCz {
			t.Errorf("ChunkRange(%+v) = (%d,%d,%d,%d), want (%d,%d,%d,%d)",
				c.box, minCx, minCz, maxCx, maxCz, c.minCx, c.minCz, c.maxCx, c.maxCz)
		}
	}
}

func TestForEachChunkPosition(t *testing.T) {
	b := NewBoundingBox(0, 0, 0, 33, 128, 17)

	var got []ChunkPos
	b.ForEachChunkPosition(func(cx, cz int) {
		got = append(got, ChunkPos{X: cx, Z: cz})
	})

	want := []ChunkPos{
		{0, 0}, {0, 1},
		{1, 0}, {1, 1},
		{2, 0}, {2, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("visited %d positions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestIsChunkAligned(t *testing.T) {
	if !NewBoundingBox(16, 5, -32, 1, 1, 1).IsChunkAligned() {
		t.Error("(16,-32) origin should be chunk aligned")
	}
	if NewBoundingBox(15, 0, 0, 1, 1, 1).IsChunkAligned() {
		t.Error("(15,0) origin should not be chunk aligned")
	}
}
