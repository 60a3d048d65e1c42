package level

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OCharnyshevich/mclevel/pkg/nbt"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := Create(t.TempDir(), 42, testLogger(t))
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	return w
}

func TestNibblePackRoundTrip(t *testing.T) {
	cells := []byte{0, 15, 7, 8, 1, 14, 3, 12}
	packed := packNibbles(cells)
	if len(packed) != 4 {
		t.Fatalf("packed length = %d, want 4", len(packed))
	}
	// Low nibble holds the even cell.
	if packed[0] != 0xF0 {
		t.Errorf("packed[0] = 0x%02X, want 0xF0", packed[0])
	}
	got := unpackNibbles(packed)
	for i := range cells {
		if got[i] != cells[i] {
			t.Errorf("cell %d = %d, want %d", i, got[i], cells[i])
		}
	}
}

func TestCreateChunkDefaults(t *testing.T) {
	w := newTestWorld(t)
	c, err := w.CreateChunk(3, -2)
	if err != nil {
		t.Fatalf("create chunk: %v", err)
	}
	if c.X() != 3 || c.Z() != -2 {
		t.Errorf("chunk coords = (%d,%d), want (3,-2)", c.X(), c.Z())
	}
	if _, err := os.Stat(w.ChunkFileName(3, -2)); err != nil {
		t.Errorf("initial save missing: %v", err)
	}
	if _, err := w.CreateChunk(3, -2); err == nil {
		t.Error("second create at same coords should fail")
	}
}

func TestChunkPersistsThroughSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir, 1, testLogger(t))
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	if _, err := w.CreateChunk(0, 0); err != nil {
		t.Fatalf("create chunk: %v", err)
	}
	if err := w.SetBlockAt(5, 64, 9, 49); err != nil {
		t.Fatalf("set block: %v", err)
	}
	if err := w.SetBlockDataAt(5, 64, 9, 3); err != nil {
		t.Fatalf("set data: %v", err)
	}
	if err := w.MarkDirtyChunk(0, 0); err != nil {
		t.Fatalf("mark dirty: %v", err)
	}
	if _, err := w.SaveInPlace(); err != nil {
		t.Fatalf("save: %v", err)
	}

	w2, err := Open(dir, testLogger(t))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got, err := w2.BlockAt(5, 64, 9); err != nil || got != 49 {
		t.Errorf("BlockAt = %d, %v, want 49", got, err)
	}
	if got, err := w2.BlockDataAt(5, 64, 9); err != nil || got != 3 {
		t.Errorf("BlockDataAt = %d, %v, want 3", got, err)
	}
}

func TestCompressDiscardsAndReloads(t *testing.T) {
	w := newTestWorld(t)
	if _, err := w.CreateChunk(0, 0); err != nil {
		t.Fatalf("create chunk: %v", err)
	}
	if err := w.SetBlockAt(1, 2, 3, 20); err != nil {
		t.Fatalf("set block: %v", err)
	}
	if err := w.MarkDirtyChunk(0, 0); err != nil {
		t.Fatalf("mark dirty: %v", err)
	}
	if err := w.CompressChunk(0, 0); err != nil {
		t.Fatalf("compress: %v", err)
	}
	// Reads after compression transparently decompress the cached blob.
	if got, err := w.BlockAt(1, 2, 3); err != nil || got != 20 {
		t.Errorf("BlockAt after compress = %d, %v, want 20", got, err)
	}
}

func TestGenerateHeightMap(t *testing.T) {
	w := newTestWorld(t)
	if _, err := w.CreateChunk(0, 0); err != nil {
		t.Fatalf("create chunk: %v", err)
	}
	if err := w.SetBlockAt(3, 10, 4, 1); err != nil { // stone
		t.Fatalf("set block: %v", err)
	}
	if err := w.SetBlockAt(3, 20, 4, 20); err != nil { // glass filters nothing
		t.Fatalf("set block: %v", err)
	}
	if err := w.MarkDirtyChunk(0, 0); err != nil {
		t.Fatalf("mark dirty: %v", err)
	}

	// Height is one above the topmost absorbing block; glass does not count.
	if got, err := w.HeightMapAt(3, 4); err != nil || got != 11 {
		t.Errorf("HeightMapAt(3,4) = %d, %v, want 11", got, err)
	}
	// Columns with no absorbing block have height zero.
	if got, err := w.HeightMapAt(0, 0); err != nil || got != 0 {
		t.Errorf("HeightMapAt(0,0) = %d, %v, want 0", got, err)
	}
}

func TestFastLightEstimate(t *testing.T) {
	w := newTestWorld(t)
	if _, err := w.CreateChunk(0, 0); err != nil {
		t.Fatalf("create chunk: %v", err)
	}
	if err := w.SetBlockAt(3, 10, 4, 1); err != nil {
		t.Fatalf("set block: %v", err)
	}
	if err := w.MarkDirtyChunk(0, 0); err != nil {
		t.Fatalf("mark dirty: %v", err)
	}

	if got, _ := w.SkyLightAt(3, 11, 4); got != 15 {
		t.Errorf("sky light above surface = %d, want 15", got)
	}
	if got, _ := w.SkyLightAt(3, 10, 4); got != 0 {
		t.Errorf("sky light inside stone = %d, want 0", got)
	}
	if got, _ := w.SkyLightAt(0, 0, 0); got != 15 {
		t.Errorf("sky light in open column = %d, want 15", got)
	}
}

func TestEntitiesSurviveSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir, 1, testLogger(t))
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	if _, err := w.CreateChunk(0, 0); err != nil {
		t.Fatalf("create chunk: %v", err)
	}
	c, err := w.Chunk(0, 0) // load before mutating the entity lists
	if err != nil {
		t.Fatalf("get chunk: %v", err)
	}
	c.AddEntity(nbt.Compound{"id": "Pig", "Health": int16(10)})
	c.AddTileEntity(nbt.Compound{"id": "Sign", "Text1": "hello"})
	if err := c.ChunkChanged(false); err != nil {
		t.Fatalf("mark changed: %v", err)
	}
	if _, err := w.SaveInPlace(); err != nil {
		t.Fatalf("save: %v", err)
	}

	w2, err := Open(dir, testLogger(t))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	c2, err := w2.Chunk(0, 0)
	if err != nil {
		t.Fatalf("get chunk: %v", err)
	}
	ents := c2.Entities()
	if len(ents) != 1 {
		t.Fatalf("entities = %d, want 1", len(ents))
	}
	if id, _ := ents[0].String("id"); id != "Pig" {
		t.Errorf("entity id = %q, want Pig", id)
	}
	tiles := c2.TileEntities()
	if len(tiles) != 1 {
		t.Fatalf("tile entities = %d, want 1", len(tiles))
	}
	if text, _ := tiles[0].String("Text1"); text != "hello" {
		t.Errorf("sign text = %q, want hello", text)
	}
}

func TestSaveLeavesNoBackupBehind(t *testing.T) {
	w := newTestWorld(t)
	if _, err := w.CreateChunk(0, 0); err != nil {
		t.Fatalf("create chunk: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := w.SetBlockAt(0, i, 0, 1); err != nil {
			t.Fatalf("set block: %v", err)
		}
		if err := w.MarkDirtyChunk(0, 0); err != nil {
			t.Fatalf("mark dirty: %v", err)
		}
		if _, err := w.SaveInPlace(); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if _, err := os.Stat(w.ChunkFileName(0, 0) + ".old"); !os.IsNotExist(err) {
		t.Errorf("backup file left behind: %v", err)
	}
}

func TestChunkFileRejectsWrongPosition(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir, 1, testLogger(t))
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	if _, err := w.CreateChunk(0, 0); err != nil {
		t.Fatalf("create chunk: %v", err)
	}
	if _, err := w.SaveInPlace(); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Masquerade the (0,0) file as chunk (1,0).
	blob, err := os.ReadFile(w.ChunkFileName(0, 0))
	if err != nil {
		t.Fatalf("read chunk file: %v", err)
	}
	target := w.ChunkFileName(1, 0)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(target, blob, 0o644); err != nil {
		t.Fatalf("write chunk file: %v", err)
	}

	w2, err := Open(dir, testLogger(t))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := w2.Chunk(1, 0); err == nil {
		t.Fatal("expected error loading mispositioned chunk file")
	}
}
