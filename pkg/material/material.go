// Package material defines block palettes and the per-block light
// properties consumed by the lighting engine.
package material

// Block describes one block type within a palette.
type Block struct {
	ID          int
	Name        string
	EmitLight   byte // light level emitted, 0..15
	FilterLight byte // light level absorbed when passing through, 0..15
}

// Table is a block palette: id-indexed light properties plus name lookup.
// Ids not present in the palette absorb light fully.
type Table struct {
	name       string
	blocks     []Block
	byName     map[string]int
	absorption [256]byte
	emission   [256]byte
}

// NewTable builds a palette from a block list.
func NewTable(name string, blocks []Block) *Table {
	t := &Table{
		name:   name,
		blocks: blocks,
		byName: make(map[string]int, len(blocks)),
	}
	for i := range t.absorption {
		t.absorption[i] = 15
	}
	for _, b := range blocks {
		t.byName[b.Name] = b.ID
		if b.ID >= 0 && b.ID < 256 {
			t.absorption[b.ID] = b.FilterLight
			t.emission[b.ID] = b.EmitLight
		}
	}
	return t
}

// Name returns the palette name.
func (t *Table) Name() string { return t.name }

// LightAbsorption returns how much light the block type absorbs.
func (t *Table) LightAbsorption(id byte) byte { return t.absorption[id] }

// LightEmission returns how much light the block type emits.
func (t *Table) LightEmission(id byte) byte { return t.emission[id] }

// AbsorptionTable returns a copy of the full absorption table. Callers may
// modify the copy (the light engine overrides the leaf entry).
func (t *Table) AbsorptionTable() [256]byte { return t.absorption }

// EmissionTable returns a copy of the full emission table.
func (t *Table) EmissionTable() [256]byte { return t.emission }

// ByName looks a block up by its palette name.
func (t *Table) ByName(name string) (Block, bool) {
	id, ok := t.byName[name]
	if !ok {
		return Block{}, false
	}
	for _, b := range t.blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}

// ByID looks a block up by id.
func (t *Table) ByID(id int) (Block, bool) {
	for _, b := range t.blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}

// All returns the palette's block list.
func (t *Table) All() []Block { return t.blocks }

// ConversionTable maps block ids of the source palette onto the
// destination palette by block name. Ids with no name match (or absent
// from the source palette entirely) map to themselves, so unknown data
// passes through a copy unchanged.
func ConversionTable(from, to *Table) [256]byte {
	var conv [256]byte
	for i := range conv {
		conv[i] = byte(i)
	}
	for _, b := range from.blocks {
		if b.ID < 0 || b.ID >= 256 {
			continue
		}
		if target, ok := to.ByName(b.Name); ok && target.ID >= 0 && target.ID < 256 {
			conv[b.ID] = byte(target.ID)
		}
	}
	return conv
}
