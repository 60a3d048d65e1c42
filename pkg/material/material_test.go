package material

import "testing"

func TestAlphaLightTables(t *testing.T) {
	m := Alpha()

	if got := m.LightAbsorption(0); got != 0 {
		t.Errorf("air absorption = %d, want 0", got)
	}
	if got := m.LightAbsorption(1); got != 15 {
		t.Errorf("stone absorption = %d, want 15", got)
	}
	if got := m.LightAbsorption(9); got != 3 {
		t.Errorf("water absorption = %d, want 3", got)
	}
	// Ids outside the palette absorb fully.
	if got := m.LightAbsorption(200); got != 15 {
		t.Errorf("unknown block absorption = %d, want 15", got)
	}

	if got := m.LightEmission(50); got != 14 {
		t.Errorf("torch emission = %d, want 14", got)
	}
	if got := m.LightEmission(89); got != 15 {
		t.Errorf("glowstone emission = %d, want 15", got)
	}
	if got := m.LightEmission(1); got != 0 {
		t.Errorf("stone emission = %d, want 0", got)
	}
}

func TestAbsorptionTableIsACopy(t *testing.T) {
	m := Alpha()
	la := m.AbsorptionTable()
	la[LeavesID] = 0
	if got := m.LightAbsorption(LeavesID); got != 15 {
		t.Errorf("palette mutated through table copy: leaves absorption = %d", got)
	}
}

func TestLookups(t *testing.T) {
	m := Alpha()
	b, ok := m.ByName("Obsidian")
	if !ok || b.ID != 49 {
		t.Errorf("ByName(Obsidian) = %+v, %v", b, ok)
	}
	b, ok = m.ByID(89)
	if !ok || b.Name != "Glowstone" {
		t.Errorf("ByID(89) = %+v, %v", b, ok)
	}
	if _, ok := m.ByName("No Such Block"); ok {
		t.Error("ByName should miss unknown names")
	}
}

func TestConversionTable(t *testing.T) {
	from := NewTable("from", []Block{
		{ID: 1, Name: "Stone", FilterLight: 15},
		{ID: 2, Name: "Crystal", FilterLight: 0},
	})
	to := NewTable("to", []Block{
		{ID: 7, Name: "Stone", FilterLight: 15},
	})

	conv := ConversionTable(from, to)
	if conv[1] != 7 {
		t.Errorf("conv[1] = %d, want 7 (name match)", conv[1])
	}
	// No name match in the destination: identity.
	if conv[2] != 2 {
		t.Errorf("conv[2] = %d, want 2 (identity)", conv[2])
	}
	// Id absent from the source palette entirely: identity.
	if conv[100] != 100 {
		t.Errorf("conv[100] = %d, want 100 (identity)", conv[100])
	}
}

func TestClassicIsAlphaSubset(t *testing.T) {
	c := Classic()
	for _, b := range c.All() {
		if b.ID > 49 {
			t.Errorf("classic palette contains post-classic id %d", b.ID)
		}
	}
	conv := ConversionTable(Alpha(), c)
	if conv[1] != 1 {
		t.Errorf("stone should convert to itself, got %d", conv[1])
	}
}
