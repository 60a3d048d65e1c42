package material

// LeavesID is special-cased by the light engine: leaves block the height
// map like an opaque block but disperse light like air.
const LeavesID = 18

// Alpha returns the Alpha-era block palette. Ids outside this list are
// treated as fully opaque.
func Alpha() *Table {
	return NewTable("Alpha", []Block{
		{ID: 0, Name: "Air", EmitLight: 0, FilterLight: 0},
		{ID: 1, Name: "Stone", FilterLight: 15},
		{ID: 2, Name: "Grass", FilterLight: 15},
		{ID: 3, Name: "Dirt", FilterLight: 15},
		{ID: 4, Name: "Cobblestone", FilterLight: 15},
		{ID: 5, Name: "Wood Planks", FilterLight: 15},
		{ID: 6, Name: "Sapling", FilterLight: 0},
		{ID: 7, Name: "Bedrock", FilterLight: 15},
		{ID: 8, Name: "Water (active)", FilterLight: 3},
		{ID: 9, Name: "Water", FilterLight: 3},
		{ID: 10, Name: "Lava (active)", EmitLight: 15, FilterLight: 15},
		{ID: 11, Name: "Lava", EmitLight: 15, FilterLight: 15},
		{ID: 12, Name: "Sand", FilterLight: 15},
		{ID: 13, Name: "Gravel", FilterLight: 15},
		{ID: 14, Name: "Gold Ore", FilterLight: 15},
		{ID: 15, Name: "Iron Ore", FilterLight: 15},
		{ID: 16, Name: "Coal Ore", FilterLight: 15},
		{ID: 17, Name: "Wood", FilterLight: 15},
		{ID: LeavesID, Name: "Leaves", FilterLight: 15},
		{ID: 19, Name: "Sponge", FilterLight: 15},
		{ID: 20, Name: "Glass", FilterLight: 0},
		{ID: 35, Name: "Wool", FilterLight: 15},
		{ID: 37, Name: "Flower", FilterLight: 0},
		{ID: 38, Name: "Rose", FilterLight: 0},
		{ID: 39, Name: "Brown Mushroom", EmitLight: 1, FilterLight: 0},
		{ID: 40, Name: "Red Mushroom", FilterLight: 0},
		{ID: 41, Name: "Gold Block", FilterLight: 15},
		{ID: 42, Name: "Iron Block", FilterLight: 15},
		{ID: 43, Name: "Double Stone Slab", FilterLight: 15},
		{ID: 44, Name: "Stone Slab", FilterLight: 0},
		{ID: 45, Name: "Brick", FilterLight: 15},
		{ID: 46, Name: "TNT", FilterLight: 15},
		{ID: 47, Name: "Bookshelf", FilterLight: 15},
		{ID: 48, Name: "Moss Stone", FilterLight: 15},
		{ID: 49, Name: "Obsidian", FilterLight: 15},
		{ID: 50, Name: "Torch", EmitLight: 14, FilterLight: 0},
		{ID: 51, Name: "Fire", EmitLight: 15, FilterLight: 0},
		{ID: 52, Name: "Monster Spawner", FilterLight: 0},
		{ID: 53, Name: "Wooden Stairs", FilterLight: 0},
		{ID: 54, Name: "Chest", FilterLight: 15},
		{ID: 55, Name: "Redstone Wire", FilterLight: 0},
		{ID: 56, Name: "Diamond Ore", FilterLight: 15},
		{ID: 57, Name: "Diamond Block", FilterLight: 15},
		{ID: 58, Name: "Crafting Table", FilterLight: 15},
		{ID: 59, Name: "Crops", FilterLight: 0},
		{ID: 60, Name: "Farmland", FilterLight: 15},
		{ID: 61, Name: "Furnace", FilterLight: 15},
		{ID: 62, Name: "Lit Furnace", EmitLight: 13, FilterLight: 15},
		{ID: 63, Name: "Sign", FilterLight: 0},
		{ID: 64, Name: "Wooden Door", FilterLight: 0},
		{ID: 65, Name: "Ladder", FilterLight: 0},
		{ID: 66, Name: "Rail", FilterLight: 0},
		{ID: 67, Name: "Stone Stairs", FilterLight: 0},
		{ID: 71, Name: "Iron Door", FilterLight: 0},
		{ID: 73, Name: "Redstone Ore", FilterLight: 15},
		{ID: 74, Name: "Lit Redstone Ore", EmitLight: 9, FilterLight: 15},
		{ID: 76, Name: "Redstone Torch", EmitLight: 7, FilterLight: 0},
		{ID: 78, Name: "Snow Layer", FilterLight: 0},
		{ID: 79, Name: "Ice", FilterLight: 3},
		{ID: 80, Name: "Snow Block", FilterLight: 15},
		{ID: 81, Name: "Cactus", FilterLight: 0},
		{ID: 82, Name: "Clay", FilterLight: 15},
		{ID: 83, Name: "Sugar Cane", FilterLight: 0},
		{ID: 85, Name: "Fence", FilterLight: 0},
		{ID: 86, Name: "Pumpkin", FilterLight: 15},
		{ID: 87, Name: "Netherrack", FilterLight: 15},
		{ID: 88, Name: "Soul Sand", FilterLight: 15},
		{ID: 89, Name: "Glowstone", EmitLight: 15, FilterLight: 15},
		{ID: 91, Name: "Jack-o'-Lantern", EmitLight: 15, FilterLight: 15},
	})
}

// Classic returns the Classic-era palette: the Alpha ids that existed in
// Classic, so conversion tables between the two exercise name matching.
func Classic() *Table {
	alpha := Alpha()
	var blocks []Block
	for _, b := range alpha.All() {
		if b.ID <= 49 {
			blocks = append(blocks, b)
		}
	}
	return NewTable("Classic", blocks)
}
