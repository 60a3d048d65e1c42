// Package nbt implements the NBT binary tag-tree format: a streaming
// big-endian writer and a tree parser with typed accessors.
package nbt

// NBT tag type IDs.
const (
	TagEnd       byte = 0
	TagByte      byte = 1
	TagShort     byte = 2
	TagInt       byte = 3
	TagLong      byte = 4
	TagFloat     byte = 5
	TagDouble    byte = 6
	TagByteArray byte = 7
	TagString    byte = 8
	TagList      byte = 9
	TagCompound  byte = 10
	TagIntArray  byte = 11
)

// List is a homogeneous NBT list. Items hold the same Go types that
// Compound values do.
type List struct {
	ElemType byte
	Items    []any
}

// Compound maps tag names to decoded values. Value types by tag:
// byte, int16, int32, int64, float32, float64, []byte, string,
// List, Compound, []int32.
type Compound map[string]any

// Byte returns the named byte tag.
func (c Compound) Byte(name string) (byte, bool) {
	v, ok := c[name].(byte)
	return v, ok
}

// Short returns the named short tag.
func (c Compound) Short(name string) (int16, bool) {
	v, ok := c[name].(int16)
	return v, ok
}

// Int returns the named int tag.
func (c Compound) Int(name string) (int32, bool) {
	v, ok := c[name].(int32)
	return v, ok
}

// Long returns the named long tag.
func (c Compound) Long(name string) (int64, bool) {
	v, ok := c[name].(int64)
	return v, ok
}

// Float returns the named float tag.
func (c Compound) Float(name string) (float32, bool) {
	v, ok := c[name].(float32)
	return v, ok
}

// Double returns the named double tag.
func (c Compound) Double(name string) (float64, bool) {
	v, ok := c[name].(float64)
	return v, ok
}

// String returns the named string tag.
func (c Compound) String(name string) (string, bool) {
	v, ok := c[name].(string)
	return v, ok
}

// ByteArray returns the named byte array tag.
func (c Compound) ByteArray(name string) ([]byte, bool) {
	v, ok := c[name].([]byte)
	return v, ok
}

// IntArray returns the named int array tag.
func (c Compound) IntArray(name string) ([]int32, bool) {
	v, ok := c[name].([]int32)
	return v, ok
}

// Compound returns the named compound tag.
func (c Compound) Compound(name string) (Compound, bool) {
	v, ok := c[name].(Compound)
	return v, ok
}

// List returns the named list tag.
func (c Compound) List(name string) (List, bool) {
	v, ok := c[name].(List)
	return v, ok
}

// CompoundList returns the named list tag's items as compounds,
// skipping items of any other type. A missing tag yields nil.
func (c Compound) CompoundList(name string) []Compound {
	l, ok := c.List(name)
	if !ok {
		return nil
	}
	out := make([]Compound, 0, len(l.Items))
	for _, item := range l.Items {
		if cc, ok := item.(Compound); ok {
			out = append(out, cc)
		}
	}
	return out
}
