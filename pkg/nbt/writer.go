package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
)

// Writer writes NBT binary data to an io.Writer in big-endian format.
// All write methods accumulate errors internally; call Err() after writing
// to check for failures.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter creates a new NBT Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered during writing.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(data []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(data)
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) putByte(v byte) {
	w.write([]byte{v})
}

func (w *Writer) putUint16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.write(buf[:])
}

func (w *Writer) putInt32(v int32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	w.write(buf[:])
}

func (w *Writer) putInt64(v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	w.write(buf[:])
}

func (w *Writer) writeTagHeader(tagType byte, name string) {
	w.putByte(tagType)
	w.putUint16(uint16(len(name)))
	if len(name) > 0 {
		w.write([]byte(name))
	}
}

// BeginCompound writes a compound tag header. Use name="" for the root.
func (w *Writer) BeginCompound(name string) {
	w.writeTagHeader(TagCompound, name)
}

// EndCompound writes an End tag to close a compound.
func (w *Writer) EndCompound() {
	w.putByte(TagEnd)
}

// WriteTagByte writes a named byte tag.
func (w *Writer) WriteTagByte(name string, v byte) {
	w.writeTagHeader(TagByte, name)
	w.putByte(v)
}

// WriteShort writes a named short tag.
func (w *Writer) WriteShort(name string, v int16) {
	w.writeTagHeader(TagShort, name)
	w.putUint16(uint16(v))
}

// WriteInt writes a named int tag.
func (w *Writer) WriteInt(name string, v int32) {
	w.writeTagHeader(TagInt, name)
	w.putInt32(v)
}

// WriteLong writes a named long tag.
func (w *Writer) WriteLong(name string, v int64) {
	w.writeTagHeader(TagLong, name)
	w.putInt64(v)
}

// WriteFloat writes a named float tag.
func (w *Writer) WriteFloat(name string, v float32) {
	w.writeTagHeader(TagFloat, name)
	w.putInt32(int32(math.Float32bits(v)))
}

// WriteDouble writes a named double tag.
func (w *Writer) WriteDouble(name string, v float64) {
	w.writeTagHeader(TagDouble, name)
	w.putInt64(int64(math.Float64bits(v)))
}

// WriteByteArray writes a named byte array tag.
func (w *Writer) WriteByteArray(name string, v []byte) {
	w.writeTagHeader(TagByteArray, name)
	w.putInt32(int32(len(v)))
	w.write(v)
}

// WriteString writes a named string tag.
func (w *Writer) WriteString(name string, v string) {
	w.writeTagHeader(TagString, name)
	w.putUint16(uint16(len(v)))
	if len(v) > 0 {
		w.write([]byte(v))
	}
}

// WriteIntArray writes a named int array tag.
func (w *Writer) WriteIntArray(name string, v []int32) {
	w.writeTagHeader(TagIntArray, name)
	w.putInt32(int32(len(v)))
	for _, val := range v {
		w.putInt32(val)
	}
}

// BeginList writes a named list tag header.
func (w *Writer) BeginList(name string, elemType byte, count int32) {
	w.writeTagHeader(TagList, name)
	w.putByte(elemType)
	w.putInt32(count)
}

// WriteCompound writes a named compound tag from a parsed tree.
// Entries are emitted in sorted name order so output is deterministic.
func (w *Writer) WriteCompound(name string, c Compound) {
	w.writeTagHeader(TagCompound, name)
	w.writeCompoundPayload(c)
}

// WriteCompoundPayload writes the entries and End tag of a compound whose
// header was already written (e.g. a list element after BeginList).
func (w *Writer) WriteCompoundPayload(c Compound) {
	w.writeCompoundPayload(c)
}

// WriteList writes a named list tag from a parsed tree. Empty lists with an
// unset element type are written as byte lists; such lists are seen in the
// wild even where the list would otherwise hold compounds.
func (w *Writer) WriteList(name string, l List) {
	elemType := l.ElemType
	if elemType == TagEnd {
		elemType = TagByte
	}
	w.BeginList(name, elemType, int32(len(l.Items)))
	for _, item := range l.Items {
		w.writeValue(elemType, item)
	}
}

func (w *Writer) writeCompoundPayload(c Compound) {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w.writeNamed(name, c[name])
	}
	w.putByte(TagEnd)
}

func (w *Writer) writeNamed(name string, v any) {
	tagType, ok := tagTypeOf(v)
	if !ok {
		w.fail(fmt.Errorf("tag %q: unsupported value type %T", name, v))
		return
	}
	switch tagType {
	case TagCompound:
		w.WriteCompound(name, v.(Compound))
	case TagList:
		w.WriteList(name, v.(List))
	default:
		w.writeTagHeader(tagType, name)
		w.writeValue(tagType, v)
	}
}

func (w *Writer) writeValue(tagType byte, v any) {
	switch tagType {
	case TagByte:
		b, ok := v.(byte)
		if !ok {
			w.fail(fmt.Errorf("list element %T is not a byte", v))
			return
		}
		w.putByte(b)
	case TagShort:
		w.putUint16(uint16(v.(int16)))
	case TagInt:
		w.putInt32(v.(int32))
	case TagLong:
		w.putInt64(v.(int64))
	case TagFloat:
		w.putInt32(int32(math.Float32bits(v.(float32))))
	case TagDouble:
		w.putInt64(int64(math.Float64bits(v.(float64))))
	case TagByteArray:
		arr := v.([]byte)
		w.putInt32(int32(len(arr)))
		w.write(arr)
	case TagString:
		s := v.(string)
		w.putUint16(uint16(len(s)))
		if len(s) > 0 {
			w.write([]byte(s))
		}
	case TagIntArray:
		arr := v.([]int32)
		w.putInt32(int32(len(arr)))
		for _, val := range arr {
			w.putInt32(val)
		}
	case TagList:
		l := v.(List)
		elemType := l.ElemType
		if elemType == TagEnd {
			elemType = TagByte
		}
		w.putByte(elemType)
		w.putInt32(int32(len(l.Items)))
		for _, item := range l.Items {
			w.writeValue(elemType, item)
		}
	case TagCompound:
		w.writeCompoundPayload(v.(Compound))
	default:
		w.fail(fmt.Errorf("unsupported tag type %d", tagType))
	}
}

func tagTypeOf(v any) (byte, bool) {
	switch v.(type) {
	case byte:
		return TagByte, true
	case int16:
		return TagShort, true
	case int32:
		return TagInt, true
	case int64:
		return TagLong, true
	case float32:
		return TagFloat, true
	case float64:
		return TagDouble, true
	case []byte:
		return TagByteArray, true
	case string:
		return TagString, true
	case List:
		return TagList, true
	case Compound:
		return TagCompound, true
	case []int32:
		return TagIntArray, true
	}
	return 0, false
}
