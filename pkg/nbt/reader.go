package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// maxNestingDepth bounds compound/list recursion so a corrupt file cannot
// blow the stack.
const maxNestingDepth = 512

// Parse reads one NBT document from r. The root tag must be a compound;
// its payload is returned and the root name is discarded.
func Parse(r io.Reader) (Compound, error) {
	p := &parser{r: r}

	tagType, err := p.readByte()
	if err != nil {
		return nil, fmt.Errorf("read root tag: %w", err)
	}
	if tagType != TagCompound {
		return nil, fmt.Errorf("root tag is type %d, want compound", tagType)
	}
	if _, err := p.readString(); err != nil {
		return nil, fmt.Errorf("read root name: %w", err)
	}

	root, err := p.readCompound(0)
	if err != nil {
		return nil, err
	}
	return root, nil
}

type parser struct {
	r io.Reader
}

func (p *parser) readCompound(depth int) (Compound, error) {
	if depth > maxNestingDepth {
		return nil, fmt.Errorf("compound nested deeper than %d", maxNestingDepth)
	}
	c := Compound{}
	for {
		tagType, err := p.readByte()
		if err != nil {
			return nil, fmt.Errorf("read tag type: %w", err)
		}
		if tagType == TagEnd {
			return c, nil
		}
		name, err := p.readString()
		if err != nil {
			return nil, fmt.Errorf("read tag name: %w", err)
		}
		v, err := p.readPayload(tagType, depth+1)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", name, err)
		}
		c[name] = v
	}
}

func (p *parser) readPayload(tagType byte, depth int) (any, error) {
	switch tagType {
	case TagByte:
		return p.readByte()
	case TagShort:
		v, err := p.readUint16()
		return int16(v), err
	case TagInt:
		v, err := p.readUint32()
		return int32(v), err
	case TagLong:
		v, err := p.readUint64()
		return int64(v), err
	case TagFloat:
		v, err := p.readUint32()
		return math.Float32frombits(v), err
	case TagDouble:
		v, err := p.readUint64()
		return math.Float64frombits(v), err
	case TagByteArray:
		n, err := p.readLength()
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(p.r, buf); err != nil {
			return nil, fmt.Errorf("read byte array: %w", err)
		}
		return buf, nil
	case TagString:
		return p.readString()
	case TagList:
		return p.readList(depth)
	case TagCompound:
		return p.readCompound(depth)
	case TagIntArray:
		n, err := p.readLength()
		if err != nil {
			return nil, err
		}
		vals := make([]int32, n)
		for i := range vals {
			v, err := p.readUint32()
			if err != nil {
				return nil, fmt.Errorf("read int array: %w", err)
			}
			vals[i] = int32(v)
		}
		return vals, nil
	default:
		return nil, fmt.Errorf("unknown tag type %d", tagType)
	}
}

func (p *parser) readList(depth int) (List, error) {
	if depth > maxNestingDepth {
		return List{}, fmt.Errorf("list nested deeper than %d", maxNestingDepth)
	}
	elemType, err := p.readByte()
	if err != nil {
		return List{}, fmt.Errorf("read list element type: %w", err)
	}
	n, err := p.readLength()
	if err != nil {
		return List{}, err
	}
	l := List{ElemType: elemType, Items: make([]any, 0, n)}
	for i := 0; i < n; i++ {
		v, err := p.readPayload(elemType, depth+1)
		if err != nil {
			return List{}, fmt.Errorf("list item %d: %w", i, err)
		}
		l.Items = append(l.Items, v)
	}
	return l, nil
}

// readLength reads a 4-byte signed length and rejects negatives.
func (p *parser) readLength() (int, error) {
	v, err := p.readUint32()
	if err != nil {
		return 0, err
	}
	n := int32(v)
	if n < 0 {
		return 0, fmt.Errorf("negative length %d", n)
	}
	return int(n), nil
}

func (p *parser) readString() (string, error) {
	n, err := p.readUint16()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return "", fmt.Errorf("read string: %w", err)
	}
	return string(buf), nil
}

func (p *parser) readByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (p *parser) readUint16() (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func (p *parser) readUint32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (p *parser) readUint64() (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
