// Package pbwire decodes the protobuf wire format. The format loaders
// use it to read serialized models without an external protobuf
// dependency; each loader supplies its own field-number schema.
package pbwire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Wire types.
const (
	Varint  = 0
	Fixed64 = 1
	Bytes   = 2
	Fixed32 = 5
)

// Decoder walks one protobuf message payload.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder returns a decoder over a message payload.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{buf: data}
}

// More reports whether any fields remain.
func (d *Decoder) More() bool { return d.off < len(d.buf) }

// Tag reads the next field tag.
func (d *Decoder) Tag() (field, wire int, err error) {
	v, err := d.Uvarint()
	if err != nil {
		return 0, 0, err
	}
	return int(v >> 3), int(v & 7), nil
}

// Uvarint reads a base-128 varint.
func (d *Decoder) Uvarint() (uint64, error) {
	var v uint64
	for shift := uint(0); shift < 64; shift += 7 {
		if d.off >= len(d.buf) {
			return 0, io.ErrUnexpectedEOF
		}
		b := d.buf[d.off]
		d.off++
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, errors.New("varint overflows 64 bits")
}

// Int64 reads a varint as a signed 64-bit value.
func (d *Decoder) Int64() (int64, error) {
	v, err := d.Uvarint()
	return int64(v), err //nolint:gosec // G115: two's-complement reinterpretation is the protobuf int64 encoding.
}

// Int32 reads a varint as a signed 32-bit value (enum fields).
func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uvarint()
	return int32(v), err //nolint:gosec // G115: enum values fit in int32.
}

// Bytes reads a length-delimited payload.
func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.Uvarint()
	if err != nil {
		return nil, err
	}
	end := d.off + int(n) //nolint:gosec // G115: bounds-checked below.
	if end < d.off || end > len(d.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	b := d.buf[d.off:end]
	d.off = end
	return b, nil
}

// Str reads a length-delimited payload as a string.
func (d *Decoder) Str() (string, error) {
	b, err := d.Bytes()
	return string(b), err
}

// Msg returns a sub-decoder over the next length-delimited payload.
func (d *Decoder) Msg() (*Decoder, error) {
	b, err := d.Bytes()
	if err != nil {
		return nil, err
	}
	return &Decoder{buf: b}, nil
}

// Float32 reads a fixed32 field as a float.
func (d *Decoder) Float32() (float32, error) {
	if d.off+4 > len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	bits := binary.LittleEndian.Uint32(d.buf[d.off:])
	d.off += 4
	return math.Float32frombits(bits), nil
}

// Int64s appends a repeated int64 field, packed or single-element.
func (d *Decoder) Int64s(dst []int64, wire int) ([]int64, error) {
	if wire != Bytes {
		v, err := d.Int64()
		if err != nil {
			return nil, err
		}
		return append(dst, v), nil
	}
	sub, err := d.Msg()
	if err != nil {
		return nil, err
	}
	for sub.More() {
		v, err := sub.Int64()
		if err != nil {
			return nil, err
		}
		dst = append(dst, v)
	}
	return dst, nil
}

// Float32s appends a repeated float field, packed or single-element.
func (d *Decoder) Float32s(dst []float32, wire int) ([]float32, error) {
	if wire != Bytes {
		v, err := d.Float32()
		if err != nil {
			return nil, err
		}
		return append(dst, v), nil
	}
	b, err := d.Bytes()
	if err != nil {
		return nil, err
	}
	for i := 0; i+4 <= len(b); i += 4 {
		dst = append(dst, math.Float32frombits(binary.LittleEndian.Uint32(b[i:])))
	}
	return dst, nil
}

// Skip discards the next field's payload.
func (d *Decoder) Skip(wire int) error {
	switch wire {
	case Varint:
		_, err := d.Uvarint()
		return err
	case Fixed64:
		if d.off+8 > len(d.buf) {
			return io.ErrUnexpectedEOF
		}
		d.off += 8
		return nil
	case Bytes:
		_, err := d.Bytes()
		return err
	case Fixed32:
		if d.off+4 > len(d.buf) {
			return io.ErrUnexpectedEOF
		}
		d.off += 4
		return nil
	default:
		return fmt.Errorf("unknown wire type %d", wire)
	}
}
