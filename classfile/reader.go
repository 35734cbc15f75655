package classfile

import "encoding/binary"

// Reader wraps a byte slice for sequential, fallible reads of class file
// data. Every primitive returns an error instead of panicking on overrun,
// per the classfile wire format's unforgiving EOF semantics.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) require(n int) error {
	if r.pos+n > len(r.data) {
		return newErr(EndOfStream, "need %d bytes at offset %d, have %d", n, r.pos, len(r.data)-r.pos)
	}
	return nil
}

// Pop1 reads an unsigned 8-bit integer.
func (r *Reader) Pop1() (uint8, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// Pop2 reads an unsigned 16-bit big-endian integer.
func (r *Reader) Pop2() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// Pop4 reads an unsigned 32-bit big-endian integer.
func (r *Reader) Pop4() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// Pop8 reads an unsigned 64-bit big-endian integer.
func (r *Reader) Pop8() (uint64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// PopBytes reads n raw bytes.
func (r *Reader) PopBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, newErr(BadFileFormat, "negative length %d", n)
	}
	if err := r.require(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// PopU1AsIndex reads a u1 and returns it widened to an int index.
func (r *Reader) PopU1AsIndex() (int, error) {
	v, err := r.Pop1()
	return int(v), err
}

// PopU2AsIndex reads a u2 and returns it widened to an int index.
func (r *Reader) PopU2AsIndex() (int, error) {
	v, err := r.Pop2()
	return int(v), err
}

// PopU4AsIndex reads a u4 and returns it widened to an int index.
func (r *Reader) PopU4AsIndex() (int, error) {
	v, err := r.Pop4()
	return int(v), err
}

// PopU2AsOffset reads a u2 and reinterprets it as a signed 16-bit branch
// offset (used by goto/if*/jsr).
func (r *Reader) PopU2AsOffset() (int32, error) {
	v, err := r.Pop2()
	return int32(int16(v)), err
}

// PopU4AsOffset reads a u4 and reinterprets it as a signed 32-bit branch
// offset (used by goto_w/jsr_w and the switch instructions).
func (r *Reader) PopU4AsOffset() (int32, error) {
	v, err := r.Pop4()
	return int32(v), err
}

// SkipN advances the cursor by n bytes without reading them (used for
// tableswitch/lookupswitch alignment padding).
func (r *Reader) SkipN(n int) error {
	if err := r.require(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// EOF reports whether the cursor has reached the end of the data.
func (r *Reader) EOF() bool {
	return r.pos >= len(r.data)
}

// Position returns the current byte offset.
func (r *Reader) Position() int {
	return r.pos
}
