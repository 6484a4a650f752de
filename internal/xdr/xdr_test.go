package xdr

import (
	"bytes"
	"testing"
)

func TestReaderBasic(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	r := NewReader(data)

	if r.Len() != 8 {
		t.Errorf("Len() = %d, want 8", r.Len())
	}
	if r.Pos() != 0 {
		t.Errorf("Pos() = %d, want 0", r.Pos())
	}

	b, err := r.ReadByte()
	if err != nil {
		t.Errorf("ReadByte() error = %v", err)
	}
	if b != 0x01 {
		t.Errorf("ReadByte() = %d, want 1", b)
	}

	if r.Pos() != 1 {
		t.Errorf("Pos() after ReadByte = %d, want 1", r.Pos())
	}
}

func TestReaderIntegers(t *testing.T) {
	// Little-endian test data
	data := []byte{
		0x15, 0x00, // uint16: 21
		0x78, 0x56, 0x34, 0x12, // uint32: 0x12345678
	}
	r := NewReader(data)

	u16, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16() error = %v", err)
	}
	if u16 != 21 {
		t.Errorf("ReadUint16() = %d, want 21", u16)
	}

	u32, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32() error = %v", err)
	}
	if u32 != 0x12345678 {
		t.Errorf("ReadUint32() = 0x%08X, want 0x12345678", u32)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestReaderFourCC(t *testing.T) {
	r := NewReader([]byte("IHDRID"))
	tag, err := r.ReadFourCC()
	if err != nil {
		t.Fatalf("ReadFourCC() error = %v", err)
	}
	if string(tag[:]) != "IHDR" {
		t.Errorf("ReadFourCC() = %q, want IHDR", tag[:])
	}
	if _, err := r.ReadFourCC(); err != ErrShortBuffer {
		t.Errorf("ReadFourCC() on 2 bytes error = %v, want ErrShortBuffer", err)
	}
	if r.Pos() != 4 {
		t.Errorf("Pos() after failed read = %d, want 4", r.Pos())
	}
}

func TestReaderBytes(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	r := NewReader(data)

	if err := r.Skip(2); err != nil {
		t.Fatalf("Skip(2) error = %v", err)
	}

	n, err := r.Next(3)
	if err != nil {
		t.Fatalf("Next(3) error = %v", err)
	}
	if !bytes.Equal(n, []byte{3, 4, 5}) {
		t.Errorf("Next(3) = %v, want [3 4 5]", n)
	}
	if cap(n) != 3 {
		t.Errorf("cap(Next(3)) = %d, want 3", cap(n))
	}
}

func TestReaderErrors(t *testing.T) {
	r := NewReader([]byte{1, 2})

	// ReadUint32 on short buffer
	_, err := r.ReadUint32()
	if err != ErrShortBuffer {
		t.Errorf("ReadUint32() error = %v, want ErrShortBuffer", err)
	}

	// Next with negative size
	_, err = r.Next(-1)
	if err != ErrNegativeSize {
		t.Errorf("Next(-1) error = %v, want ErrNegativeSize", err)
	}

	// Next past end
	_, err = r.Next(3)
	if err != ErrShortBuffer {
		t.Errorf("Next(3) error = %v, want ErrShortBuffer", err)
	}

	// Skip with negative
	err = r.Skip(-1)
	if err != ErrNegativeSize {
		t.Errorf("Skip(-1) error = %v, want ErrNegativeSize", err)
	}

	// Skip past end
	err = r.Skip(100)
	if err != ErrShortBuffer {
		t.Errorf("Skip(100) error = %v, want ErrShortBuffer", err)
	}

	// ReadByte on empty reader
	r3 := NewReader([]byte{})
	_, err = r3.ReadByte()
	if err != ErrShortBuffer {
		t.Errorf("ReadByte() on empty error = %v, want ErrShortBuffer", err)
	}
	_, err = r3.ReadUint16()
	if err != ErrShortBuffer {
		t.Errorf("ReadUint16() on empty error = %v, want ErrShortBuffer", err)
	}
}

func TestBufferWriter(t *testing.T) {
	w := NewBufferWriter(16)

	if w.Len() != 0 {
		t.Errorf("Len() = %d, want 0", w.Len())
	}

	w.WriteUint32(12)
	w.WriteFourCC([4]byte{'I', 'H', 'D', 'R'})
	w.WriteUint16(21)
	w.WriteByte(0x0F)
	w.WriteBytes([]byte{1, 2})

	if w.Len() != 4+4+2+1+2 {
		t.Errorf("Len() = %d, want 13", w.Len())
	}

	want := []byte{12, 0, 0, 0, 'I', 'H', 'D', 'R', 21, 0, 0x0F, 1, 2}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes() = %v, want %v", w.Bytes(), want)
	}

	// Verify contents read back
	r := NewReader(w.Bytes())
	length, _ := r.ReadUint32()
	tag, _ := r.ReadFourCC()
	version, _ := r.ReadUint16()
	if length != 12 || string(tag[:]) != "IHDR" || version != 21 {
		t.Errorf("read back (%d, %q, %d), want (12, IHDR, 21)", length, tag[:], version)
	}
}
