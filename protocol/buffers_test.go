package protocol

import (
	"bytes"
	"testing"
)

func TestScratchOutputOverflow(t *testing.T) {
	s := NewScratchOutput(3)
	s.PutByte(0xAA)
	s.PutInt16LE(-7040)
	if !bytes.Equal(s.Result(), []byte{0xAA, 0x80, 0xE4}) {
		t.Fatalf("Result = % X", s.Result())
	}
	if s.Overflowed() {
		t.Fatal("exact fit reported as overflow")
	}

	s.PutByte(1)
	if !s.Overflowed() || s.CurPosition() != 3 {
		t.Errorf("write past capacity: overflow=%v pos=%d", s.Overflowed(), s.CurPosition())
	}

	s.Reset()
	if s.Overflowed() || s.CurPosition() != 0 || s.Cap() != 3 {
		t.Errorf("Reset left state behind")
	}
}

func TestScratchOutputUpdate(t *testing.T) {
	s := NewScratchOutput(4)
	s.Output([]byte{1, 2})
	s.Update(0, 9)
	s.Update(3, 7)
	if !bytes.Equal(s.Result(), []byte{9, 2}) {
		t.Errorf("Result = % X", s.Result())
	}
}

func TestFifoBufferWrap(t *testing.T) {
	f := NewFifoBuffer(8)
	if n := f.Write([]byte{1, 2, 3, 4, 5}); n != 5 {
		t.Fatalf("Write = %d", n)
	}
	f.Pop(4)
	if n := f.Write([]byte{6, 7, 8, 9, 10, 11}); n != 6 {
		t.Fatalf("Write after pop = %d", n)
	}
	if f.Free() != 0 {
		t.Errorf("Free = %d, want 0", f.Free())
	}
	if n := f.Write([]byte{12}); n != 0 {
		t.Errorf("write to full fifo accepted %d bytes", n)
	}
	if !bytes.Equal(f.Data(), []byte{5, 6, 7, 8, 9, 10, 11}) {
		t.Errorf("Data = %v", f.Data())
	}
	f.Pop(100)
	if f.Available() != 0 {
		t.Errorf("Available after draining = %d", f.Available())
	}
}
