package protocol

import "encoding/binary"

// OutputBuffer is an append-only byte sink.
type OutputBuffer interface {
	Output(data []byte)
	CurPosition() int
	Update(pos int, val byte)
}

// ScratchOutput is a fixed-capacity OutputBuffer. Writes past the capacity
// are dropped and reported by Overflowed.
type ScratchOutput struct {
	buf      []byte
	overflow bool
}

// NewScratchOutput creates a buffer holding at most size bytes.
func NewScratchOutput(size int) *ScratchOutput {
	return &ScratchOutput{buf: make([]byte, 0, size)}
}

func (s *ScratchOutput) Output(data []byte) {
	room := cap(s.buf) - len(s.buf)
	if len(data) > room {
		data = data[:room]
		s.overflow = true
	}
	s.buf = append(s.buf, data...)
}

// PutByte appends one byte.
func (s *ScratchOutput) PutByte(b byte) {
	s.Output([]byte{b})
}

// PutInt16LE appends v little-endian.
func (s *ScratchOutput) PutInt16LE(v int16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	s.Output(b[:])
}

func (s *ScratchOutput) CurPosition() int {
	return len(s.buf)
}

func (s *ScratchOutput) Update(pos int, val byte) {
	if pos < len(s.buf) {
		s.buf[pos] = val
	}
}

// Result returns the bytes written since the last Reset. The slice is only
// valid until the next write.
func (s *ScratchOutput) Result() []byte {
	return s.buf
}

// Cap returns the buffer capacity.
func (s *ScratchOutput) Cap() int { return cap(s.buf) }

// Overflowed reports whether a write was truncated since the last Reset.
func (s *ScratchOutput) Overflowed() bool { return s.overflow }

// Reset empties the buffer.
func (s *ScratchOutput) Reset() {
	s.buf = s.buf[:0]
	s.overflow = false
}

// FifoBuffer is a circular byte queue for serial input.
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
}

// NewFifoBuffer creates a queue able to hold capacity-1 bytes.
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{buf: make([]byte, capacity)}
}

// Write queues as much of data as fits and returns the count queued.
func (f *FifoBuffer) Write(data []byte) int {
	n := 0
	for _, b := range data {
		next := (f.write + 1) % len(f.buf)
		if next == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = next
		n++
	}
	return n
}

// Available returns the number of queued bytes.
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return len(f.buf) - f.read + f.write
}

// Free returns the number of bytes Write can still accept.
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.Available() - 1
}

// Data returns the queued bytes in order. A wrapped queue is copied into a
// new slice.
func (f *FifoBuffer) Data() []byte {
	if f.read <= f.write {
		return f.buf[f.read:f.write]
	}
	out := make([]byte, 0, f.Available())
	out = append(out, f.buf[f.read:]...)
	return append(out, f.buf[:f.write]...)
}

// Pop discards n bytes from the front.
func (f *FifoBuffer) Pop(n int) {
	if n >= f.Available() {
		f.Reset()
		return
	}
	f.read = (f.read + n) % len(f.buf)
}

// Reset empties the queue.
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}
