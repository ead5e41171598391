package protocol

import (
	"bytes"
	"errors"
)

var (
	// ErrBadFrame reports a corrupt frame. The decoder has already skipped
	// to the next sync byte when it is returned.
	ErrBadFrame = errors.New("protocol: bad frame")

	// ErrIncomplete means more input is needed.
	ErrIncomplete = errors.New("protocol: incomplete frame")
)

// MaxFrameText is the longest text that fits a frame with a one-byte level
// and a two-byte length.
const MaxFrameText = FrameMax - FrameMin - 3

// Record is one decoded diagnostic line.
type Record struct {
	Seq   uint8
	Level uint8
	Text  string
}

// EncodeFrame writes one diagnostic frame carrying level and text into out,
// replacing its contents. Text longer than MaxFrameText is truncated.
func EncodeFrame(out *ScratchOutput, seq, level uint8, text string) []byte {
	if len(text) > MaxFrameText {
		text = text[:MaxFrameText]
	}
	out.Reset()
	out.Output([]byte{0, FrameDest | seq&FrameSeqMask})
	EncodeVLQUint(out, uint32(level))
	EncodeVLQString(out, text)

	n := out.CurPosition() + FrameTrailerSize
	out.Update(framePosLen, byte(n))
	crc := CRC16(out.Result())
	out.Output([]byte{byte(crc >> 8), byte(crc), FrameSync})
	return out.Result()
}

// FrameEncoder numbers successive frames.
type FrameEncoder struct {
	out *ScratchOutput
	seq uint8
}

// NewFrameEncoder creates an encoder with its own frame buffer.
func NewFrameEncoder() *FrameEncoder {
	return &FrameEncoder{out: NewScratchOutput(FrameMax)}
}

// Encode returns the next frame. The slice is reused by the next call.
func (e *FrameEncoder) Encode(level uint8, text string) []byte {
	f := EncodeFrame(e.out, e.seq, level, text)
	e.seq = (e.seq + 1) & FrameSeqMask
	return f
}

// FrameDecoder reassembles frames from a byte stream. After a corrupt frame
// it drops input up to the next sync byte.
type FrameDecoder struct {
	fifo     *FifoBuffer
	synced   bool
	expected uint8
	started  bool

	// Lost counts frames skipped according to the sequence numbers.
	Lost int
}

// NewFrameDecoder creates a decoder buffering up to size bytes.
func NewFrameDecoder(size int) *FrameDecoder {
	if size < 2*FrameMax {
		size = 2 * FrameMax
	}
	return &FrameDecoder{fifo: NewFifoBuffer(size), synced: true}
}

// Write buffers p. Bytes that do not fit are dropped; the loss surfaces as
// a bad frame.
func (d *FrameDecoder) Write(p []byte) (int, error) {
	d.fifo.Write(p)
	return len(p), nil
}

// Next decodes the next complete frame. It returns ErrIncomplete when more
// input is needed and ErrBadFrame after dropping a corrupt frame.
func (d *FrameDecoder) Next() (Record, error) {
	for {
		data := d.fifo.Data()
		if !d.synced {
			i := bytes.IndexByte(data, FrameSync)
			if i < 0 {
				d.fifo.Reset()
				return Record{}, ErrIncomplete
			}
			d.fifo.Pop(i + 1)
			d.synced = true
			continue
		}
		if len(data) > 0 && data[0] == FrameSync {
			d.fifo.Pop(1)
			continue
		}
		if len(data) < FrameMin {
			return Record{}, ErrIncomplete
		}

		n := int(data[framePosLen])
		seq := data[framePosSeq]
		if n < FrameMin || n > FrameMax || seq&^FrameSeqMask != FrameDest {
			return d.resync()
		}
		if len(data) < n {
			return Record{}, ErrIncomplete
		}
		if data[n-1] != FrameSync {
			return d.resync()
		}
		got := uint16(data[n-3])<<8 | uint16(data[n-2])
		if got != CRC16(data[:n-FrameTrailerSize]) {
			return d.resync()
		}

		body := data[FrameHeaderSize : n-FrameTrailerSize]
		level, err := DecodeVLQUint(&body)
		if err != nil {
			return d.resync()
		}
		text, err := DecodeVLQString(&body)
		if err != nil {
			return d.resync()
		}
		d.fifo.Pop(n)

		seq &= FrameSeqMask
		if d.started && seq != d.expected {
			d.Lost += int((seq - d.expected) & FrameSeqMask)
		}
		d.started = true
		d.expected = (seq + 1) & FrameSeqMask

		return Record{Seq: seq, Level: uint8(level), Text: text}, nil
	}
}

func (d *FrameDecoder) resync() (Record, error) {
	d.synced = false
	d.fifo.Pop(1)
	return Record{}, ErrBadFrame
}

// Free returns how many bytes Write can buffer without dropping.
func (d *FrameDecoder) Free() int { return d.fifo.Free() }

// Reset drops buffered input and sequence tracking.
func (d *FrameDecoder) Reset() {
	d.fifo.Reset()
	d.synced = true
	d.started = false
}
