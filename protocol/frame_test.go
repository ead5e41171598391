package protocol

import (
	"strings"
	"testing"
)

func decodeAll(t *testing.T, d *FrameDecoder) (recs []Record, bad int) {
	t.Helper()
	for {
		r, err := d.Next()
		switch err {
		case nil:
			recs = append(recs, r)
		case ErrBadFrame:
			bad++
		case ErrIncomplete:
			return recs, bad
		default:
			t.Fatalf("Next: %v", err)
		}
	}
}

func TestFrameLayout(t *testing.T) {
	f := EncodeFrame(NewScratchOutput(FrameMax), 3, 1, "Wakeup")
	if int(f[0]) != len(f) {
		t.Errorf("length byte %d, frame is %d bytes", f[0], len(f))
	}
	if f[1] != FrameDest|3 {
		t.Errorf("seq byte 0x%02X", f[1])
	}
	if f[len(f)-1] != FrameSync {
		t.Errorf("missing sync byte")
	}
	crc := CRC16(f[:len(f)-FrameTrailerSize])
	if f[len(f)-3] != byte(crc>>8) || f[len(f)-2] != byte(crc) {
		t.Errorf("crc mismatch")
	}
}

func TestFrameRoundTrip(t *testing.T) {
	enc := NewFrameEncoder()
	dec := NewFrameDecoder(0)

	lines := []string{"Sleep (ms) :8640x20", "Wakeup", "", strings.Repeat("x", MaxFrameText)}
	for i, l := range lines {
		dec.Write(enc.Encode(uint8(i%3), l))
	}

	recs, bad := decodeAll(t, dec)
	if bad != 0 {
		t.Fatalf("%d bad frames", bad)
	}
	if len(recs) != len(lines) {
		t.Fatalf("decoded %d records, want %d", len(recs), len(lines))
	}
	for i, r := range recs {
		if r.Text != lines[i] || r.Level != uint8(i%3) || r.Seq != uint8(i) {
			t.Errorf("record %d = %+v", i, r)
		}
	}
	if dec.Lost != 0 {
		t.Errorf("Lost = %d", dec.Lost)
	}
}

func TestFrameTruncatesLongText(t *testing.T) {
	f := EncodeFrame(NewScratchOutput(FrameMax), 0, 1, strings.Repeat("y", 300))
	if len(f) != FrameMax {
		t.Fatalf("frame length %d, want %d", len(f), FrameMax)
	}
	dec := NewFrameDecoder(0)
	dec.Write(f)
	r, err := dec.Next()
	if err != nil || len(r.Text) != MaxFrameText {
		t.Errorf("Next = %d chars, %v", len(r.Text), err)
	}
}

func TestFrameDecoderPartialInput(t *testing.T) {
	f := EncodeFrame(NewScratchOutput(FrameMax), 0, 2, "conversion")
	dec := NewFrameDecoder(0)

	dec.Write(f[:4])
	if _, err := dec.Next(); err != ErrIncomplete {
		t.Fatalf("partial frame: %v", err)
	}
	dec.Write(f[4:])
	r, err := dec.Next()
	if err != nil || r.Text != "conversion" {
		t.Errorf("Next = %+v, %v", r, err)
	}
}

func TestFrameDecoderResyncsAfterCorruption(t *testing.T) {
	enc := NewFrameEncoder()
	good1 := append([]byte(nil), enc.Encode(1, "first")...)
	bad := append([]byte(nil), enc.Encode(1, "second")...)
	bad[4] ^= 0xFF
	good2 := append([]byte(nil), enc.Encode(1, "third")...)

	dec := NewFrameDecoder(0)
	dec.Write([]byte{0x00, 0x42, FrameSync})
	dec.Write(good1)
	dec.Write(bad)
	dec.Write(good2)

	recs, badCount := decodeAll(t, dec)
	if badCount == 0 {
		t.Error("corruption not reported")
	}
	var texts []string
	for _, r := range recs {
		texts = append(texts, r.Text)
	}
	if strings.Join(texts, ",") != "first,third" {
		t.Errorf("decoded %v", texts)
	}
	if dec.Lost != 1 {
		t.Errorf("Lost = %d, want 1", dec.Lost)
	}
}
