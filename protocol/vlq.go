package protocol

import "errors"

var (
	ErrInvalidVLQ  = errors.New("protocol: invalid VLQ encoding")
	ErrShortBuffer = errors.New("protocol: truncated VLQ")
)

// EncodeVLQInt writes v as a Klipper variable-length quantity, most
// significant group first, 7 bits per byte.
func EncodeVLQInt(out OutputBuffer, v int32) {
	var tmp [5]byte
	n := 0
	if v < -(1<<26) || v >= 3<<26 {
		tmp[n] = byte(v>>28)&0x7F | 0x80
		n++
	}
	if v < -(1<<19) || v >= 3<<19 {
		tmp[n] = byte(v>>21)&0x7F | 0x80
		n++
	}
	if v < -(1<<12) || v >= 3<<12 {
		tmp[n] = byte(v>>14)&0x7F | 0x80
		n++
	}
	if v < -(1<<5) || v >= 3<<5 {
		tmp[n] = byte(v>>7)&0x7F | 0x80
		n++
	}
	tmp[n] = byte(v) & 0x7F
	out.Output(tmp[:n+1])
}

// EncodeVLQUint writes v as a VLQ.
func EncodeVLQUint(out OutputBuffer, v uint32) {
	EncodeVLQInt(out, int32(v))
}

// DecodeVLQInt reads one VLQ from the front of *data and advances it.
func DecodeVLQInt(data *[]byte) (int32, error) {
	p := *data
	if len(p) == 0 {
		return 0, ErrShortBuffer
	}
	c := uint32(p[0])
	p = p[1:]

	v := c & 0x7F
	if c&0x60 == 0x60 {
		v |= ^uint32(0x1F)
	}
	for i := 0; c&0x80 != 0; i++ {
		if i == 4 {
			return 0, ErrInvalidVLQ
		}
		if len(p) == 0 {
			return 0, ErrShortBuffer
		}
		c = uint32(p[0])
		p = p[1:]
		v = v<<7 | c&0x7F
	}
	*data = p
	return int32(v), nil
}

// DecodeVLQUint reads one VLQ as unsigned.
func DecodeVLQUint(data *[]byte) (uint32, error) {
	v, err := DecodeVLQInt(data)
	return uint32(v), err
}

// EncodeVLQString writes s with a VLQ length prefix.
func EncodeVLQString(out OutputBuffer, s string) {
	EncodeVLQUint(out, uint32(len(s)))
	out.Output([]byte(s))
}

// DecodeVLQString reads a length-prefixed string.
func DecodeVLQString(data *[]byte) (string, error) {
	p := *data
	n, err := DecodeVLQUint(&p)
	if err != nil {
		return "", err
	}
	if uint32(len(p)) < n {
		return "", ErrShortBuffer
	}
	s := string(p[:n])
	*data = p[n:]
	return s, nil
}
