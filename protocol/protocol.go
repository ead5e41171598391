// Package protocol implements the node's byte-level encodings: payload
// buffers, VLQ integers, CRC16 and the framed diagnostic link.
package protocol

// Frame layout: [len][seq] payload [crc hi][crc lo][sync].
const (
	FrameHeaderSize  = 2
	FrameTrailerSize = 3
	FrameMin         = FrameHeaderSize + FrameTrailerSize
	FrameMax         = 128

	framePosLen = 0
	framePosSeq = 1

	// FrameSync terminates every frame.
	FrameSync = 0x7E

	// FrameDest marks node-originated frames; the low nibble is the sequence.
	FrameDest    = 0x10
	FrameSeqMask = 0x0F
)
