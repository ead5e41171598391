package node

import (
	"tempnode/core"
	"tempnode/protocol"
	"tempnode/sensor"
)

// PayloadSize is the uplink length for n sensors: one battery byte and two
// bytes per sensor.
func PayloadSize(n int) int {
	return 1 + 2*n
}

// BuildPayload writes the battery level followed by one little-endian raw
// reading per discovered sensor into out. A sensor that cannot be addressed
// or read contributes sensor.DisconnectedRaw.
func BuildPayload(out *protocol.ScratchOutput, battery uint8, bus sensor.Bus) []byte {
	out.Reset()
	out.PutByte(battery)

	n := bus.DeviceCount()
	for i := 0; i < n; i++ {
		raw := sensor.DisconnectedRaw
		addr, ok := bus.Address(i)
		if !ok {
			core.Debugv(core.LevelDebug, "no address for sensor ", int64(i))
		} else if v, ok := bus.Read(addr); !ok {
			core.Debug(core.LevelDebug, "sensor "+addr.String()+" disconnected")
		} else {
			raw = v
		}
		out.PutInt16LE(raw)
	}
	return out.Result()
}
