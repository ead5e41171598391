package radio

// EventType is a protocol-stack lifecycle event.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventJoining
	EventJoined
	EventJoinFailed
	EventTxComplete
	EventReset
	EventLinkDead
	EventLinkAlive

	eventCount
)

func (e EventType) String() string {
	switch e {
	case EventJoining:
		return "EV_JOINING"
	case EventJoined:
		return "EV_JOINED"
	case EventJoinFailed:
		return "EV_JOIN_FAILED"
	case EventTxComplete:
		return "EV_TXCOMPLETE"
	case EventReset:
		return "EV_RESET"
	case EventLinkDead:
		return "EV_LINK_DEAD"
	case EventLinkAlive:
		return "EV_LINK_ALIVE"
	default:
		return "Unknown event"
	}
}
