// Package monitor decodes the node's framed diagnostic stream and logs it.
package monitor

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"tempnode/core"
	"tempnode/protocol"
)

// Stats counts what the monitor has seen.
type Stats struct {
	Records    int
	BadFrames  int
	Lost       int
	Uplinks    int
	Collisions int
	Sleeps     int
}

// Monitor turns diagnostic frames into log entries.
type Monitor struct {
	log   *zap.SugaredLogger
	dec   *protocol.FrameDecoder
	stats Stats
}

// New creates a monitor logging through log.
func New(log *zap.SugaredLogger) *Monitor {
	return &Monitor{
		log: log,
		dec: protocol.NewFrameDecoder(4 * protocol.FrameMax),
	}
}

// Feed decodes p and logs every complete record.
func (m *Monitor) Feed(p []byte) {
	for len(p) > 0 {
		n := m.dec.Free()
		if n == 0 {
			m.stats.BadFrames++
			m.dec.Reset()
			continue
		}
		if n > len(p) {
			n = len(p)
		}
		m.dec.Write(p[:n])
		p = p[n:]
		m.drain()
	}
}

func (m *Monitor) drain() {
	for {
		rec, err := m.dec.Next()
		switch {
		case err == nil:
			m.handle(rec)
		case errors.Is(err, protocol.ErrBadFrame):
			m.stats.BadFrames++
			m.log.Debugw("dropped corrupt frame")
		default:
			m.stats.Lost = m.dec.Lost
			return
		}
	}
}

func (m *Monitor) handle(rec protocol.Record) {
	m.stats.Records++
	switch {
	case rec.Text == "Packet queued":
		m.stats.Uplinks++
	case strings.Contains(rec.Text, "TXRXPEND"):
		m.stats.Collisions++
	case strings.HasPrefix(rec.Text, "Sleep (ms) :"):
		m.stats.Sleeps++
	}

	if core.Level(rec.Level) >= core.LevelDebug {
		m.log.Debugw(rec.Text, "seq", rec.Seq)
		return
	}
	m.log.Infow(rec.Text, "seq", rec.Seq)
}

// Stats returns the counters so far.
func (m *Monitor) Stats() Stats { return m.stats }

// Run reads r until EOF or ctx is done. Reads that time out with no data
// are retried.
func (m *Monitor) Run(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			m.Feed(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read diagnostic stream")
		}
	}
}
