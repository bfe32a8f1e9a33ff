// Package voiceconn implements the SRS UDP voice transport: a connected
// datagram endpoint carrying keep-alive pings and framed voice packets.
package voiceconn

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/srsradio/client/internal/heart"
	"github.com/srsradio/client/voicepacket"
)

// KeepAlivePeriod is the interval on which the client pings the server to
// keep NAT/firewall state alive and signal health.
const KeepAlivePeriod = 15 * time.Second

// recvBufferSize is large enough for any SRS voice datagram in practice;
// oversized reads are simply truncated to this size by Read, which
// would then fail the frame's own length check.
const recvBufferSize = 1500

// Metrics holds the voice transport's Prometheus collectors. NewMetrics
// registers them immediately when given a registerer. A nil *Metrics is
// valid and simply skips collection.
type Metrics struct {
	Sent                 prometheus.Counter
	Received             prometheus.Counter
	DroppedBadFrame      prometheus.Counter
	SecondsSinceLastSeen prometheus.Gauge
}

// NewMetrics constructs and registers a Metrics set against reg. If reg is
// nil, the returned Metrics still works but is not exported anywhere.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "srs_voice_packets_sent_total",
			Help: "Voice datagrams transmitted.",
		}),
		Received: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "srs_voice_packets_received_total",
			Help: "Voice datagrams received and successfully decoded.",
		}),
		DroppedBadFrame: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "srs_voice_packets_dropped_total",
			Help: "Inbound datagrams dropped due to codec errors.",
		}),
		SecondsSinceLastSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "srs_voice_seconds_since_last_datagram",
			Help: "Seconds since any datagram (keep-alive reply or voice) was last received.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Sent, m.Received, m.DroppedBadFrame, m.SecondsSinceLastSeen)
	}
	return m
}

// Conn is a live UDP voice connection.
type Conn struct {
	Inbound  <-chan voicepacket.Packet
	Outbound chan<- voicepacket.Packet

	conn    *net.UDPConn
	beat    *heart.Beat
	metrics *Metrics

	closeOnce sync.Once
}

// Connect opens a connected UDP socket to addr and starts the keep-alive,
// send, and receive goroutines. guid is the local client's GUID, sent as
// the bare keep-alive ping payload.
func Connect(ctx context.Context, addr, guid string, metrics *Metrics) (*Conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "voiceconn: resolve")
	}

	uc, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, errors.Wrap(err, "voiceconn: dial")
	}

	inbound := make(chan voicepacket.Packet, 64)
	outbound := make(chan voicepacket.Packet, 64)

	c := &Conn{
		Inbound:  inbound,
		Outbound: outbound,
		conn:     uc,
		metrics:  metrics,
	}

	c.beat = heart.NewBeat(KeepAlivePeriod, func(ctx context.Context) error {
		// Refresh the staleness gauge once per keep-alive tick.
		if c.metrics != nil {
			c.metrics.SecondsSinceLastSeen.Set(c.beat.Silence().Seconds())
		}
		_, err := c.conn.Write([]byte(guid))
		return err
	})

	go func() {
		if err := c.beat.Run(ctx); err != nil && errors.Cause(err) != context.Canceled {
			log.Debug("srs voice keep-alive stopped", "err", err)
		}
	}()
	go c.sendLoop(outbound)
	go c.receiveLoop(inbound)

	return c, nil
}

// Healthy reports whether a datagram (keep-alive reply or voice) has been
// seen within maxSilence. The keep-alive pacemaker's start counts as a
// sighting, so a connection that has received nothing is reported healthy
// until maxSilence has passed since Connect.
func (c *Conn) Healthy(maxSilence time.Duration) bool {
	return c.beat.Silence() <= maxSilence
}

// Close stops the keep-alive pacemaker and closes the underlying socket,
// which unblocks the send and receive goroutines.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.beat.Stop()
		err = c.conn.Close()
	})
	return err
}

func (c *Conn) sendLoop(outbound <-chan voicepacket.Packet) {
	for pkt := range outbound {
		data, err := pkt.Serialize()
		if err != nil {
			log.Warn("srs voice sender: failed to serialize packet", "err", err)
			continue
		}
		if _, err := c.conn.Write(data); err != nil {
			return
		}
		if c.metrics != nil {
			c.metrics.Sent.Inc()
		}
	}
}

func (c *Conn) receiveLoop(inbound chan<- voicepacket.Packet) {
	defer close(inbound)

	buf := make([]byte, recvBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			return
		}

		c.beat.Echo()
		if c.metrics != nil {
			c.metrics.SecondsSinceLastSeen.Set(0)
		}

		if n == 22 {
			// Keep-alive reply: discard, health already updated above.
			continue
		}

		pkt, err := voicepacket.Deserialize(buf[:n])
		if err != nil {
			log.Debug("srs voice receiver: dropping malformed datagram", "err", err)
			if c.metrics != nil {
				c.metrics.DroppedBadFrame.Inc()
			}
			continue
		}

		if c.metrics != nil {
			c.metrics.Received.Inc()
		}
		inbound <- pkt
	}
}
