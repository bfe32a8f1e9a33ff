// Package tcpconn implements the SRS control-channel transport: a TCP
// socket carrying one line-delimited JSON message per line, bound to
// inbound/outbound channels.
package tcpconn

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/srsradio/client/srsmsg"
)

// ErrConnectionBroken is reported when the socket closes mid-line, or any
// other I/O error ends the reader loop.
var ErrConnectionBroken = errors.New("tcpconn: connection broken")

// ErrProtocolError is reported when a line cannot be parsed as a
// srsmsg.Envelope.
var ErrProtocolError = errors.New("tcpconn: protocol error")

// writeRateLimit bounds how fast the writer goroutine will drain the
// outbound channel, the same throttling role golang.org/x/time/rate plays
// for the teacher's gateway command writer.
const writeRateLimit = 20 // messages per second

// Conn is a live TCP control-channel connection. The zero value is not
// usable; construct one with Connect.
type Conn struct {
	Inbound  <-chan srsmsg.Envelope
	Outbound chan<- srsmsg.Envelope

	// Err receives exactly one value when the reader loop terminates: nil
	// if the peer closed the connection at a line boundary, otherwise an
	// error (a local Close also ends the reader with ErrConnectionBroken).
	// The writer loop does not report here; it stops silently on a write
	// error.
	Err <-chan error

	conn      net.Conn
	closeOnce sync.Once
}

// Connect dials addr over TCP and starts the reader and writer goroutines.
// The returned Conn's channels remain valid until Err fires.
func Connect(ctx context.Context, addr string) (*Conn, error) {
	dialer := net.Dialer{}
	nc, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "tcpconn: dial")
	}

	inbound := make(chan srsmsg.Envelope, 32)
	outbound := make(chan srsmsg.Envelope, 32)
	errCh := make(chan error, 1)

	c := &Conn{
		Inbound:  inbound,
		Outbound: outbound,
		Err:      errCh,
		conn:     nc,
	}

	go c.readLoop(inbound, errCh)
	go c.writeLoop(outbound)

	return c, nil
}

// Close closes the underlying socket, unblocking and terminating both
// goroutines.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

func (c *Conn) readLoop(inbound chan<- srsmsg.Envelope, errCh chan<- error) {
	defer close(inbound)

	reader := bufio.NewReader(c.conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" {
				errCh <- nil
				return
			}
			log.Debug("srs tcp reader: connection ended mid-line", "err", err)
			errCh <- errors.Wrap(ErrConnectionBroken, err.Error())
			return
		}

		var fields map[string]json.RawMessage
		if jsonErr := json.Unmarshal([]byte(line), &fields); jsonErr != nil {
			log.Warn("srs tcp reader: malformed message", "err", jsonErr)
			errCh <- errors.Wrap(ErrProtocolError, jsonErr.Error())
			return
		}
		if _, ok := fields["MsgType"]; !ok {
			log.Warn("srs tcp reader: message missing MsgType")
			errCh <- errors.Wrap(ErrProtocolError, "message missing MsgType")
			return
		}

		var env srsmsg.Envelope
		if jsonErr := json.Unmarshal([]byte(line), &env); jsonErr != nil {
			log.Warn("srs tcp reader: malformed message", "err", jsonErr)
			errCh <- errors.Wrap(ErrProtocolError, jsonErr.Error())
			return
		}

		log.Debug("srs tcp reader: received message", "type", env.MsgType)
		inbound <- env
	}
}

func (c *Conn) writeLoop(outbound <-chan srsmsg.Envelope) {
	limiter := rate.NewLimiter(rate.Limit(writeRateLimit), writeRateLimit)
	writer := bufio.NewWriter(c.conn)

	for env := range outbound {
		if err := limiter.Wait(context.Background()); err != nil {
			return
		}

		data, err := json.Marshal(env)
		if err != nil {
			log.Error("srs tcp writer: failed to encode message", "err", err)
			continue
		}

		log.Debug("srs tcp writer: sending message", "type", env.MsgType)

		data = append(data, '\n')
		if _, err := writer.Write(data); err != nil {
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}
	}
}

// DialTimeout is a convenience wrapper around Connect with a bounded
// connection attempt, for callers that don't want to build their own
// context.
func DialTimeout(addr string, timeout time.Duration) (*Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Connect(ctx, addr)
}
