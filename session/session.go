// Package session ties together the TCP control channel, the UDP voice
// channel, the roster, and request correlation into the public SRS client
// API: connect, tune a radio, log in as external AWACS, and
// transmit/receive voice.
package session

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp"
	goerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"

	"github.com/srsradio/client/guid"
	"github.com/srsradio/client/srs"
	"github.com/srsradio/client/srsmsg"
	"github.com/srsradio/client/tcpconn"
	"github.com/srsradio/client/voiceconn"
	"github.com/srsradio/client/voicepacket"
)

// State is a Session's position in its connection lifecycle.
type State int32

const (
	Idle State = iota
	Connecting
	Syncing
	Connected
	AuthPending
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Syncing:
		return "syncing"
	case Connected:
		return "connected"
	case AuthPending:
		return "auth_pending"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// SyncTimeout is how long Connect waits for the server's SYNC reply.
const SyncTimeout = 5 * time.Second

// AWACSLoginTimeout is how long LogInAWACS waits for its reply.
const AWACSLoginTimeout = 5 * time.Second

// Session is a single client's connection to one SRS server. The zero
// value is not usable; construct one with New.
type Session struct {
	// Debug, when true, makes Connect pretty-print roster and
	// server-settings snapshots with k0kubun/pp once the SYNC reply has
	// arrived -- the Go
	// analogue of the reference client's pprint.pprint(...) debug calls.
	Debug bool

	// MetricsRegistry, if non-nil, receives the voice transport's
	// Prometheus collectors.
	MetricsRegistry prometheus.Registerer

	guid string
	name string

	roster   *srs.Roster
	settings settingsBox

	tcp   *tcpconn.Conn
	voice *voiceconn.Conn

	packetID atomic.Uint64
	state    atomic.Int32

	requests pendingRequests

	cancel   context.CancelFunc
	pumpDone chan struct{}
}

type settingsBox struct {
	mu    sync.RWMutex
	value srsmsg.ServerSettings
}

func (b *settingsBox) set(s srsmsg.ServerSettings) {
	b.mu.Lock()
	b.value = s
	b.mu.Unlock()
}

func (b *settingsBox) get() srsmsg.ServerSettings {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// New constructs a Session with a freshly generated local GUID and the
// given display name. The local client appears in the roster immediately,
// with the default (spectator, all radios disabled) client info.
func New(name string) *Session {
	g := guid.New()

	s := &Session{
		guid:   g,
		name:   name,
		roster: srs.NewRoster(),
	}
	s.state.Store(int32(Idle))
	s.roster.InsertOrReplace(g, srs.NewDefaultClient(g, name))
	s.requests.init()

	return s
}

// GUID returns the local client's GUID, stable for the life of the Session.
func (s *Session) GUID() string { return s.guid }

// State returns the Session's current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Roster returns a read-only snapshot of every known client, including the
// local one.
func (s *Session) Roster() map[string]srs.ClientInfo { return s.roster.Snapshot() }

// MyInfo returns the local client's current record.
func (s *Session) MyInfo() srs.ClientInfo {
	info, _ := s.roster.Get(s.guid)
	return info
}

// ServerSettings returns the most recently received server settings map.
// It is empty until a SYNC reply has been observed.
func (s *Session) ServerSettings() srsmsg.ServerSettings { return s.settings.get() }

// Connect opens the TCP control channel to host:port, performs the SYNC
// handshake, and then opens the UDP voice channel to the same address.
// It returns once both are ready.
func (s *Session) Connect(ctx context.Context, host string, port int) error {
	if !s.state.CompareAndSwap(int32(Idle), int32(Connecting)) {
		return goerrors.New("session: Connect called more than once")
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	log.Info("srs session: connecting", "addr", addr)

	tcp, err := tcpconn.Connect(ctx, addr)
	if err != nil {
		s.state.Store(int32(Closed))
		return goerrors.Wrap(err, "session: connect")
	}
	s.tcp = tcp

	pumpCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.pumpDone = make(chan struct{})
	go s.pump(pumpCtx)

	s.state.Store(int32(Syncing))

	waitSync := s.requests.register(srsmsg.Sync)
	s.tcp.Outbound <- srsmsg.SyncRequest(s.MyInfo())

	select {
	case <-waitSync:
		// fallthrough to voice setup below
	case <-time.After(SyncTimeout):
		s.state.Store(int32(Closed))
		cancel()
		return ErrTimedOut
	case <-ctx.Done():
		s.state.Store(int32(Closed))
		cancel()
		return ctx.Err()
	}

	if s.Debug {
		s.DebugDump()
	}

	log.Info("srs session: starting voice channel", "addr", addr)

	var metrics *voiceconn.Metrics
	if s.MetricsRegistry != nil {
		metrics = voiceconn.NewMetrics(s.MetricsRegistry)
	}

	voice, err := voiceconn.Connect(pumpCtx, addr, s.guid, metrics)
	if err != nil {
		s.state.Store(int32(Closed))
		cancel()
		return goerrors.Wrap(err, "session: voice connect")
	}
	s.voice = voice

	s.state.Store(int32(Connected))
	log.Info("srs session: connected", "guid", s.guid)

	return nil
}

// TuneRadio replaces radio slot i of the local client's radio configuration
// and sends a RADIO_UPDATE carrying the full, updated client info. The
// local change is visible to MyInfo immediately, regardless of whether the
// server ever echoes it back -- matching the reference client, which
// mutates its own roster entry synchronously before sending the update.
func (s *Session) TuneRadio(i int, frequencyHz float64, modulation srs.Modulation) error {
	if i < 0 || i >= srs.NumRadios {
		return ErrInvalidSlot
	}

	info := s.MyInfo()
	info.RadioInfo.Radios[i] = srs.NewRadioInformation(frequencyHz, modulation)
	s.roster.InsertOrReplace(s.guid, info)

	if s.tcp != nil {
		s.tcp.Outbound <- srsmsg.RadioUpdateRequest(info)
	}
	return nil
}

// LogInAWACS requests a role change into the external AWACS observer role,
// authenticated by password. It returns true only if the server's reply
// shows a non-spectator coalition; a timeout collapses to false, matching
// the reference client's behavior.
func (s *Session) LogInAWACS(password string) bool {
	if s.state.CompareAndSwap(int32(Connected), int32(AuthPending)) {
		defer s.state.CompareAndSwap(int32(AuthPending), int32(Connected))
	}

	wait := s.requests.register(srsmsg.ExternalAWACSModePassword)
	s.tcp.Outbound <- srsmsg.ExternalAWACSModePasswordRequest(s.MyInfo(), password)

	select {
	case env := <-wait:
		if env.Client == nil {
			return false
		}
		return env.Client.Coalition != srs.Spectator
	case <-time.After(AWACSLoginTimeout):
		log.Warn("srs session: timed out logging in to external AWACS mode")
		return false
	}
}

// Transmit builds a voice packet carrying audioData on the frequency and
// modulation currently tuned on radio slot radioIndex, with a monotonically
// increasing packet ID, and enqueues it on the UDP voice channel.
func (s *Session) Transmit(audioData []byte, radioIndex int) error {
	if radioIndex < 0 || radioIndex >= srs.NumRadios {
		return ErrInvalidSlot
	}

	info := s.MyInfo()
	radio := info.RadioInfo.Radios[radioIndex]

	pkt := voicepacket.Packet{
		AudioData: audioData,
		Frequencies: []voicepacket.Frequency{
			{FrequencyHz: radio.Freq, Modulation: radio.Modulation},
		},
		UnitID:     info.RadioInfo.UnitID,
		PacketID:   s.packetID.Inc(),
		HopCount:   0,
		SenderGUID: s.guid,
	}

	s.voice.Outbound <- pkt
	return nil
}

// VoiceInbound exposes received, decoded voice packets from other clients.
func (s *Session) VoiceInbound() <-chan voicepacket.Packet { return s.voice.Inbound }

// Close tears down the message pump and both transports. It is safe to
// call more than once.
func (s *Session) Close() error {
	if !s.state.CompareAndSwap(int32(Connected), int32(Closed)) {
		// Also allow closing from any other non-terminal state (e.g. a
		// Connect that's still Syncing).
		prev := State(s.state.Swap(int32(Closed)))
		if prev == Closed {
			return nil
		}
	}

	if s.cancel != nil {
		s.cancel()
	}
	if s.tcp != nil {
		s.tcp.Close()
	}
	if s.voice != nil {
		s.voice.Close()
	}
	if s.pumpDone != nil {
		<-s.pumpDone
	}
	return nil
}

// DebugDump pretty-prints the current roster and server settings using
// k0kubun/pp -- the direct analogue of the reference client's
// pprint.pprint(...) debug calls in client.py.
func (s *Session) DebugDump() {
	pp.Println("roster:", s.roster.Snapshot())
	pp.Println("server settings:", s.settings.get())
}
