package session

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/srsradio/client/srsmsg"
)

// pump is the session's single TCP reader goroutine: it applies every
// inbound message to the roster and server settings, then completes any
// request waiters for that message's type. Per-message errors are logged
// and skipped; they never terminate the pump. The pump ends when the
// control channel ends (a transport failure or the server closing it) or
// ctx is cancelled; the Session itself is then left open and its State
// unchanged. Only a VERSION_MISMATCH message closes the whole Session.
func (s *Session) pump(ctx context.Context) {
	defer close(s.pumpDone)

	for {
		select {
		case env, ok := <-s.tcp.Inbound:
			if !ok {
				return
			}
			s.handleMessage(env)
			s.requests.complete(env)

		case err := <-s.tcp.Err:
			if err != nil {
				log.Error("srs session: control channel ended", "err", err)
			}
			return

		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) handleMessage(env srsmsg.Envelope) {
	switch env.MsgType {
	case srsmsg.Sync:
		for _, c := range env.Clients {
			s.roster.InsertOrReplace(c.ClientGUID, c)
		}
		s.settings.set(env.ServerSettings)

	case srsmsg.Update, srsmsg.RadioUpdate:
		if env.Client == nil {
			log.Warn("srs session: update message carried no client", "type", env.MsgType)
			return
		}
		s.roster.MergeFields(env.Client.ClientGUID, *env.Client)

	case srsmsg.ClientDisconnect:
		if env.Client == nil {
			log.Warn("srs session: disconnect message carried no client")
			return
		}
		s.roster.Remove(env.Client.ClientGUID)

	case srsmsg.VersionMismatch:
		log.Error("srs session: server reports protocol version mismatch", "server_version", env.Version, "client_version", srsmsg.Version)
		go s.terminate()

	case srsmsg.ExternalAWACSModePassword, srsmsg.ExternalAWACSModeDisconnect,
		srsmsg.ServerSettingsMsg, srsmsg.Ping:
		// No roster mutation; pump delivers it to any waiter after
		// handleMessage returns.

	default:
		log.Debug("srs session: ignoring message", "type", env.MsgType)
	}
}

// terminate closes the session in response to a fatal protocol condition
// observed by the pump. It runs in its own goroutine because pump itself
// must return promptly for Close to be able to join it.
func (s *Session) terminate() {
	_ = s.Close()
}
