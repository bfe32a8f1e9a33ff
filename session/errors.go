package session

import "errors"

// ErrTimedOut is returned by Connect when the SYNC reply does not arrive
// within SyncTimeout. LogInAWACS does not return it: its own timeout
// collapses to false.
var ErrTimedOut = errors.New("session: timed out waiting for reply")

// ErrConnectionBroken names an unexpected end of the TCP or UDP transport.
// No Session method returns it: a failed control channel is logged and ends
// the message pump, and a Connect still waiting for SYNC then returns
// ErrTimedOut.
var ErrConnectionBroken = errors.New("session: connection broken")

// ErrProtocolError names a malformed or unparseable server message. No
// Session method returns it: a malformed line ends the control channel
// (see ErrConnectionBroken), so a malformed SYNC reply makes Connect return
// ErrTimedOut.
var ErrProtocolError = errors.New("session: protocol error")

// ErrVersionMismatch names the server's MessageType 6 (VERSION_MISMATCH).
// No Session method returns it: the pump logs the message and closes the
// Session, so State reports Closed afterwards.
var ErrVersionMismatch = errors.New("session: server reported a version mismatch")

// ErrInvalidSlot is returned when a radio index outside 0..srs.NumRadios-1
// is passed to TuneRadio or Transmit.
var ErrInvalidSlot = errors.New("session: invalid radio slot")

// ErrClosed names a Session that has been closed. No Session method
// returns it; operations attempted after Close are not rejected.
var ErrClosed = errors.New("session: closed")
