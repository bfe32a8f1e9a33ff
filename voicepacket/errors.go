package voicepacket

import "errors"

// ErrTruncatedFrame is returned when a buffer's length differs from its own
// declared total_packet_length or from the sum of its header's section
// lengths, or is shorter than the fixed header/trailer require.
var ErrTruncatedFrame = errors.New("voicepacket: truncated frame")

// ErrInvalidGUID is returned when a GUID field is not exactly guid.Length
// ASCII bytes.
var ErrInvalidGUID = errors.New("voicepacket: invalid guid")

// ErrUnknownModulation is returned by Deserialize when a frequency record's
// modulation byte does not map into the known Modulation domain. The codec
// is strict: it does not expose opaque integers for unrecognized values.
var ErrUnknownModulation = errors.New("voicepacket: unknown modulation")
