package voicepacket_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srsradio/client/srs"
	"github.com/srsradio/client/voicepacket"
)

func repeatGUID(c string) string {
	return strings.Repeat(c, 22)
}

func TestMinimalVoicePacketRoundTrip(t *testing.T) {
	p := voicepacket.Packet{
		AudioData:   []byte{0x00, 0x01, 0x02},
		Frequencies: []voicepacket.Frequency{{FrequencyHz: 251_000_000.0, Modulation: srs.AM}},
		UnitID:      7,
		PacketID:    42,
		HopCount:    0,
		SenderGUID:  repeatGUID("A"),
	}

	data, err := p.Serialize()
	require.NoError(t, err)
	require.Len(t, data, 76) // 6 + 3 + 10 + 57

	got, err := voicepacket.Deserialize(data)
	require.NoError(t, err)

	require.Equal(t, repeatGUID("A"), got.OriginalClientGUID)
	require.Equal(t, repeatGUID("A"), got.SenderGUID)
	require.Len(t, got.Frequencies, 1)
	require.Equal(t, srs.AM, got.Frequencies[0].Modulation)
	require.Equal(t, 251_000_000.0, got.Frequencies[0].FrequencyHz)
	require.Equal(t, []byte{0x00, 0x01, 0x02}, got.AudioData)
	require.Equal(t, uint32(7), got.UnitID)
	require.Equal(t, uint64(42), got.PacketID)
}

func TestTwoFrequencyPacketLengths(t *testing.T) {
	p := voicepacket.Packet{
		AudioData: make([]byte, 512),
		Frequencies: []voicepacket.Frequency{
			{FrequencyHz: 243_000_000.0, Modulation: srs.AM},
			{FrequencyHz: 30_000_000.0, Modulation: srs.FM},
		},
		UnitID:     1,
		PacketID:   1,
		SenderGUID: repeatGUID("B"),
	}

	data, err := p.Serialize()
	require.NoError(t, err)
	require.Len(t, data, 595) // 6 + 512 + 20 + 57

	got, err := voicepacket.Deserialize(data)
	require.NoError(t, err)
	require.Len(t, got.Frequencies, 2)
	require.Equal(t, srs.FM, got.Frequencies[1].Modulation)
}

func TestSerializeDefaultsOriginalGUIDToSender(t *testing.T) {
	p := voicepacket.Packet{
		AudioData:  []byte("hi"),
		SenderGUID: repeatGUID("C"),
	}

	data, err := p.Serialize()
	require.NoError(t, err)

	got, err := voicepacket.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, repeatGUID("C"), got.OriginalClientGUID)
}

func TestSerializeRejectsShortGUID(t *testing.T) {
	p := voicepacket.Packet{SenderGUID: "too-short"}

	_, err := p.Serialize()
	require.ErrorIs(t, err, voicepacket.ErrInvalidGUID)
}

func TestDeserializeRejectsTruncation(t *testing.T) {
	p := voicepacket.Packet{
		AudioData:   []byte{0x00, 0x01, 0x02},
		Frequencies: []voicepacket.Frequency{{FrequencyHz: 251_000_000.0, Modulation: srs.AM}},
		SenderGUID:  repeatGUID("A"),
	}
	data, err := p.Serialize()
	require.NoError(t, err)

	for l := 0; l < len(data); l++ {
		_, err := voicepacket.Deserialize(data[:l])
		require.Error(t, err, "truncating to %d bytes must not deserialize successfully", l)
	}
}

func TestDeserializeRejectsUnknownModulation(t *testing.T) {
	p := voicepacket.Packet{
		AudioData:   []byte{0x00},
		Frequencies: []voicepacket.Frequency{{FrequencyHz: 1.0, Modulation: srs.SINCGARS}},
		SenderGUID:  repeatGUID("D"),
	}
	data, err := p.Serialize()
	require.NoError(t, err)

	// Corrupt the modulation byte of the single frequency record to a value
	// outside the known enum domain.
	data[6+1+8] = 200

	_, err = voicepacket.Deserialize(data)
	require.ErrorIs(t, err, voicepacket.ErrUnknownModulation)
}

func TestTotalPacketLengthMatchesBufferLength(t *testing.T) {
	p := voicepacket.Packet{
		AudioData:   []byte{1, 2, 3, 4, 5},
		Frequencies: []voicepacket.Frequency{{FrequencyHz: 100, Modulation: srs.Intercom}},
		SenderGUID:  repeatGUID("E"),
	}
	data, err := p.Serialize()
	require.NoError(t, err)

	declared := uint16(data[0]) | uint16(data[1])<<8
	require.EqualValues(t, len(data), declared)
}
