// Package voicepacket implements the bit-exact, little-endian, variable
// length voice frame carried over the SRS UDP channel.
//
// Frame layout (all multi-byte integers little-endian):
//
//	offset  size   field
//	0       2      total_packet_length (u16)
//	2       2      audio_length        (u16)
//	4       2      frequency_length    (u16)
//	6       A      audio_data          (A = audio_length)
//	6+A     F      frequency_segment   (F = frequency_length = 10*N)
//	                 per frequency: freq_hz f64, modulation u8, encryption u8
//	6+A+F   4      unit_id      (u32)
//	...     8      packet_id    (u64)
//	...     1      hop_count    (u8)
//	end-44  22     original_client_guid (ASCII)
//	end-22  22     sender_client_guid  (ASCII)
package voicepacket

import (
	"encoding/binary"
	"math"

	"github.com/srsradio/client/guid"
	"github.com/srsradio/client/srs"
)

const (
	headerLength          = 2 + 2 + 2
	singleFrequencyLength = 8 + 1 + 1
	trailerLength         = 4 + 8 + 1 + guid.Length + guid.Length
)

// Frequency is a single tuned frequency carried by a voice packet.
type Frequency struct {
	FrequencyHz float64
	Modulation  srs.Modulation
}

// Packet is a single voice transmission frame.
type Packet struct {
	AudioData   []byte
	Frequencies []Frequency
	UnitID      uint32
	PacketID    uint64
	HopCount    uint8

	// OriginalClientGUID identifies the client whose transmission this is,
	// for relay purposes. If empty at Serialize time, it defaults to
	// SenderGUID.
	OriginalClientGUID string

	// SenderGUID identifies the client sending this datagram (which, after
	// a relay hop, may differ from OriginalClientGUID).
	SenderGUID string
}

// Serialize encodes p into its wire representation. It fails with
// ErrInvalidGUID if either GUID is not exactly guid.Length ASCII bytes
// after defaulting.
func (p Packet) Serialize() ([]byte, error) {
	original := p.OriginalClientGUID
	if original == "" {
		original = p.SenderGUID
	}

	if len(original) != guid.Length || len(p.SenderGUID) != guid.Length {
		return nil, ErrInvalidGUID
	}
	for i := 0; i < guid.Length; i++ {
		if original[i] > 0x7f || p.SenderGUID[i] > 0x7f {
			return nil, ErrInvalidGUID
		}
	}

	audioLength := len(p.AudioData)
	frequencyLength := singleFrequencyLength * len(p.Frequencies)
	totalLength := headerLength + audioLength + frequencyLength + trailerLength

	buf := make([]byte, totalLength)

	binary.LittleEndian.PutUint16(buf[0:2], uint16(totalLength))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(audioLength))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(frequencyLength))

	offset := headerLength
	offset += copy(buf[offset:], p.AudioData)

	for _, f := range p.Frequencies {
		binary.LittleEndian.PutUint64(buf[offset:offset+8], math.Float64bits(f.FrequencyHz))
		buf[offset+8] = byte(f.Modulation)
		buf[offset+9] = 0 // encryption byte is always 0 on send
		offset += singleFrequencyLength
	}

	binary.LittleEndian.PutUint32(buf[offset:offset+4], p.UnitID)
	offset += 4
	binary.LittleEndian.PutUint64(buf[offset:offset+8], p.PacketID)
	offset += 8
	buf[offset] = p.HopCount
	offset++

	offset += copy(buf[offset:], original)
	copy(buf[offset:], p.SenderGUID)

	return buf, nil
}

// Deserialize decodes a wire frame produced by Serialize. It verifies that
// the header's declared total_packet_length matches len(data) and fails
// with ErrTruncatedFrame on mismatch -- a deliberate strengthening over the
// source, which reads but does not re-validate this field.
func Deserialize(data []byte) (Packet, error) {
	if len(data) < headerLength+trailerLength {
		return Packet{}, ErrTruncatedFrame
	}

	totalLength := binary.LittleEndian.Uint16(data[0:2])
	audioLength := binary.LittleEndian.Uint16(data[2:4])
	frequencyLength := binary.LittleEndian.Uint16(data[4:6])

	if int(totalLength) != len(data) {
		return Packet{}, ErrTruncatedFrame
	}
	if headerLength+int(audioLength)+int(frequencyLength)+trailerLength != len(data) {
		return Packet{}, ErrTruncatedFrame
	}

	audioData := make([]byte, audioLength)
	copy(audioData, data[headerLength:headerLength+int(audioLength)])

	freqStart := headerLength + int(audioLength)
	frequencies := make([]Frequency, 0, int(frequencyLength)/singleFrequencyLength)
	for off := 0; off < int(frequencyLength); off += singleFrequencyLength {
		base := freqStart + off
		bits := binary.LittleEndian.Uint64(data[base : base+8])
		modByte := data[base+8]

		if modByte > byte(srs.SINCGARS) {
			return Packet{}, ErrUnknownModulation
		}

		frequencies = append(frequencies, Frequency{
			FrequencyHz: math.Float64frombits(bits),
			Modulation:  srs.Modulation(modByte),
		})
	}

	trailerStart := freqStart + int(frequencyLength)
	unitID := binary.LittleEndian.Uint32(data[trailerStart : trailerStart+4])
	packetID := binary.LittleEndian.Uint64(data[trailerStart+4 : trailerStart+12])
	hopCount := data[trailerStart+12]

	n := len(data)
	originalGUID := string(data[n-44 : n-22])
	senderGUID := string(data[n-22:])

	return Packet{
		AudioData:          audioData,
		Frequencies:        frequencies,
		UnitID:             unitID,
		PacketID:           packetID,
		HopCount:           hopCount,
		OriginalClientGUID: originalGUID,
		SenderGUID:         senderGUID,
	}, nil
}
