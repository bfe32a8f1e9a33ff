package voiceconn_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/srsradio/client/srs"
	"github.com/srsradio/client/voicepacket"
	"github.com/srsradio/client/voiceconn"
)

func TestReceiveLoopFiltersKeepAliveReplies(t *testing.T) {
	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer serverConn.Close()

	localGUID := strings.Repeat("Z", 22)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := voiceconn.Connect(ctx, serverConn.LocalAddr().String(), localGUID, nil)
	require.NoError(t, err)
	defer c.Close()

	buf := make([]byte, 1500)
	n, clientAddr, err := serverConn.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, localGUID, string(buf[:n]))

	// Reply with the 22-byte keep-alive ack.
	_, err = serverConn.WriteToUDP([]byte(localGUID), clientAddr)
	require.NoError(t, err)

	pkt := voicepacket.Packet{
		AudioData:   []byte{9, 9, 9},
		Frequencies: []voicepacket.Frequency{{FrequencyHz: 1, Modulation: srs.AM}},
		SenderGUID:  localGUID,
	}
	data, err := pkt.Serialize()
	require.NoError(t, err)
	_, err = serverConn.WriteToUDP(data, clientAddr)
	require.NoError(t, err)

	select {
	case got := <-c.Inbound:
		require.Equal(t, []byte{9, 9, 9}, got.AudioData)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for voice packet, keep-alive reply was not filtered")
	}

	require.Eventually(t, func() bool {
		return c.Healthy(time.Second)
	}, time.Second, 10*time.Millisecond)
}

func TestSendLoopTransmitsPackets(t *testing.T) {
	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer serverConn.Close()

	localGUID := strings.Repeat("Y", 22)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := voiceconn.Connect(ctx, serverConn.LocalAddr().String(), localGUID, nil)
	require.NoError(t, err)
	defer c.Close()

	// Drain the keep-alive ping so it doesn't get mistaken for the packet below.
	buf := make([]byte, 1500)
	_, clientAddr, err := serverConn.ReadFromUDP(buf)
	require.NoError(t, err)
	_ = clientAddr

	c.Outbound <- voicepacket.Packet{
		AudioData:   []byte{1, 2, 3},
		Frequencies: []voicepacket.Frequency{{FrequencyHz: 1, Modulation: srs.FM}},
		SenderGUID:  localGUID,
	}

	serverConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := serverConn.ReadFromUDP(buf)
	require.NoError(t, err)

	got, err := voicepacket.Deserialize(buf[:n])
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got.AudioData)
}
