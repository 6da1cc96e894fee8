package antivirus

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClamd answers one zINSTREAM request with reply and sends the received
// payload on got.
func fakeClamd(t *testing.T, reply string) (string, <-chan []byte) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		cmd := make([]byte, len("zINSTREAM\x00"))
		if _, err := io.ReadFull(conn, cmd); err != nil {
			return
		}
		var payload []byte
		for {
			var size uint32
			if err := binary.Read(conn, binary.BigEndian, &size); err != nil {
				return
			}
			if size == 0 {
				break
			}
			chunk := make([]byte, size)
			if _, err := io.ReadFull(conn, chunk); err != nil {
				return
			}
			payload = append(payload, chunk...)
		}
		got <- payload
		_, _ = conn.Write([]byte(reply + "\x00"))
	}()
	return ln.Addr().String(), got
}

func TestClamAVScanner_Scan(t *testing.T) {
	t.Run("Should report clean files", func(t *testing.T) {
		addr, got := fakeClamd(t, "stream: OK")
		scanner := NewClamAVScanner(addr, 5*time.Second)

		res := scanner.Scan(context.Background(), "cv.pdf", strings.NewReader("%PDF-1.4"))

		assert.False(t, res.Infected)
		assert.NoError(t, res.Error)
		assert.Equal(t, "clamav", res.ScannerName)
		assert.Equal(t, []byte("%PDF-1.4"), <-got)
	})

	t.Run("Should extract the threat name", func(t *testing.T) {
		addr, _ := fakeClamd(t, "stream: Eicar-Signature FOUND")
		scanner := NewClamAVScanner(addr, 5*time.Second)

		res := scanner.Scan(context.Background(), "eicar.txt", strings.NewReader("X5O!P%@AP"))

		assert.True(t, res.Infected)
		assert.Equal(t, "Eicar-Signature", res.ThreatName)
		assert.NoError(t, res.Error)
	})

	t.Run("Should fail closed on scan errors", func(t *testing.T) {
		addr, _ := fakeClamd(t, "stream: Size limit exceeded ERROR")
		scanner := NewClamAVScanner(addr, 5*time.Second)

		res := scanner.Scan(context.Background(), "big.pdf", strings.NewReader("data"))

		assert.True(t, res.Infected)
		assert.Error(t, res.Error)
	})

	t.Run("Should fail closed when clamd is unreachable", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()
		require.NoError(t, ln.Close())

		scanner := NewClamAVScanner(addr, time.Second)
		res := scanner.Scan(context.Background(), "cv.pdf", strings.NewReader("data"))

		assert.True(t, res.Infected)
		assert.Error(t, res.Error)
		assert.False(t, scanner.Available(context.Background()))
	})
}

func TestNoOpScanner(t *testing.T) {
	s := NewNoOpScanner()
	res := s.Scan(context.Background(), "a.png", strings.NewReader("x"))

	assert.False(t, res.Infected)
	assert.True(t, s.Available(context.Background()))
	assert.Equal(t, "noop", s.Name())
}

func TestClamAVScanner_Available(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		cmd := make([]byte, len("zPING\x00"))
		if _, err := io.ReadFull(conn, cmd); err != nil {
			return
		}
		_, _ = conn.Write([]byte("PONG\x00"))
	}()

	assert.True(t, NewClamAVScanner(ln.Addr().String(), time.Second).Available(context.Background()))
}

func TestParseReply(t *testing.T) {
	cases := []struct {
		reply    string
		infected bool
		threat   string
		hasErr   bool
	}{
		{"stream: OK", false, "", false},
		{"stream: Win.Test.EICAR_HDB-1 FOUND", true, "Win.Test.EICAR_HDB-1", false},
		{"INSTREAM size limit exceeded. ERROR", true, "", true},
		{"garbage", true, "", true},
	}
	for _, tc := range cases {
		t.Run("Should parse "+tc.reply, func(t *testing.T) {
			res := parseReply(ScanResult{}, tc.reply)
			assert.Equal(t, tc.infected, res.Infected)
			assert.Equal(t, tc.threat, res.ThreatName)
			assert.Equal(t, tc.hasErr, res.Error != nil)
		})
	}
}
