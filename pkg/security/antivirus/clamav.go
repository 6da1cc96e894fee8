package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// clamd rejects INSTREAM chunks above StreamMaxLength; 64KiB stays well under it.
const streamChunkSize = 64 << 10

// ClamAVScanner talks to a clamd daemon over TCP ("host:3310") or a unix
// socket ("/var/run/clamav/clamd.sock").
type ClamAVScanner struct {
	address string
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{address: address, timeout: timeout}
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

func (c *ClamAVScanner) dial(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	network := "tcp"
	if strings.HasPrefix(c.address, "/") {
		network = "unix"
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, network, c.address)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Available sends zPING and expects PONG.
func (c *ClamAVScanner) Available(ctx context.Context) bool {
	conn, err := c.dial(ctx, 5*time.Second)
	if err != nil {
		return false
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return false
	}
	reply, err := readReply(conn)
	return err == nil && reply == "PONG"
}

// Scan streams data with zINSTREAM. Transport and daemon errors are reported
// as infected so callers fail closed.
func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data io.Reader) ScanResult {
	result := ScanResult{ScannerName: c.Name()}

	fail := func(err error) ScanResult {
		result.Infected = true
		result.Error = err
		return result
	}

	conn, err := c.dial(ctx, c.timeout)
	if err != nil {
		return fail(fmt.Errorf("connect to clamd: %w", err))
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return fail(fmt.Errorf("send command: %w", err))
	}
	if err := writeChunks(conn, data); err != nil {
		return fail(err)
	}

	reply, err := readReply(conn)
	if err != nil {
		return fail(fmt.Errorf("read reply: %w", err))
	}
	return parseReply(result, reply)
}

// writeChunks frames data as <uint32 big-endian length><bytes> and ends the
// stream with a zero-length chunk.
func writeChunks(w io.Writer, data io.Reader) error {
	buf := make([]byte, streamChunkSize)
	var size [4]byte
	for {
		n, err := data.Read(buf)
		if n > 0 {
			binary.BigEndian.PutUint32(size[:], uint32(n))
			if _, werr := w.Write(size[:]); werr != nil {
				return fmt.Errorf("send chunk size: %w", werr)
			}
			if _, werr := w.Write(buf[:n]); werr != nil {
				return fmt.Errorf("send chunk: %w", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read upload: %w", err)
		}
	}
	binary.BigEndian.PutUint32(size[:], 0)
	if _, err := w.Write(size[:]); err != nil {
		return fmt.Errorf("send end of stream: %w", err)
	}
	return nil
}

// readReply reads one NUL-terminated clamd reply. A reply cut short by EOF
// is still returned.
func readReply(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\x00')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(strings.TrimRight(line, "\x00")), nil
}

// parseReply interprets "stream: OK", "stream: <name> FOUND" and
// "<message> ERROR".
func parseReply(result ScanResult, reply string) ScanResult {
	switch {
	case strings.HasSuffix(reply, "FOUND"):
		result.Infected = true
		name := strings.TrimSuffix(reply, "FOUND")
		if i := strings.Index(name, ":"); i >= 0 {
			name = name[i+1:]
		}
		result.ThreatName = strings.TrimSpace(name)
	case strings.HasSuffix(reply, "ERROR"):
		result.Infected = true
		result.Error = fmt.Errorf("clamd: %s", reply)
	case strings.HasSuffix(reply, "OK"):
	default:
		result.Infected = true
		result.Error = fmt.Errorf("clamd: unexpected reply %q", reply)
	}
	return result
}
