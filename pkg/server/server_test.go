package server

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Wa4h1h/tftp-codec/pkg/responder"
	"github.com/Wa4h1h/tftp-codec/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type peer struct {
	t    *testing.T
	conn net.PacketConn
}

func startServer(t *testing.T) (*Server, string) {
	t.Helper()

	dir := t.TempDir()
	s := NewServer(zap.NewNop().Sugar(), "0", 1, 1, 3, dir)
	require.NoError(t, s.Listen())

	go func() {
		_ = s.Serve()
	}()

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s, dir
}

func newPeer(t *testing.T) *peer {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return &peer{t: t, conn: conn}
}

func (p *peer) send(b []byte, to *net.UDPAddr) {
	_, err := p.conn.WriteTo(b, to)
	require.NoError(p.t, err)
}

func (p *peer) recv() ([]byte, *net.UDPAddr) {
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	buf := make([]byte, types.DatagramSize)
	n, from, err := p.conn.ReadFrom(buf)
	require.NoError(p.t, err)

	return buf[:n], from.(*net.UDPAddr)
}

func loopback(s *Server) *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: s.Addr().Port}
}

func request(t *testing.T, op types.OpCode, filename string) []byte {
	t.Helper()

	b, err := (&types.Request{Opcode: op, Filename: filename, Mode: "octet"}).MarshalBinary()
	require.NoError(t, err)

	return b
}

func ackFor(t *testing.T, block uint16) []byte {
	t.Helper()

	b, err := types.NewAck(block).MarshalBinary()
	require.NoError(t, err)

	return b
}

func TestServerRRQ(t *testing.T) {
	s, dir := startServer(t)
	content := bytes.Repeat([]byte("0123456789abcdef"), 100)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boot.img"), content, 0o644))

	p := newPeer(t)
	p.send(request(t, types.OpCodeRRQ, "boot.img"), loopback(s))

	var received []byte

	for {
		raw, from := p.recv()
		assert.NotEqual(t, s.Addr().Port, from.Port, "transfer must use its own port")

		var d types.Data
		require.NoError(t, d.UnmarshalBinary(raw))

		received = append(received, d.Payload...)
		p.send(ackFor(t, d.BlockNum), from)

		if len(d.Payload) < types.MaxPayloadSize {
			break
		}
	}

	assert.Equal(t, content, received)
}

func TestServerRRQFileNotFound(t *testing.T) {
	s, _ := startServer(t)
	p := newPeer(t)

	p.send(request(t, types.OpCodeRRQ, "missing.bin"), loopback(s))

	raw, _ := p.recv()
	assert.Equal(t, responder.ErrorPacket(types.ErrFileNotFound), raw)
}

func TestServerRRQPathEscape(t *testing.T) {
	s, _ := startServer(t)
	p := newPeer(t)

	p.send(request(t, types.OpCodeRRQ, "../etc/passwd"), loopback(s))

	raw, _ := p.recv()
	assert.Equal(t, responder.ErrorPacket(types.ErrAccessDenied), raw)
}

func TestServerRRQAbortsOnUnexpectedOpcode(t *testing.T) {
	s, dir := startServer(t)
	content := bytes.Repeat([]byte{7}, 4*types.MaxPayloadSize)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.bin"), content, 0o644))

	p := newPeer(t)
	p.send(request(t, types.OpCodeRRQ, "big.bin"), loopback(s))

	for block := uint16(1); block <= 2; block++ {
		raw, from := p.recv()
		assert.Equal(t, block, types.CombineBlockBytes(raw[2], raw[3]))
		p.send(ackFor(t, block), from)
	}

	raw, from := p.recv()
	require.Equal(t, uint16(3), types.CombineBlockBytes(raw[2], raw[3]))

	bogus, err := types.NewData(3, []byte("x")).MarshalBinary()
	require.NoError(t, err)
	p.send(bogus, from)

	raw, _ = p.recv()
	assert.Equal(t, responder.ErrorPacket(types.ErrPacketCorrupted), raw)
}

func TestServerWRQ(t *testing.T) {
	s, dir := startServer(t)
	p := newPeer(t)

	p.send(request(t, types.OpCodeWRQ, "upload.txt"), loopback(s))

	raw, from := p.recv()
	assert.Equal(t, ackFor(t, 0), raw)

	payload := bytes.Repeat([]byte("a"), types.MaxPayloadSize)
	first, err := types.NewData(1, payload).MarshalBinary()
	require.NoError(t, err)
	p.send(first, from)

	raw, _ = p.recv()
	assert.Equal(t, ackFor(t, 1), raw)

	last, err := types.NewData(2, []byte("tail")).MarshalBinary()
	require.NoError(t, err)
	p.send(last, from)

	raw, _ = p.recv()
	assert.Equal(t, ackFor(t, 2), raw)

	require.NoError(t, s.Close())

	written, err := os.ReadFile(filepath.Join(dir, "upload.txt"))
	require.NoError(t, err)
	assert.Equal(t, append(payload, []byte("tail")...), written)
}

func TestServerWRQFileExists(t *testing.T) {
	s, dir := startServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taken.txt"), []byte("x"), 0o644))

	p := newPeer(t)
	p.send(request(t, types.OpCodeWRQ, "taken.txt"), loopback(s))

	raw, _ := p.recv()
	assert.Equal(t, responder.ErrorPacket(types.ErrFileAlreadyExists), raw)
}

func TestServerDuplicateRequest(t *testing.T) {
	s, _ := startServer(t)
	p := newPeer(t)

	p.send(request(t, types.OpCodeWRQ, "dup.txt"), loopback(s))

	raw, _ := p.recv()
	require.Equal(t, ackFor(t, 0), raw)

	p.send(request(t, types.OpCodeWRQ, "dup.txt"), loopback(s))

	raw, from := p.recv()
	assert.Equal(t, responder.ErrorPacket(types.ErrDuplicateRequest), raw)
	assert.Equal(t, s.Addr().Port, from.Port)
}

func TestServerRejectsNonRequests(t *testing.T) {
	s, _ := startServer(t)
	p := newPeer(t)

	tests := [][]byte{
		ackFor(t, 1),
		{0, 0},
		{0, 1, 'n', 'o', 'n', 'u', 'l'},
		[]byte("\x00\x01file\x00binary\x00"),
	}

	for _, raw := range tests {
		p.send(raw, loopback(s))

		reply, from := p.recv()
		assert.Equal(t, responder.ErrorPacket(types.ErrPacketCorrupted), reply)
		assert.Equal(t, s.Addr().Port, from.Port)
	}

	// the listener keeps serving after rejects
	p.send(request(t, types.OpCodeRRQ, "missing.bin"), loopback(s))

	reply, _ := p.recv()
	assert.Equal(t, responder.ErrorPacket(types.ErrFileNotFound), reply)
}
