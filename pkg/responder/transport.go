package responder

import (
	"fmt"
	"net"
	"time"

	"github.com/Wa4h1h/tftp-codec/pkg/utils"
	"go.uber.org/zap"
)

// Transport delivers one datagram to ip:port without waiting for a reply.
type Transport interface {
	Send(b []byte, ip net.IP, port int) error
}

type UDPTransport struct {
	conn         net.PacketConn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewUDPTransport binds a UDP socket on laddr. Use ":0" for a fresh
// ephemeral port.
func NewUDPTransport(laddr string) (*UDPTransport, error) {
	conn, err := net.ListenPacket("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrTransportUnavailable, err)
	}

	return &UDPTransport{conn: conn}, nil
}

// NewUDPTransportFrom wraps an already bound packet connection.
func NewUDPTransportFrom(conn net.PacketConn) *UDPTransport {
	return &UDPTransport{conn: conn}
}

// MustUDPTransport is NewUDPTransport for callers that cannot continue
// without a send path: a bind failure terminates the process.
func MustUDPTransport(l *zap.SugaredLogger, laddr string) *UDPTransport {
	t, err := NewUDPTransport(laddr)
	if err != nil {
		l.Fatalf("error while creating transport on %s: %s", laddr, err.Error())
	}

	return t
}

func (t *UDPTransport) SetTimeouts(read, write time.Duration) {
	t.readTimeout = read
	t.writeTimeout = write
}

func (t *UDPTransport) Send(b []byte, ip net.IP, port int) error {
	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return fmt.Errorf("%w: %w", utils.ErrCanNotSetWriteTimeout, err)
		}
	}

	if _, err := t.conn.WriteTo(b, &net.UDPAddr{IP: ip, Port: port}); err != nil {
		return fmt.Errorf("error while writing to %s:%d: %w", ip, port, err)
	}

	return nil
}

// Receive reads one datagram into b, honouring the read timeout.
func (t *UDPTransport) Receive(b []byte) (int, *net.UDPAddr, error) {
	if t.readTimeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.readTimeout)); err != nil {
			return 0, nil, fmt.Errorf("%w: %w", utils.ErrCanNotSetReadTimeout, err)
		}
	}

	n, addr, err := t.conn.ReadFrom(b)
	if err != nil {
		return n, nil, err
	}

	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return n, nil, fmt.Errorf("error while reading: unexpected address type %T", addr)
	}

	return n, udpAddr, nil
}

func (t *UDPTransport) LocalAddr() *net.UDPAddr {
	addr, _ := t.conn.LocalAddr().(*net.UDPAddr)

	return addr
}

func (t *UDPTransport) Close() error {
	if err := t.conn.Close(); err != nil {
		return fmt.Errorf("error while closing connection: %w", err)
	}

	return nil
}
