package server

import (
	"errors"
	"fmt"
	"net"

	"github.com/Wa4h1h/tftp-codec/internal/observability"
	"github.com/Wa4h1h/tftp-codec/pkg/responder"
	"github.com/Wa4h1h/tftp-codec/pkg/types"
	"github.com/Wa4h1h/tftp-codec/pkg/utils"
	"go.uber.org/zap"
)

type Transfer interface {
	Send(file string) error
	SendBlock(block []byte, blockNum uint16) error
	AcknowledgeWrq() error
	Receive(file string) error
	ReceiveBlock(expected uint16) ([]byte, error)
}

// Connection runs one lock-step transfer with a single peer over its own
// transfer socket.
type Connection struct {
	t        *responder.UDPTransport
	r        *responder.Responder
	l        *zap.SugaredLogger
	peer     *net.UDPAddr
	numTries int
}

func NewTransfer(t *responder.UDPTransport, r *responder.Responder,
	logger *zap.SugaredLogger, peer *net.UDPAddr, numTries int,
) Transfer {
	return &Connection{t: t, r: r, l: logger, peer: peer, numTries: numTries}
}

func (c *Connection) sendError(code types.ErrCode) {
	c.r.SendError(code, c.t, c.peer.IP, c.peer.Port)
}

func (c *Connection) write(b []byte) error {
	if err := c.t.Send(b, c.peer.IP, c.peer.Port); err != nil {
		return fmt.Errorf("%w: %w", utils.ErrPacketCanNotBeSent, err)
	}

	return nil
}

// read returns the next datagram sent by the peer. Datagrams from any
// other address are dropped.
func (c *Connection) read() ([]byte, error) {
	buf := make([]byte, types.DatagramSize)

	for {
		n, from, err := c.t.Receive(buf)
		if err != nil {
			return nil, err
		}

		if !from.IP.Equal(c.peer.IP) || from.Port != c.peer.Port {
			c.l.Debugf("dropped datagram from unknown peer %s", from)

			continue
		}

		return append([]byte(nil), buf[:n]...), nil
	}
}

// check classifies a reply. A nil error with ok=false means the reply is
// tolerated but not the one waited for.
func (c *Connection) check(reply []byte, expected types.OpCode, block uint16) (bool, error) {
	if types.IsError(reply) {
		msg, err := types.ExtractErrorMessage(reply)
		if err != nil {
			c.l.Debugf("peer error packet without message: %s", err.Error())
		}

		c.l.Infof("peer %s aborted transfer: %s", c.peer, msg)

		return false, fmt.Errorf("%w: %s", utils.ErrOtherSideError, msg)
	}

	res := types.AsExpected(reply, expected, block)
	observability.RecordValidation(expected.String(), res.String())

	switch res {
	case types.ResultUnexpectedOpcode, types.ResultBothUnexpected:
		c.sendError(types.ErrPacketCorrupted)

		return false, fmt.Errorf("error while waiting for %s %d: %w", expected, block, res.Err())
	case types.ResultUnexpectedBlock:
		c.l.Debugf("%s outside block window %d", expected, block)

		return false, nil
	}

	return true, nil
}

func isAbort(err error) bool {
	return errors.Is(err, utils.ErrOtherSideError) || errors.Is(err, utils.ErrValidationMismatch)
}
