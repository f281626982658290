package responder

import (
	"fmt"
	"net"

	"github.com/Wa4h1h/tftp-codec/internal/observability"
	"github.com/Wa4h1h/tftp-codec/pkg/types"
	"github.com/Wa4h1h/tftp-codec/pkg/utils"
	"go.uber.org/zap"
)

type Responder struct {
	l *zap.SugaredLogger
}

func NewResponder(l *zap.SugaredLogger) *Responder {
	return &Responder{l: l}
}

// ErrorPacket serializes the error packet for code with its canonical text.
// Codes outside the catalogue carry an empty message.
func ErrorPacket(code types.ErrCode) []byte {
	b, err := types.NewError(code).MarshalBinary()
	if err != nil {
		panic(fmt.Errorf("error while marshal error packet %d: %w", code, err))
	}

	return b
}

// SendError sends the error packet for code to ip:port once. Delivery is
// best effort: a failed send is logged and swallowed.
func (r *Responder) SendError(code types.ErrCode, t Transport, ip net.IP, port int) {
	b := ErrorPacket(code)

	if err := t.Send(b, ip, port); err != nil {
		r.l.Warnw("error packet not sent",
			"code", uint16(code),
			"peer", net.JoinHostPort(ip.String(), fmt.Sprint(port)),
			"error", fmt.Errorf("%w: %w", utils.ErrSendFailed, err))
		observability.RecordErrorPacket(uint16(code), false)

		return
	}

	r.l.Debugf("sent error %d to %s:%d", code, ip, port)
	observability.RecordErrorPacket(uint16(code), true)
}
