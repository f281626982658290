package utils

import "errors"

var (
	ErrStartingServer        = errors.New("error: starting the udp server")
	ErrWrongOpCode           = errors.New("error: invalid operation code")
	ErrUnsupportedOpCode     = errors.New("error: unsupported operation code")
	ErrMalformedPacket       = errors.New("error: malformed packet")
	ErrOutOfBounds           = errors.New("error: index out of bounds")
	ErrFieldTooLong          = errors.New("error: field exceeds maximum length")
	ErrValidationMismatch    = errors.New("error: packet not as expected")
	ErrDataPayloadTooBig     = errors.New("error: payload exceeds 512 bytes")
	ErrPacketMarshall        = errors.New("error: can not marshall packet")
	ErrPacketCanNotBeSent    = errors.New("error: packet can not be sent")
	ErrTransportUnavailable  = errors.New("error: transport unavailable")
	ErrSendFailed            = errors.New("error: send failed")
	ErrOtherSideError        = errors.New("error: other side sent an error packet")
	ErrCanNotSetWriteTimeout = errors.New("error: can not set write timeout")
	ErrCanNotSetReadTimeout  = errors.New("error: can not set read timeout")
	ErrInvalidConfig         = errors.New("error: invalid configuration")
)
