package types

import "fmt"

type OpCode uint16

const (
	OpCodeRRQ OpCode = iota + 1
	OpCodeWRQ
	OpCodeDATA
	OpCodeACK
	OpCodeError
)

func (o OpCode) Valid() bool {
	return o >= OpCodeRRQ && o <= OpCodeError
}

func (o OpCode) String() string {
	switch o {
	case OpCodeRRQ:
		return "RRQ"
	case OpCodeWRQ:
		return "WRQ"
	case OpCodeDATA:
		return "DATA"
	case OpCodeACK:
		return "ACK"
	case OpCodeError:
		return "ERROR"
	default:
		return fmt.Sprintf("OpCode(%d)", uint16(o))
	}
}

type ErrCode uint16

const (
	ErrFileNotFound ErrCode = iota + 1
	ErrAccessDenied
	ErrDiskFull
	ErrPacketCorrupted
	ErrDuplicateRequest
	ErrFileAlreadyExists
)

const (
	MaxBlocks      = 65535
	MaxPayloadSize = 512
	DatagramSize   = 516
)

// Field offsets and scan bounds inside a raw datagram.
const (
	OpCodeOffset       = 1
	FilenameOffset     = 2
	BlockOffset        = 2
	ErrorCodeOffset    = 2
	MessageOffset      = 4
	HeaderSize         = 4
	AckSize            = 4
	ErrorTrimSize      = 50
	BlockTolerance     = 2
	MaxFilenameLength  = 100
	MaxModeLength      = 20
	MaxErrorMessageLen = DatagramSize - MessageOffset - 1
)

const (
	ModeOctet    = "octet"
	ModeNetASCII = "netascii"
	ModeMail     = "mail"
)
