package types

// Message returns the canonical text peers expect for c, or "" for codes
// outside the catalogue.
func (c ErrCode) Message() string {
	switch c {
	case ErrFileNotFound:
		return "Error 1: File not found"
	case ErrAccessDenied:
		return "Error 2: File can not be accessed"
	case ErrDiskFull:
		return "Error 3: Disk full"
	case ErrPacketCorrupted:
		return "Error 4: Packet corrupted"
	case ErrDuplicateRequest:
		return "Error 5: Duplicated request"
	case ErrFileAlreadyExists:
		return "Error 6: File already exists"
	default:
		return ""
	}
}

// NewError builds the error packet for c carrying its canonical text.
func NewError(c ErrCode) *Error {
	return &Error{
		Opcode:    OpCodeError,
		ErrorCode: c,
		ErrMsg:    c.Message(),
	}
}
