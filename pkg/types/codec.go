package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftp-codec/pkg/utils"
)

// DecodeOpcode reads the 2-byte opcode field at the head of packet.
func DecodeOpcode(packet []byte) (OpCode, error) {
	if len(packet) < 2 {
		return 0, fmt.Errorf("%w: %d byte packet has no opcode", utils.ErrMalformedPacket, len(packet))
	}

	op := OpCode(binary.BigEndian.Uint16(packet))
	if !op.Valid() {
		return op, fmt.Errorf("%w: %d", utils.ErrUnsupportedOpCode, uint16(op))
	}

	return op, nil
}

func IsError(packet []byte) bool {
	return len(packet) >= 2 && packet[0] == 0 && packet[OpCodeOffset] == byte(OpCodeError)
}

// ExtractFilename returns the filename of a RRQ/WRQ datagram.
func ExtractFilename(payload []byte) (string, error) {
	name, _, err := scanString(payload, FilenameOffset, MaxFilenameLength)
	if err != nil {
		return "", fmt.Errorf("error while extracting filename: %w", err)
	}

	return name, nil
}

// ExtractMode returns the transfer mode following the filename. It is empty
// when the filename itself is not terminated.
func ExtractMode(payload []byte) (string, error) {
	_, next, err := scanString(payload, FilenameOffset, MaxFilenameLength)
	if err != nil {
		return "", nil
	}

	mode, _, err := scanString(payload, next, MaxModeLength)
	if err != nil {
		return "", fmt.Errorf("error while extracting mode: %w", err)
	}

	return mode, nil
}

func ExtractErrorMessage(payload []byte) (string, error) {
	msg, _, err := scanString(payload, MessageOffset, MaxErrorMessageLen)
	if err != nil {
		return "", fmt.Errorf("error while extracting error message: %w", err)
	}

	return msg, nil
}

// LengthFilled returns the offset of the first zero byte at or after the
// message body, or len(payload) when there is none.
func LengthFilled(payload []byte) int {
	if len(payload) <= MessageOffset {
		return len(payload)
	}

	if idx := bytes.IndexByte(payload[MessageOffset:], 0); idx >= 0 {
		return MessageOffset + idx
	}

	return len(payload)
}

// TrimToSize copies the first n bytes of buf into a new slice.
func TrimToSize(buf []byte, n int) ([]byte, error) {
	if n < 0 || n > len(buf) {
		return nil, fmt.Errorf("%w: trim to %d of %d bytes", utils.ErrOutOfBounds, n, len(buf))
	}

	trimmed := make([]byte, n)
	copy(trimmed, buf[:n])

	return trimmed, nil
}

func TrimToAck(buf []byte) ([]byte, error) {
	return TrimToSize(buf, AckSize)
}

func TrimToError(buf []byte) ([]byte, error) {
	return TrimToSize(buf, ErrorTrimSize)
}

// CombineBlockBytes joins the two wire bytes of a block number, big-endian.
func CombineBlockBytes(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

func SplitBlock(block uint16) (byte, byte) {
	return byte(block >> 8), byte(block)
}

// BlockNumber reads the block field of a DATA/ACK datagram.
func BlockNumber(packet []byte) (uint16, bool) {
	if len(packet) < HeaderSize {
		return 0, false
	}

	return CombineBlockBytes(packet[BlockOffset], packet[BlockOffset+1]), true
}

// scanString reads a zero-terminated string starting at offset. At most
// maxLen+1 bytes are inspected; next is the offset after the terminator.
func scanString(payload []byte, offset, maxLen int) (s string, next int, err error) {
	if offset >= len(payload) {
		return "", 0, fmt.Errorf("%w: field at offset %d past end of %d byte packet",
			utils.ErrMalformedPacket, offset, len(payload))
	}

	window := payload[offset:]
	if len(window) > maxLen+1 {
		window = window[:maxLen+1]
	}

	idx := bytes.IndexByte(window, 0)
	if idx < 0 {
		return "", 0, fmt.Errorf("%w: no terminator within %d bytes of offset %d",
			utils.ErrMalformedPacket, len(window), offset)
	}

	return string(window[:idx]), offset + idx + 1, nil
}
