package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftp-codec/pkg/utils"
)

type Error struct {
	ErrMsg    string
	ErrorCode ErrCode
	Opcode    OpCode
}

func (e *Error) MarshalBinary() ([]byte, error) {
	if err := checkField("error message", e.ErrMsg, MaxErrorMessageLen); err != nil {
		return nil, err
	}

	b := new(bytes.Buffer)
	b.Grow(HeaderSize + len(e.ErrMsg) + 1)

	if err := binary.Write(b, binary.BigEndian, &e.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if err := binary.Write(b, binary.BigEndian, &e.ErrorCode); err != nil {
		return nil, fmt.Errorf("error while writing error code: %w", err)
	}

	b.WriteString(e.ErrMsg)
	b.WriteByte(0)

	return b.Bytes(), nil
}

func (e *Error) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: error packet is %d bytes", utils.ErrMalformedPacket, len(data))
	}

	b := bytes.NewBuffer(data)
	var err error

	if err = binary.Read(b, binary.BigEndian, &e.Opcode); err != nil {
		return fmt.Errorf("error while reading opcode: %w", err)
	}

	if e.Opcode != OpCodeError {
		return utils.ErrWrongOpCode
	}

	if err = binary.Read(b, binary.BigEndian, &e.ErrorCode); err != nil {
		return fmt.Errorf("error while reading error code: %w", err)
	}

	e.ErrMsg, err = ExtractErrorMessage(data)
	if err != nil {
		return err
	}

	return nil
}

func (e *Error) Error() string {
	return fmt.Sprintf("tftp error %d: %s", e.ErrorCode, e.ErrMsg)
}
