package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Wa4h1h/tftp-codec/pkg/utils"
)

type Request struct {
	Filename string
	Mode     string
	Opcode   OpCode
}

func (r *Request) MarshalBinary() ([]byte, error) {
	if r.Opcode != OpCodeRRQ && r.Opcode != OpCodeWRQ {
		return nil, utils.ErrWrongOpCode
	}

	if err := checkField("filename", r.Filename, MaxFilenameLength); err != nil {
		return nil, err
	}

	if err := checkField("mode", r.Mode, MaxModeLength); err != nil {
		return nil, err
	}

	b := new(bytes.Buffer)
	rqLen := 2 + len(r.Filename) + 1 + len(r.Mode) + 1

	b.Grow(rqLen)

	if err := binary.Write(b, binary.BigEndian, &r.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing Opcode: %w", err)
	}

	b.WriteString(r.Filename)
	b.WriteByte(0)
	b.WriteString(r.Mode)
	b.WriteByte(0)

	return b.Bytes(), nil
}

func (r *Request) UnmarshalBinary(data []byte) error {
	var err error

	r.Opcode, err = DecodeOpcode(data)
	if err != nil {
		return fmt.Errorf("error while decoding opCode: %w", err)
	}

	if r.Opcode != OpCodeRRQ && r.Opcode != OpCodeWRQ {
		return utils.ErrWrongOpCode
	}

	r.Filename, err = ExtractFilename(data)
	if err != nil {
		return err
	}

	r.Mode, err = ExtractMode(data)
	if err != nil {
		return err
	}

	return nil
}

// NormalizedMode returns the lower-cased mode and whether it is one TFTP defines.
func (r *Request) NormalizedMode() (string, bool) {
	mode := strings.ToLower(r.Mode)

	switch mode {
	case ModeOctet, ModeNetASCII, ModeMail:
		return mode, true
	default:
		return mode, false
	}
}

func checkField(name, val string, maxLen int) error {
	if len(val) > maxLen {
		return fmt.Errorf("%w: %s is %d bytes, max %d", utils.ErrFieldTooLong, name, len(val), maxLen)
	}

	if strings.IndexByte(val, 0) >= 0 {
		return fmt.Errorf("%w: %s contains a null byte", utils.ErrMalformedPacket, name)
	}

	return nil
}
