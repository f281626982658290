package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftp-codec/pkg/utils"
)

type Data struct {
	Payload  []byte
	BlockNum uint16
	Opcode   OpCode
}

func NewData(blockNum uint16, payload []byte) *Data {
	return &Data{Opcode: OpCodeDATA, BlockNum: blockNum, Payload: payload}
}

func (d *Data) MarshalBinary() ([]byte, error) {
	if len(d.Payload) > MaxPayloadSize {
		return nil, utils.ErrDataPayloadTooBig
	}

	b := new(bytes.Buffer)
	b.Grow(HeaderSize + len(d.Payload))

	if err := binary.Write(b, binary.BigEndian, &d.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if err := binary.Write(b, binary.BigEndian, &d.BlockNum); err != nil {
		return nil, fmt.Errorf("error while writing block#: %w", err)
	}

	b.Write(d.Payload)

	return b.Bytes(), nil
}

// UnmarshalBinary aliases Payload to data; callers that keep it past the
// next read must copy.
func (d *Data) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: data is %d bytes", utils.ErrMalformedPacket, len(data))
	}

	if len(data)-HeaderSize > MaxPayloadSize {
		return utils.ErrDataPayloadTooBig
	}

	b := bytes.NewBuffer(data)

	if err := binary.Read(b, binary.BigEndian, &d.Opcode); err != nil {
		return fmt.Errorf("error while reading opcode: %w", err)
	}

	if d.Opcode != OpCodeDATA {
		return utils.ErrWrongOpCode
	}

	if err := binary.Read(b, binary.BigEndian, &d.BlockNum); err != nil {
		return fmt.Errorf("error while reading block#: %w", err)
	}

	d.Payload = data[HeaderSize:]

	return nil
}
