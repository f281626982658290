package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftp-codec/pkg/utils"
)

type Ack struct {
	Opcode   OpCode
	BlockNum uint16
}

func NewAck(blockNum uint16) *Ack {
	return &Ack{Opcode: OpCodeACK, BlockNum: blockNum}
}

func (a *Ack) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)
	b.Grow(AckSize)

	if err := binary.Write(b, binary.BigEndian, &a.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if err := binary.Write(b, binary.BigEndian, &a.BlockNum); err != nil {
		return nil, fmt.Errorf("error while writing block#: %w", err)
	}

	return b.Bytes(), nil
}

func (a *Ack) UnmarshalBinary(data []byte) error {
	if len(data) < AckSize {
		return fmt.Errorf("%w: ack is %d bytes", utils.ErrMalformedPacket, len(data))
	}

	b := bytes.NewBuffer(data)

	if err := binary.Read(b, binary.BigEndian, &a.Opcode); err != nil {
		return fmt.Errorf("error while reading opcode: %w", err)
	}

	if a.Opcode != OpCodeACK {
		return utils.ErrWrongOpCode
	}

	if err := binary.Read(b, binary.BigEndian, &a.BlockNum); err != nil {
		return fmt.Errorf("error while reading block#: %w", err)
	}

	return nil
}
