package server

import (
	"fmt"
	"os"

	"github.com/Wa4h1h/tftp-codec/pkg/types"
	"github.com/Wa4h1h/tftp-codec/pkg/utils"
)

func (c *Connection) sendAck(blockNum uint16) error {
	b, err := types.NewAck(blockNum).MarshalBinary()
	if err != nil {
		c.l.Error(err.Error())

		return utils.ErrPacketMarshall
	}

	return c.write(b)
}

func (c *Connection) AcknowledgeWrq() error {
	if err := c.sendAck(0); err != nil {
		c.l.Errorf("error while acknowledging wrq: %s", err.Error())

		return err
	}

	return nil
}

// ReceiveBlock waits for DATA block expected and returns a copy of its
// payload. On timeout the previous ack is sent again.
func (c *Connection) ReceiveBlock(expected uint16) ([]byte, error) {
	for tries := c.numTries; tries > 0; {
		reply, err := c.read()
		if err != nil {
			if !isTimeout(err) {
				return nil, fmt.Errorf("error while reading data: %w", err)
			}

			tries--
			c.l.Debugf("timeout waiting for block#=%d", expected)

			if err := c.sendAck(expected - 1); err != nil {
				c.l.Errorf("error while resending ack: %s", err.Error())
			}

			continue
		}

		ok, err := c.check(reply, types.OpCodeDATA, expected)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		var data types.Data
		if err := data.UnmarshalBinary(reply); err != nil {
			c.sendError(types.ErrPacketCorrupted)

			return nil, fmt.Errorf("error while unmarshal data packet: %w", err)
		}

		if data.BlockNum != expected {
			// our ack for the previous block was lost
			if data.BlockNum == expected-1 {
				if err := c.sendAck(data.BlockNum); err != nil {
					c.l.Errorf("error while resending ack: %s", err.Error())
				}
			}

			continue
		}

		return data.Payload, nil
	}

	return nil, utils.ErrPacketCanNotBeSent
}

func (c *Connection) Receive(file string) error {
	f, err := os.OpenFile(file, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		c.l.Errorf("error while opening file: %s", err.Error())
		c.sendError(openErrCode(err))

		return fmt.Errorf("error while creating %s: %w", file, err)
	}

	complete := false

	defer func() {
		if err := f.Close(); err != nil {
			c.l.Errorf("error while closing file: %s", err.Error())
		}

		if !complete {
			if err := os.Remove(file); err != nil {
				c.l.Errorf("error while removing partial file: %s", err.Error())
			}
		}
	}()

	if err := c.AcknowledgeWrq(); err != nil {
		return err
	}

	var (
		blockNum   uint16 = 1
		bytesAccum int
	)

	for {
		payload, err := c.ReceiveBlock(blockNum)
		if err != nil {
			return fmt.Errorf("error while receiving block#=%d: %w", blockNum, err)
		}

		if _, err := f.Write(payload); err != nil {
			c.l.Errorf("error while writing block to file: %s", err.Error())
			c.sendError(openErrCode(err))

			return fmt.Errorf("error while writing %s: %w", file, err)
		}

		if err := c.sendAck(blockNum); err != nil {
			c.l.Errorf("error while writing ack: %s", err.Error())
		}

		c.l.Debugf("received block#=%d, received #bytes=%d", blockNum, len(payload))

		bytesAccum += len(payload)

		if len(payload) < types.MaxPayloadSize {
			complete = true
			c.l.Debugf("received %d blocks, received %d bytes", blockNum, bytesAccum)

			return nil
		}

		blockNum++
	}
}
