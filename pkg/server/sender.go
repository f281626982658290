package server

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Wa4h1h/tftp-codec/pkg/types"
	"github.com/Wa4h1h/tftp-codec/pkg/utils"
)

func (c *Connection) SendBlock(block []byte, blockNum uint16) error {
	b, err := types.NewData(blockNum, block).MarshalBinary()
	if err != nil {
		c.l.Error(err.Error())

		return utils.ErrPacketMarshall
	}

	for i := c.numTries; i > 0; i-- {
		if err := c.write(b); err != nil {
			c.l.Errorf("error while writing data packet: %s", err.Error())

			continue
		}

		acked, err := c.awaitAck(blockNum)
		if err != nil {
			return err
		}

		if acked {
			return nil
		}
	}

	return utils.ErrPacketCanNotBeSent
}

// awaitAck reads replies until blockNum is acknowledged. It returns false
// when the data packet should be sent again.
func (c *Connection) awaitAck(blockNum uint16) (bool, error) {
	for {
		reply, err := c.read()
		if err != nil {
			if isTimeout(err) {
				c.l.Debugf("timeout waiting for ack block#=%d", blockNum)

				return false, nil
			}

			return false, fmt.Errorf("error while reading ack: %w", err)
		}

		ok, err := c.check(reply, types.OpCodeACK, blockNum)
		if err != nil || !ok {
			return false, err
		}

		var ack types.Ack
		if err := ack.UnmarshalBinary(reply); err != nil {
			c.sendError(types.ErrPacketCorrupted)

			return false, fmt.Errorf("error while unmarshal ack: %w", err)
		}

		if ack.BlockNum == blockNum {
			return true, nil
		}

		// duplicate of an earlier ack, keep waiting
		c.l.Debugf("ack block# %d != expected block# %d", ack.BlockNum, blockNum)
	}
}

func (c *Connection) Send(file string) error {
	f, err := os.Open(file)
	if err != nil {
		c.l.Errorf("error while opening file: %s", err.Error())
		c.sendError(openErrCode(err))

		return fmt.Errorf("error while opening %s: %w", file, err)
	}

	defer func() {
		if err := f.Close(); err != nil {
			c.l.Errorf("error while closing file: %s", err.Error())
		}
	}()

	stats, err := f.Stat()
	if err != nil || stats.IsDir() || stats.Size()/types.MaxPayloadSize >= types.MaxBlocks {
		c.sendError(types.ErrAccessDenied)

		return fmt.Errorf("error while sending %s: not a transferable file", file)
	}

	var blockNum uint16 = 1

	block := make([]byte, types.MaxPayloadSize)
	bytesAccum := 0

	for {
		n, err := io.ReadFull(f, block)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			c.l.Errorf("error while reading file block: %s", err.Error())
			c.sendError(types.ErrAccessDenied)

			return fmt.Errorf("error while reading %s: %w", file, err)
		}

		if err := c.SendBlock(block[:n], blockNum); err != nil {
			return fmt.Errorf("error while sending block#=%d: %w", blockNum, err)
		}

		c.l.Debugf("sent block#=%d, sent #bytes=%d", blockNum, n)

		bytesAccum += n

		if n < types.MaxPayloadSize {
			c.l.Debugf("sent %d blocks, sent %d bytes", blockNum, bytesAccum)

			return nil
		}

		blockNum++
	}
}
