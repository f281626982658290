package types

import (
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/tftp-codec/pkg/utils"
)

type ValidationResult uint8

const (
	ResultAsExpected ValidationResult = iota
	ResultUnexpectedOpcode
	ResultUnexpectedBlock
	ResultBothUnexpected
)

func (v ValidationResult) String() string {
	switch v {
	case ResultAsExpected:
		return "as expected"
	case ResultUnexpectedOpcode:
		return "unexpected opcode"
	case ResultUnexpectedBlock:
		return "unexpected block"
	case ResultBothUnexpected:
		return "unexpected opcode and block"
	default:
		return fmt.Sprintf("ValidationResult(%d)", uint8(v))
	}
}

// Err returns nil for ResultAsExpected and a *MismatchError otherwise.
func (v ValidationResult) Err() error {
	if v == ResultAsExpected {
		return nil
	}

	return &MismatchError{Result: v}
}

type MismatchError struct {
	Result ValidationResult
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s", utils.ErrValidationMismatch, e.Result)
}

func (e *MismatchError) Unwrap() error {
	return utils.ErrValidationMismatch
}

// AsExpected checks packet against the opcode and block the transfer is
// waiting for. Expected blocks up to BlockTolerance always pass. The block
// field of an ERROR packet carries an error code and is not compared.
func AsExpected(packet []byte, expected OpCode, expectedBlock uint16) ValidationResult {
	if expectedBlock <= BlockTolerance {
		return ResultAsExpected
	}

	var opMismatch, blockMismatch bool

	if len(packet) < 2 {
		opMismatch, blockMismatch = true, true
	} else {
		op := OpCode(binary.BigEndian.Uint16(packet))
		opMismatch = op != expected

		if op != OpCodeError {
			block, ok := BlockNumber(packet)
			blockMismatch = !ok || !WithinTolerance(block, expectedBlock)
		}
	}

	switch {
	case opMismatch && blockMismatch:
		return ResultBothUnexpected
	case opMismatch:
		return ResultUnexpectedOpcode
	case blockMismatch:
		return ResultUnexpectedBlock
	default:
		return ResultAsExpected
	}
}

// WithinTolerance reports whether got is within BlockTolerance of want,
// measured on the 16-bit circle so that wraparound after 65535 is absorbed.
func WithinTolerance(got, want uint16) bool {
	d := int16(got - want)

	return d >= -BlockTolerance && d <= BlockTolerance
}
