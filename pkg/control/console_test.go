package control

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestConsoleShut(t *testing.T) {
	out := new(bytes.Buffer)
	c := NewConsole(zap.NewNop().Sugar(), strings.NewReader("status\n\n  SHUT \nignored\n"), out)

	assert.NoError(t, c.Wait())
	assert.Contains(t, out.String(), "unknown command: status")
	assert.NotContains(t, out.String(), "ignored")
}

func TestConsoleEOF(t *testing.T) {
	c := NewConsole(zap.NewNop().Sugar(), strings.NewReader("stop\n"), io.Discard)

	assert.ErrorIs(t, c.Wait(), io.EOF)
}
