package control

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const shutdownCommand = "shut"

// Console is the operator prompt of a running server. It only acts
// in-process; nothing it does is reachable from the network.
type Console struct {
	l   *zap.SugaredLogger
	in  io.Reader
	out io.Writer
}

func NewConsole(l *zap.SugaredLogger, in io.Reader, out io.Writer) *Console {
	return &Console{l: l, in: in, out: out}
}

// Wait prompts until the operator asks for shutdown. It returns nil on
// shutdown and io.EOF when input ends first.
func (c *Console) Wait() error {
	scanner := bufio.NewScanner(c.in)

	fmt.Fprintf(c.out, "Type '%s' to shutdown server\n", shutdownCommand)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.EqualFold(line, shutdownCommand) {
			c.l.Info("shutdown requested from console")

			return nil
		}

		if line != "" {
			fmt.Fprintf(c.out, "unknown command: %s\n", line)
		}

		fmt.Fprintf(c.out, "Type '%s' to shutdown server\n", shutdownCommand)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error while reading console: %w", err)
	}

	return io.EOF
}
