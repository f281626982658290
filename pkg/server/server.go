package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/Wa4h1h/tftp-codec/internal/observability"
	"github.com/Wa4h1h/tftp-codec/pkg/responder"
	"github.com/Wa4h1h/tftp-codec/pkg/types"
	"github.com/Wa4h1h/tftp-codec/pkg/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Server struct {
	port         string
	tftpFolder   string
	logger       *zap.SugaredLogger
	responder    *responder.Responder
	numTries     int
	readTimeout  time.Duration
	writeTimeout time.Duration

	mu       sync.Mutex
	conn     *responder.UDPTransport
	metrics  *http.Server
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

func NewServer(l *zap.SugaredLogger, port string, readTimeout uint,
	writeTimeout uint, numTries int, tftpFolder string,
) *Server {
	return &Server{
		logger: l, port: port,
		responder:    responder.NewResponder(l),
		readTimeout:  time.Duration(readTimeout) * time.Second,
		writeTimeout: time.Duration(writeTimeout) * time.Second,
		numTries:     numTries,
		tftpFolder:   tftpFolder,
		inflight:     make(map[string]struct{}),
	}
}

// Listen binds the listening socket without serving it.
func (s *Server) Listen() error {
	l := net.ListenConfig{
		Control: controlReuseAddr(),
	}

	conn, err := l.ListenPacket(context.Background(), "udp", fmt.Sprintf(":%s", s.port))
	if err != nil {
		s.logger.Error(err.Error())

		return utils.ErrStartingServer
	}

	s.mu.Lock()
	s.conn = responder.NewUDPTransportFrom(conn)
	s.mu.Unlock()

	return nil
}

func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}

	return s.Serve()
}

// Serve reads requests until the listening socket is closed.
func (s *Server) Serve() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return utils.ErrStartingServer
	}

	datagram := make([]byte, types.DatagramSize)

	for {
		n, addr, err := conn.Receive(datagram)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		if n > 0 {
			packet := append([]byte(nil), datagram[:n]...)

			s.wg.Add(1)

			go func() {
				defer s.wg.Done()
				s.handlePacket(addr, packet)
			}()
		}
	}
}

// ServeMetrics exposes prometheus metrics on addr until Close.
func (s *Server) ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	s.mu.Lock()
	s.metrics = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error while serving metrics: %w", err)
	}

	return nil
}

func (s *Server) Addr() *net.UDPAddr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	return s.conn.LocalAddr()
}

// Close stops accepting requests and waits for running transfers.
func (s *Server) Close() error {
	s.mu.Lock()
	conn, metrics := s.conn, s.metrics
	s.mu.Unlock()

	var err error

	if conn != nil {
		err = multierr.Append(err, conn.Close())
	}

	if metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
		defer cancel()

		if errM := metrics.Shutdown(ctx); errM != nil {
			err = multierr.Append(err, fmt.Errorf("error while closing metrics server: %w", errM))
		}
	}

	s.wg.Wait()

	return err
}

func (s *Server) track(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inflight[key]; ok {
		return false
	}

	s.inflight[key] = struct{}{}

	return true
}

func (s *Server) untrack(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, key)
}

func (s *Server) reject(code types.ErrCode, addr *net.UDPAddr) {
	s.responder.SendError(code, s.conn, addr.IP, addr.Port)
}

func (s *Server) handlePacket(addr *net.UDPAddr, datagram []byte) {
	op, err := types.DecodeOpcode(datagram)
	if err != nil {
		observability.RecordRequest("invalid")
		s.logger.Infof("rejected datagram from %s: %s", addr, err.Error())
		s.reject(types.ErrPacketCorrupted, addr)

		return
	}

	observability.RecordRequest(op.String())

	if op != types.OpCodeRRQ && op != types.OpCodeWRQ {
		s.logger.Infof("rejected %s from %s on listening port", op, addr)
		s.reject(types.ErrPacketCorrupted, addr)

		return
	}

	var req types.Request

	if err := req.UnmarshalBinary(datagram); err != nil {
		s.logger.Infof("rejected request from %s: %s", addr, err.Error())
		s.reject(types.ErrPacketCorrupted, addr)

		return
	}

	mode, ok := req.NormalizedMode()
	if !ok {
		s.logger.Infof("rejected mode %q from %s", req.Mode, addr)
		s.reject(types.ErrPacketCorrupted, addr)

		return
	}

	key := addr.String() + "|" + req.Filename
	if !s.track(key) {
		s.logger.Infof("duplicate %s for %s from %s", op, req.Filename, addr)
		s.reject(types.ErrDuplicateRequest, addr)

		return
	}

	defer s.untrack(key)

	t := responder.MustUDPTransport(s.logger, ":0")
	t.SetTimeouts(s.readTimeout, s.writeTimeout)

	defer func() {
		if err := t.Close(); err != nil {
			s.logger.Errorf("error while closing transfer with %s: %s", addr, err.Error())
		}
	}()

	s.logger.Infow("transfer started", "op", op.String(), "file", req.Filename, "mode", mode, "peer", addr.String())

	if !filepath.IsLocal(req.Filename) {
		s.responder.SendError(types.ErrAccessDenied, t, addr.IP, addr.Port)
		observability.RecordTransfer(op.String(), "denied")

		return
	}

	file := filepath.Join(s.tftpFolder, req.Filename)
	c := NewTransfer(t, s.responder, s.logger, addr, s.numTries)

	switch op {
	case types.OpCodeRRQ:
		err = c.Send(file)
	case types.OpCodeWRQ:
		err = c.Receive(file)
	}

	outcome := "ok"

	switch {
	case err == nil:
	case isAbort(err):
		outcome = "aborted"
	default:
		outcome = "failed"
	}

	observability.RecordTransfer(op.String(), outcome)

	if err != nil {
		s.logger.Errorf("error while responding to %s: %s", op, err.Error())

		return
	}

	s.logger.Infow("transfer finished", "op", op.String(), "file", req.Filename, "peer", addr.String())
}
