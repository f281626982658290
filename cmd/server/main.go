package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Wa4h1h/tftp-codec/internal/config"
	"github.com/Wa4h1h/tftp-codec/pkg/control"
	"github.com/Wa4h1h/tftp-codec/pkg/server"
	"github.com/Wa4h1h/tftp-codec/pkg/utils"
)

var configPath = utils.GetEnv[string](config.EnvConfig, "", false)

func main() {
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	l := utils.NewLogger(cfg.LogLevel).Sugar()

	defer func() {
		_ = l.Sync()
	}()

	baseDir, err := utils.EnsureDir(cfg.BaseDir)
	if err != nil {
		l.Fatal(err.Error())
	}

	s := server.NewServer(l, cfg.Port, cfg.ReadTimeout, cfg.WriteTimeout, int(cfg.NumTries), baseDir)

	if err := s.Listen(); err != nil {
		l.Fatal(err.Error())
	}

	go func() {
		if err := s.Serve(); err != nil {
			l.Error(err.Error())
		}
	}()

	l.Info(fmt.Sprintf("listening on port %s, serving %s", cfg.Port, baseDir))

	if cfg.MetricsAddr != "" {
		go func() {
			if err := s.ServeMetrics(cfg.MetricsAddr); err != nil {
				l.Error(err.Error())
			}
		}()

		l.Info(fmt.Sprintf("metrics on %s/metrics", cfg.MetricsAddr))
	}

	defer func() {
		if err := s.Close(); err != nil {
			l.Error(err.Error())
		}

		l.Info(fmt.Sprintf("closed connection on port %s", cfg.Port))
	}()

	// listen shutdown signal
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	consoleDone := make(chan struct{})

	if cfg.Console {
		go func() {
			err := control.NewConsole(l, os.Stdin, os.Stdout).Wait()
			if err != nil && !errors.Is(err, io.EOF) {
				l.Error(err.Error())

				return
			}

			if err == nil {
				close(consoleDone)
			}
		}()
	}

	select {
	case <-signalChan:
	case <-consoleDone:
	}
}
