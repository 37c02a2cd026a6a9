package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cardgate/actuator"
	"cardgate/console"
	"cardgate/eeprom"
	"cardgate/presence"
	"cardgate/reader"
	"cardgate/registry"
	"cardgate/video"
)

// openRegistry opens the configured store and loads the registry over it.
func openRegistry(cfg *Config) (*registry.Registry, func(), error) {
	layout, err := cfg.RegistryLayout()
	if err != nil {
		return nil, nil, err
	}

	medium, err := eeprom.New(cfg.Store, layout.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	reg, err := registry.New(medium, layout)
	if err != nil {
		medium.Close()
		return nil, nil, fmt.Errorf("load registry: %w", err)
	}

	closeStore := func() {
		if err := medium.Close(); err != nil {
			log.Errorf("Close store: %v", err)
		}
	}
	return reg, closeStore, nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	con, err := console.New(cfg.Console)
	if err != nil {
		return fmt.Errorf("open console: %w", err)
	}
	defer con.Close()

	if err := setupLogging(cfg, con.Raw()); err != nil {
		return err
	}
	log.WithField("build", myBuild).Info("cardgate starting")

	reg, closeStore, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	log.WithFields(log.Fields{
		"cards":    reg.Count(),
		"capacity": reg.Layout().Capacity,
		"labels":   reg.Layout().Labels,
	}).Info("Registry ready")

	rdr, err := reader.New(cfg.Reader)
	if err != nil {
		return fmt.Errorf("open reader: %w", err)
	}
	defer rdr.Close()

	indicator, err := actuator.New("indicator", cfg.Indicator)
	if err != nil {
		return err
	}
	defer indicator.Release()

	tone, err := actuator.New("tone", cfg.Tone)
	if err != nil {
		return err
	}
	defer tone.Release()

	deps := presence.Deps{
		Registry:  reg,
		Reader:    rdr,
		Console:   con,
		Indicator: indicator,
		Tone:      tone,
	}

	if cfg.VideoEnabled {
		if !video.ScreenSupported() {
			log.Warn(video.ErrScreenNotCompiled)
		} else if screen, err := video.New(cfg.VideoDevice); err != nil {
			log.Errorf("Video init failed: %v", err)
		} else {
			defer screen.Release()
			deps.Display = screen
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := presence.New(cfg.Presence, deps).Run(ctx); err != nil {
		return fmt.Errorf("presence loop: %w", err)
	}
	log.Info("cardgate stopped")
	return nil
}
