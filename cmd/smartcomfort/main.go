package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartcomfort/internal/config"
	"smartcomfort/internal/hardware"
	"smartcomfort/internal/logger"
	"smartcomfort/internal/repository"
	"smartcomfort/internal/repository/db"
	"smartcomfort/internal/service"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load configs/config.yml + SMARTCOMFORT_* env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	logger.SetLevel(cfg.Log.Level)

	// open key storage
	conn, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// simulated board
	room := hardware.NewRoom(hardware.RoomConfig{
		AmbientC:   cfg.Simulation.AmbientC,
		StartTempC: cfg.Simulation.StartTempC,
		Humidity:   cfg.Simulation.Humidity,
		Thermistor: hardware.DefaultThermistorParams(),
	}, time.Now)
	console := hardware.NewConsole(time.Now)
	board := hardware.NewBoard(room, console, log.Named("board"))
	hw := service.Hardware{
		Sensors:   board,
		Input:     board,
		Actuators: board,
		Display:   hardware.NewLogDisplay(log.Named("display")),
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services, err := service.NewService(repos, hw, service.SettingsFromConfig(cfg), service.SystemClock(), log)
	if err != nil {
		log.Fatalw("failed to build controller", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := provision(ctx, services, cfg.Access); err != nil {
		log.Fatalw("failed to provision access", "err", err)
	}

	runConsole(ctx, console, os.Stdin, log)

	done := make(chan struct{})
	go func() {
		services.Control.Run(ctx, cfg.Controller.Cycle)
		close(done)
	}()

	if waitForShutdown(cancel, done, log) {
		snap := services.Control.Snapshot()
		log.Infow("final state", "mode", snap.Mode, "temp_c", snap.CurrentTemp, "pmv", snap.Reading.PMV)
	}
}

// openDB initializes the SQLite key storage.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "smartcomfort.db")
		path = "smartcomfort.db"
	}
	return db.InitDB(path)
}

// provision seeds the access code and token profiles from config.
func provision(ctx context.Context, access service.Access, cfg config.AccessConfig) error {
	profiles, err := cfg.ProfileModels()
	if err != nil {
		return err
	}
	return access.Provision(ctx, cfg.Code, profiles)
}

// runConsole feeds simulated keypad, card, button and presence input from r.
func runConsole(ctx context.Context, console *hardware.Console, r io.Reader, log *logger.Logger) {
	go func() {
		if err := console.Run(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
			log.Warnw("console input stopped", "err", err)
		}
	}()
}

// waitForShutdown blocks until a termination signal, then stops the control loop.
// It reports whether the loop stopped before the timeout.
func waitForShutdown(cancel context.CancelFunc, done <-chan struct{}, log *logger.Logger) bool {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down controller...")
	cancel()

	select {
	case <-done:
		return true
	case <-time.After(shutdownTimeout):
		log.Warnw("controller did not stop in time")
		return false
	}
}
