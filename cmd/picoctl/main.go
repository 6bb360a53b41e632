package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/picoctl/internal/config"
	"codeberg.org/mutker/picoctl/internal/console"
	"codeberg.org/mutker/picoctl/internal/device"
	"codeberg.org/mutker/picoctl/internal/governor"
	"codeberg.org/mutker/picoctl/internal/logger"
	"codeberg.org/mutker/picoctl/internal/pid"
	"codeberg.org/mutker/picoctl/internal/statepub"
	"codeberg.org/mutker/picoctl/internal/telemetry"
)

const (
	statusInterval   = time.Second
	workloadPhaseLen = 15 * time.Second
)

var (
	cfg *config.Config
	gov *governor.Governor
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel == "debug", cfg.LogLevel == "info", logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	chip, err := cfg.ChipVariant()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid chip variant")
	}

	dev, err := device.New(chip)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize device")
	}

	gov, err = governor.New(chip, dev, dev, governor.WithParams(cfg.GovernorParams()))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize governor")
	}

	telemetryCfg := telemetry.DefaultConfig()
	telemetryCfg.Enabled = cfg.Telemetry
	telemetryCfg.DBPath = cfg.Database
	collector, err := telemetry.NewService(telemetryCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	publisher, err := statepub.NewService(statepub.Config{
		BrokerURL: cfg.MQTTBroker,
		Topic:     cfg.MQTTTopic,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize state publisher")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	var cons *console.Console
	if cfg.Console {
		cons, err = console.New()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize console")
		}
		go cons.Run(ctx, cancel)
	}

	if err := loop(ctx, cons, collector, publisher); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}

	cleanup(cons, collector, publisher)
}

// loop drives the governor exactly the way a firmware main loop would:
// one Tick per iteration, work simulated as untracked time, rest of the
// slot annotated through Idle. Console commands execute here so the
// governor is only ever touched from this goroutine.
func loop(ctx context.Context, cons *console.Console, collector telemetry.Collector, publisher statepub.Publisher) error {
	work := newWorkload(time.Duration(cfg.TickInterval) * time.Millisecond)
	lastStatus := time.Now()

	var lines <-chan string
	if cons != nil {
		lines = cons.Lines()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			cons.Execute(gov, line)
		default:
		}

		gov.Tick()
		work.step(gov)

		if time.Since(lastStatus) >= statusInterval {
			status := gov.Status()
			if err := collector.Record(ctx, &telemetry.Snapshot{Timestamp: time.Now(), Status: status}); err != nil {
				logger.Error().Err(err).Msg("failed to record telemetry")
			}
			publisher.Publish(status)
			logStatus(status)
			lastStatus = time.Now()
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup(cons *console.Console, collector telemetry.Collector, publisher statepub.Publisher) {
	gov.SetAuto()

	if cons != nil {
		if err := cons.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close console")
		}
	}
	if err := collector.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close telemetry")
	}
	publisher.Close()

	logger.Info().Msg("Exiting...")
}

func logStatus(status governor.Status) {
	if cfg.LogLevel == "debug" {
		logger.Debug().
			Str("profile", status.Profile.String()).
			Int("frequency_mhz", status.FrequencyKHz/1000).
			Float64("load", status.Load).
			Float64("instant_load", status.InstantLoad).
			Float64("temperature", status.Temperature).
			Bool("throttled", status.Throttled).
			Bool("turbo", status.TurboActive).
			Bool("boost", status.BoostActive).
			Bool("override", status.OverrideActive).
			Msg("")
	} else {
		logger.Info().
			Str("profile", status.Profile.String()).
			Int("frequency_mhz", status.FrequencyKHz/1000).
			Float64("load", status.Load).
			Float64("temperature", status.Temperature).
			Msg("")
	}
}

// workload cycles through duty-cycle phases so the simulator exercises
// every profile. The busy part of each slot is a plain sleep, which the
// governor cannot tell apart from real work; the rest goes through Idle.
type workload struct {
	slot   time.Duration
	phases []float64
	start  time.Time
}

func newWorkload(slot time.Duration) *workload {
	return &workload{
		slot:   slot,
		phases: []float64{0.05, 0.35, 0.85, 0.6, 0.1},
		start:  time.Now(),
	}
}

func (w *workload) step(gov *governor.Governor) {
	idx := int(time.Since(w.start)/workloadPhaseLen) % len(w.phases)
	busy := time.Duration(w.phases[idx] * float64(w.slot))

	if busy > 0 {
		time.Sleep(busy)
	}
	if rest := w.slot - busy; rest > 0 {
		gov.IdleMicros(rest.Microseconds())
	}
}
