package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/hoststatus/internal/bar"
	"codeberg.org/mutker/hoststatus/internal/config"
	"codeberg.org/mutker/hoststatus/internal/errors"
	"codeberg.org/mutker/hoststatus/internal/gpu"
	"codeberg.org/mutker/hoststatus/internal/logger"
	"codeberg.org/mutker/hoststatus/internal/netclass"
	"codeberg.org/mutker/hoststatus/internal/pid"
	"codeberg.org/mutker/hoststatus/internal/render"
	"codeberg.org/mutker/hoststatus/internal/status"
	"codeberg.org/mutker/hoststatus/internal/sysinfo"
	"codeberg.org/mutker/hoststatus/internal/volume"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const appName = "hoststatus"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Bool("status", cfg.Status).Msg("Config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Status {
		err = runStatus(ctx, cfg)
	} else {
		err = registerBar(ctx, cfg)
	}

	if err != nil {
		logger.ErrorWithCode(err).Msg("Exiting with error")
		stop()
		os.Exit(1)
	}
}

func registerBar(ctx context.Context, cfg *config.Config) error {
	runner, err := bar.NewSwayRunner(ctx)
	if err != nil {
		return errors.New().Wrap(errors.ErrRegisterBar, err)
	}

	def := bar.Definition{
		ID:       cfg.Bar.ID,
		Position: cfg.Bar.Position,
		Command:  cfg.Bar.Command,
		Font:     cfg.Bar.Font,
	}
	if err := bar.Register(ctx, runner, def); err != nil {
		return errors.New().Wrap(errors.ErrRegisterBar, err)
	}

	return nil
}

func runStatus(ctx context.Context, cfg *config.Config) error {
	errFactory := errors.New()

	pidFile := pid.New(pid.Dir())
	if err := pidFile.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pidFile.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	network, err := netclass.NewSysfsSource(cfg.Sysfs)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	sink, err := openSink(cfg.Sink)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}
	defer sink.Close()

	state := volume.NewState()
	sampler := volume.NewSampler(volume.PulseDialer{AppName: appName}, state, cfg.VolumeInterval)

	deps := render.Deps{
		Mounts:  cfg.Mounts,
		System:  sysinfo.NewSampler(sysinfo.NewHostSource(), cfg.Mounts, cfg.StrictMounts),
		Network: network,
		Volume:  state,
		Formatter: status.NewFormatter(status.Options{
			Width:       cfg.FieldWidth,
			Separator:   cfg.Separator,
			ClockFormat: cfg.ClockFormat,
		}),
		Sink: sink,
	}

	if cfg.GPU {
		monitor, err := gpu.New()
		if err != nil {
			logger.Info().Err(err).Msg("GPU utilization unavailable")
		} else {
			defer func() {
				if err := monitor.Shutdown(); err != nil {
					logger.Warn().Err(err).Msg("Failed to shut down NVML")
				}
			}()
			logger.Debug().Str("gpu", monitor.Name()).Msg("GPU monitor ready")
			deps.GPU = monitor
		}
	}

	loop := render.New(deps, cfg.RenderInterval())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sampler.Run(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case err := <-sampler.Errors():
				logger.Debug().Str("error_code", string(errors.CodeOf(err))).Err(err).Msg("Volume sampler error")
			}
		}
	})
	g.Go(func() error {
		if err := loop.Run(gctx); err != nil {
			return errFactory.Wrap(errors.ErrStatusLoop, err)
		}
		// the render loop only returns nil once ctx is done
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info().Msg("Exiting...")

	return nil
}

func openSink(kind string) (render.Sink, error) {
	if kind == config.SinkRootWindow {
		return render.NewRootWindowSink()
	}

	return render.NewWriterSink(os.Stdout), nil
}
