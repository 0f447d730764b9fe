// Command herd-trace steps the herd simulation without a window and prints
// every animal's group id once per tick.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"herding/internal/app"
	"herding/internal/core"
	"herding/internal/logging"
	"herding/internal/sims/herd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, nil))
}

// run parses args, steps the model and writes one trace line per tick to
// out. A nil log builds one from the log flags.
func run(ctx context.Context, args []string, out io.Writer, log logging.Logger) int {
	cfg := app.NewConfig()
	fs := flag.NewFlagSet("herd-trace", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if log == nil {
		log = cfg.Logger()
	}
	log, _ = logging.WithRunID(log)

	reg := prometheus.NewRegistry()
	metrics, err := herd.NewCollector(reg)
	if err != nil {
		log.Error(ctx, "metrics setup failed", logging.Err(err))
		return 1
	}

	model, err := herd.NewModel(herd.FromMap(cfg.SimConfig()), herd.WithLogger(log), herd.WithMetrics(metrics))
	if err != nil {
		log.Error(ctx, "invalid configuration", logging.Err(err))
		return 1
	}
	log.Info(ctx, "run started", paramFields(model.Parameters())...)

	var pacer *core.FixedStep
	if cfg.TPS > 0 {
		pacer = core.NewFixedStep(cfg.TPS)
	}

	status := 0
	for tick := 0; cfg.Ticks == 0 || tick < cfg.Ticks; tick++ {
		if pacer != nil {
			if err := pacer.Wait(ctx); err != nil {
				break
			}
		} else if ctx.Err() != nil {
			break
		}
		rep, err := model.Tick()
		if err != nil {
			log.Error(ctx, "tick failed", logging.Err(err))
			status = 1
			break
		}
		fmt.Fprintln(out, rep.Line())
	}

	fields, err := herd.Summarize(reg)
	if err != nil {
		log.Warn(ctx, "metrics summary unavailable", logging.Err(err))
	}
	log.Info(ctx, "run finished", fields...)
	return status
}

func paramFields(snap core.ParameterSnapshot) []logging.Field {
	var fields []logging.Field
	for _, group := range snap.Groups {
		for _, p := range group.Params {
			fields = append(fields, logging.String(p.Key, p.Value))
		}
	}
	return fields
}
