package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-pool/adapters"
	promadapter "github.com/momentics/hioload-pool/adapters/prometheus"
	"github.com/momentics/hioload-pool/control"
	"github.com/momentics/hioload-pool/core/concurrency"
)

const statsInterval = time.Second

type app struct {
	cfg  *cliConfig
	outW io.Writer
	logW io.Writer
}

func newApp(cfg *cliConfig, outW, logW io.Writer) *app {
	return &app{cfg: cfg, outW: outW, logW: logW}
}

// loadConfig reads the config file, or builds one sized to the host.
func (a *app) loadConfig() (*control.FileConfig, error) {
	if a.cfg.ConfigPath == "" {
		return &control.FileConfig{
			Pool: control.PoolBlock{
				Workers:      runtime.NumCPU(),
				ActorWorkers: 1,
			},
		}, nil
	}
	return control.LoadFile(a.cfg.ConfigPath)
}

func pick(flagVal, fileVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return fileVal
}

func (a *app) Run(ctx context.Context) error {
	fc, err := a.loadConfig()
	if err != nil {
		return err
	}

	var level, format string
	if fc.Log != nil {
		level, format = fc.Log.Level, fc.Log.Format
	}
	log := newLogger(pick(a.cfg.LogLevel, level), pick(a.cfg.LogFormat, format), a.logW)

	metricsAddr := a.cfg.MetricsAddr
	if metricsAddr == "" && fc.Metrics != nil {
		metricsAddr = fc.Metrics.Addr
	}

	name := fc.Pool.Name
	if name == "" {
		name = "poolctl"
	}
	actorWorkers := fc.Pool.ActorWorkers
	if actorWorkers == 0 {
		log.Info("config has no actor workers, using one")
		actorWorkers = 1
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := concurrency.Options{
		Name:          name,
		Logger:        log,
		Metrics:       promadapter.NewPoolMetrics(reg, name),
		PinCPUs:       fc.Pool.PinCPUs,
		TaskQueueSize: fc.Pool.TaskQueueSize,
	}
	if fc.Tuning != nil {
		opts.SpinBudget = fc.Tuning.SpinBudget
		if fc.Tuning.WaitTimeout != "" {
			// validated by LoadFile
			opts.WaitTimeout, _ = time.ParseDuration(fc.Tuning.WaitTimeout)
		}
	}

	pool, err := concurrency.NewInterThreadPool(actorWorkers, fc.Pool.Workers, opts)
	if err != nil {
		return fmt.Errorf("failed to start pool: %w", err)
	}
	defer pool.Close()

	ctrl := adapters.NewControlAdapter()
	if err := ctrl.SetConfig(fc.Tunables()); err != nil {
		return err
	}
	pa := adapters.BindPool(ctrl, pool, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: a.mux(reg, ctrl, pa)}
		g.Go(func() error {
			log.Info("metrics server starting", "addr", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if a.cfg.Watch {
		g.Go(func() error {
			return control.Watch(gctx, a.cfg.ConfigPath, ctrl.Store(), log)
		})
	}

	g.Go(func() error {
		pa.Run(gctx, statsInterval)
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		sums, err := newPipeline(gctx, pool, log).Run(gctx, a.cfg.Batches, a.cfg.Items)
		if err != nil {
			return err
		}
		pa.Refresh()
		fmt.Fprintf(a.outW, "processed %d batches of %d items on %d workers (%d actor) in %s, batch sum %.0f\n",
			len(sums), a.cfg.Items, pool.NumWorkers(), pool.NumActorWorkers(),
			time.Since(start).Round(time.Microsecond), sums[0])
		if !a.cfg.Hold {
			cancel()
		}
		return nil
	})

	err = g.Wait()
	s := pool.Stats()
	log.Info("workload finished",
		"tasks_run", s.TasksRun, "actors_run", s.ActorsRun, "actor_failures", s.ActorFailures)
	return err
}

func (a *app) mux(reg *prometheus.Registry, ctrl *adapters.ControlAdapter, pa *adapters.PoolAdapter) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug/state", func(w http.ResponseWriter, _ *http.Request) {
		pa.Refresh()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ctrl.Stats())
	})
	return mux
}
