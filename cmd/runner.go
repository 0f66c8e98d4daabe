package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"github.com/sdcio/parsort/pkg/array"
	"github.com/sdcio/parsort/pkg/config"
	"github.com/sdcio/parsort/pkg/pool"
	"github.com/sdcio/parsort/pkg/sorting"
	log "github.com/sirupsen/logrus"
)

// runner sorts generated input with one algorithm at a time and validates
// the result. Pool metrics are shared across runs.
type runner struct {
	cfg     *config.Config
	reg     *prometheus.Registry
	metrics *pool.Metrics
	srv     *http.Server
}

func newRunner(c *config.Config) (*runner, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m, err := pool.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	r := &runner{cfg: c, reg: reg, metrics: m}
	if c.Prometheus.Address != "" {
		r.serveMetrics(c.Prometheus.Address)
	}
	return r, nil
}

func (r *runner) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
	r.srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Infof("serving metrics on %s", addr)
		if err := r.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server failed: %v", err)
		}
	}()
}

func (r *runner) seed() uint32 {
	if r.cfg.Sort.Seed != 0 {
		return r.cfg.Sort.Seed
	}
	return array.DefaultSeed()
}

// run sorts a in place with the named algorithm and checks the result.
// It returns the time spent sorting, pool start and join excluded.
func (r *runner) run(ctx context.Context, name string, a []int) (time.Duration, error) {
	logger := log.WithFields(log.Fields{"algorithm": name, "items": len(a)})

	var p *pool.Pool
	var ex sorting.Executor
	if sorting.UsesPool(name) {
		opts := []pool.Option{pool.WithMetrics(r.metrics), pool.WithLogger(logger)}
		if r.cfg.Pool.LockOSThread {
			opts = append(opts, pool.WithLockOSThread())
		}
		var err error
		p, err = pool.New(r.cfg.Pool.Workers, opts...)
		if err != nil {
			return 0, fmt.Errorf("failed to create thread pool: %w", err)
		}
		ex = p
	}

	s, err := sorting.New(name, ex, sorting.Params{
		MaxGoroutines: r.cfg.Sort.MaxGoroutines,
		ForkDepth:     r.cfg.Sort.ForkDepth,
	}, sorting.WithLogger(logger))
	if err != nil {
		if p != nil {
			_ = p.Join()
		}
		return 0, err
	}

	begin := time.Now()
	sortErr := s.Sort(ctx, a)
	took := time.Since(begin)
	if p != nil {
		if err := p.Join(); err != nil && sortErr == nil {
			sortErr = err
		}
	}
	if sortErr != nil {
		return took, sortErr
	}
	if err := array.Validate(a); err != nil {
		return took, err
	}
	logger.Debugf("sorted in %s", took)
	return took, nil
}

func (r *runner) close(w io.Writer) error {
	if r.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = r.srv.Shutdown(ctx)
	}
	if !r.cfg.Prometheus.Dump {
		return nil
	}
	mfs, err := r.reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
