package alerts

import (
	"context"
	"fmt"
	"time"

	rcron "github.com/robfig/cron/v3"

	"med-alert/internal/platform/logger"
)

const DefaultPollInterval = 5 * time.Second

// Runner dispara los ticks del registry a intervalo fijo. El intervalo
// recomendado es de 5 a 30 segundos: más fino responde mejor al borde del
// minuto a costa de despertares.
type Runner struct {
	registry *Registry
	interval time.Duration
	log      logger.Logger

	cron   *rcron.Cron
	cancel context.CancelFunc
}

func NewRunner(registry *Registry, interval time.Duration, log logger.Logger) *Runner {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Runner{
		registry: registry,
		interval: interval,
		log:      log,
	}
}

// Start registra el job de tick y arranca el scheduler. Hace un tick
// inmediato antes del primer intervalo.
func (r *Runner) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.cron = rcron.New(rcron.WithSeconds())
	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(spec, func() {
		r.registry.TickAll(runCtx)
	}); err != nil {
		cancel()
		return err
	}

	r.registry.TickAll(runCtx)
	r.cron.Start()

	if r.log != nil {
		r.log.Info("alert runner started", map[string]any{"interval": r.interval.String()})
	}
	return nil
}

// Stop frena el scheduler y espera a que termine el tick en curso.
func (r *Runner) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.log != nil {
		r.log.Info("alert runner stopped", nil)
	}
}
