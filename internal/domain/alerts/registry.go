package alerts

import (
	"context"
	"sync"

	"med-alert/internal/domain/history"
	"med-alert/internal/platform/logger"
)

// Registry mantiene un Engine por perfil, creado a demanda. Cada motor
// tiene su propio estado de alertas, independiente del resto.
type Registry struct {
	meds   MedicationSource
	ledger history.Ledger
	log    logger.Logger

	mu      sync.Mutex
	engines map[string]*Engine
}

func NewRegistry(meds MedicationSource, ledger history.Ledger, log logger.Logger) *Registry {
	return &Registry{
		meds:    meds,
		ledger:  ledger,
		log:     log,
		engines: make(map[string]*Engine),
	}
}

func (g *Registry) EngineFor(profileID string) *Engine {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e, ok := g.engines[profileID]; ok {
		return e
	}
	e := NewEngine(profileID, g.meds, g.ledger, g.log)
	g.engines[profileID] = e
	return e
}

// TickAll avanza todos los motores registrados. Los errores ya quedaron
// logueados por cada motor; un perfil con ledger caído no frena al resto.
func (g *Registry) TickAll(ctx context.Context) {
	g.mu.Lock()
	engines := make([]*Engine, 0, len(g.engines))
	for _, e := range g.engines {
		engines = append(engines, e)
	}
	g.mu.Unlock()

	for _, e := range engines {
		_, _ = e.Tick(ctx)
	}
}
