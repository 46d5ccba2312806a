package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	mem "med-alert/internal/adapters/storage/memory"
	pg "med-alert/internal/adapters/storage/postgres"
	lite "med-alert/internal/adapters/storage/sqlite"
	"med-alert/internal/domain/alerts"
	"med-alert/internal/domain/doses"
	"med-alert/internal/domain/history"
	"med-alert/internal/domain/medications"
	"med-alert/internal/domain/profiles"
	"med-alert/internal/middleware"
	"med-alert/internal/platform/logger"
	"med-alert/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Logger       logger.Logger     // si es nil, se crea desde env

	// Opcional: si viene, usa Postgres. Si no, intenta por env
	// (DB_DSN => Postgres, SQLITE_PATH => SQLite) y cae a in-memory.
	DB *sql.DB

	// Intervalo de polling del motor de alertas (5s por defecto).
	PollInterval time.Duration
}

// NewRouter arma el router HTTP y el runner de alertas. El caller decide
// cuándo arrancar y frenar el runner (main lo hace; los tests pueden
// ignorarlo y manejar los motores a mano).
func NewRouter(opts Options) (http.Handler, *alerts.Runner) {
	r := chi.NewRouter()

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Mount("/swagger", httpSwagger.WrapHandler)

	var (
		profileRepo profiles.Repository
		medRepo     medications.Repository
		ledger      history.Ledger
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back", map[string]any{"error": err.Error()})
			}
		}
	}

	switch {
	case db != nil:
		profileRepo = pg.NewProfilesRepo(db)
		medRepo = pg.NewMedicationsRepo(db)
		ledger = pg.NewHistoryRepo(db)

	case os.Getenv("SQLITE_PATH") != "":
		sdb, err := lite.Open(os.Getenv("SQLITE_PATH"))
		if err != nil {
			log.Warn("sqlite unavailable, falling back to memory", map[string]any{"error": err.Error()})
			profileRepo = mem.NewProfileRepo()
			medRepo = mem.NewMedicationRepo()
			ledger = mem.NewHistoryRepo()
		} else {
			profileRepo = lite.NewProfilesRepo(sdb)
			medRepo = lite.NewMedicationsRepo(sdb)
			ledger = lite.NewHistoryRepo(sdb)
		}

	default:
		profileRepo = mem.NewProfileRepo()
		medRepo = mem.NewMedicationRepo()
		ledger = mem.NewHistoryRepo()
	}

	// Services por módulo
	historySvc := history.NewService(ledger)
	profilesSvc := profiles.NewService(profileRepo)
	medsSvc := medications.NewService(medRepo, historySvc)
	resolver := doses.NewResolver(ledger)

	// Motor de alertas: un engine por perfil, a demanda
	registry := alerts.NewRegistry(medsSvc, ledger, log)
	runner := alerts.NewRunner(registry, opts.PollInterval, log)

	// Rutas por módulo
	profiles.RegisterRoutes(r, profilesSvc, medsSvc)
	medications.RegisterRoutes(r, medsSvc, profilesSvc)
	history.RegisterRoutes(r, historySvc, medsSvc, profilesSvc)
	doses.RegisterRoutes(r, resolver, medsSvc, profilesSvc)
	alerts.RegisterRoutes(r, registry, profilesSvc)

	return r, runner
}
