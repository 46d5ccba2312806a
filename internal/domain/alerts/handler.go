package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"med-alert/internal/domain/medications"
	"med-alert/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// ProfileOwnerLookup expone el dueño de un perfil (rompe ciclos con profiles).
type ProfileOwnerLookup interface {
	OwnerOf(ctx context.Context, profileID string) (string, error)
}

func RegisterRoutes(r chi.Router, registry *Registry, profileOwners ProfileOwnerLookup) {
	r.Route("/profiles/{profileID}/alerts", func(ar chi.Router) {
		ar.Get("/current", currentAlertHandler(registry, profileOwners))
		ar.Post("/take", takeAlertHandler(registry, profileOwners))
		ar.Post("/snooze", snoozeAlertHandler(registry, profileOwners))
	})
}

type alertResponse struct {
	MedicationID   string `json:"medication_id"`
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	Time           string `json:"time"`
	Date           string `json:"date"`
}

// currentAlertHandler godoc
// @Summary Ver alerta armada
// @Description Devuelve la alerta armada del perfil, o 204 si no hay ninguna. Lectura pura, no avanza el motor.
// @Tags alerts
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Success 200 {object} alertResponse
// @Success 204 {string} string "sin alerta armada"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID}/alerts/current [get]
func currentAlertHandler(registry *Registry, profileOwners ProfileOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, ok := authorizeEngine(w, r, registry, profileOwners)
		if !ok {
			return
		}

		a := engine.CurrentAlert()
		if a == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, toAlertResponse(*a))
	}
}

// takeAlertHandler godoc
// @Summary Tomar la dosis de la alerta armada
// @Description Registra la dosis como tomada y descarta la alerta. Sin alerta armada devuelve 409 (no-op recuperable, no un crash).
// @Tags alerts
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Success 204 {string} string ""
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "profile not found"
// @Failure 409 {string} string "no active alert"
// @Router /profiles/{profileID}/alerts/take [post]
func takeAlertHandler(registry *Registry, profileOwners ProfileOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, ok := authorizeEngine(w, r, registry, profileOwners)
		if !ok {
			return
		}

		if err := engine.Take(r.Context()); err != nil {
			if errors.Is(err, ErrNoActiveAlert) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type snoozeRequest struct {
	Minutes int `json:"minutes"` // opcional; 5 por defecto
}

// snoozeAlertHandler godoc
// @Summary Adiar la alerta armada
// @Description Registra postponed, agenda el re-disparo y descarta la alerta. Sin alerta armada devuelve 409.
// @Tags alerts
// @Accept json
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Param payload body snoozeRequest false "Minutos de adiamiento (5 por defecto)"
// @Success 204 {string} string ""
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "profile not found"
// @Failure 409 {string} string "no active alert"
// @Router /profiles/{profileID}/alerts/snooze [post]
func snoozeAlertHandler(registry *Registry, profileOwners ProfileOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, ok := authorizeEngine(w, r, registry, profileOwners)
		if !ok {
			return
		}

		var req snoozeRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req) // body opcional
		}

		d := time.Duration(req.Minutes) * time.Minute
		if err := engine.Snooze(r.Context(), d); err != nil {
			if errors.Is(err, ErrNoActiveAlert) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func authorizeEngine(w http.ResponseWriter, r *http.Request, registry *Registry, profileOwners ProfileOwnerLookup) (*Engine, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	profileID := chi.URLParam(r, "profileID")
	ownerID, err := profileOwners.OwnerOf(r.Context(), profileID)
	if err != nil || ownerID != claims.UserID {
		http.Error(w, "profile not found", http.StatusNotFound)
		return nil, false
	}

	return registry.EngineFor(profileID), true
}

func toAlertResponse(a AlertInfo) alertResponse {
	return alertResponse{
		MedicationID:   a.Medication.ID,
		MedicationName: a.Medication.Name,
		Dosage:         a.Medication.Dosage,
		Time:           a.Time,
		Date:           medications.FormatDate(a.Date),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
