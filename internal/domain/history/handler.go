package history

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
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

func RegisterRoutes(r chi.Router, svc *Service, medsSvc *medications.Service, profileOwners ProfileOwnerLookup) {
	r.Get("/profiles/{profileID}/history", listHistoryHandler(svc, profileOwners))

	// Resultados directos por slot, sin pasar por el motor de alertas
	// (el botón "tomar"/"saltear" del dashboard).
	r.Route("/medications/{medicationID}/doses/{time}", func(dr chi.Router) {
		dr.Post("/take", recordSlotHandler(svc, medsSvc, profileOwners, OutcomeTaken))
		dr.Post("/skip", recordSlotHandler(svc, medsSvc, profileOwners, OutcomeSkipped))
	})
}

type entryResponse struct {
	ID            string    `json:"id"`
	MedicationID  string    `json:"medication_id"`
	Date          string    `json:"date"`
	ScheduledTime string    `json:"scheduled_time"`
	Outcome       Outcome   `json:"outcome"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// listHistoryHandler godoc
// @Summary Historial de dosis del perfil
// @Description Lista los registros del ledger del perfil, más recientes primero. Permite filtrar por rango de fechas de la dosis programada.
// @Tags history
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Param from query string false "Fecha mínima de la dosis (YYYY-MM-DD)"
// @Param to query string false "Fecha máxima de la dosis (YYYY-MM-DD)"
// @Param limit query int false "Máximo de registros (1-200). Por defecto 50"
// @Success 200 {array} entryResponse
// @Failure 400 {string} string "filtros inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID}/history [get]
func listHistoryHandler(svc *Service, profileOwners ProfileOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		profileID := chi.URLParam(r, "profileID")
		ownerID, err := profileOwners.OwnerOf(r.Context(), profileID)
		if err != nil || ownerID != claims.UserID {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}

		filter := ListFilter{}
		q := r.URL.Query()

		if v := strings.TrimSpace(q.Get("from")); v != "" {
			t, err := medications.ParseDate(v)
			if err != nil {
				http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			filter.From = &t
		}
		if v := strings.TrimSpace(q.Get("to")); v != "" {
			t, err := medications.ParseDate(v)
			if err != nil {
				http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			filter.To = &t
		}
		if v := strings.TrimSpace(q.Get("limit")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "limit must be a positive int", http.StatusBadRequest)
				return
			}
			filter.Limit = n
		}

		list, err := svc.ListByProfile(r.Context(), profileID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]entryResponse, 0, len(list))
		for _, e := range list {
			out = append(out, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type recordSlotRequest struct {
	Date string `json:"date"` // YYYY-MM-DD, opcional; por defecto hoy
}

// recordSlotHandler godoc
// @Summary Registrar resultado de un slot
// @Description Registra taken (POST .../take) o skipped (POST .../skip) para el slot (medicamento, horario) de la fecha dada (hoy por defecto). Siempre vale registrar tarde: una dosis que figuraba como perdida pasa a tomada.
// @Tags history
// @Accept json
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Param time path string true "Horario del slot (HH:MM)"
// @Param payload body recordSlotRequest false "Fecha de la dosis (opcional)"
// @Success 201 {object} entryResponse
// @Failure 400 {string} string "horario o fecha inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID}/doses/{time}/take [post]
func recordSlotHandler(svc *Service, medsSvc *medications.Service, profileOwners ProfileOwnerLookup, outcome Outcome) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medicationID := chi.URLParam(r, "medicationID")
		m, err := medsSvc.GetByID(r.Context(), medicationID)
		if err != nil {
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		}

		ownerID, err := profileOwners.OwnerOf(r.Context(), m.ProfileID)
		if err != nil || ownerID != claims.UserID {
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		}

		slot := chi.URLParam(r, "time")
		if !medications.ValidTimeOfDay(slot) {
			http.Error(w, "time must be HH:MM", http.StatusBadRequest)
			return
		}

		date := time.Now()
		if r.Body != nil {
			var req recordSlotRequest
			// body opcional: un EOF acá no es error
			if err := json.NewDecoder(r.Body).Decode(&req); err == nil && strings.TrimSpace(req.Date) != "" {
				d, err := medications.ParseDate(req.Date)
				if err != nil {
					http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
					return
				}
				date = d
			}
		}

		e, err := svc.Record(r.Context(), RecordInput{
			MedicationID:  m.ID,
			ProfileID:     m.ProfileID,
			Date:          date,
			ScheduledTime: slot,
			Outcome:       outcome,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toEntryResponse(e))
	}
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		ID:            e.ID,
		MedicationID:  e.MedicationID,
		Date:          medications.FormatDate(e.Date),
		ScheduledTime: e.ScheduledTime,
		Outcome:       e.Outcome,
		RecordedAt:    e.RecordedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
