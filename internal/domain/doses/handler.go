package doses

import (
	"context"
	"encoding/json"
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

func RegisterRoutes(r chi.Router, resolver *Resolver, medsSvc *medications.Service, profileOwners ProfileOwnerLookup) {
	r.Get("/profiles/{profileID}/doses", listDosesHandler(resolver, medsSvc, profileOwners))
}

type doseResponse struct {
	MedicationID   string `json:"medication_id"`
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	Notes          string `json:"notes,omitempty"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Status         Status `json:"status"`
	RemainingDays  *int   `json:"remaining_days,omitempty"`
}

// listDosesHandler godoc
// @Summary Dosis del día (dashboard)
// @Description Resuelve las dosis programadas del perfil para una fecha (hoy por defecto), ordenadas por horario. Consulta pura: no modifica el ledger y es idempotente.
// @Tags doses
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Param date query string false "Fecha a resolver (YYYY-MM-DD). Por defecto hoy"
// @Success 200 {array} doseResponse
// @Failure 400 {string} string "date inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "profile not found"
// @Failure 500 {string} string "internal error"
// @Router /profiles/{profileID}/doses [get]
func listDosesHandler(resolver *Resolver, medsSvc *medications.Service, profileOwners ProfileOwnerLookup) http.HandlerFunc {
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

		now := time.Now()
		date := now
		if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
			d, err := medications.ParseDate(v)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = d
		}

		meds, err := medsSvc.ListByProfile(r.Context(), profileID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		list, err := resolver.ResolveDay(r.Context(), meds, date, now)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]doseResponse, 0, len(list))
		for _, d := range list {
			out = append(out, doseResponse{
				MedicationID:   d.Medication.ID,
				MedicationName: d.Medication.Name,
				Dosage:         d.Medication.Dosage,
				Notes:          d.Medication.Notes,
				Date:           medications.FormatDate(d.Date),
				Time:           d.Time,
				Status:         d.Status,
				RemainingDays:  d.RemainingDays,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
