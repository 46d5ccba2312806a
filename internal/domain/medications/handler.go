package medications

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"med-alert/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// ProfileOwnerLookup expone el dueño de un perfil.
// Interfaz local para no importar el paquete profiles (rompe ciclos).
type ProfileOwnerLookup interface {
	OwnerOf(ctx context.Context, profileID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, profileOwners ProfileOwnerLookup) {
	r.Route("/profiles/{profileID}/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc, profileOwners))
		mr.Get("/", listMedicationsHandler(svc, profileOwners))
	})

	r.Route("/medications/{medicationID}", func(mr chi.Router) {
		mr.Get("/", getMedicationHandler(svc, profileOwners))
		mr.Put("/", updateMedicationHandler(svc, profileOwners))
		mr.Delete("/", deleteMedicationHandler(svc, profileOwners))
	})
}

type scheduleRequest struct {
	Kind  ScheduleKind `json:"kind" enums:"every_day,specific_days,on_off_cycle"`
	Times []string     `json:"times"`          // "HH:MM"
	Days  []Weekday    `json:"days,omitempty"` // specific_days
	On    int          `json:"on_days,omitempty"`
	Off   int          `json:"off_days,omitempty"`
}

type durationRequest struct {
	Kind DurationKind `json:"kind" enums:"continuous,fixed_days"`
	Days int          `json:"days,omitempty"`
}

type medicationRequest struct {
	Name      string          `json:"name"`
	Dosage    string          `json:"dosage"`
	Notes     string          `json:"notes"`
	Schedule  scheduleRequest `json:"schedule"`
	Duration  durationRequest `json:"duration"`
	StartDate string          `json:"start_date"` // YYYY-MM-DD
}

type medicationResponse struct {
	ID        string          `json:"id"`
	ProfileID string          `json:"profile_id"`
	Name      string          `json:"name"`
	Dosage    string          `json:"dosage"`
	Notes     string          `json:"notes"`
	Schedule  scheduleRequest `json:"schedule"`
	Duration  durationRequest `json:"duration"`
	StartDate string          `json:"start_date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// createMedicationHandler godoc
// @Summary Registrar medicamento
// @Description Crea un medicamento para el perfil con su recurrencia y duración. La configuración inválida (times vacío, ciclos no positivos, duración fija no positiva) se rechaza acá, nunca llega al motor de alertas.
// @Tags medications
// @Accept json
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Param payload body medicationRequest true "Datos del medicamento; start_date en YYYY-MM-DD"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / invalid schedule config"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID}/medications [post]
func createMedicationHandler(svc *Service, profileOwners ProfileOwnerLookup) http.HandlerFunc {
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

		in, ok := decodeMedicationRequest(w, r)
		if !ok {
			return
		}

		m, err := svc.Create(r.Context(), profileID, in)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicamentos del perfil
// @Tags medications
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID}/medications [get]
func listMedicationsHandler(svc *Service, profileOwners ProfileOwnerLookup) http.HandlerFunc {
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

		list, err := svc.ListByProfile(r.Context(), profileID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(list))
		for _, m := range list {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Ver un medicamento
// @Tags medications
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Success 200 {object} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [get]
func getMedicationHandler(svc *Service, profileOwners ProfileOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := authorizeMedication(w, r, svc, profileOwners)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// updateMedicationHandler godoc
// @Summary Actualizar medicamento
// @Description Reemplaza nombre, dosis, notas, recurrencia y duración. La misma validación de configuración que en el alta.
// @Tags medications
// @Accept json
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Param payload body medicationRequest true "Datos nuevos"
// @Success 200 {object} medicationResponse
// @Failure 400 {string} string "invalid json / invalid schedule config"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [put]
func updateMedicationHandler(svc *Service, profileOwners ProfileOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := authorizeMedication(w, r, svc, profileOwners)
		if !ok {
			return
		}

		in, ok := decodeMedicationRequest(w, r)
		if !ok {
			return
		}

		updated, err := svc.Update(r.Context(), m.ID, in)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, toMedicationResponse(updated))
	}
}

// deleteMedicationHandler godoc
// @Summary Eliminar medicamento
// @Description Elimina el medicamento y su historial de dosis (cascada).
// @Tags medications
// @Param medicationID path string true "ID del medicamento"
// @Success 204 {string} string ""
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [delete]
func deleteMedicationHandler(svc *Service, profileOwners ProfileOwnerLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := authorizeMedication(w, r, svc, profileOwners)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), m.ID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func authorizeMedication(w http.ResponseWriter, r *http.Request, svc *Service, profileOwners ProfileOwnerLookup) (Medication, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Medication{}, false
	}

	medicationID := chi.URLParam(r, "medicationID")
	m, err := svc.GetByID(r.Context(), medicationID)
	if err != nil {
		http.Error(w, "medication not found", http.StatusNotFound)
		return Medication{}, false
	}

	ownerID, err := profileOwners.OwnerOf(r.Context(), m.ProfileID)
	if err != nil || ownerID != claims.UserID {
		http.Error(w, "medication not found", http.StatusNotFound)
		return Medication{}, false
	}
	return m, true
}

func decodeMedicationRequest(w http.ResponseWriter, r *http.Request) (CreateInput, bool) {
	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return CreateInput{}, false
	}

	start, err := ParseDate(req.StartDate)
	if err != nil {
		http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
		return CreateInput{}, false
	}

	return CreateInput{
		Name:   req.Name,
		Dosage: req.Dosage,
		Notes:  req.Notes,
		Schedule: Schedule{
			Kind:  req.Schedule.Kind,
			Times: req.Schedule.Times,
			Days:  req.Schedule.Days,
			On:    req.Schedule.On,
			Off:   req.Schedule.Off,
		},
		Duration: DurationWindow{
			Kind: req.Duration.Kind,
			Days: req.Duration.Days,
		},
		StartDate: start,
	}, true
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:        m.ID,
		ProfileID: m.ProfileID,
		Name:      m.Name,
		Dosage:    m.Dosage,
		Notes:     m.Notes,
		Schedule: scheduleRequest{
			Kind:  m.Schedule.Kind,
			Times: m.Schedule.Times,
			Days:  m.Schedule.Days,
			On:    m.Schedule.On,
			Off:   m.Schedule.Off,
		},
		Duration: durationRequest{
			Kind: m.Duration.Kind,
			Days: m.Duration.Days,
		},
		StartDate: FormatDate(m.StartDate),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
