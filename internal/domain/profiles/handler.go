package profiles

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"med-alert/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// MedicationPurger elimina los medicamentos (y su historial) de un perfil.
// Interfaz local para no importar el paquete medications (rompe ciclos).
type MedicationPurger interface {
	DeleteByProfile(ctx context.Context, profileID string) error
}

func RegisterRoutes(r chi.Router, svc *Service, medsPurger MedicationPurger) {
	r.Route("/profiles", func(pr chi.Router) {
		pr.Post("/", createProfileHandler(svc))
		pr.Get("/", listProfilesHandler(svc))
		pr.Get("/{profileID}", getProfileHandler(svc))
		pr.Delete("/{profileID}", deleteProfileHandler(svc, medsPurger))
	})
}

type createProfileRequest struct {
	Name     string `json:"name"`
	Relation string `json:"relation" enums:"self,mother,father,grandmother,grandfather,child,other"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Relation  Relation  `json:"relation"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createProfileHandler godoc
// @Summary Crear perfil
// @Description Crea un perfil (titular o familiar a cargo) para la cuenta autenticada. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags profiles
// @Accept json
// @Produce json
// @Param payload body createProfileRequest true "Datos del perfil"
// @Success 201 {object} profileResponse
// @Failure 400 {string} string "invalid json / name required"
// @Failure 401 {string} string "unauthorized"
// @Router /profiles [post]
func createProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:     req.Name,
			Relation: req.Relation,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toProfileResponse(p))
	}
}

// listProfilesHandler godoc
// @Summary Listar perfiles de la cuenta
// @Tags profiles
// @Produce json
// @Success 200 {array} profileResponse
// @Failure 401 {string} string "unauthorized"
// @Router /profiles [get]
func listProfilesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		list, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]profileResponse, 0, len(list))
		for _, p := range list {
			out = append(out, toProfileResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getProfileHandler godoc
// @Summary Ver un perfil
// @Tags profiles
// @Produce json
// @Param profileID path string true "ID del perfil"
// @Success 200 {object} profileResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID} [get]
func getProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeProfile(w, r, svc)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

// deleteProfileHandler godoc
// @Summary Eliminar perfil
// @Description Elimina el perfil junto con sus medicamentos e historial (cascada).
// @Tags profiles
// @Param profileID path string true "ID del perfil"
// @Success 204 {string} string ""
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID} [delete]
func deleteProfileHandler(svc *Service, medsPurger MedicationPurger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorizeProfile(w, r, svc)
		if !ok {
			return
		}

		if err := medsPurger.DeleteByProfile(r.Context(), p.ID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err := svc.Delete(r.Context(), p.ID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// authorizeProfile resuelve claims + perfil y corta con 401/404 si no
// corresponde. Un perfil ajeno se reporta como 404, no como 403: no
// filtramos existencia de perfiles de otras cuentas.
func authorizeProfile(w http.ResponseWriter, r *http.Request, svc *Service) (Profile, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Profile{}, false
	}

	profileID := chi.URLParam(r, "profileID")
	p, err := svc.GetByID(r.Context(), profileID)
	if err != nil || p.OwnerUserID != claims.UserID {
		http.Error(w, "profile not found", http.StatusNotFound)
		return Profile{}, false
	}
	return p, true
}

func toProfileResponse(p Profile) profileResponse {
	return profileResponse{
		ID:        p.ID,
		Name:      p.Name,
		Relation:  p.Relation,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
