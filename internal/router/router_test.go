package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"med-alert/internal/router"
)

func TestHTTP_EndToEnd_DoseLifecycle(t *testing.T) {
	h, _ := router.NewRouter(router.Options{AuthVerifier: nil})
	ts := httptest.NewServer(h)
	defer ts.Close()

	userID := "user-1"

	// 1) Crear perfil
	profileID := createProfile(t, ts.URL, userID, map[string]any{
		"name":     "Abuela Rosa",
		"relation": "grandmother",
	})

	// 2) Registrar medicamento diario con dos horarios, tratamiento de 10 días
	medID := createMedication(t, ts.URL, userID, profileID, map[string]any{
		"name":   "Losartana",
		"dosage": "50mg",
		"notes":  "con el desayuno",
		"schedule": map[string]any{
			"kind":  "every_day",
			"times": []string{"08:00", "20:00"},
		},
		"duration": map[string]any{
			"kind": "fixed_days",
			"days": 10,
		},
		"start_date": "2024-01-01",
	})

	// 3) Dashboard de un día pasado: ambas dosis sin registro figuran missed
	{
		st, body := doReq(t, ts.URL, "GET", "/profiles/"+profileID+"/doses?date=2024-01-02", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list doses, got %d body=%s", st, string(body))
		}
		var doses []struct {
			Time          string `json:"time"`
			Status        string `json:"status"`
			RemainingDays *int   `json:"remaining_days"`
		}
		_ = json.Unmarshal(body, &doses)
		if len(doses) != 2 {
			t.Fatalf("expected 2 doses, got %d body=%s", len(doses), string(body))
		}
		if doses[0].Time != "08:00" || doses[0].Status != "missed" {
			t.Fatalf("expected 08:00 missed, got %+v", doses[0])
		}
		if doses[0].RemainingDays == nil || *doses[0].RemainingDays != 9 {
			t.Fatalf("expected 9 remaining days on day 2, got %v", doses[0].RemainingDays)
		}
	}

	// 4) Registro tardío: marcar la de 08:00 como tomada
	{
		st, body := doReq(t, ts.URL, "POST", "/medications/"+medID+"/doses/08:00/take", userID, map[string]any{
			"date": "2024-01-02",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 take dose, got %d body=%s", st, string(body))
		}
	}

	// 5) El dashboard refleja el registro
	{
		st, body := doReq(t, ts.URL, "GET", "/profiles/"+profileID+"/doses?date=2024-01-02", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list doses, got %d", st)
		}
		var doses []struct {
			Time   string `json:"time"`
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &doses)
		if doses[0].Status != "taken" {
			t.Fatalf("expected 08:00 taken after record, got %+v", doses[0])
		}
		if doses[1].Status != "missed" {
			t.Fatalf("expected 20:00 still missed, got %+v", doses[1])
		}
	}

	// 6) Saltear la de 20:00
	{
		st, body := doReq(t, ts.URL, "POST", "/medications/"+medID+"/doses/20:00/skip", userID, map[string]any{
			"date": "2024-01-02",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 skip dose, got %d body=%s", st, string(body))
		}
	}

	// 7) El historial lista ambos registros, más recientes primero
	{
		st, body := doReq(t, ts.URL, "GET", "/profiles/"+profileID+"/history", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 history, got %d body=%s", st, string(body))
		}
		var entries []struct {
			MedicationID  string `json:"medication_id"`
			ScheduledTime string `json:"scheduled_time"`
			Outcome       string `json:"outcome"`
		}
		_ = json.Unmarshal(body, &entries)
		if len(entries) != 2 {
			t.Fatalf("expected 2 history entries, got %d body=%s", len(entries), string(body))
		}
		if entries[0].Outcome != "skipped" || entries[1].Outcome != "taken" {
			t.Fatalf("expected [skipped taken] newest first, got %+v", entries)
		}
	}

	// 8) Filtro por rango que no incluye la fecha: vacío
	{
		st, body := doReq(t, ts.URL, "GET", "/profiles/"+profileID+"/history?from=2024-02-01", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 filtered history, got %d", st)
		}
		var entries []any
		_ = json.Unmarshal(body, &entries)
		if len(entries) != 0 {
			t.Fatalf("expected empty history outside range, got %d", len(entries))
		}
	}

	// 9) Sin alerta armada: current 204, take/snooze 409
	{
		st, _ := doReq(t, ts.URL, "GET", "/profiles/"+profileID+"/alerts/current", userID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 without armed alert, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/profiles/"+profileID+"/alerts/take", userID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 take without alert, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/profiles/"+profileID+"/alerts/snooze", userID, map[string]any{"minutes": 5})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 snooze without alert, got %d", st)
		}
	}

	// 10) Borrar el perfil cascadea: el medicamento desaparece
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/profiles/"+profileID, userID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete profile, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/medications/"+medID, userID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 medication after cascade, got %d", st)
		}
	}
}

func TestHTTP_RejectsInvalidScheduleConfig(t *testing.T) {
	h, _ := router.NewRouter(router.Options{AuthVerifier: nil})
	ts := httptest.NewServer(h)
	defer ts.Close()

	userID := "user-1"
	profileID := createProfile(t, ts.URL, userID, map[string]any{
		"name":     "Yo",
		"relation": "self",
	})

	bad := []map[string]any{
		{
			// sin horarios
			"name":       "A",
			"schedule":   map[string]any{"kind": "every_day", "times": []string{}},
			"duration":   map[string]any{"kind": "continuous"},
			"start_date": "2024-01-01",
		},
		{
			// ciclo on/off no positivo
			"name":       "B",
			"schedule":   map[string]any{"kind": "on_off_cycle", "times": []string{"08:00"}, "on_days": 0, "off_days": 4},
			"duration":   map[string]any{"kind": "continuous"},
			"start_date": "2024-01-01",
		},
		{
			// duración fija no positiva
			"name":       "C",
			"schedule":   map[string]any{"kind": "every_day", "times": []string{"08:00"}},
			"duration":   map[string]any{"kind": "fixed_days", "days": 0},
			"start_date": "2024-01-01",
		},
		{
			// horario mal formado
			"name":       "D",
			"schedule":   map[string]any{"kind": "every_day", "times": []string{"8am"}},
			"duration":   map[string]any{"kind": "continuous"},
			"start_date": "2024-01-01",
		},
	}
	for i, payload := range bad {
		st, body := doReq(t, ts.URL, "POST", "/profiles/"+profileID+"/medications", userID, payload)
		if st != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d body=%s", i, st, string(body))
		}
	}
}

func TestHTTP_ForeignProfileIsNotFound(t *testing.T) {
	h, _ := router.NewRouter(router.Options{AuthVerifier: nil})
	ts := httptest.NewServer(h)
	defer ts.Close()

	profileID := createProfile(t, ts.URL, "owner-1", map[string]any{
		"name":     "Mamá",
		"relation": "mother",
	})

	// Otra cuenta no ve el perfil ni sus recursos; se responde 404, no 403.
	paths := []string{
		"/profiles/" + profileID,
		"/profiles/" + profileID + "/medications",
		"/profiles/" + profileID + "/doses",
		"/profiles/" + profileID + "/history",
		"/profiles/" + profileID + "/alerts/current",
	}
	for _, p := range paths {
		st, _ := doReq(t, ts.URL, "GET", p, "intruder-9", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for %s as foreign user, got %d", p, st)
		}
	}

	// Sin identidad: 401.
	st, _ := doReq(t, ts.URL, "GET", "/profiles/"+profileID, "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", st)
	}
}

func createProfile(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/profiles", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create profile, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create profile: missing id body=%s", string(body))
	}
	return resp.ID
}

func createMedication(t *testing.T, baseURL, userID, profileID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/profiles/"+profileID+"/medications", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create medication, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create medication: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
