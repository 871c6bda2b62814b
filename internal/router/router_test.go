package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"herd-weight-tracker/internal/router"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{Location: time.UTC}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_WeighReportSimulate(t *testing.T) {
	ts := newServer(t)

	// 1) Pesajes de 007 (10 días, +20 kg) y uno solo de 008
	recordWeight(t, ts.URL, "007", 500, "2024-01-01 08:00:00")
	recordWeight(t, ts.URL, "007", 520, "2024-01-11 08:00:00")
	recordWeight(t, ts.URL, "008", 500, "2024-01-01 08:00:00")

	// 2) Listado en orden de aparición
	{
		st, body := doReq(t, ts.URL, "GET", "/animals", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list animals, got %d body=%s", st, string(body))
		}
		var ids []string
		_ = json.Unmarshal(body, &ids)
		if len(ids) != 2 || ids[0] != "007" || ids[1] != "008" {
			t.Fatalf("unexpected ids %v", ids)
		}
	}

	// 3) Lookup exacto y sin vecino más cercano
	{
		st, body := doReq(t, ts.URL, "GET", "/animals/007/weights/"+url.PathEscape("2024-01-11 08:00:00"), nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 exact lookup, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "GET", "/animals/007/weights/"+url.PathEscape("2024-01-11 08:00:01"), nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for off-by-one-second lookup, got %d", st)
		}
	}

	// 4) Reporte del animal
	{
		st, body := doReq(t, ts.URL, "GET", "/animals/007/report", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 animal report, got %d body=%s", st, string(body))
		}
		var rep struct {
			CurrentWeightKg float64  `json:"current_weight_kg"`
			GainPerDay      *float64 `json:"gain_per_day"`
		}
		_ = json.Unmarshal(body, &rep)
		if rep.CurrentWeightKg != 520 || rep.GainPerDay == nil || *rep.GainPerDay != 2.0 {
			t.Fatalf("unexpected report body=%s", string(body))
		}
	}

	// 5) Reporte de 008: GMD null
	{
		st, body := doReq(t, ts.URL, "GET", "/animals/008/report", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 animal report, got %d body=%s", st, string(body))
		}
		var rep map[string]any
		_ = json.Unmarshal(body, &rep)
		if rep["gain_per_day"] != nil || rep["gain_status"] != "insufficient_data" {
			t.Fatalf("expected null gain for single observation, body=%s", string(body))
		}
	}

	// 6) Rebaño: peso medio incluye 008, GMD medio no
	{
		st, body := doReq(t, ts.URL, "GET", "/herd/report", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 herd report, got %d body=%s", st, string(body))
		}
		var rep struct {
			MeanCurrentWeightKg *float64 `json:"mean_current_weight_kg"`
			MeanGainPerDay      *float64 `json:"mean_gain_per_day"`
		}
		_ = json.Unmarshal(body, &rep)
		if rep.MeanCurrentWeightKg == nil || *rep.MeanCurrentWeightKg != 510 {
			t.Fatalf("expected mean current 510, body=%s", string(body))
		}
		if rep.MeanGainPerDay == nil || *rep.MeanGainPerDay != 2.0 {
			t.Fatalf("expected mean gain 2.0, body=%s", string(body))
		}
	}

	// 7) Simulación: 520 -> 580 a 2.0 kg/día = 30 días; 580/15*300 = 11600
	{
		st, body := doReq(t, ts.URL, "POST", "/animals/007/simulation", map[string]any{
			"target_weight_kg": 580,
			"arroba_price":     300,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 simulation, got %d body=%s", st, string(body))
		}
		var sim struct {
			Days       int    `json:"days"`
			GainSource string `json:"gain_source"`
			Value      string `json:"value"`
		}
		_ = json.Unmarshal(body, &sim)
		if sim.Days != 30 || sim.GainSource != "measured" || sim.Value != "11600.00" {
			t.Fatalf("unexpected simulation body=%s", string(body))
		}
	}
}

func TestHTTP_Simulation_UnreachableIs422(t *testing.T) {
	ts := newServer(t)

	recordWeight(t, ts.URL, "010", 500, "2024-01-01 08:00:00")
	recordWeight(t, ts.URL, "010", 500, "2024-01-11 08:00:00")

	st, body := doReq(t, ts.URL, "POST", "/animals/010/simulation", map[string]any{
		"target_weight_kg": 560,
		"arroba_price":     "300",
	})
	if st != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", st, string(body))
	}
}

func TestHTTP_Errors(t *testing.T) {
	ts := newServer(t)

	if st, _ := doReq(t, ts.URL, "POST", "/animals/007/weights", map[string]any{"weight_kg": -5}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative weight, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/animals/007/weights", map[string]any{"weight_kg": 500, "taken_at": "ayer"}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad taken_at, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/animals/nope/report", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown animal, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/health", nil); st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/metrics", nil); st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
}

func recordWeight(t *testing.T, baseURL, animalID string, kg float64, takenAt string) {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/animals/"+animalID+"/weights", map[string]any{
		"weight_kg": kg,
		"taken_at":  takenAt,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 record weight, got %d body=%s", st, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}
