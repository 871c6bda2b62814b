package weights

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/animals", listAnimalsHandler(svc))
	r.Get("/timestamps", listTimestampsHandler(svc))

	r.Route("/animals/{animalID}/weights", func(wr chi.Router) {
		wr.Post("/", recordWeightHandler(svc))
		wr.Get("/", seriesHandler(svc))
		wr.Get("/{takenAt}", weightAtHandler(svc))
	})
}

// recordWeightRequest es el cuerpo para registrar un pesaje.
type recordWeightRequest struct {
	WeightKg float64 `json:"weight_kg"`
	TakenAt  string  `json:"taken_at"` // "YYYY-MM-DD HH:MM:SS" o RFC3339; vacío = ahora
}

type observationResponse struct {
	AnimalID string  `json:"animal_id"`
	TakenAt  string  `json:"taken_at"`
	WeightKg float64 `json:"weight_kg"`
}

type seriesResponse struct {
	AnimalID     string                `json:"animal_id"`
	Observations []observationResponse `json:"observations"`
}

// listAnimalsHandler godoc
// @Summary Listar animales
// @Description IDs en orden de primera aparición (no ordenados).
// @Tags weights
// @Produce json
// @Success 200 {array} string
// @Router /animals [get]
func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := svc.ListAnimalIDs(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, string(id))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listTimestampsHandler godoc
// @Summary Listar catálogo de timestamps
// @Tags weights
// @Produce json
// @Success 200 {array} string
// @Router /timestamps [get]
func listTimestampsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts, err := svc.Timestamps(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]string, 0, len(ts))
		for _, t := range ts {
			out = append(out, FormatTimestamp(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// recordWeightHandler godoc
// @Summary Registrar pesaje
// @Description Inserta o sobrescribe el peso del animal en el timestamp (resolución de segundos).
// @Tags weights
// @Accept json
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param payload body recordWeightRequest true "Peso en kg; taken_at opcional"
// @Success 201 {object} observationResponse
// @Failure 400 {string} string "invalid json / invalid taken_at / weight must be a positive number"
// @Router /animals/{animalID}/weights [post]
func recordWeightHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordWeightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var at time.Time
		if strings.TrimSpace(req.TakenAt) != "" {
			t, err := ParseTimestamp(req.TakenAt, svc.Location())
			if err != nil {
				http.Error(w, "taken_at must be YYYY-MM-DD HH:MM:SS or RFC3339", http.StatusBadRequest)
				return
			}
			at = t
		}

		o, err := svc.Upsert(r.Context(), chi.URLParam(r, "animalID"), at, req.WeightKg)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidWeight):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toObservationResponse(o))
	}
}

// seriesHandler godoc
// @Summary Historial de pesajes
// @Description Serie ascendente; animal desconocido devuelve lista vacía.
// @Tags weights
// @Produce json
// @Param animalID path string true "ID del animal"
// @Success 200 {object} seriesResponse
// @Router /animals/{animalID}/weights [get]
func seriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := NormalizeAnimalID(chi.URLParam(r, "animalID"))
		series, err := svc.SeriesFor(r.Context(), string(id))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := seriesResponse{
			AnimalID:     string(id),
			Observations: make([]observationResponse, 0, len(series)),
		}
		for _, o := range series {
			out.Observations = append(out.Observations, toObservationResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// weightAtHandler godoc
// @Summary Peso en un timestamp exacto
// @Tags weights
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param takenAt path string true "YYYY-MM-DD HH:MM:SS"
// @Success 200 {object} observationResponse
// @Failure 404 {string} string "not found"
// @Router /animals/{animalID}/weights/{takenAt} [get]
func weightAtHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		at, err := ParseTimestamp(chi.URLParam(r, "takenAt"), svc.Location())
		if err != nil {
			http.Error(w, "takenAt must be YYYY-MM-DD HH:MM:SS or RFC3339", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "animalID")
		kg, err := svc.WeightAt(r.Context(), id, at)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toObservationResponse(Observation{
			AnimalID: NormalizeAnimalID(id),
			At:       at.In(svc.Location()),
			WeightKg: kg,
		}))
	}
}

func toObservationResponse(o Observation) observationResponse {
	return observationResponse{
		AnimalID: string(o.AnimalID),
		TakenAt:  FormatTimestamp(o.At),
		WeightKg: o.WeightKg,
	}
}

// writeJSON es local al módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
