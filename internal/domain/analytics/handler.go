package analytics

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"herd-weight-tracker/internal/domain/forecast"
	"herd-weight-tracker/internal/domain/weights"
)

func RegisterRoutes(r chi.Router, f *Facade) {
	r.Get("/herd/report", herdReportHandler(f))
	r.Get("/animals/{animalID}/report", animalReportHandler(f))
	r.Post("/animals/{animalID}/simulation", simulateHandler(f))
}

type observationView struct {
	TakenAt  string  `json:"taken_at"`
	WeightKg float64 `json:"weight_kg"`
}

type animalReportResponse struct {
	AnimalID        string          `json:"animal_id"`
	Observations    int             `json:"observations"`
	First           observationView `json:"first"`
	Last            observationView `json:"last"`
	CurrentWeightKg float64         `json:"current_weight_kg"`
	MeanWeightKg    float64         `json:"mean_weight_kg"`
	GainStatus      string          `json:"gain_status"`
	GainPerDay      *float64        `json:"gain_per_day"`
	GainDays        int             `json:"gain_days"`
	HorizonDays     int             `json:"horizon_days"`
	ProjectedKg     *float64        `json:"projected_weight_kg"`
}

type herdReportResponse struct {
	Animals             int      `json:"animals"`
	WeighedAnimals      int      `json:"weighed_animals"`
	GainAnimals         int      `json:"gain_animals"`
	MeanCurrentWeightKg *float64 `json:"mean_current_weight_kg"`
	MeanGainPerDay      *float64 `json:"mean_gain_per_day"`
	HorizonDays         int      `json:"horizon_days"`
	ProjectedWeightKg   *float64 `json:"projected_weight_kg"`
}

// simulationRequest: arroba_price acepta número o string decimal.
type simulationRequest struct {
	TargetWeightKg float64         `json:"target_weight_kg"`
	ArrobaPrice    decimal.Decimal `json:"arroba_price"`
}

type simulationResponse struct {
	AnimalID        string  `json:"animal_id"`
	CurrentWeightKg float64 `json:"current_weight_kg"`
	TargetWeightKg  float64 `json:"target_weight_kg"`
	GainPerDay      float64 `json:"gain_per_day"`
	GainSource      string  `json:"gain_source"`
	Days            int     `json:"days"`
	EstimatedDate   string  `json:"estimated_date"`
	ArrobaPrice     string  `json:"arroba_price"`
	Value           string  `json:"value"`
}

// animalReportHandler godoc
// @Summary Reporte de un animal
// @Description Primer/último pesaje, peso actual, GMD y proyección (null si el GMD no está definido).
// @Tags analytics
// @Produce json
// @Param animalID path string true "ID del animal"
// @Success 200 {object} animalReportResponse
// @Failure 404 {string} string "unknown animal"
// @Router /animals/{animalID}/report [get]
func animalReportHandler(f *Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := f.AnimalReport(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalReportResponse(rep))
	}
}

// herdReportHandler godoc
// @Summary Reporte del rebaño
// @Tags analytics
// @Produce json
// @Success 200 {object} herdReportResponse
// @Router /herd/report [get]
func herdReportHandler(f *Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := f.HerdReport(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, herdReportResponse{
			Animals:             rep.Animals,
			WeighedAnimals:      rep.WeighedAnimals,
			GainAnimals:         rep.GainAnimals,
			MeanCurrentWeightKg: rep.MeanCurrentWeight,
			MeanGainPerDay:      rep.MeanGainPerDay,
			HorizonDays:         rep.HorizonDays,
			ProjectedWeightKg:   rep.ProjectedWeight,
		})
	}
}

// simulateHandler godoc
// @Summary Simular meta de peso
// @Description Días y fecha estimada para llegar al peso meta y su valor en arrobas (15 kg).
// @Tags analytics
// @Accept json
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param payload body simulationRequest true "Peso meta y precio por arroba"
// @Success 200 {object} simulationResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 404 {string} string "unknown animal"
// @Failure 422 {string} string "target weight is unreachable with the given daily gain"
// @Router /animals/{animalID}/simulation [post]
func simulateHandler(f *Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req simulationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.TargetWeightKg <= 0 || req.ArrobaPrice.IsNegative() {
			http.Error(w, "target_weight_kg must be positive and arroba_price non-negative", http.StatusBadRequest)
			return
		}

		sim, err := f.SimulateGoal(r.Context(), chi.URLParam(r, "animalID"), req.TargetWeightKg, req.ArrobaPrice)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, simulationResponse{
			AnimalID:        string(sim.AnimalID),
			CurrentWeightKg: sim.CurrentWeight,
			TargetWeightKg:  sim.TargetWeight,
			GainPerDay:      sim.GainPerDay,
			GainSource:      string(sim.GainSource),
			Days:            sim.Days,
			EstimatedDate:   sim.EstimatedDate.Format("2006-01-02"),
			ArrobaPrice:     sim.PricePerArroba.StringFixed(2),
			Value:           sim.Value.StringFixed(2),
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, weights.ErrInvalidInput), errors.Is(err, forecast.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUnknownAnimal):
		http.Error(w, "unknown animal", http.StatusNotFound)
	case errors.Is(err, forecast.ErrUnreachableTarget):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAnimalReportResponse(rep AnimalReport) animalReportResponse {
	return animalReportResponse{
		AnimalID:        string(rep.AnimalID),
		Observations:    rep.Observations,
		First:           observationView{TakenAt: weights.FormatTimestamp(rep.First.At), WeightKg: rep.First.WeightKg},
		Last:            observationView{TakenAt: weights.FormatTimestamp(rep.Last.At), WeightKg: rep.Last.WeightKg},
		CurrentWeightKg: rep.CurrentWeight,
		MeanWeightKg:    rep.MeanWeight,
		GainStatus:      string(rep.GainStatus),
		GainPerDay:      rep.GainPerDay,
		GainDays:        rep.GainDays,
		HorizonDays:     rep.HorizonDays,
		ProjectedKg:     rep.Projected,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
