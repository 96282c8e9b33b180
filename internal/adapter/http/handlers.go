package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
)

const maxRequestBody = 1 << 20

// analyzeRequest is the POST /api/analyze body. Pointers distinguish missing
// fields from zero values.
type analyzeRequest struct {
	Address        *string  `json:"address"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	MonthlyBill    *float64 `json:"monthlyBill"`
	RoofSize       string   `json:"roofSize"`
	PanelType      *string  `json:"panelType"`
	IncludeSubsidy *bool    `json:"includeSubsidy"`
}

func (r analyzeRequest) missingField() string {
	switch {
	case r.Address == nil:
		return "address"
	case r.Latitude == nil:
		return "latitude"
	case r.Longitude == nil:
		return "longitude"
	case r.MonthlyBill == nil:
		return "monthlyBill"
	case r.PanelType == nil:
		return "panelType"
	case r.IncludeSubsidy == nil:
		return "includeSubsidy"
	}
	return ""
}

type location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type energyProfile struct {
	MonthlyBill    float64          `json:"monthly_bill"`
	RoofSize       string           `json:"roof_size"`
	PanelType      domain.PanelType `json:"panel_type"`
	IncludeSubsidy bool             `json:"include_subsidy"`
}

type analyzeResponse struct {
	Success         bool                   `json:"success"`
	AnalysisID      string                 `json:"analysis_id"`
	Region          string                 `json:"region"`
	Location        location               `json:"location"`
	EnergyProfile   energyProfile          `json:"energy_profile"`
	SolarMetrics    domain.SolarMetrics    `json:"solar_metrics"`
	WeatherData     domain.WeatherReading  `json:"weather_data"`
	Structured      domain.Enrichment      `json:"structured_analysis"`
	ChartData       domain.ChartData       `json:"chart_data"`
	Recommendations domain.Recommendations `json:"recommendations"`
	CreatedAt       time.Time              `json:"created_at"`
}

type analysisResult struct {
	SolarMetrics    domain.SolarMetrics    `json:"solar_metrics"`
	WeatherData     domain.WeatherReading  `json:"weather_data"`
	Structured      domain.Enrichment      `json:"structured_analysis"`
	ChartData       domain.ChartData       `json:"chart_data"`
	Recommendations domain.Recommendations `json:"recommendations"`
}

type storedAnalysisResponse struct {
	ID             string           `json:"id"`
	Address        string           `json:"address"`
	Latitude       float64          `json:"latitude"`
	Longitude      float64          `json:"longitude"`
	MonthlyBill    float64          `json:"monthly_bill"`
	RoofSize       string           `json:"roof_size"`
	PanelType      domain.PanelType `json:"panel_type"`
	IncludeSubsidy bool             `json:"include_subsidy"`
	Region         string           `json:"region"`
	AnalysisResult analysisResult   `json:"analysis_result"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeAnalyzeRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.svc.Analyze(r.Context(), req)
	if err != nil {
		status := errorStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("analysis failed", "status", status, "error", err)
		}
		writeError(w, status, publicMessage(err, status))
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, analyzeResponse{
		Success:    true,
		AnalysisID: a.ID,
		Region:     a.Region,
		Location: location{
			Address:   a.Request.Address,
			Latitude:  a.Request.Latitude,
			Longitude: a.Request.Longitude,
		},
		EnergyProfile: energyProfile{
			MonthlyBill:    a.Request.MonthlyBill,
			RoofSize:       a.Request.RoofSize,
			PanelType:      a.Request.PanelType,
			IncludeSubsidy: a.Request.IncludeSubsidy,
		},
		SolarMetrics:    a.Metrics,
		WeatherData:     a.Weather,
		Structured:      a.Enrichment,
		ChartData:       a.Charts,
		Recommendations: a.Recommendations,
		CreatedAt:       a.CreatedAt,
	})
}

func (s *Server) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (domain.AnalysisRequest, error) {
	var body analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return domain.AnalysisRequest{}, fmt.Errorf("request body exceeds %d bytes", maxRequestBody)
		case errors.Is(err, io.EOF):
			return domain.AnalysisRequest{}, errors.New("request body is empty")
		default:
			return domain.AnalysisRequest{}, fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	if field := body.missingField(); field != "" {
		return domain.AnalysisRequest{}, fmt.Errorf("missing required field: %s", field)
	}

	panel, ok := domain.ParsePanelType(*body.PanelType)
	if !ok {
		s.logger.Warn("unrecognized panel type, using standard", "panel_type", *body.PanelType)
	}

	return domain.AnalysisRequest{
		Address:        strings.TrimSpace(*body.Address),
		Latitude:       *body.Latitude,
		Longitude:      *body.Longitude,
		MonthlyBill:    *body.MonthlyBill,
		RoofSize:       body.RoofSize,
		PanelType:      panel,
		IncludeSubsidy: *body.IncludeSubsidy,
	}, nil
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		s.logger.Error("get analysis failed", "id", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to retrieve analysis")
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, storedAnalysisResponse{
		ID:             a.ID,
		Address:        a.Request.Address,
		Latitude:       a.Request.Latitude,
		Longitude:      a.Request.Longitude,
		MonthlyBill:    a.Request.MonthlyBill,
		RoofSize:       a.Request.RoofSize,
		PanelType:      a.Request.PanelType,
		IncludeSubsidy: a.Request.IncludeSubsidy,
		Region:         a.Region,
		AnalysisResult: analysisResult{
			SolarMetrics:    a.Metrics,
			WeatherData:     a.Weather,
			Structured:      a.Enrichment,
			ChartData:       a.Charts,
			Recommendations: a.Recommendations,
		},
		CreatedAt: a.CreatedAt,
	})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.svc.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list analyses failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to retrieve analyses")
		return
	}
	if list == nil {
		list = []domain.AnalysisSummary{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"analyses": list})
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return domain.DefaultListLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	return domain.ClampListLimit(n), nil
}

func (s *Server) handleAPIHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":    "healthy",
		"timestamp": domain.Now().Format(time.RFC3339),
	}
	for name, ok := range s.deps {
		body[name+"_configured"] = ok
	}
	sharedobs.WriteJSON(w, http.StatusOK, body)
}

func (s *Server) handleSubsidyInfo(w http.ResponseWriter, r *http.Request) {
	state := r.PathValue("state")
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"state":        state,
		"subsidy_info": domain.LookupSubsidy(state),
		"last_updated": domain.Now().Format(time.RFC3339),
	})
}
