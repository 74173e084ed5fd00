package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/impact-cli/internal/methodology"
	"github.com/sells-group/impact-cli/internal/model"
	"github.com/sells-group/impact-cli/internal/store"
)

// CalculateRequest is the body of POST /api/calculations.
type CalculateRequest struct {
	CompanyData        model.CompanyData       `json:"company_data"`
	MethodologyID      string                  `json:"methodology_id,omitempty"`
	MethodologyVersion string                  `json:"methodology_version,omitempty"`
	ImpactAssumptions  model.ImpactAssumptions `json:"impact_assumptions,omitempty"`
	Save               bool                    `json:"save,omitempty"`
}

// MethodologySummary is one row of GET /api/methodologies.
type MethodologySummary struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Name        string `json:"name"`
	ServiceType string `json:"service_type"`
	KPICount    int    `json:"kpi_count"`
	Enabled     bool   `json:"enabled"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListMethodologies(w http.ResponseWriter, _ *http.Request) {
	keys := s.lib.List()
	out := make([]MethodologySummary, 0, len(keys))
	for _, k := range keys {
		cfg, err := s.lib.Get(k.ID, k.Version)
		if err != nil {
			continue
		}
		out = append(out, MethodologySummary{
			ID:          cfg.ID,
			Version:     cfg.Version,
			Name:        cfg.Name,
			ServiceType: cfg.ServiceType,
			KPICount:    len(cfg.KPIs),
			Enabled:     cfg.IsEnabled(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetMethodology(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.lib.Resolve(chi.URLParam(r, "id"), chi.URLParam(r, "version"))
	if errors.Is(err, methodology.ErrNotFound) {
		writeError(w, http.StatusNotFound, "methodology not found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	dec.UseNumber()
	var req CalculateRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if req.Save && s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "calculation storage is not configured", "")
		return
	}

	id := req.MethodologyID
	if id == "" {
		id = s.opts.DefaultID
	}
	cfg, err := s.lib.Resolve(id, req.MethodologyVersion)
	if errors.Is(err, methodology.ErrNotFound) {
		writeError(w, http.StatusNotFound, "methodology not found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	res, err := s.engine.Calculate(req.CompanyData, cfg, req.ImpactAssumptions)
	if methodology.IsValidationError(err) {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), methodology.KindInvalidMethodology)
		return
	}
	if err != nil {
		zap.L().Error("api: calculate", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	if !req.Save {
		writeJSON(w, http.StatusOK, res)
		return
	}

	calc := &model.Calculation{
		Input:       req.CompanyData,
		Assumptions: req.ImpactAssumptions,
		Result:      res,
	}
	if err := s.store.SaveCalculation(r.Context(), calc); err != nil {
		zap.L().Error("api: save calculation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save calculation", "")
		return
	}
	writeJSON(w, http.StatusCreated, calc)
}

func (s *Server) handleGetCalculation(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "calculation storage is not configured", "")
		return
	}
	calc, err := s.store.GetCalculation(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "calculation not found", "")
		return
	}
	if err != nil {
		zap.L().Error("api: get calculation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	writeJSON(w, http.StatusOK, calc)
}

func (s *Server) handleListCalculations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "calculation storage is not configured", "")
		return
	}
	q := r.URL.Query()
	filter := store.CalculationFilter{
		Company:       q.Get("company"),
		MethodologyID: q.Get("methodology_id"),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid "+name, "")
			return
		}
		*dst = n
	}

	calcs, err := s.store.ListCalculations(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list calculations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	writeJSON(w, http.StatusOK, calcs)
}
