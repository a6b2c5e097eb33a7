package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/impact-simulator/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

var errNoPrediction = errors.New("no prediction available")

type paramsRequest struct {
	Diameter *float64 `json:"diameter"`
	Speed    *float64 `json:"speed"`
	Angle    *float64 `json:"angle"`
}

// changes returns one ParamChanged per present field, in a stable order.
func (p paramsRequest) changes() []domain.ParamChanged {
	var out []domain.ParamChanged
	if p.Diameter != nil {
		out = append(out, domain.ParamChanged{Name: domain.ParamDiameter, Value: *p.Diameter})
	}
	if p.Speed != nil {
		out = append(out, domain.ParamChanged{Name: domain.ParamSpeed, Value: *p.Speed})
	}
	if p.Angle != nil {
		out = append(out, domain.ParamChanged{Name: domain.ParamAngle, Value: *p.Angle})
	}
	return out
}

type selectPresetRequest struct {
	Designation string `json:"designation"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	var req paramsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	changes := req.changes()
	candidate := s.session.Snapshot().Params
	for _, c := range changes {
		candidate, _ = candidate.With(c.Name, c.Value)
	}
	if err := candidate.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	state := s.session.Snapshot()
	for _, c := range changes {
		state = s.session.Dispatch(c)
	}
	sharedobs.WriteJSON(w, http.StatusOK, state)
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.session.Snapshot().Presets())
}

func (s *Server) handleSelectPreset(w http.ResponseWriter, r *http.Request) {
	var req selectPresetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Designation == "" {
		writeError(w, http.StatusBadRequest, errors.New("designation is required"))
		return
	}
	state := s.session.Dispatch(domain.PresetSelected{Designation: req.Designation})
	sharedobs.WriteJSON(w, http.StatusOK, state)
}

func (s *Server) handleSimulatePrediction(w http.ResponseWriter, _ *http.Request) {
	if s.session.Snapshot().Prediction == nil {
		writeError(w, http.StatusNotFound, errNoPrediction)
		return
	}
	state := s.session.Dispatch(domain.PredictionSimulated{})
	sharedobs.WriteJSON(w, http.StatusOK, state)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	// The run outlives this request.
	state, err := s.simulator.Trigger(context.WithoutCancel(r.Context()))
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusAccepted, state)
}

func handleCalculate(w http.ResponseWriter, r *http.Request) {
	params, err := paramsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, domain.CalculateImpact(params))
}

// paramsFromQuery reads diameter, speed, and angle from the query string.
// Missing values fall back to the defaults.
func paramsFromQuery(r *http.Request) (domain.Params, error) {
	params := domain.DefaultParams()
	q := r.URL.Query()
	for _, name := range []domain.ParamName{domain.ParamDiameter, domain.ParamSpeed, domain.ParamAngle} {
		raw := q.Get(string(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, fmt.Errorf("%w: %s must be a number, got %q", domain.ErrInvalidParams, name, raw)
		}
		params, _ = params.With(name, v)
	}
	return params, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, errorResponse{Error: err.Error()})
}
