package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/couchcryptid/accident-severity/internal/form"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxRequestBytes = 64 << 10

type predictionRequest struct {
	domain.Measurements
	domain.Selections

	LocationMethod string   `json:"location_method"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}

type predictionResponse struct {
	ID             string          `json:"id"`
	Severity       domain.Severity `json:"severity"`
	Code           int             `json:"code"`
	Vector         []float64       `json:"vector"`
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	LocationMethod string          `json:"location_method"`
	Message        string          `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Warning string `json:"warning,omitempty"`
}

type registryResponse struct {
	Name    string         `json:"name"`
	Field   string         `json:"field"`
	Entries []domain.Entry `json:"entries"`
}

type locationResponse struct {
	Status    domain.LocationStatus `json:"status"`
	IP        string                `json:"ip,omitempty"`
	Latitude  *float64              `json:"latitude,omitempty"`
	Longitude *float64              `json:"longitude,omitempty"`
	Warning   string                `json:"warning,omitempty"`
	Error     string                `json:"error,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("invalid request body: %v", err),
			Kind:  "validation",
		})
		return
	}

	out := s.app.Submit(r.Context(), form.Input{
		Measurements: req.Measurements,
		Selections:   req.Selections,
		Method:       form.LocationMethod(req.LocationMethod),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})

	switch {
	case out.Succeeded():
		sharedobs.WriteJSON(w, http.StatusOK, predictionResponse{
			ID:             out.ID,
			Severity:       out.Prediction.Severity,
			Code:           out.Prediction.Code,
			Vector:         out.Vector.Values(),
			Latitude:       out.Location.Lat,
			Longitude:      out.Location.Lon,
			LocationMethod: string(out.Method),
			Message:        out.Message,
		})
	case out.Warning != "":
		sharedobs.WriteJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   out.Message,
			Kind:    "location_not_found",
			Warning: out.Warning,
		})
	default:
		sharedobs.WriteJSON(w, statusForKind(out.Kind), errorResponse{Error: out.Message, Kind: out.Kind})
	}
}

func handleRegistries(w http.ResponseWriter, _ *http.Request) {
	regs := domain.Registries()
	resp := make([]registryResponse, 0, len(regs))
	for _, reg := range regs {
		resp = append(resp, registryResponse{Name: reg.Name(), Field: reg.Field(), Entries: reg.Entries()})
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	if !s.app.DynamicLocationEnabled() {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, locationResponse{
			Status: domain.LocationUnavailable,
			Error:  "dynamic location is disabled",
		})
		return
	}

	res := s.app.ResolveLocation(r.Context())
	switch res.Status {
	case domain.LocationResolved:
		sharedobs.WriteJSON(w, http.StatusOK, locationResponse{
			Status:    res.Status,
			IP:        res.IP,
			Latitude:  &res.Coordinates.Lat,
			Longitude: &res.Coordinates.Lon,
		})
	case domain.LocationNotFound:
		sharedobs.WriteJSON(w, http.StatusOK, locationResponse{
			Status:  res.Status,
			IP:      res.IP,
			Warning: "Location not found.",
		})
	default:
		sharedobs.WriteJSON(w, http.StatusBadGateway, locationResponse{
			Status: res.Status,
			IP:     res.IP,
			Error:  res.Err.Error(),
		})
	}
}

// statusForKind maps a domain error kind to an HTTP status code.
func statusForKind(kind string) int {
	switch kind {
	case "validation", "lookup", "placeholder", "missing_coordinates":
		return http.StatusBadRequest
	case "network", "parse":
		return http.StatusBadGateway
	case "canceled":
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
