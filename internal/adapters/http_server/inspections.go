package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trust_ledger/internal/domain"
)

type inspectorRequest struct {
	Name            string   `json:"name"`
	Specializations []string `json:"specializations"`
}

type scheduleInspectionRequest struct {
	ProviderID    string `json:"provider_id"`
	InspectorID   string `json:"inspector_id"`
	ServiceType   string `json:"service_type"`
	ScheduledDate uint64 `json:"scheduled_date"`
	Location      string `json:"location"`
}

type completeInspectionRequest struct {
	Notes string `json:"notes"`
}

type inspectionResultRequest struct {
	Score int    `json:"score"`
	Notes string `json:"notes"`
}

// inspectionView adds the status name next to its numeric wire code.
type inspectionView struct {
	domain.InspectionRecord
	StatusName string `json:"status_name"`
}

func (h *Handlers) registerInspector(w http.ResponseWriter, r *http.Request) {
	var req inspectorRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.L.RegisterInspector(r.Context(), callFrom(r), domain.InspectorProfile{
		ID:              domain.ActorID(chi.URLParam(r, "id")),
		Name:            req.Name,
		Specializations: req.Specializations,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) scheduleInspection(w http.ResponseWriter, r *http.Request) {
	var req scheduleInspectionRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.L.ScheduleInspection(r.Context(), callFrom(r), domain.InspectionRequest{
		ProviderID:    domain.ActorID(req.ProviderID),
		InspectorID:   domain.ActorID(req.InspectorID),
		ServiceType:   req.ServiceType,
		ScheduledDate: domain.Height(req.ScheduledDate),
		Location:      req.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/inspections/"+formatID(id))
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (h *Handlers) startInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.L.StartInspection(r.Context(), callFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) completeInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req completeInspectionRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.L.CompleteInspection(r.Context(), callFrom(r), id, req.Notes); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) addInspectionResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req inspectionResultRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.L.AddInspectionResult(r.Context(), callFrom(r), domain.InspectionResult{
		InspectionID: id,
		StandardID:   chi.URLParam(r, "standard"),
		Score:        req.Score,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) getInspector(w http.ResponseWriter, r *http.Request) {
	p, found, err := h.L.GetInspector(r.Context(), domain.ActorID(chi.URLParam(r, "id")))
	writeRead(w, r, "inspector", p, found, err)
}

func (h *Handlers) getInspection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, found, err := h.L.GetInspection(r.Context(), id)
	writeRead(w, r, "inspection", inspectionView{InspectionRecord: rec, StatusName: rec.Status.String()}, found, err)
}

func (h *Handlers) getInspectionResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, found, err := h.L.GetInspectionResult(r.Context(), id, chi.URLParam(r, "standard"))
	writeRead(w, r, "inspection result", res, found, err)
}

func formatID(id uint64) string { return strconv.FormatUint(id, 10) }
