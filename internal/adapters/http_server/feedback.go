package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trust_ledger/internal/domain"
)

type submitFeedbackRequest struct {
	ProviderID  string `json:"provider_id"`
	ServiceType string `json:"service_type"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	ServiceDate uint64 `json:"service_date"`
}

type categoryFeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handlers) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var req submitFeedbackRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.L.SubmitFeedback(r.Context(), callFrom(r), domain.FeedbackSubmission{
		ProviderID:  domain.ActorID(req.ProviderID),
		ServiceType: req.ServiceType,
		Rating:      req.Rating,
		Comment:     req.Comment,
		ServiceDate: domain.Height(req.ServiceDate),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/feedback/"+formatID(id))
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (h *Handlers) addCategoryFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req categoryFeedbackRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.L.AddCategoryFeedback(r.Context(), callFrom(r), domain.CategoryFeedback{
		FeedbackID: id,
		Category:   chi.URLParam(r, "category"),
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) verifyFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.L.VerifyFeedback(r.Context(), callFrom(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) getFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, found, err := h.L.GetFeedback(r.Context(), id)
	writeRead(w, r, "feedback", f, found, err)
}

func (h *Handlers) getCategoryFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, found, err := h.L.GetCategoryFeedback(r.Context(), id, chi.URLParam(r, "category"))
	writeRead(w, r, "category feedback", c, found, err)
}

func (h *Handlers) getProviderRating(w http.ResponseWriter, r *http.Request) {
	rating, found, err := h.L.GetProviderRating(r.Context(), domain.ActorID(chi.URLParam(r, "provider")))
	writeRead(w, r, "rating", rating, found, err)
}
