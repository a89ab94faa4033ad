package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"trust_ledger/internal/app"
	"trust_ledger/internal/domain"
)

type Handlers struct {
	L      *app.Ledger
	Admins map[domain.ActorID]bool
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Code   uint   `json:"code,omitempty"`
	Rule   string `json:"rule,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(Identity(h.Admins))

		r.Get("/feedback/{id}", h.getFeedback)
		r.Get("/feedback/{id}/categories/{category}", h.getCategoryFeedback)
		r.Get("/providers/{provider}/rating", h.getProviderRating)
		r.Get("/inspectors/{id}", h.getInspector)
		r.Get("/inspections/{id}", h.getInspection)
		r.Get("/inspections/{id}/results/{standard}", h.getInspectionResult)

		r.Group(func(r chi.Router) {
			r.Use(RequireHeight)

			r.Post("/feedback", h.submitFeedback)
			r.Put("/feedback/{id}/categories/{category}", h.addCategoryFeedback)
			r.Post("/feedback/{id}/verify", h.verifyFeedback)
			r.Put("/inspectors/{id}", h.registerInspector)
			r.Post("/inspections", h.scheduleInspection)
			r.Post("/inspections/{id}/start", h.startInspection)
			r.Post("/inspections/{id}/complete", h.completeInspection)
			r.Put("/inspections/{id}/results/{standard}", h.addInspectionResult)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// statusFor maps a rejection kind to its HTTP status.
func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindNotAuthorized:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidStatus:
		return http.StatusConflict
	case domain.KindNone:
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}

// writeError reports a failed mutation. Rejections carry their code and
// rule; anything else is an internal error and is not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	k := domain.KindOf(err)
	if k == domain.KindNone {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	var re *domain.RuleError
	title := string(k)
	if errors.As(err, &re) {
		title = re.Kind.Error()
	}
	writeProblemBody(w, problem{
		Type:   "about:blank",
		Title:  title,
		Status: statusFor(k),
		Detail: err.Error(),
		Code:   k.Code(),
		Rule:   domain.RuleOf(err),
	})
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeRead serves a read model with an ETag, or a 404 when absent.
func writeRead(w http.ResponseWriter, r *http.Request, what string, v any, found bool, err error) {
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("read failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if !found {
		writeProblem(w, http.StatusNotFound, "Not Found", what+" not found")
		return
	}

	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write read body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// decode reads a JSON body into dst, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return false
	}
	return true
}

// pathID parses a numeric record id from the URL, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be an unsigned integer")
		return 0, false
	}
	return id, true
}

type createdResponse struct {
	ID uint64 `json:"id"`
}
