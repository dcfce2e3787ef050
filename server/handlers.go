package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pawma "github.com/dev-manthan-sharma/paw-ma"
	"github.com/dev-manthan-sharma/paw-ma/domain"
)

type deriveRequest struct {
	URL            string `json:"url"`
	Identifier     string `json:"identifier"`
	Secret         string `json:"secret"`
	Differentiator string `json:"differentiator"`
}

type domainRequest struct {
	URL string `json:"url"`
}

type domainResponse struct {
	Domain string `json:"domain"`
}

type errorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

const kindBadRequest = "bad_request"

// handleDerive derives from url when given, else from identifier. Neither
// given is an invalid URL.
func (s *Server) handleDerive(w http.ResponseWriter, r *http.Request) {
	var req deriveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.URL != "" && req.Identifier != "" {
		writeError(w, http.StatusBadRequest, kindBadRequest, "url and identifier are mutually exclusive")
		return
	}

	var res pawma.DerivationResult
	if req.Identifier != "" {
		res = s.engine.DeriveResult(r.Context(), req.Identifier, req.Secret, req.Differentiator)
	} else {
		res = s.engine.DeriveURLResult(r.Context(), req.URL, req.Secret, req.Differentiator)
	}

	if res.Failure != nil {
		writeError(w, statusFor(res.Failure.Kind), string(res.Failure.Kind), res.Failure.Reason)
		return
	}
	writeJSON(w, http.StatusOK, res.Success)
}

func (s *Server) handleDomain(w http.ResponseWriter, r *http.Request) {
	var req domainRequest
	if !s.decode(w, r, &req) {
		return
	}

	host, err := domain.Extract(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(pawma.FailureInvalidURL), pawma.ErrInvalidURL.Error())
		return
	}
	writeJSON(w, http.StatusOK, domainResponse{Domain: host})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, kindBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, kindBadRequest, "malformed JSON body")
		return false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, kindBadRequest, "trailing data after JSON body")
		return false
	}
	return true
}

func statusFor(kind pawma.FailureKind) int {
	switch kind {
	case pawma.FailureMissingSecret, pawma.FailureInvalidURL:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Kind: kind, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
