package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"quickprice/pkg/compare"
)

// follows RFC 7807: Problem Details for HTTP APIs
// Code carries the comparison error taxonomy so the UI can decide
// between a reconfiguration prompt and a generic retry message.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
	Code     string `json:"code,omitempty"`
}

func (pd *ProblemDetails) Error() string {
	return fmt.Sprintf("%d %s: %s", pd.Status, pd.Title, pd.Detail)
}

func WriteError(w http.ResponseWriter, status int, title, detail, instance string) {
	writeProblem(w, &ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}

func writeProblem(w http.ResponseWriter, pd *ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(pd.Status)
	json.NewEncoder(w).Encode(pd)
}

func WriteInternalServerError(w http.ResponseWriter, err error, instance string) {
	WriteError(w, http.StatusInternalServerError, "Internal Server Error", err.Error(), instance)
}

func WriteBadRequest(w http.ResponseWriter, detail, instance string) {
	WriteError(w, http.StatusBadRequest, "Bad Request", detail, instance)
}

func WriteNotFound(w http.ResponseWriter, detail, instance string) {
	WriteError(w, http.StatusNotFound, "Not Found", detail, instance)
}

// WriteCompareError maps a query-service failure onto a problem
// response. Config failures ask for reconfiguration; everything else
// is presented as retryable.
func WriteCompareError(w http.ResponseWriter, err error, instance string) {
	if errors.Is(err, compare.ErrEmptyQuery) {
		WriteBadRequest(w, err.Error(), instance)
		return
	}

	pd := &ProblemDetails{
		Type:     "about:blank",
		Instance: instance,
		Code:     compare.KindLabel(err),
		Detail:   err.Error(),
	}
	switch pd.Code {
	case "CONFIG_MISSING":
		pd.Status = http.StatusServiceUnavailable
		pd.Title = "Provider Not Configured"
	case "CONFIG_INVALID":
		pd.Status = http.StatusBadGateway
		pd.Title = "Provider Rejected Credential"
	case "MALFORMED_RESPONSE":
		pd.Status = http.StatusBadGateway
		pd.Title = "Unusable Provider Response"
	default:
		pd.Code = "TRANSIENT_FAILURE"
		pd.Status = http.StatusBadGateway
		pd.Title = "Provider Unavailable"
	}
	writeProblem(w, pd)
}
