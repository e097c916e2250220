package httputil

import (
	"encoding/json"
	"net/http"
)

// ProblemCode tells server-side failures apart for clients
type ProblemCode string

const (
	CodeStorage     ProblemCode = "storage_error"
	CodeConsistency ProblemCode = "consistency_error"
)

// problemTypes covers every status the API answers with errors
var problemTypes = map[int]string{
	http.StatusBadRequest:            "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.1",
	http.StatusUnauthorized:          "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.2",
	http.StatusForbidden:             "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.4",
	http.StatusNotFound:              "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.5",
	http.StatusConflict:              "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.10",
	http.StatusRequestEntityTooLarge: "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.14",
	http.StatusInternalServerError:   "https://datatracker.ietf.org/doc/html/rfc9110#section-15.6.1",
}

// Problem is an RFC 7807 error body
type Problem struct {
	Type     string      `json:"type"`
	Title    string      `json:"title"`
	Status   int         `json:"status"`
	Detail   string      `json:"detail,omitempty"`
	Instance string      `json:"instance,omitempty"`
	Code     ProblemCode `json:"code,omitempty"`
}

// NewProblem builds a problem for a status; unknown statuses get about:blank
func NewProblem(status int, detail string) *Problem {
	typ, ok := problemTypes[status]
	if !ok {
		typ = "about:blank"
	}
	return &Problem{
		Type:   typ,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

func (p *Problem) WithCode(code ProblemCode) *Problem {
	p.Code = code
	return p
}

// WithInstance records the request path the problem occurred on
func (p *Problem) WithInstance(r *http.Request) *Problem {
	if r != nil {
		p.Instance = r.URL.Path
	}
	return p
}

// Write sends the problem as application/problem+json
func (p *Problem) Write(w http.ResponseWriter) {
	payload, err := json.Marshal(p)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	w.Write(payload)
}

// RespondError writes a problem with only a status and detail
func RespondError(w http.ResponseWriter, status int, detail string) {
	NewProblem(status, detail).Write(w)
}

// RespondJSON marshals before writing headers so an encoding failure still
// yields a clean 500
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
