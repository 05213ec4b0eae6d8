package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/app"
	"fintrack/internal/calc"
	"fintrack/internal/core"
	"fintrack/internal/importer"
	"fintrack/internal/log"
)

// errBadRequest marks malformed input such as unparsable JSON or query values.
var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// JSONResponse collects a status, headers and a body before writing.
type JSONResponse struct {
	status  int
	headers map[string]string
	body    any
}

func NewJSONResponse(body any) *JSONResponse {
	return &JSONResponse{status: http.StatusOK, headers: map[string]string{}, body: body}
}

func (b *JSONResponse) Status(code int) *JSONResponse {
	b.status = code
	return b
}

func (b *JSONResponse) Header(name, value string) *JSONResponse {
	b.headers[name] = value
	return b
}

// Write encodes the body before sending the header, so an unencodable body
// becomes a 500 instead of a truncated success.
func (b *JSONResponse) Write(w http.ResponseWriter) {
	if b.status == http.StatusNoContent || b.body == nil {
		for k, v := range b.headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(b.status)
		return
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(b.body); err != nil {
		slog.Default().Error("Response encoding failed", log.FieldError, err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
		return
	}
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.status)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	NewJSONResponse(body).Status(status).Write(w)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var verr *app.ValidationError
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &verr),
		errors.Is(err, app.ErrValidation),
		errors.Is(err, app.ErrUndeletableUser),
		errors.Is(err, app.ErrResetUnconfirmed),
		errors.Is(err, core.ErrInvalidMode),
		errors.Is(err, calc.ErrInvalidFrequency),
		errors.Is(err, calc.ErrInvalidHorizon),
		errors.Is(err, calc.ErrUnknownScenario),
		errors.Is(err, calc.ErrOverflow),
		errors.Is(err, importer.ErrInvalidMapping):
		return http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": msg}. Server errors hide the cause
// from the client and log it instead.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	var verr *app.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err, log.FieldPath, r.URL.Path)
		body = errorBody{Error: "internal error"}
		if errors.Is(err, app.ErrPersist) {
			body.Error = app.ErrPersist.Error()
		}
	}
	writeJSON(w, status, body)
}
