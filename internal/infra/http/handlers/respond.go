package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kgarten/customer-pool/internal/usecase"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

var statusByCode = map[string]int{
	usecase.CodeValidation: http.StatusBadRequest,
	usecase.CodeNotFound:   http.StatusNotFound,
	usecase.CodeForbidden:  http.StatusForbidden,
	usecase.CodeConflict:   http.StatusConflict,
	usecase.CodeServer:     http.StatusInternalServerError,
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data, Message: message})
}

// writeError maps domain errors onto the envelope. Technical errors come out
// as a generic SERVER_ERROR so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	var domainErr *usecase.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		body := &errorBody{Code: domainErr.Code, Message: domainErr.Message}
		if len(domainErr.Fields) > 0 {
			body.Details = domainErr.Fields
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(envelope{Success: false, Error: body})
		return
	}

	var techErr *usecase.TechnicalError
	if errors.As(err, &techErr) {
		log.Printf("technical error: %s: %v", techErr.Message, techErr.Cause)
	} else {
		log.Printf("unexpected error: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: &errorBody{
		Code:    usecase.CodeServer,
		Message: "internal server error",
	}})
}
