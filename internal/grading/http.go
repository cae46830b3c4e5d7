package grading

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/exercise-platform/internal/exercise"
	httperrors "github.com/gokatarajesh/exercise-platform/pkg/http/errors"
)

const (
	msgExerciseNotFound = "No se encontró un ejercicio con el código proporcionado."
	msgValidateFailed   = "Error al validar la respuesta."
)

// HTTPHandlers exposes answer validation.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "grading_http").Logger(),
	}
}

// Register mounts the endpoint on mux relative to the API prefix.
func (h *HTTPHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /validate-answer", h.ValidateAnswer)
}

type validateRequest struct {
	Code     string `json:"code"`
	UserCode string `json:"userCode"`
}

// ValidateAnswer handles POST /validate-answer
func (h *HTTPHandlers) ValidateAnswer(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, exercise.MsgInvalidBody)
		return
	}

	verdict, err := h.service.Validate(r.Context(), req.Code, req.UserCode)
	if err != nil {
		exercise.RespondServiceError(w, r, err, exercise.ErrorMessages{NotFound: msgExerciseNotFound, Internal: msgValidateFailed})
		return
	}
	exercise.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"validation": verdict,
	})
}
