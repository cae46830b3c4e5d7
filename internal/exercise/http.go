package exercise

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/exercise-platform/internal/logging"
	"github.com/gokatarajesh/exercise-platform/internal/prompt"
	httperrors "github.com/gokatarajesh/exercise-platform/pkg/http/errors"
)

// Client-facing messages.
const (
	MsgInvalidBody          = "Cuerpo de la solicitud inválido."
	MsgInternal             = "Error interno del servidor."
	MsgExerciseNotFound     = "No se encontró el ejercicio solicitado."
	MsgListingNotFound      = "No se encontró un listado para este tema."
	MsgNoExercisesForTopic  = "No se encontraron ejercicios para este tema."
	MsgUnrecognizedTopic    = "Tema no reconocido. Usa procedimientos, funciones o estructuras."
	MsgIndexOutOfRange      = "El índice está fuera de rango para la categoría indicada."
	MsgAllDeleted           = "Todos los ejercicios han sido eliminados."
	MsgDeleted              = "Ejercicio eliminado con éxito."
	msgListFailed           = "Error al obtener ejercicios."
	msgDeleteAllFailed      = "Error al eliminar ejercicios."
	msgDeleteFailed         = "Error al eliminar el ejercicio."
	msgUpdateFailed         = "Error al actualizar el ejercicio."
	msgDetailsFailed        = "Error al obtener detalles del ejercicio."
	msgListingFailed        = "Error al obtener el listado."
	msgMarkSelectedFailed   = "Error al marcar el ejercicio como seleccionado."
	msgGenerateListingFails = "Error al generar el listado."
)

// ErrorMessages picks the client message for the not-found and internal cases
// of one endpoint.
type ErrorMessages struct {
	NotFound string
	Internal string
}

// RespondServiceError maps service errors onto the HTTP error envelope.
func RespondServiceError(w http.ResponseWriter, r *http.Request, err error, msgs ErrorMessages) {
	var validation *ValidationError
	var generation *GenerationError
	switch {
	case errors.As(err, &validation):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, validation.Message)
	case errors.Is(err, prompt.ErrUnrecognizedTopic):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeUnknownTopic, MsgUnrecognizedTopic)
	case errors.Is(err, ErrOutOfRange):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOutOfRange, MsgIndexOutOfRange)
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, msgs.NotFound)
	case errors.As(err, &generation):
		logging.FromContext(r.Context()).Error().Err(err).Str("stage", generation.Stage).Msg("generation failed")
		httperrors.RespondErrorWithDetails(w, http.StatusInternalServerError, httperrors.ErrCodeInternalError, msgs.Internal, generation.Err.Error())
	default:
		logging.FromContext(r.Context()).Error().Err(err).Msg("request failed")
		httperrors.RespondInternalError(w, msgs.Internal)
	}
}

// HTTPHandlers exposes the exercise and listing endpoints.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "exercise_http").Logger(),
	}
}

// Register mounts the endpoints on mux relative to the API prefix.
func (h *HTTPHandlers) Register(mux *http.ServeMux) {
	h.logger.Debug().Msg("registering exercise routes")
	mux.HandleFunc("GET /all", h.ListAll)
	mux.HandleFunc("DELETE /all", h.DeleteAll)
	mux.HandleFunc("DELETE /{exerciseCode}", h.Delete)
	mux.HandleFunc("PUT /{exerciseCode}", h.Update)
	mux.HandleFunc("POST /generate-problem", h.GenerateProblem)
	mux.HandleFunc("GET /topic/{topicId}", h.ListByTopic)
	mux.HandleFunc("GET /details/{exerciseCode}", h.Details)
	mux.HandleFunc("POST /generate-listing", h.GenerateListing)
	mux.HandleFunc("GET /listings/{topic}", h.GetListing)
	mux.HandleFunc("POST /mark-selected", h.MarkSelected)
}

// ListAll handles GET /all
func (h *HTTPHandlers) ListAll(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.service.ListAll(r.Context())
	if err != nil {
		RespondServiceError(w, r, err, ErrorMessages{Internal: msgListFailed})
		return
	}
	if exercises == nil {
		exercises = []Exercise{}
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"exercises": exercises,
	})
}

// DeleteAll handles DELETE /all
func (h *HTTPHandlers) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAll(r.Context()); err != nil {
		RespondServiceError(w, r, err, ErrorMessages{Internal: msgDeleteAllFailed})
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": MsgAllDeleted,
	})
}

// Delete handles DELETE /{exerciseCode}
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("exerciseCode")); err != nil {
		RespondServiceError(w, r, err, ErrorMessages{NotFound: MsgExerciseNotFound, Internal: msgDeleteFailed})
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": MsgDeleted,
	})
}

// Update handles PUT /{exerciseCode}
func (h *HTTPHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, MsgInvalidBody)
		return
	}

	updated, err := h.service.Update(r.Context(), r.PathValue("exerciseCode"), patch)
	if err != nil {
		RespondServiceError(w, r, err, ErrorMessages{NotFound: MsgExerciseNotFound, Internal: msgUpdateFailed})
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"exercise": updated,
	})
}

// GenerateProblem handles POST /generate-problem
func (h *HTTPHandlers) GenerateProblem(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, MsgInvalidBody)
		return
	}

	problem, err := h.service.GenerateProblem(r.Context(), req)
	if err != nil {
		RespondServiceError(w, r, err, ErrorMessages{Internal: MsgInternal})
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"problem": problem,
	})
}

// ListByTopic handles GET /topic/{topicId}
func (h *HTTPHandlers) ListByTopic(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topicId")
	exercises, err := h.service.ListByTopic(r.Context(), topic)
	if err != nil {
		RespondServiceError(w, r, err, ErrorMessages{Internal: msgListFailed})
		return
	}
	listing, err := h.service.GetListing(r.Context(), topic, false)
	if err != nil {
		RespondServiceError(w, r, err, ErrorMessages{Internal: msgListFailed})
		return
	}

	resp := map[string]interface{}{
		"success":   true,
		"exercises": exercises,
		"listing":   listing,
	}
	if len(exercises) == 0 {
		resp["message"] = MsgNoExercisesForTopic
	}
	RespondJSON(w, http.StatusOK, resp)
}

// Details handles GET /details/{exerciseCode}
func (h *HTTPHandlers) Details(w http.ResponseWriter, r *http.Request) {
	ex, err := h.service.GetDetails(r.Context(), r.PathValue("exerciseCode"))
	if err != nil {
		RespondServiceError(w, r, err, ErrorMessages{NotFound: MsgExerciseNotFound, Internal: msgDetailsFailed})
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"exercise": ex,
	})
}

type generateListingRequest struct {
	Topic string `json:"topic"`
}

// GenerateListing handles POST /generate-listing
func (h *HTTPHandlers) GenerateListing(w http.ResponseWriter, r *http.Request) {
	var req generateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, MsgInvalidBody)
		return
	}

	listing, err := h.service.GenerateListing(r.Context(), req.Topic)
	if err != nil {
		RespondServiceError(w, r, err, ErrorMessages{Internal: msgGenerateListingFails})
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"listing": listing,
	})
}

// GetListing handles GET /listings/{topic}?unselected=true
func (h *HTTPHandlers) GetListing(w http.ResponseWriter, r *http.Request) {
	unselected, _ := strconv.ParseBool(r.URL.Query().Get("unselected"))

	listing, err := h.service.GetListing(r.Context(), r.PathValue("topic"), unselected)
	if err != nil {
		RespondServiceError(w, r, err, ErrorMessages{Internal: msgListingFailed})
		return
	}
	if listing == nil {
		RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"listing": nil,
			"message": MsgListingNotFound,
		})
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"listing": listing,
	})
}

type markSelectedRequest struct {
	Topic    string `json:"topic"`
	Category string `json:"category"`
	Index    *int   `json:"index"`
}

// MarkSelected handles POST /mark-selected
func (h *HTTPHandlers) MarkSelected(w http.ResponseWriter, r *http.Request) {
	var req markSelectedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, MsgInvalidBody)
		return
	}
	if req.Topic == "" || req.Category == "" || req.Index == nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, MsgMissingMarkFields)
		return
	}

	listing, err := h.service.MarkSelected(r.Context(), req.Topic, req.Category, *req.Index)
	if err != nil {
		RespondServiceError(w, r, err, ErrorMessages{NotFound: MsgListingNotFound, Internal: msgMarkSelectedFailed})
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"listing": listing,
	})
}

// RespondJSON writes payload with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
