package grading

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/exercise-platform/internal/exercise"
	"github.com/gokatarajesh/exercise-platform/internal/llm"
	"github.com/gokatarajesh/exercise-platform/internal/prompt"
)

// MsgMissingFields is returned when the request lacks the exercise code or the user's code.
const MsgMissingFields = "Faltan campos requeridos: code o userCode."

// Finder loads the exercise being answered (implemented by exercise.Service).
type Finder interface {
	GetDetails(ctx context.Context, code string) (exercise.Exercise, error)
}

// Verdict is the model's judgment of a submitted answer.
type Verdict struct {
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

type verdictPayload struct {
	IsCorrect *bool    `json:"isCorrect" validate:"required"`
	Feedback  llm.Text `json:"feedback" validate:"required"`
}

// Service judges user answers against stored exercises.
type Service struct {
	exercises Finder
	generator exercise.Generator
	logger    zerolog.Logger
}

func NewService(exercises Finder, generator exercise.Generator, logger zerolog.Logger) *Service {
	return &Service{
		exercises: exercises,
		generator: generator,
		logger:    logger.With().Str("component", "grading_service").Logger(),
	}
}

// Validate asks the generator whether userCode solves the exercise identified
// by code. Nothing is persisted.
func (s *Service) Validate(ctx context.Context, code, userCode string) (Verdict, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.TrimSpace(userCode) == "" {
		return Verdict{}, &exercise.ValidationError{Message: MsgMissingFields}
	}

	ex, err := s.exercises.GetDetails(ctx, code)
	if err != nil {
		return Verdict{}, err
	}

	judgePrompt := prompt.Validation(ex.Description, prompt.NormalizeCode(userCode), prompt.NormalizeCode(ex.Solution))
	raw, err := s.generator.Generate(ctx, judgePrompt)
	if err != nil {
		return Verdict{}, &exercise.GenerationError{Stage: "generate", Err: err}
	}

	var payload verdictPayload
	if err := llm.Decode(raw, &payload); err != nil {
		return Verdict{}, &exercise.GenerationError{Stage: "decode", Err: err}
	}

	verdict := Verdict{IsCorrect: *payload.IsCorrect, Feedback: string(payload.Feedback)}
	s.logger.Debug().Str("code", code).Bool("correct", verdict.IsCorrect).Msg("answer validated")
	return verdict, nil
}
