package exercise

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/exercise-platform/internal/llm"
	"github.com/gokatarajesh/exercise-platform/internal/prompt"
)

// Store persists exercises (implemented by repository.ExerciseRepository).
type Store interface {
	List(ctx context.Context) ([]Exercise, error)
	ListByTopic(ctx context.Context, topic string) ([]Exercise, error)
	Get(ctx context.Context, code string) (Exercise, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	Insert(ctx context.Context, ex Exercise) (Exercise, error)
	Update(ctx context.Context, code string, patch Patch) (Exercise, error)
	Delete(ctx context.Context, code string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// ListingStore persists topic listings (implemented by repository.ListingRepository).
type ListingStore interface {
	// Latest returns nil, nil when the topic has no listing.
	Latest(ctx context.Context, topic string) (*Listing, error)
	// Replace drops every listing for the topic and stores l in its place.
	Replace(ctx context.Context, l Listing) (Listing, error)
	// MarkSelected flips one unselected entry of the latest listing in a
	// single conditional write and reports whether anything changed.
	MarkSelected(ctx context.Context, topic, category string, index int) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Generator produces JSON content from a prompt (implemented by llm.Client).
type Generator interface {
	Generate(ctx context.Context, prompt string) (json.RawMessage, error)
}

// DetailCache fronts Store.Get (implemented by the Redis-backed Cache).
type DetailCache interface {
	Get(ctx context.Context, code string) (*Exercise, error)
	Set(ctx context.Context, ex Exercise) error
	Delete(ctx context.Context, codes ...string) error
	Flush(ctx context.Context) error
}

// Service orchestrates prompt building, generation and persistence for
// exercises and their listings.
type Service struct {
	store     Store
	listings  ListingStore
	generator Generator
	cache     DetailCache
	logger    zerolog.Logger
	newCode   func() string
}

// ServiceOptions holds optional collaborators.
type ServiceOptions struct {
	Cache DetailCache
}

func NewService(store Store, listings ListingStore, generator Generator, opts ServiceOptions, logger zerolog.Logger) *Service {
	cache := opts.Cache
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{
		store:     store,
		listings:  listings,
		generator: generator,
		cache:     cache,
		logger:    logger.With().Str("component", "exercise_service").Logger(),
		newCode:   uuid.NewString,
	}
}

// problemPayload is the shape the problem prompt asks the model for.
type problemPayload struct {
	Title         llm.Text        `json:"title" validate:"required"`
	Description   llm.Text        `json:"description" validate:"required"`
	ExampleInput  llm.Text        `json:"exampleInput" validate:"required"`
	ExampleOutput llm.Text        `json:"exampleOutput" validate:"required"`
	Solution      solutionPayload `json:"solution" validate:"required"`
}

// solutionPayload accepts either a bare code string or the structured
// {language, code, explanation} object; the structured form must be complete.
type solutionPayload struct {
	Language    llm.Text `json:"language" validate:"required_if=Structured true"`
	Code        llm.Text `json:"code" validate:"required"`
	Explanation llm.Text `json:"explanation" validate:"required_if=Structured true"`
	Structured  bool     `json:"-"`
}

func (s *solutionPayload) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err == nil {
		*s = solutionPayload{Code: llm.Text(code)}
		return nil
	}
	type plain solutionPayload
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*s = solutionPayload(obj)
	s.Structured = true
	return nil
}

// GenerateProblem validates req, asks the generator for a problem and stores it
// under a fresh code.
func (s *Service) GenerateProblem(ctx context.Context, req GenerateRequest) (Exercise, error) {
	topic := prompt.Category(req.Topic)
	level := strings.ToLower(strings.TrimSpace(req.Level))
	text := strings.TrimSpace(req.ExerciseText)
	if topic == "" || level == "" || text == "" {
		return Exercise{}, &ValidationError{Message: MsgMissingProblemFields}
	}
	if !isLevel(level) {
		return Exercise{}, levelError()
	}

	problemPrompt := prompt.Problem(topic, level, text)
	raw, err := s.generator.Generate(ctx, problemPrompt)
	if err != nil {
		return Exercise{}, &GenerationError{Stage: "generate", Err: err}
	}

	var payload problemPayload
	if err := llm.Decode(raw, &payload); err != nil {
		return Exercise{}, &GenerationError{Stage: "decode", Err: err}
	}

	title := string(payload.Title)
	exists, err := s.store.ExistsByTitle(ctx, title)
	if err != nil {
		return Exercise{}, &GenerationError{Stage: "persist", Err: err}
	}
	if exists {
		return Exercise{}, &GenerationError{Stage: "dedupe", Err: fmt.Errorf("%w: title %q", ErrDuplicate, title)}
	}

	created, err := s.store.Insert(ctx, Exercise{
		Code:          s.newCode(),
		Topic:         topic,
		Level:         level,
		Title:         title,
		Description:   string(payload.Description),
		Prompt:        problemPrompt,
		ExampleInput:  string(payload.ExampleInput),
		ExampleOutput: string(payload.ExampleOutput),
		Solution:      string(payload.Solution.Code),
	})
	if err != nil {
		return Exercise{}, &GenerationError{Stage: "persist", Err: err}
	}

	s.logger.Info().Str("code", created.Code).Str("topic", topic).Str("level", level).Msg("exercise generated")
	return created, nil
}

// ListAll returns every exercise, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Exercise, error) {
	return s.store.List(ctx)
}

// ListByTopic returns the exercises for topic; an unknown topic yields an empty slice.
// Topics are matched in the same normalized form listings use.
func (s *Service) ListByTopic(ctx context.Context, topic string) ([]Exercise, error) {
	exercises, err := s.store.ListByTopic(ctx, prompt.Category(topic))
	if err != nil {
		return nil, err
	}
	if exercises == nil {
		exercises = []Exercise{}
	}
	return exercises, nil
}

// GetDetails returns one exercise by code, reading through the detail cache.
func (s *Service) GetDetails(ctx context.Context, code string) (Exercise, error) {
	if cached, err := s.cache.Get(ctx, code); err == nil && cached != nil {
		return *cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("code", code).Msg("detail cache read failed")
	}

	ex, err := s.store.Get(ctx, code)
	if err != nil {
		return Exercise{}, err
	}
	if err := s.cache.Set(ctx, ex); err != nil {
		s.logger.Warn().Err(err).Str("code", code).Msg("detail cache write failed")
	}
	return ex, nil
}

// Update applies patch to the exercise identified by code.
func (s *Service) Update(ctx context.Context, code string, patch Patch) (Exercise, error) {
	if patch.Empty() {
		return Exercise{}, &ValidationError{Message: MsgEmptyPatch}
	}
	for field, value := range map[string]*string{
		"title":         patch.Title,
		"description":   patch.Description,
		"exampleInput":  patch.ExampleInput,
		"exampleOutput": patch.ExampleOutput,
		"solution":      patch.Solution,
	} {
		if value != nil && strings.TrimSpace(*value) == "" {
			return Exercise{}, &ValidationError{Field: field, Message: fmt.Sprintf("El campo %q no puede estar vacío.", field)}
		}
	}

	updated, err := s.store.Update(ctx, code, patch)
	if err != nil {
		return Exercise{}, err
	}
	s.evict(ctx, code)
	return updated, nil
}

// Delete removes the exercise identified by code.
func (s *Service) Delete(ctx context.Context, code string) error {
	if err := s.store.Delete(ctx, code); err != nil {
		return err
	}
	s.evict(ctx, code)
	return nil
}

// DeleteAll removes every exercise and every listing.
func (s *Service) DeleteAll(ctx context.Context) error {
	exercises, err := s.store.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("delete exercises: %w", err)
	}
	listings, err := s.listings.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("delete listings: %w", err)
	}
	if err := s.cache.Flush(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("detail cache flush failed")
	}
	s.logger.Info().Int64("exercises", exercises).Int64("listings", listings).Msg("all exercises deleted")
	return nil
}

func (s *Service) evict(ctx context.Context, code string) {
	if err := s.cache.Delete(ctx, code); err != nil {
		s.logger.Warn().Err(err).Str("code", code).Msg("detail cache evict failed")
	}
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*Exercise, error) { return nil, nil }
func (noopCache) Set(context.Context, Exercise) error            { return nil }
func (noopCache) Delete(context.Context, ...string) error        { return nil }
func (noopCache) Flush(context.Context) error                    { return nil }
