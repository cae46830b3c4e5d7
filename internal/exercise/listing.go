package exercise

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/gokatarajesh/exercise-platform/internal/llm"
	"github.com/gokatarajesh/exercise-platform/internal/prompt"
)

// listingPayload is the shape the listing prompts ask the model for.
type listingPayload struct {
	Basico     []llm.Text `json:"basico" validate:"required,min=1,dive,required"`
	Intermedio []llm.Text `json:"intermedio" validate:"required,min=1,dive,required"`
	Avanzado   []llm.Text `json:"avanzado" validate:"required,min=1,dive,required"`
}

// GenerateListing always produces a fresh listing for topic, replacing any
// previous one. Every new entry starts unselected.
func (s *Service) GenerateListing(ctx context.Context, topic string) (Listing, error) {
	if strings.TrimSpace(topic) == "" {
		return Listing{}, &ValidationError{Field: "topic", Message: MsgMissingTopic}
	}
	listingPrompt, err := prompt.Listing(topic)
	if err != nil {
		return Listing{}, err
	}

	raw, err := s.generator.Generate(ctx, listingPrompt)
	if err != nil {
		return Listing{}, &GenerationError{Stage: "generate", Err: err}
	}

	var payload listingPayload
	if err := llm.Decode(raw, &payload); err != nil {
		return Listing{}, &GenerationError{Stage: "decode", Err: err}
	}

	stored, err := s.listings.Replace(ctx, Listing{
		ID:    uuid.NewString(),
		Topic: prompt.Category(topic),
		Listings: Tiers{
			Basico:     toEntries(payload.Basico),
			Intermedio: toEntries(payload.Intermedio),
			Avanzado:   toEntries(payload.Avanzado),
		},
	})
	if err != nil {
		return Listing{}, &GenerationError{Stage: "persist", Err: err}
	}

	s.logger.Info().Str("topic", stored.Topic).Int("entries", stored.Listings.Len()).Msg("listing generated")
	return stored, nil
}

// GetListing returns the latest listing for topic, or nil when there is none.
// With unselectedOnly the entries already picked are left out.
func (s *Service) GetListing(ctx context.Context, topic string, unselectedOnly bool) (*Listing, error) {
	listing, err := s.listings.Latest(ctx, prompt.Category(topic))
	if err != nil || listing == nil {
		return nil, err
	}
	if unselectedOnly {
		listing.Listings = listing.Listings.Unselected()
	}
	return listing, nil
}

// MarkSelected flags entry index of the category tier as selected. Marking an
// already selected entry succeeds without changes.
func (s *Service) MarkSelected(ctx context.Context, topic, category string, index int) (Listing, error) {
	topic = prompt.Category(topic)
	if topic == "" {
		return Listing{}, &ValidationError{Field: "topic", Message: MsgMissingMarkFields}
	}
	if !isLevel(category) {
		return Listing{}, categoryError()
	}
	if index < 0 || index > math.MaxInt32 {
		return Listing{}, fmt.Errorf("%w: index %d", ErrOutOfRange, index)
	}

	changed, err := s.listings.MarkSelected(ctx, topic, category, index)
	if err != nil {
		return Listing{}, fmt.Errorf("mark selected: %w", err)
	}

	listing, err := s.listings.Latest(ctx, topic)
	if err != nil {
		return Listing{}, fmt.Errorf("load listing: %w", err)
	}
	if listing == nil {
		return Listing{}, fmt.Errorf("%w: no listing for topic %q", ErrNotFound, topic)
	}
	if !changed {
		entries, _ := listing.Listings.Tier(category)
		if index >= len(entries) {
			return Listing{}, fmt.Errorf("%w: index %d, %s has %d entries", ErrOutOfRange, index, category, len(entries))
		}
	}
	return *listing, nil
}

func toEntries(texts []llm.Text) []Entry {
	entries := make([]Entry, len(texts))
	for i, t := range texts {
		entries[i] = Entry{Text: string(t)}
	}
	return entries
}
