package exercise

import (
	"time"
)

// Difficulty tiers. Exercise levels and listing categories share the same names.
const (
	LevelBasico     = "basico"
	LevelIntermedio = "intermedio"
	LevelAvanzado   = "avanzado"
)

// Levels lists the accepted tiers in display order.
var Levels = []string{LevelBasico, LevelIntermedio, LevelAvanzado}

// Exercise is one generated coding problem.
type Exercise struct {
	Code          string    `json:"code"`
	Topic         string    `json:"topic"`
	Level         string    `json:"level"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Prompt        string    `json:"prompt"`
	ExampleInput  string    `json:"exampleInput"`
	ExampleOutput string    `json:"exampleOutput"`
	Solution      string    `json:"solution"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Patch carries the mutable fields of an exercise; nil fields are left untouched.
type Patch struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	ExampleInput  *string `json:"exampleInput"`
	ExampleOutput *string `json:"exampleOutput"`
	Solution      *string `json:"solution"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.ExampleInput == nil &&
		p.ExampleOutput == nil && p.Solution == nil
}

// GenerateRequest asks for a new exercise.
type GenerateRequest struct {
	Topic        string `json:"topic"`
	Level        string `json:"level"`
	ExerciseText string `json:"exerciseText"`
}

// Entry is one candidate exercise description inside a listing tier.
type Entry struct {
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// Tiers groups listing entries by difficulty.
type Tiers struct {
	Basico     []Entry `json:"basico"`
	Intermedio []Entry `json:"intermedio"`
	Avanzado   []Entry `json:"avanzado"`
}

// Tier returns the entries for category.
func (t Tiers) Tier(category string) ([]Entry, bool) {
	switch category {
	case LevelBasico:
		return t.Basico, true
	case LevelIntermedio:
		return t.Intermedio, true
	case LevelAvanzado:
		return t.Avanzado, true
	default:
		return nil, false
	}
}

// Unselected keeps only the entries that have not been picked yet.
func (t Tiers) Unselected() Tiers {
	return Tiers{
		Basico:     unselected(t.Basico),
		Intermedio: unselected(t.Intermedio),
		Avanzado:   unselected(t.Avanzado),
	}
}

// Len is the total number of entries across tiers.
func (t Tiers) Len() int {
	return len(t.Basico) + len(t.Intermedio) + len(t.Avanzado)
}

func unselected(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Selected {
			out = append(out, e)
		}
	}
	return out
}

// Listing is a curated set of candidate exercises for a topic.
type Listing struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Listings  Tiers     `json:"listings"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func isLevel(s string) bool {
	for _, l := range Levels {
		if s == l {
			return true
		}
	}
	return false
}
