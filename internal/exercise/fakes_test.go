package exercise

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type memoryStore struct {
	mu        sync.Mutex
	exercises map[string]Exercise
	clock     time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{exercises: map[string]Exercise{}, clock: time.Unix(1700000000, 0)}
}

func (s *memoryStore) List(_ context.Context) ([]Exercise, error) {
	return s.filter(func(Exercise) bool { return true }), nil
}

func (s *memoryStore) ListByTopic(_ context.Context, topic string) ([]Exercise, error) {
	return s.filter(func(e Exercise) bool { return e.Topic == topic }), nil
}

func (s *memoryStore) filter(keep func(Exercise) bool) []Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Exercise
	for _, e := range s.exercises {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memoryStore) Get(_ context.Context, code string) (Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exercises[code]
	if !ok {
		return Exercise{}, ErrNotFound
	}
	return e, nil
}

func (s *memoryStore) ExistsByTitle(_ context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.exercises {
		if e.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) Insert(_ context.Context, ex Exercise) (Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exercises[ex.Code]; ok {
		return Exercise{}, ErrDuplicate
	}
	s.clock = s.clock.Add(time.Second)
	ex.CreatedAt, ex.UpdatedAt = s.clock, s.clock
	s.exercises[ex.Code] = ex
	return ex, nil
}

func (s *memoryStore) Update(_ context.Context, code string, p Patch) (Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exercises[code]
	if !ok {
		return Exercise{}, ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&e.Title, p.Title)
	set(&e.Description, p.Description)
	set(&e.ExampleInput, p.ExampleInput)
	set(&e.ExampleOutput, p.ExampleOutput)
	set(&e.Solution, p.Solution)
	s.exercises[code] = e
	return e, nil
}

func (s *memoryStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exercises[code]; !ok {
		return ErrNotFound
	}
	delete(s.exercises, code)
	return nil
}

func (s *memoryStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.exercises))
	s.exercises = map[string]Exercise{}
	return n, nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exercises)
}

// memoryListings keeps one slice of listings per topic, newest last.
type memoryListings struct {
	mu     sync.Mutex
	topics map[string][]Listing
}

func newMemoryListings() *memoryListings {
	return &memoryListings{topics: map[string][]Listing{}}
}

func (m *memoryListings) Latest(_ context.Context, topic string) (*Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.topics[topic]
	if len(all) == 0 {
		return nil, nil
	}
	l := cloneListing(all[len(all)-1])
	return &l, nil
}

func (m *memoryListings) Replace(_ context.Context, l Listing) (Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics[l.Topic] = []Listing{cloneListing(l)}
	return l, nil
}

func (m *memoryListings) MarkSelected(_ context.Context, topic, category string, index int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.topics[topic]
	if len(all) == 0 {
		return false, nil
	}
	latest := &all[len(all)-1]
	entries, ok := latest.Listings.Tier(category)
	if !ok || index >= len(entries) || entries[index].Selected {
		return false, nil
	}
	entries[index].Selected = true
	return true, nil
}

func (m *memoryListings) DeleteAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, l := range m.topics {
		n += int64(len(l))
	}
	m.topics = map[string][]Listing{}
	return n, nil
}

func cloneListing(l Listing) Listing {
	l.Listings = Tiers{
		Basico:     append([]Entry(nil), l.Listings.Basico...),
		Intermedio: append([]Entry(nil), l.Listings.Intermedio...),
		Avanzado:   append([]Entry(nil), l.Listings.Avanzado...),
	}
	return l
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	args := m.Called(ctx, prompt)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]Exercise
	flushes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]Exercise{}}
}

func (c *memoryCache) Get(_ context.Context, code string) (*Exercise, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[code]; ok {
		return &e, nil
	}
	return nil, nil
}

func (c *memoryCache) Set(_ context.Context, ex Exercise) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ex.Code] = ex
	return nil
}

func (c *memoryCache) Delete(_ context.Context, codes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, code := range codes {
		delete(c.entries, code)
	}
	return nil
}

func (c *memoryCache) Flush(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]Exercise{}
	c.flushes++
	return nil
}

const validProblem = `{
	"title": "Suma de dos números",
	"description": "Escribe una función que sume dos enteros.",
	"exampleInput": "2 3",
	"exampleOutput": "5",
	"solution": {
		"language": "Java",
		"code": "int suma(int a, int b) { return a + b; }",
		"explanation": "Se retorna la suma."
	}
}`

func tiersJSON(n int) json.RawMessage {
	tier := func(prefix string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = prefix + " " + string(rune('A'+i))
		}
		return out
	}
	raw, _ := json.Marshal(map[string][]string{
		"basico":     tier("Básico"),
		"intermedio": tier("Intermedio"),
		"avanzado":   tier("Avanzado"),
	})
	return raw
}
