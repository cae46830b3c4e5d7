package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/gokatarajesh/exercise-platform/internal/exercise"
)

// ListingRepository stores topic listings as JSONB documents. Several rows may
// share a topic; reads and writes address the newest one.
type ListingRepository struct {
	db DB
}

var _ exercise.ListingStore = (*ListingRepository)(nil)

func NewListingRepository(db DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Latest(ctx context.Context, topic string) (*exercise.Listing, error) {
	var (
		l   exercise.Listing
		doc []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, topic, listings, created_at, updated_at
		FROM exercise_listings
		WHERE topic = $1
		ORDER BY created_at DESC
		LIMIT 1`, topic,
	).Scan(&l.ID, &l.Topic, &doc, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	if err := json.Unmarshal(doc, &l.Listings); err != nil {
		return nil, fmt.Errorf("decode listing %s: %w", l.ID, err)
	}
	return &l, nil
}

// Replace deletes every listing for l.Topic and inserts l in one transaction.
func (r *ListingRepository) Replace(ctx context.Context, l exercise.Listing) (exercise.Listing, error) {
	doc, err := json.Marshal(l.Listings)
	if err != nil {
		return exercise.Listing{}, fmt.Errorf("encode listing: %w", err)
	}

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM exercise_listings WHERE topic = $1`, l.Topic); err != nil {
			return fmt.Errorf("delete previous listings: %w", err)
		}
		return tx.QueryRow(ctx, `
			INSERT INTO exercise_listings (id, topic, listings)
			VALUES ($1, $2, $3)
			RETURNING created_at, updated_at`, l.ID, l.Topic, doc,
		).Scan(&l.CreatedAt, &l.UpdatedAt)
	})
	if err != nil {
		return exercise.Listing{}, fmt.Errorf("replace listing: %w", err)
	}
	return l, nil
}

// MarkSelected sets listings[category][index].selected on the newest listing
// for topic. The row only changes when the entry exists and is unselected.
func (r *ListingRepository) MarkSelected(ctx context.Context, topic, category string, index int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE exercise_listings
		SET listings = jsonb_set(listings, ARRAY[$2::text, $4::text, 'selected'], 'true'::jsonb),
		    updated_at = now()
		WHERE id = (
			SELECT id FROM exercise_listings
			WHERE topic = $1
			ORDER BY created_at DESC
			LIMIT 1
		)
		AND jsonb_typeof(listings -> $2::text -> $3::int) = 'object'
		AND NOT COALESCE((listings -> $2::text -> $3::int ->> 'selected')::boolean, false)`,
		topic, category, index, strconv.Itoa(index),
	)
	if err != nil {
		return false, fmt.Errorf("mark selected: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ListingRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM exercise_listings`)
	if err != nil {
		return 0, fmt.Errorf("delete listings: %w", err)
	}
	return tag.RowsAffected(), nil
}
