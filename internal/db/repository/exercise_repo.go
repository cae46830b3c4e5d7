package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gokatarajesh/exercise-platform/internal/exercise"
)

const exerciseColumns = `code, topic, level, title, description, prompt, example_input, example_output, solution, created_at, updated_at`

// ExerciseRepository stores exercises in the exercises table.
type ExerciseRepository struct {
	db DB
}

var _ exercise.Store = (*ExerciseRepository)(nil)

func NewExerciseRepository(db DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

func (r *ExerciseRepository) List(ctx context.Context) ([]exercise.Exercise, error) {
	return r.query(ctx, `SELECT `+exerciseColumns+` FROM exercises ORDER BY created_at DESC`)
}

func (r *ExerciseRepository) ListByTopic(ctx context.Context, topic string) ([]exercise.Exercise, error) {
	return r.query(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE topic = $1 ORDER BY created_at DESC`, topic)
}

func (r *ExerciseRepository) query(ctx context.Context, sql string, args ...any) ([]exercise.Exercise, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (exercise.Exercise, error) {
		return scanExercise(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan exercises: %w", err)
	}
	return out, nil
}

func (r *ExerciseRepository) Get(ctx context.Context, code string) (exercise.Exercise, error) {
	row := r.db.QueryRow(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE code = $1`, code)
	ex, err := scanExercise(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return exercise.Exercise{}, exercise.ErrNotFound
	}
	if err != nil {
		return exercise.Exercise{}, fmt.Errorf("get exercise: %w", err)
	}
	return ex, nil
}

func (r *ExerciseRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM exercises WHERE title = $1)`, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return exists, nil
}

// Insert stores ex and returns it with the database timestamps.
func (r *ExerciseRepository) Insert(ctx context.Context, ex exercise.Exercise) (exercise.Exercise, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO exercises (code, topic, level, title, description, prompt, example_input, example_output, solution)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+exerciseColumns,
		ex.Code, ex.Topic, ex.Level, ex.Title, ex.Description, ex.Prompt, ex.ExampleInput, ex.ExampleOutput, ex.Solution,
	)
	created, err := scanExercise(row)
	if isUniqueViolation(err) {
		return exercise.Exercise{}, fmt.Errorf("%w: %v", exercise.ErrDuplicate, err)
	}
	if err != nil {
		return exercise.Exercise{}, fmt.Errorf("insert exercise: %w", err)
	}
	return created, nil
}

// Update writes the non-nil fields of patch.
func (r *ExerciseRepository) Update(ctx context.Context, code string, patch exercise.Patch) (exercise.Exercise, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE exercises SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			example_input = COALESCE($4, example_input),
			example_output = COALESCE($5, example_output),
			solution = COALESCE($6, solution),
			updated_at = now()
		WHERE code = $1
		RETURNING `+exerciseColumns,
		code, patch.Title, patch.Description, patch.ExampleInput, patch.ExampleOutput, patch.Solution,
	)
	updated, err := scanExercise(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return exercise.Exercise{}, exercise.ErrNotFound
	case isUniqueViolation(err):
		return exercise.Exercise{}, fmt.Errorf("%w: %v", exercise.ErrDuplicate, err)
	case err != nil:
		return exercise.Exercise{}, fmt.Errorf("update exercise: %w", err)
	}
	return updated, nil
}

func (r *ExerciseRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM exercises WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return exercise.ErrNotFound
	}
	return nil
}

func (r *ExerciseRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM exercises`)
	if err != nil {
		return 0, fmt.Errorf("delete exercises: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanExercise(row pgx.Row) (exercise.Exercise, error) {
	var ex exercise.Exercise
	err := row.Scan(
		&ex.Code,
		&ex.Topic,
		&ex.Level,
		&ex.Title,
		&ex.Description,
		&ex.Prompt,
		&ex.ExampleInput,
		&ex.ExampleOutput,
		&ex.Solution,
		&ex.CreatedAt,
		&ex.UpdatedAt,
	)
	return ex, err
}
