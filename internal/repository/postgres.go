package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/activities-signup/internal/model"
)

// PostgresRepository stores the registry in PostgreSQL using pgx directly.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Seed inserts activities that are not present yet. Existing rows, and
// their participants, are left untouched.
func (r *PostgresRepository) Seed(ctx context.Context, activities []model.Activity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, a := range activities {
		tag, err := tx.Exec(ctx,
			`INSERT INTO activities (name, description, schedule, max_participants)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (name) DO NOTHING`,
			a.Name, a.Description, a.Schedule, a.MaxParticipants,
		)
		if err != nil {
			return fmt.Errorf("insert activity %q: %w", a.Name, err)
		}
		if tag.RowsAffected() == 0 {
			continue
		}
		for _, email := range a.Participants {
			if err := insertParticipant(ctx, tx, a.Name, email); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// List returns all activities with participants in enrollment order.
func (r *PostgresRepository) List(ctx context.Context) ([]model.Activity, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, description, schedule, max_participants
		 FROM activities
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	index := make(map[string]int)
	for rows.Next() {
		a := model.Activity{Participants: []string{}}
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		index[a.Name] = len(activities)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	prows, err := r.db.Query(ctx,
		`SELECT activity_name, email
		 FROM participants
		 ORDER BY activity_name, seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var name, email string
		if err := prows.Scan(&name, &email); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if i, ok := index[name]; ok {
			activities[i].Participants = append(activities[i].Participants, email)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return activities, nil
}

// Enroll performs the duplicate and capacity checks inside one transaction
// holding a row lock on the activity.
//
// Two concurrent signups that both read the participant count before either
// inserts would each see a free place. SELECT … FOR UPDATE on the activity
// row makes the second transaction wait until the first commits or rolls
// back, so the count it reads is current.
func (r *PostgresRepository) Enroll(ctx context.Context, activity, email string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	maxParticipants, err := lockActivity(ctx, tx, activity)
	if err != nil {
		return err
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM participants WHERE activity_name = $1 AND email = $2)`,
		activity, email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return ErrAlreadyRegistered
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM participants WHERE activity_name = $1`,
		activity,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count participants: %w", err)
	}
	if count >= maxParticipants {
		return ErrActivityFull
	}

	if err := insertParticipant(ctx, tx, activity, email); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Withdraw deletes the participant row under the same activity lock.
func (r *PostgresRepository) Withdraw(ctx context.Context, activity, email string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := lockActivity(ctx, tx, activity); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM participants WHERE activity_name = $1 AND email = $2`,
		activity, email,
	)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotRegistered
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func lockActivity(ctx context.Context, tx pgx.Tx, activity string) (int, error) {
	var maxParticipants int
	err := tx.QueryRow(ctx,
		`SELECT max_participants
		 FROM activities
		 WHERE name = $1
		 FOR UPDATE`,
		activity,
	).Scan(&maxParticipants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("lock activity row: %w", err)
	}
	return maxParticipants, nil
}

func insertParticipant(ctx context.Context, tx pgx.Tx, activity, email string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO participants (id, activity_name, email, created_at)
		 VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), activity, email, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}
