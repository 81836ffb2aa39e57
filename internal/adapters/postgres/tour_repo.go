package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/madar/internal/core/domain"
)

// TourRepo implements ports.TourRepository.
type TourRepo struct {
	db *DB
}

func NewTourRepo(db *DB) *TourRepo { return &TourRepo{db: db} }

const upsertTour = `
	INSERT INTO curated_tours (id, name, description, stops, theme, is_official, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, description = EXCLUDED.description, stops = EXCLUDED.stops,
	    theme = EXCLUDED.theme, is_official = EXCLUDED.is_official`

func (r *TourRepo) Upsert(ctx context.Context, t *domain.CuratedTour) error {
	_, err := r.db.Pool.Exec(ctx, upsertTour,
		t.ID, t.Name, t.Description, t.Stops, string(t.Theme), t.IsOfficial, t.CreatedAt)
	return err
}

func (r *TourRepo) UpsertBatch(ctx context.Context, tours []domain.CuratedTour) error {
	batch := &pgx.Batch{}
	for _, t := range tours {
		batch.Queue(upsertTour, t.ID, t.Name, t.Description, t.Stops, string(t.Theme), t.IsOfficial, t.CreatedAt)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range tours {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

func (r *TourRepo) GetByID(ctx context.Context, id string) (*domain.CuratedTour, error) {
	t, err := scanTour(r.db.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), stops, theme, is_official, created_at
		FROM curated_tours WHERE id = $1
	`, id))
	if err != nil {
		return nil, notFound(err, "tour", id)
	}
	return t, nil
}

func (r *TourRepo) List(ctx context.Context) ([]domain.CuratedTour, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), stops, theme, is_official, created_at
		FROM curated_tours ORDER BY is_official DESC, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tours []domain.CuratedTour
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, *t)
	}
	return tours, rows.Err()
}

func (r *TourRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM curated_tours WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tour %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanTour(row pgx.Row) (*domain.CuratedTour, error) {
	var t domain.CuratedTour
	var theme string
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Stops, &theme, &t.IsOfficial, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Theme = domain.TourTheme(theme)
	return &t, nil
}
