package postgres

import (
	"context"

	"github.com/samirrijal/madar/internal/core/domain"
)

// MemoryRepo implements ports.MemoryRepository.
type MemoryRepo struct {
	db *DB
}

func NewMemoryRepo(db *DB) *MemoryRepo { return &MemoryRepo{db: db} }

func (r *MemoryRepo) Create(ctx context.Context, m *domain.CitizenMemory) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO memories (id, text, visitor_name, neighborhood, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.Text, m.VisitorName, m.Neighborhood, m.CreatedAt)
	return err
}

func (r *MemoryRepo) List(ctx context.Context, neighborhood string, limit int) ([]domain.CitizenMemory, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, text, visitor_name, neighborhood, created_at
		FROM memories
		WHERE ($1 = '' OR neighborhood = $1)
		ORDER BY created_at DESC, id
		LIMIT $2
	`, neighborhood, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CitizenMemory
	for rows.Next() {
		var m domain.CitizenMemory
		if err := rows.Scan(&m.ID, &m.Text, &m.VisitorName, &m.Neighborhood, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
