package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/madar/internal/core/domain"
)

const interventionColumns = `
	id, type, media_type, COALESCE(title, ''), place,
	ST_Y(location::geometry) as lat,
	ST_X(location::geometry) as lon,
	status, interact_count, COALESCE(media_url, ''), COALESCE(audio_url, ''),
	COALESCE(themes, '{}'), COALESCE(curator_notes, ''), last_updated, created_at,
	COALESCE(external_assets, '[]'::jsonb)`

const upsertIntervention = `
	INSERT INTO interventions (id, type, media_type, title, place, location, status,
	                           interact_count, media_url, audio_url, themes, curator_notes,
	                           last_updated, created_at, external_assets)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5, ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography, $8,
	        $9, NULLIF($10, ''), NULLIF($11, ''), $12, NULLIF($13, ''), $14, $15, $16)
	ON CONFLICT (id) DO UPDATE
	SET type = EXCLUDED.type, media_type = EXCLUDED.media_type, title = EXCLUDED.title,
	    place = EXCLUDED.place, location = EXCLUDED.location, status = EXCLUDED.status,
	    media_url = EXCLUDED.media_url, audio_url = EXCLUDED.audio_url,
	    themes = EXCLUDED.themes, curator_notes = EXCLUDED.curator_notes,
	    last_updated = EXCLUDED.last_updated, external_assets = EXCLUDED.external_assets`

const insertPathPoint = `
	INSERT INTO path_points (id, intervention_id, name, location, ord)
	VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6)`

// InterventionRepo implements ports.InterventionRepository with pgx.
type InterventionRepo struct {
	db *DB
}

// NewInterventionRepo creates a new InterventionRepo.
func NewInterventionRepo(db *DB) *InterventionRepo {
	return &InterventionRepo{db: db}
}

// Upsert inserts or updates a single intervention and replaces its path points.
func (r *InterventionRepo) Upsert(ctx context.Context, item *domain.Intervention) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		if err := queueIntervention(batch, item); err != nil {
			return err
		}
		return sendBatch(ctx, tx, batch)
	})
}

// UpsertBatch stores many interventions in one transaction using pgx.Batch.
func (r *InterventionRepo) UpsertBatch(ctx context.Context, items []domain.Intervention) error {
	if len(items) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range items {
			if err := queueIntervention(batch, &items[i]); err != nil {
				return err
			}
		}
		return sendBatch(ctx, tx, batch)
	})
}

func queueIntervention(batch *pgx.Batch, item *domain.Intervention) error {
	assets, err := assetsJSON(item.ExternalAssets)
	if err != nil {
		return fmt.Errorf("intervention %s: %w", item.ID, err)
	}
	batch.Queue(upsertIntervention,
		item.ID, string(item.Type), string(item.MediaType), item.Title, item.Place,
		item.Location.Lon, item.Location.Lat, string(item.Status),
		item.InteractCount, item.MediaURL, item.AudioURL, themeStrings(item.Themes), item.CuratorNotes,
		item.LastUpdated, item.CreatedAt, assets)
	batch.Queue(`DELETE FROM path_points WHERE intervention_id = $1`, item.ID)
	for _, pp := range item.PathPoints {
		batch.Queue(insertPathPoint, pp.ID, item.ID, pp.Name, pp.Location.Lon, pp.Location.Lat, pp.Order)
	}
	return nil
}

// assetsJSON encodes assets for the jsonb column; nil becomes [].
func assetsJSON(assets []domain.ExternalAsset) ([]byte, error) {
	if len(assets) == 0 {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(assets)
	if err != nil {
		return nil, fmt.Errorf("encode external assets: %w", err)
	}
	return data, nil
}

func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return br.Close()
}

// GetByID returns an intervention with its path points.
func (r *InterventionRepo) GetByID(ctx context.Context, id string) (*domain.Intervention, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+interventionColumns+` FROM interventions WHERE id = $1`, id)

	item, err := scanIntervention(row)
	if err != nil {
		return nil, notFound(err, "intervention", id)
	}

	items := []domain.Intervention{*item}
	if err := r.attachPathPoints(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// GetByIDs returns the interventions that exist among ids, in arbitrary order.
func (r *InterventionRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Intervention, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+interventionColumns+` FROM interventions WHERE id = ANY($1) ORDER BY created_at, id`, ids)
}

// List returns interventions matching filter, oldest first.
func (r *InterventionRepo) List(ctx context.Context, filter domain.InterventionFilter) ([]domain.Intervention, error) {
	return r.query(ctx, `
		SELECT `+interventionColumns+`
		FROM interventions
		WHERE ($1 = '' OR type = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR $3 = ANY(themes))
		ORDER BY created_at, id
	`, string(filter.Type), string(filter.Status), string(filter.Theme))
}

// Delete removes an intervention; path points go with it via ON DELETE CASCADE.
func (r *InterventionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM interventions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("intervention %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

// IncrementInteractions bumps interact_count by one.
func (r *InterventionRepo) IncrementInteractions(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE interventions SET interact_count = interact_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("intervention %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *InterventionRepo) query(ctx context.Context, sql string, args ...any) ([]domain.Intervention, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Intervention
	for rows.Next() {
		item, err := scanIntervention(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachPathPoints(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// attachPathPoints loads path points for every PATH intervention in one query.
func (r *InterventionRepo) attachPathPoints(ctx context.Context, items []domain.Intervention) error {
	index := make(map[string]int)
	var ids []string
	for i := range items {
		if items[i].Type == domain.InterventionPath {
			index[items[i].ID] = i
			ids = append(ids, items[i].ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, intervention_id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       ord
		FROM path_points
		WHERE intervention_id = ANY($1)
		ORDER BY intervention_id, ord
	`, ids)
	if err != nil {
		return fmt.Errorf("path points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pp domain.PathPoint
		var owner string
		if err := rows.Scan(&pp.ID, &owner, &pp.Name, &pp.Location.Lat, &pp.Location.Lon, &pp.Order); err != nil {
			return err
		}
		if i, ok := index[owner]; ok {
			items[i].PathPoints = append(items[i].PathPoints, pp)
		}
	}
	return rows.Err()
}

func scanIntervention(row pgx.Row) (*domain.Intervention, error) {
	var (
		it                 domain.Intervention
		typ, media, status string
		themes             []string
		assets             []byte
	)
	if err := row.Scan(
		&it.ID, &typ, &media, &it.Title, &it.Place,
		&it.Location.Lat, &it.Location.Lon,
		&status, &it.InteractCount, &it.MediaURL, &it.AudioURL,
		&themes, &it.CuratorNotes, &it.LastUpdated, &it.CreatedAt,
		&assets,
	); err != nil {
		return nil, err
	}
	if len(assets) > 0 {
		if err := json.Unmarshal(assets, &it.ExternalAssets); err != nil {
			return nil, fmt.Errorf("decode external assets of %s: %w", it.ID, err)
		}
	}
	it.Type = domain.InterventionType(typ)
	it.MediaType = domain.MediaType(media)
	it.Status = domain.InterventionStatus(status)
	for _, th := range themes {
		it.Themes = append(it.Themes, domain.TourTheme(th))
	}
	return &it, nil
}

func themeStrings(themes []domain.TourTheme) []string {
	out := make([]string, 0, len(themes))
	for _, th := range themes {
		out = append(out, string(th))
	}
	return out
}
