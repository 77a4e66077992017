package zones

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// reorderOffset places temporary positions far outside the live range so the
// unique (zone_id, position) index is satisfied throughout a reorder.
const reorderOffset = 1 << 20

// BunDefinitionRepository implements DefinitionRepository with optional caching.
type BunDefinitionRepository struct {
	repo repository.Repository[*ZoneDefinition]
}

// NewBunDefinitionRepository creates a definition repository without caching.
func NewBunDefinitionRepository(db *bun.DB) *BunDefinitionRepository {
	return NewBunDefinitionRepositoryWithCache(db, nil, nil)
}

// NewBunDefinitionRepositoryWithCache creates a definition repository with caching.
func NewBunDefinitionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunDefinitionRepository {
	base := NewDefinitionModelRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunDefinitionRepository{repo: base}
}

func (r *BunDefinitionRepository) Create(ctx context.Context, definition *ZoneDefinition) (*ZoneDefinition, error) {
	return r.repo.Create(ctx, definition)
}

func (r *BunDefinitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*ZoneDefinition, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "zone_definition", id.String())
	}
	return record, nil
}

func (r *BunDefinitionRepository) GetBySlug(ctx context.Context, slug string) (*ZoneDefinition, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "zone_definition", slug)
	}
	return record, nil
}

func (r *BunDefinitionRepository) List(ctx context.Context) ([]*ZoneDefinition, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.slug ASC")
	}))
	return records, err
}

// BunZoneRepository implements ZoneRepository with optional caching.
type BunZoneRepository struct {
	db   *bun.DB
	repo repository.Repository[*Zone]
}

// NewBunZoneRepository creates a zone repository without caching.
func NewBunZoneRepository(db *bun.DB) *BunZoneRepository {
	return NewBunZoneRepositoryWithCache(db, nil, nil)
}

// NewBunZoneRepositoryWithCache creates a zone repository with caching.
func NewBunZoneRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunZoneRepository {
	base := NewZoneModelRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunZoneRepository{db: db, repo: base}
}

func (r *BunZoneRepository) Create(ctx context.Context, zone *Zone) (*Zone, error) {
	return r.repo.Create(ctx, zone)
}

func (r *BunZoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*Zone, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "zone", id.String())
	}
	return record, nil
}

func (r *BunZoneRepository) ListByPage(ctx context.Context, pageID uuid.UUID) ([]*Zone, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", pageID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.sort_order ASC")
		}),
	)
	return records, err
}

func (r *BunZoneRepository) Update(ctx context.Context, zone *Zone) (*Zone, error) {
	updated, err := r.repo.Update(ctx, zone,
		repository.UpdateByID(zone.ID.String()),
		repository.UpdateColumns(
			"definition_id",
			"sort_order",
			"enabled",
			"name",
			"auto_fill",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "zone", zone.ID.String())
	}
	return updated, nil
}

func (r *BunZoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Zone{ID: id})
}

func (r *BunZoneRepository) DeleteByPage(ctx context.Context, pageID uuid.UUID) error {
	if r.db == nil {
		return fmt.Errorf("zone repository: database not configured")
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var ids []uuid.UUID
		if err := tx.NewSelect().
			Model((*Zone)(nil)).
			Column("id").
			Where("?TableAlias.page_id = ?", pageID).
			Scan(ctx, &ids); err != nil {
			return fmt.Errorf("list page zone ids: %w", err)
		}
		if len(ids) > 0 {
			if _, err := tx.NewDelete().
				Model((*ContentPlacement)(nil)).
				Where("?TableAlias.zone_id IN (?)", bun.In(ids)).
				Exec(ctx); err != nil {
				return fmt.Errorf("delete page placements: %w", err)
			}
		}
		if _, err := tx.NewDelete().
			Model((*Zone)(nil)).
			Where("?TableAlias.page_id = ?", pageID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete page zones: %w", err)
		}
		return nil
	})
}

// BunPlacementRepository implements PlacementRepository. Multi-row mutations
// run inside bun transactions so the unique (zone_id, position) index is
// never violated mid-operation.
type BunPlacementRepository struct {
	db   *bun.DB
	repo repository.Repository[*ContentPlacement]
}

// NewBunPlacementRepository creates a placement repository without caching.
func NewBunPlacementRepository(db *bun.DB) *BunPlacementRepository {
	return NewBunPlacementRepositoryWithCache(db, nil, nil)
}

// NewBunPlacementRepositoryWithCache creates a placement repository with caching.
func NewBunPlacementRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunPlacementRepository {
	base := NewPlacementModelRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunPlacementRepository{db: db, repo: base}
}

func (r *BunPlacementRepository) Insert(ctx context.Context, placement *ContentPlacement) (*ContentPlacement, error) {
	if r.db == nil {
		return nil, fmt.Errorf("placement repository: database not configured")
	}

	cloned := clonePlacement(placement)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Shift occupants at or after the target position, highest position
		// first, so no transient duplicate position ever exists.
		var occupied []uuid.UUID
		if err := tx.NewSelect().
			Model((*ContentPlacement)(nil)).
			Column("id").
			Where("?TableAlias.zone_id = ?", cloned.ZoneID).
			Where("?TableAlias.position >= ?", cloned.Position).
			OrderExpr("?TableAlias.position DESC").
			Scan(ctx, &occupied); err != nil {
			return fmt.Errorf("list occupied positions: %w", err)
		}

		for _, id := range occupied {
			if _, err := tx.NewUpdate().
				Model((*ContentPlacement)(nil)).
				Set("position = position + 1").
				Where("?TableAlias.id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("shift placement %s: %w", id, err)
			}
		}

		if _, err := tx.NewInsert().Model(cloned).Exec(ctx); err != nil {
			return fmt.Errorf("insert placement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cloned, nil
}

func (r *BunPlacementRepository) GetByID(ctx context.Context, id uuid.UUID) (*ContentPlacement, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "placement", id.String())
	}
	return record, nil
}

func (r *BunPlacementRepository) ListByZone(ctx context.Context, zoneID uuid.UUID) ([]*ContentPlacement, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.zone_id = ?", zoneID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.position ASC")
		}),
	)
	return records, err
}

func (r *BunPlacementRepository) Update(ctx context.Context, placement *ContentPlacement) (*ContentPlacement, error) {
	updated, err := r.repo.Update(ctx, placement,
		repository.UpdateByID(placement.ID.String()),
		repository.UpdateColumns(
			"pinned",
			"starts_at",
			"ends_at",
			"custom_payload",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "placement", placement.ID.String())
	}
	return updated, nil
}

func (r *BunPlacementRepository) DeleteAndCompact(ctx context.Context, zoneID uuid.UUID, id uuid.UUID) error {
	if r.db == nil {
		return fmt.Errorf("placement repository: database not configured")
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var removed ContentPlacement
		if err := tx.NewSelect().
			Model(&removed).
			Where("?TableAlias.id = ?", id).
			Where("?TableAlias.zone_id = ?", zoneID).
			Scan(ctx); err != nil {
			return &NotFoundError{Resource: "placement", Key: id.String()}
		}

		if _, err := tx.NewDelete().
			Model((*ContentPlacement)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete placement: %w", err)
		}

		// Close the gap lowest position first; decrements walk away from the
		// freed slot, so the unique index holds at every step.
		var above []uuid.UUID
		if err := tx.NewSelect().
			Model((*ContentPlacement)(nil)).
			Column("id").
			Where("?TableAlias.zone_id = ?", zoneID).
			Where("?TableAlias.position > ?", removed.Position).
			OrderExpr("?TableAlias.position ASC").
			Scan(ctx, &above); err != nil {
			return fmt.Errorf("list positions above: %w", err)
		}

		for _, sibling := range above {
			if _, err := tx.NewUpdate().
				Model((*ContentPlacement)(nil)).
				Set("position = position - 1").
				Where("?TableAlias.id = ?", sibling).
				Exec(ctx); err != nil {
				return fmt.Errorf("compact placement %s: %w", sibling, err)
			}
		}
		return nil
	})
}

// Reorder applies the two-phase rewrite: every placement first moves to a
// temporary position outside the live range, then to its final index. A
// single-phase overwrite could collide with an as-yet-unmoved row on any
// permutation, so both phases share one transaction.
func (r *BunPlacementRepository) Reorder(ctx context.Context, zoneID uuid.UUID, ids []uuid.UUID) error {
	if r.db == nil {
		return fmt.Errorf("placement repository: database not configured")
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for index, id := range ids {
			result, err := tx.NewUpdate().
				Model((*ContentPlacement)(nil)).
				Set("position = ?", reorderOffset+index).
				Where("?TableAlias.id = ?", id).
				Where("?TableAlias.zone_id = ?", zoneID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("stage placement %s: %w", id, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("stage placement %s rows affected: %w", id, err)
			}
			if affected == 0 {
				return &NotFoundError{Resource: "placement", Key: id.String()}
			}
		}

		for index, id := range ids {
			if _, err := tx.NewUpdate().
				Model((*ContentPlacement)(nil)).
				Set("position = ?", index).
				Set("updated_at = CURRENT_TIMESTAMP").
				Where("?TableAlias.id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("finalize placement %s: %w", id, err)
			}
		}
		return nil
	})
}

func (r *BunPlacementRepository) DeleteByZone(ctx context.Context, zoneID uuid.UUID) error {
	if r.db == nil {
		return fmt.Errorf("placement repository: database not configured")
	}
	_, err := r.db.NewDelete().
		Model((*ContentPlacement)(nil)).
		Where("?TableAlias.zone_id = ?", zoneID).
		Exec(ctx)
	return err
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
