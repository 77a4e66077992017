package zones

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryDefinitionRepository constructs an in-memory zone definition repository.
func NewMemoryDefinitionRepository() DefinitionRepository {
	return &memoryDefinitionRepository{
		byID:   make(map[uuid.UUID]*ZoneDefinition),
		bySlug: make(map[string]uuid.UUID),
	}
}

type memoryDefinitionRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*ZoneDefinition
	bySlug map[string]uuid.UUID
}

func (m *memoryDefinitionRepository) Create(_ context.Context, definition *ZoneDefinition) (*ZoneDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneDefinition(definition)
	m.byID[cloned.ID] = cloned
	if cloned.Slug != "" {
		m.bySlug[cloned.Slug] = cloned.ID
	}
	return cloneDefinition(cloned), nil
}

func (m *memoryDefinitionRepository) GetByID(_ context.Context, id uuid.UUID) (*ZoneDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "zone_definition", Key: id.String()}
	}
	return cloneDefinition(record), nil
}

func (m *memoryDefinitionRepository) GetBySlug(_ context.Context, slug string) (*ZoneDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "zone_definition", Key: slug}
	}
	return cloneDefinition(m.byID[id]), nil
}

func (m *memoryDefinitionRepository) List(_ context.Context) ([]*ZoneDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*ZoneDefinition, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, cloneDefinition(record))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Slug < records[j].Slug })
	return records, nil
}

// NewMemoryZoneRepository constructs an in-memory zone repository.
func NewMemoryZoneRepository() ZoneRepository {
	return &memoryZoneRepository{
		byID:   make(map[uuid.UUID]*Zone),
		byPage: make(map[uuid.UUID][]uuid.UUID),
	}
}

type memoryZoneRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Zone
	byPage map[uuid.UUID][]uuid.UUID
}

func (m *memoryZoneRepository) Create(_ context.Context, zone *Zone) (*Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneZone(zone)
	m.byID[cloned.ID] = cloned
	m.byPage[cloned.PageID] = append(m.byPage[cloned.PageID], cloned.ID)
	return cloneZone(cloned), nil
}

func (m *memoryZoneRepository) GetByID(_ context.Context, id uuid.UUID) (*Zone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "zone", Key: id.String()}
	}
	return cloneZone(record), nil
}

func (m *memoryZoneRepository) ListByPage(_ context.Context, pageID uuid.UUID) ([]*Zone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byPage[pageID]
	records := make([]*Zone, 0, len(ids))
	for _, id := range ids {
		records = append(records, cloneZone(m.byID[id]))
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].SortOrder < records[j].SortOrder })
	return records, nil
}

func (m *memoryZoneRepository) Update(_ context.Context, zone *Zone) (*Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[zone.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "zone", Key: zone.ID.String()}
	}
	cloned := cloneZone(zone)
	cloned.PageID = existing.PageID
	m.byID[zone.ID] = cloned
	return cloneZone(cloned), nil
}

func (m *memoryZoneRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "zone", Key: id.String()}
	}
	delete(m.byID, id)
	m.byPage[record.PageID] = removeID(m.byPage[record.PageID], id)
	return nil
}

func (m *memoryZoneRepository) DeleteByPage(_ context.Context, pageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.byPage[pageID] {
		delete(m.byID, id)
	}
	delete(m.byPage, pageID)
	return nil
}

// NewMemoryPlacementRepository constructs an in-memory placement repository.
// Multi-row mutations run under one lock, matching the atomicity the SQL
// implementation gets from transactions.
func NewMemoryPlacementRepository() PlacementRepository {
	return &memoryPlacementRepository{
		byID:   make(map[uuid.UUID]*ContentPlacement),
		byZone: make(map[uuid.UUID][]uuid.UUID),
	}
}

type memoryPlacementRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*ContentPlacement
	byZone map[uuid.UUID][]uuid.UUID
}

func (m *memoryPlacementRepository) Insert(_ context.Context, placement *ContentPlacement) (*ContentPlacement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := clonePlacement(placement)
	// Shift occupants at or after the target position up by one, highest
	// first, so the dense ordering survives the insert.
	for _, id := range m.byZone[cloned.ZoneID] {
		if record := m.byID[id]; record.Position >= cloned.Position {
			record.Position++
		}
	}
	m.byID[cloned.ID] = cloned
	m.byZone[cloned.ZoneID] = append(m.byZone[cloned.ZoneID], cloned.ID)
	return clonePlacement(cloned), nil
}

func (m *memoryPlacementRepository) GetByID(_ context.Context, id uuid.UUID) (*ContentPlacement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "placement", Key: id.String()}
	}
	return clonePlacement(record), nil
}

func (m *memoryPlacementRepository) ListByZone(_ context.Context, zoneID uuid.UUID) ([]*ContentPlacement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.listByZoneLocked(zoneID), nil
}

func (m *memoryPlacementRepository) listByZoneLocked(zoneID uuid.UUID) []*ContentPlacement {
	ids := m.byZone[zoneID]
	records := make([]*ContentPlacement, 0, len(ids))
	for _, id := range ids {
		records = append(records, clonePlacement(m.byID[id]))
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Position < records[j].Position })
	return records
}

func (m *memoryPlacementRepository) Update(_ context.Context, placement *ContentPlacement) (*ContentPlacement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[placement.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "placement", Key: placement.ID.String()}
	}

	cloned := clonePlacement(placement)
	// Positional and ownership fields are immutable on this path.
	cloned.ZoneID = existing.ZoneID
	cloned.Position = existing.Position
	m.byID[placement.ID] = cloned
	return clonePlacement(cloned), nil
}

func (m *memoryPlacementRepository) DeleteAndCompact(_ context.Context, zoneID uuid.UUID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok || record.ZoneID != zoneID {
		return &NotFoundError{Resource: "placement", Key: id.String()}
	}

	removed := record.Position
	delete(m.byID, id)
	m.byZone[zoneID] = removeID(m.byZone[zoneID], id)

	for _, remaining := range m.byZone[zoneID] {
		if sibling := m.byID[remaining]; sibling.Position > removed {
			sibling.Position--
		}
	}
	return nil
}

func (m *memoryPlacementRepository) Reorder(_ context.Context, zoneID uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		record, ok := m.byID[id]
		if !ok || record.ZoneID != zoneID {
			return &NotFoundError{Resource: "placement", Key: id.String()}
		}
	}
	for index, id := range ids {
		m.byID[id].Position = index
	}
	return nil
}

func (m *memoryPlacementRepository) DeleteByZone(_ context.Context, zoneID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.byZone[zoneID] {
		delete(m.byID, id)
	}
	delete(m.byZone, zoneID)
	return nil
}

func removeID(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func cloneDefinition(src *ZoneDefinition) *ZoneDefinition {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}

func cloneZone(src *Zone) *Zone {
	if src == nil {
		return nil
	}
	cloned := *src
	if src.Name != nil {
		name := *src.Name
		cloned.Name = &name
	}
	if src.AutoFill != nil {
		rule := *src.AutoFill
		if src.AutoFill.Tags != nil {
			rule.Tags = append([]string(nil), src.AutoFill.Tags...)
		}
		cloned.AutoFill = &rule
	}
	if src.Definition != nil {
		cloned.Definition = cloneDefinition(src.Definition)
	}
	if src.Placements != nil {
		cloned.Placements = make([]*ContentPlacement, len(src.Placements))
		for i, placement := range src.Placements {
			cloned.Placements[i] = clonePlacement(placement)
		}
	}
	return &cloned
}

func clonePlacement(src *ContentPlacement) *ContentPlacement {
	if src == nil {
		return nil
	}
	cloned := *src
	if src.ArticleID != nil {
		id := *src.ArticleID
		cloned.ArticleID = &id
	}
	if src.VideoID != nil {
		id := *src.VideoID
		cloned.VideoID = &id
	}
	if src.Custom != nil {
		cloned.Custom = maps.Clone(src.Custom)
	}
	if src.StartsAt != nil {
		at := *src.StartsAt
		cloned.StartsAt = &at
	}
	if src.EndsAt != nil {
		at := *src.EndsAt
		cloned.EndsAt = &at
	}
	return &cloned
}
