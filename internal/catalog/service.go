package catalog

import (
	"context"
	"log"

	"github.com/ewasteapp/ewaste-client/internal/gateway"
)

// SyncService keeps the local catalog mirror current and degrades to the
// cache whenever the backend cannot be reached. Callers always get a list;
// network and API failures are never surfaced, only a failed cache read is.
type SyncService struct {
	gw    Gateway
	cache CacheRepository
}

func NewSyncService(gw Gateway, cache CacheRepository) *SyncService {
	return &SyncService{gw: gw, cache: cache}
}

// FetchCategories prefers the backend and falls back silently to the
// last-known-good cache. A successful fetch replaces the whole cached set,
// so server-side deletions converge. Single attempt, no retries.
func (s *SyncService) FetchCategories(ctx context.Context) ([]Category, error) {
	remote, err := s.gw.Categories(ctx)
	if err != nil || remote == nil {
		if err != nil {
			log.Printf("catalog: categories fetch failed, using cache: %v", err)
		}
		categories, cerr := s.cache.Categories(ctx)
		if cerr != nil {
			return nil, &CacheReadError{Op: "categories", Err: cerr}
		}
		return categories, nil
	}

	categories := mapCategories(remote)
	if err := s.cache.ReplaceCategories(ctx, categories); err != nil {
		// The fetched list is still good; serving it beats failing the caller.
		log.Printf("catalog: categories cache write failed: %v", err)
	}
	return categories, nil
}

// FetchWasteTypes fetches the sub-types of one category. A per-category
// fetch is a partial view of the catalog, so the cache write is an upsert:
// rows the client did not ask about are never evicted.
func (s *SyncService) FetchWasteTypes(ctx context.Context, categoryID int64) ([]WasteType, error) {
	remote, err := s.gw.WasteTypesByCategory(ctx, categoryID)
	if err != nil || remote == nil {
		if err != nil {
			log.Printf("catalog: waste types fetch for category %d failed, using cache: %v", categoryID, err)
		}
		types, cerr := s.cache.WasteTypesByCategory(ctx, categoryID)
		if cerr != nil {
			return nil, &CacheReadError{Op: "waste types by category", Err: cerr}
		}
		return types, nil
	}

	types := mapWasteTypes(remote)
	if err := s.cache.UpsertWasteTypes(ctx, types); err != nil {
		log.Printf("catalog: waste types cache write failed: %v", err)
	}
	return types, nil
}

// FetchAllWasteTypes fetches the authoritative full set; like
// FetchCategories it uses full-replace semantics on success.
func (s *SyncService) FetchAllWasteTypes(ctx context.Context) ([]WasteType, error) {
	remote, err := s.gw.WasteTypes(ctx)
	if err != nil || remote == nil {
		if err != nil {
			log.Printf("catalog: full waste types fetch failed, using cache: %v", err)
		}
		types, cerr := s.cache.WasteTypes(ctx)
		if cerr != nil {
			return nil, &CacheReadError{Op: "waste types", Err: cerr}
		}
		return types, nil
	}

	types := mapWasteTypes(remote)
	if err := s.cache.ReplaceWasteTypes(ctx, types); err != nil {
		log.Printf("catalog: waste types cache write failed: %v", err)
	}
	return types, nil
}

func mapCategories(remote []gateway.CategoryResponse) []Category {
	categories := make([]Category, 0, len(remote))
	for _, r := range remote {
		categories = append(categories, Category{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
		})
	}
	return categories
}

func mapWasteTypes(remote []gateway.WasteTypeResponse) []WasteType {
	types := make([]WasteType, 0, len(remote))
	for _, r := range remote {
		types = append(types, WasteType{
			ID:         r.ID,
			Name:       r.Name,
			CategoryID: r.CategoryID,
		})
	}
	return types
}
