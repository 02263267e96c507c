package catalog

import (
	"context"
	"fmt"

	"github.com/ewasteapp/ewaste-client/internal/gateway"
)

// Category mirrors a backend waste category. The backend is the source of
// truth; the cache is a replaceable mirror keyed by ID.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// WasteType is a sub-type belonging to a category.
type WasteType struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
}

// CacheRepository is the local catalog cache. Replace operations must be
// atomic: a concurrent reader sees the pre- or post-replace set, never a
// partial one.
type CacheRepository interface {
	Categories(ctx context.Context) ([]Category, error)
	ReplaceCategories(ctx context.Context, categories []Category) error
	WasteTypes(ctx context.Context) ([]WasteType, error)
	WasteTypesByCategory(ctx context.Context, categoryID int64) ([]WasteType, error)
	ReplaceWasteTypes(ctx context.Context, types []WasteType) error
	UpsertWasteTypes(ctx context.Context, types []WasteType) error
}

// Gateway is the subset of the backend client the sync engine consumes.
type Gateway interface {
	Categories(ctx context.Context) ([]gateway.CategoryResponse, error)
	WasteTypes(ctx context.Context) ([]gateway.WasteTypeResponse, error)
	WasteTypesByCategory(ctx context.Context, categoryID int64) ([]gateway.WasteTypeResponse, error)
}

// CacheReadError is the only hard failure the sync engine surfaces: the
// remote fetch already failed and the local cache could not be read either.
type CacheReadError struct {
	Op  string
	Err error
}

func (e *CacheReadError) Error() string {
	return fmt.Sprintf("catalog cache read failed (%s): %v", e.Op, e.Err)
}

func (e *CacheReadError) Unwrap() error { return e.Err }
