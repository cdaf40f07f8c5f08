package usecase

import (
	"context"

	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/services"
)

type Item struct {
	items *services.ItemService
}

func NewItem(dbCtx *database.Context) *Item {
	return &Item{items: services.NewItemService(dbCtx)}
}

// Add registers a new item in a domain.
func (u *Item) Add(ctx context.Context, domain, label string) (int64, error) {
	return u.items.Add(ctx, domain, label)
}

// List returns a domain's items, optionally including archived ones.
func (u *Item) List(ctx context.Context, domain string, includeArchived bool) ([]database.ItemRecord, error) {
	return u.items.List(ctx, domain, includeArchived)
}

// Archive soft-deletes an item so future catalogs no longer include it.
func (u *Item) Archive(ctx context.Context, domain, label string) (bool, error) {
	return u.items.Archive(ctx, domain, label)
}
