package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqldb "github.com/grid-vault/gridvault/internal/database/sqlc"
	"github.com/grid-vault/gridvault/internal/tabular"
)

type ItemRepository struct {
	ctx *Context
}

func NewItemRepository(dbCtx *Context) *ItemRepository {
	return &ItemRepository{ctx: dbCtx}
}

// CurrentItems returns the currently valid items of a domain in insertion
// order. It satisfies catalog.ItemSource.
func (r *ItemRepository) CurrentItems(ctx context.Context, domain string) ([]tabular.Item, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("item repository: missing database context")
	}

	rows, err := queries.ListCurrentItemsByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}

	items := make([]tabular.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, tabular.Item{ID: row.ID, Label: row.Label})
	}
	return items, nil
}

// ListByDomain returns every item of a domain, archived ones included.
func (r *ItemRepository) ListByDomain(ctx context.Context, domain string) ([]ItemRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("item repository: missing database context")
	}

	rows, err := queries.ListItemsByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}

	result := make([]ItemRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapItemRow(row))
	}
	return result, nil
}

func (r *ItemRepository) FindByID(ctx context.Context, id int64) (*ItemRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("item repository: missing database context")
	}

	row, err := queries.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := mapItemRow(row)
	return &record, nil
}

func (r *ItemRepository) FindByDomainAndLabel(ctx context.Context, domain, label string) (*ItemRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("item repository: missing database context")
	}

	row, err := queries.FindItemByDomainAndLabel(ctx, sqldb.FindItemByDomainAndLabelParams{Domain: domain, Label: label})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := mapItemRow(row)
	return &record, nil
}

// Create inserts an item that is current from the given version id onwards.
func (r *ItemRepository) Create(ctx context.Context, domain, label string, versionFirst int64) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("item repository: missing database context")
	}

	res, err := queries.InsertItem(ctx, sqldb.InsertItemParams{
		Domain:       domain,
		Label:        label,
		VersionFirst: nullInt64(versionFirst),
	})
	if err != nil {
		return 0, wrapWriteError(err, "item", domain+"/"+label)
	}
	return res.LastInsertId()
}

// Archive sets the item's version_last marker and reports whether anything
// changed. An already archived item is left untouched.
func (r *ItemRepository) Archive(ctx context.Context, id, versionLast int64) (bool, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return false, fmt.Errorf("item repository: missing database context")
	}

	affected, err := queries.UpdateItemArchived(ctx, sqldb.UpdateItemArchivedParams{
		VersionLast: nullInt64(versionLast),
		ID:          id,
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func mapItemRow(row sqldb.Item) ItemRecord {
	return ItemRecord{
		ID:           row.ID,
		Domain:       row.Domain,
		Label:        row.Label,
		VersionFirst: int64Ptr(row.VersionFirst),
		VersionLast:  int64Ptr(row.VersionLast),
		CreatedAt:    optionalTime(row.CreatedAt),
	}
}
