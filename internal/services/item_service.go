// Package services exposes the transactional operations over the store: item
// lifecycle, table definition and upload, and the commit workflow.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grid-vault/gridvault/internal/database"
)

// ErrNotFound is returned when a requested table or item is not found.
var ErrNotFound = errors.New("not found")

// ItemService manages the item catalogs backing the tables' index domains.
type ItemService struct {
	ctx      *database.Context
	items    *database.ItemRepository
	versions *database.VersionRepository
}

// NewItemService creates a new ItemService.
func NewItemService(ctx *database.Context) *ItemService {
	return &ItemService{
		ctx:      ctx,
		items:    database.NewItemRepository(ctx),
		versions: database.NewVersionRepository(ctx),
	}
}

// Add creates an item that is current immediately: the item flow has no
// proposed stage, so version_first is set on creation to the latest version
// id recorded so far (0 before the first commit).
func (s *ItemService) Add(ctx context.Context, domain, label string) (int64, error) {
	if domain == "" || label == "" {
		return 0, fmt.Errorf("item service: domain and label must not be empty")
	}
	// Labels become tokens of literal key strings, so the key syntax
	// characters are off limits.
	if strings.ContainsAny(label, "(),") {
		return 0, fmt.Errorf("item service: label %q must not contain '(', ')' or ','", label)
	}

	latest, err := s.versions.MaxID(ctx)
	if err != nil {
		return 0, err
	}
	return s.items.Create(ctx, domain, label, latest)
}

// List returns the items of a domain; archived ones only when asked for.
func (s *ItemService) List(ctx context.Context, domain string, includeArchived bool) ([]database.ItemRecord, error) {
	records, err := s.items.ListByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	if includeArchived {
		return records, nil
	}

	result := make([]database.ItemRecord, 0, len(records))
	for _, record := range records {
		if record.VersionLast == nil {
			result = append(result, record)
		}
	}
	return result, nil
}

// Archive soft-deletes an item by setting its version_last marker, removing
// it from subsequently built catalogs. Returns false when the item does not
// exist or is already archived.
func (s *ItemService) Archive(ctx context.Context, domain, label string) (bool, error) {
	item, err := s.items.FindByDomainAndLabel(ctx, domain, label)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}

	latest, err := s.versions.MaxID(ctx)
	if err != nil {
		return false, err
	}
	return s.items.Archive(ctx, item.ID, latest+1)
}
