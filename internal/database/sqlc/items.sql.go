package sqldb

import (
	"context"
	"database/sql"
)

// Item mirrors a row of the items table.
type Item struct {
	ID           int64
	Domain       string
	Label        string
	VersionFirst sql.NullInt64
	VersionLast  sql.NullInt64
	CreatedAt    sql.NullTime
}

const insertItem = `
INSERT INTO items (domain, label, version_first)
VALUES (?, ?, ?)
`

type InsertItemParams struct {
	Domain       string
	Label        string
	VersionFirst sql.NullInt64
}

func (q *Queries) InsertItem(ctx context.Context, arg InsertItemParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertItem, arg.Domain, arg.Label, arg.VersionFirst)
}

const findItemByID = `
SELECT id, domain, label, version_first, version_last, created_at
FROM items
WHERE id = ?
`

func (q *Queries) FindItemByID(ctx context.Context, id int64) (Item, error) {
	row := q.db.QueryRowContext(ctx, findItemByID, id)
	var item Item
	err := row.Scan(&item.ID, &item.Domain, &item.Label, &item.VersionFirst, &item.VersionLast, &item.CreatedAt)
	return item, err
}

const findItemByDomainAndLabel = `
SELECT id, domain, label, version_first, version_last, created_at
FROM items
WHERE domain = ? AND label = ?
`

type FindItemByDomainAndLabelParams struct {
	Domain string
	Label  string
}

func (q *Queries) FindItemByDomainAndLabel(ctx context.Context, arg FindItemByDomainAndLabelParams) (Item, error) {
	row := q.db.QueryRowContext(ctx, findItemByDomainAndLabel, arg.Domain, arg.Label)
	var item Item
	err := row.Scan(&item.ID, &item.Domain, &item.Label, &item.VersionFirst, &item.VersionLast, &item.CreatedAt)
	return item, err
}

const listCurrentItemsByDomain = `
SELECT id, domain, label, version_first, version_last, created_at
FROM items
WHERE domain = ? AND version_first IS NOT NULL AND version_last IS NULL
ORDER BY id
`

func (q *Queries) ListCurrentItemsByDomain(ctx context.Context, domain string) ([]Item, error) {
	return q.listItems(ctx, listCurrentItemsByDomain, domain)
}

const listItemsByDomain = `
SELECT id, domain, label, version_first, version_last, created_at
FROM items
WHERE domain = ?
ORDER BY id
`

func (q *Queries) ListItemsByDomain(ctx context.Context, domain string) ([]Item, error) {
	return q.listItems(ctx, listItemsByDomain, domain)
}

func (q *Queries) listItems(ctx context.Context, query string, args ...any) ([]Item, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Domain, &item.Label, &item.VersionFirst, &item.VersionLast, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const updateItemArchived = `
UPDATE items
SET version_last = ?
WHERE id = ? AND version_last IS NULL
`

type UpdateItemArchivedParams struct {
	VersionLast sql.NullInt64
	ID          int64
}

func (q *Queries) UpdateItemArchived(ctx context.Context, arg UpdateItemArchivedParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateItemArchived, arg.VersionLast, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
