// Package storage persists tracked items and their occurrence history in a
// local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"bindo/internal/core"
	"bindo/internal/recur"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("storage: item not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// occurrence rows must go with their item
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveItem writes the item and replaces its entire occurrence set in one
// transaction. Occurrence sets are small enough that full replacement is
// simpler and safer than diffing.
func (r *SQLiteRepository) SaveItem(ctx context.Context, item *core.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ruleEvery sql.NullInt64
	var ruleUnit sql.NullString
	if item.Rule != nil {
		ruleEvery = sql.NullInt64{Int64: int64(item.Rule.Every), Valid: true}
		ruleUnit = sql.NullString{String: string(item.Rule.Unit), Valid: true}
	}

	var endAt sql.NullString
	if item.EndAt != nil {
		endAt = sql.NullString{String: fmtTime(*item.EndAt), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO items (id, name, base_amount_cents, shared_amount, start_date, end_at, rule_every, rule_unit, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			base_amount_cents = excluded.base_amount_cents,
			shared_amount = excluded.shared_amount,
			start_date = excluded.start_date,
			end_at = excluded.end_at,
			rule_every = excluded.rule_every,
			rule_unit = excluded.rule_unit,
			updated_at = excluded.updated_at`,
		item.ID.String(), item.Name, item.BaseAmount.Cents, boolToInt(item.SharedAmount),
		fmtTime(item.StartDate), endAt, ruleEvery, ruleUnit,
		fmtTime(item.CreatedAt), fmtTime(item.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM occurrences WHERE item_id = ?`, item.ID.String()); err != nil {
		return fmt.Errorf("clear occurrences: %w", err)
	}

	for _, occ := range item.Occurrences {
		if err := insertOccurrence(ctx, tx, occ); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit item save: %w", err)
	}

	slog.InfoContext(ctx, "Item saved",
		"id", item.ID,
		"name", item.Name,
		"mode", item.Mode(),
		"occurrences", len(item.Occurrences))

	return nil
}

// AppendOccurrence inserts a single occurrence row without touching the rest
// of the item's history. Used by the materializer.
func (r *SQLiteRepository) AppendOccurrence(ctx context.Context, occ core.Occurrence) error {
	if err := insertOccurrence(ctx, r.db, occ); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Occurrence appended",
		"item_id", occ.ItemID,
		"pay_day", occ.EndDate.Format("2006-01-02"),
		"amount_cents", occ.Amount.Cents)

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertOccurrence(ctx context.Context, db execer, occ core.Occurrence) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO occurrences (id, item_id, start_date, end_date, amount_cents)
		VALUES (?, ?, ?, ?, ?)`,
		occ.ID.String(), occ.ItemID.String(), fmtTime(occ.StartDate), fmtTime(occ.EndDate), occ.Amount.Cents)
	if err != nil {
		return fmt.Errorf("insert occurrence: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetItem(ctx context.Context, id uuid.UUID) (*core.Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, base_amount_cents, shared_amount, start_date, end_at, rule_every, rule_unit, created_at, updated_at
		FROM items WHERE id = ?`, id.String())

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	occs, err := r.itemOccurrences(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	item.Occurrences = occs

	return item, nil
}

func (r *SQLiteRepository) ListItems(ctx context.Context) ([]core.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, base_amount_cents, shared_amount, start_date, end_at, rule_every, rule_unit, created_at, updated_at
		FROM items ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []core.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	for i := range items {
		occs, err := r.itemOccurrences(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Occurrences = occs
	}

	return items, nil
}

func (r *SQLiteRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Item deleted", "id", id)
	return nil
}

// NearestOccurrenceOnOrAfter returns the stored occurrence with the earliest
// pay day at or after ref, or nil when none exists.
func (r *SQLiteRepository) NearestOccurrenceOnOrAfter(ctx context.Context, itemID uuid.UUID, ref time.Time) (*core.Occurrence, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, item_id, start_date, end_date, amount_cents
		FROM occurrences WHERE item_id = ? AND end_date >= ?
		ORDER BY end_date ASC LIMIT 1`, itemID.String(), fmtTime(ref))
	return scanOptionalOccurrence(row)
}

// NearestOccurrenceOnOrBefore returns the stored occurrence with the latest
// pay day at or before ref, or nil when none exists.
func (r *SQLiteRepository) NearestOccurrenceOnOrBefore(ctx context.Context, itemID uuid.UUID, ref time.Time) (*core.Occurrence, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, item_id, start_date, end_date, amount_cents
		FROM occurrences WHERE item_id = ? AND end_date <= ?
		ORDER BY end_date DESC LIMIT 1`, itemID.String(), fmtTime(ref))
	return scanOptionalOccurrence(row)
}

// LatestOccurrence returns the stored occurrence with the most recent pay
// day, or nil when the item has no history.
func (r *SQLiteRepository) LatestOccurrence(ctx context.Context, itemID uuid.UUID) (*core.Occurrence, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, item_id, start_date, end_date, amount_cents
		FROM occurrences WHERE item_id = ?
		ORDER BY end_date DESC LIMIT 1`, itemID.String())
	return scanOptionalOccurrence(row)
}

// OccurrencesInRange returns stored occurrences with pay days inside the
// half-open window [from, to), ordered by pay day.
func (r *SQLiteRepository) OccurrencesInRange(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]core.Occurrence, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, item_id, start_date, end_date, amount_cents
		FROM occurrences WHERE item_id = ? AND end_date >= ? AND end_date < ?
		ORDER BY end_date ASC`, itemID.String(), fmtTime(from), fmtTime(to))
	if err != nil {
		return nil, fmt.Errorf("occurrences in range: %w", err)
	}
	defer rows.Close()

	var occs []core.Occurrence
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		occs = append(occs, occ)
	}
	return occs, rows.Err()
}

func (r *SQLiteRepository) itemOccurrences(ctx context.Context, itemID uuid.UUID) ([]core.Occurrence, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, item_id, start_date, end_date, amount_cents
		FROM occurrences WHERE item_id = ?
		ORDER BY end_date ASC`, itemID.String())
	if err != nil {
		return nil, fmt.Errorf("item occurrences: %w", err)
	}
	defer rows.Close()

	var occs []core.Occurrence
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		occs = append(occs, occ)
	}
	return occs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*core.Item, error) {
	var (
		idStr, name            string
		baseCents              int64
		shared                 int64
		startStr               string
		endAt                  sql.NullString
		ruleEvery              sql.NullInt64
		ruleUnit               sql.NullString
		createdStr, updatedStr string
	)

	if err := row.Scan(&idStr, &name, &baseCents, &shared, &startStr, &endAt, &ruleEvery, &ruleUnit, &createdStr, &updatedStr); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse item id %q: %w", idStr, err)
	}

	item := &core.Item{
		ID:           id,
		Name:         name,
		BaseAmount:   core.Money{Cents: baseCents},
		SharedAmount: shared != 0,
	}

	if item.StartDate, err = parseTime(startStr); err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	if item.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, fmt.Errorf("parse created at: %w", err)
	}
	if item.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return nil, fmt.Errorf("parse updated at: %w", err)
	}

	if endAt.Valid {
		end, err := parseTime(endAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse end date: %w", err)
		}
		item.EndAt = &end
	}

	if ruleEvery.Valid && ruleUnit.Valid {
		item.Rule = &recur.Rule{Every: int(ruleEvery.Int64), Unit: recur.Unit(ruleUnit.String)}
	}

	return item, nil
}

func scanOccurrence(row rowScanner) (core.Occurrence, error) {
	var (
		idStr, itemStr   string
		startStr, endStr string
		amountCents      int64
	)

	if err := row.Scan(&idStr, &itemStr, &startStr, &endStr, &amountCents); err != nil {
		return core.Occurrence{}, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return core.Occurrence{}, fmt.Errorf("parse occurrence id %q: %w", idStr, err)
	}
	itemID, err := uuid.Parse(itemStr)
	if err != nil {
		return core.Occurrence{}, fmt.Errorf("parse occurrence item id %q: %w", itemStr, err)
	}

	occ := core.Occurrence{ID: id, ItemID: itemID, Amount: core.Money{Cents: amountCents}}
	if occ.StartDate, err = parseTime(startStr); err != nil {
		return core.Occurrence{}, fmt.Errorf("parse occurrence start date: %w", err)
	}
	if occ.EndDate, err = parseTime(endStr); err != nil {
		return core.Occurrence{}, fmt.Errorf("parse occurrence end date: %w", err)
	}
	return occ, nil
}

func scanOptionalOccurrence(row *sql.Row) (*core.Occurrence, error) {
	occ, err := scanOccurrence(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("nearest occurrence: %w", err)
	}
	return &occ, nil
}

// Timestamps are stored as RFC 3339 UTC strings so lexicographic ordering in
// SQL matches chronological ordering.
func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
