package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raseedhq/raseed/internal/database"
	"github.com/raseedhq/raseed/internal/receipt"
)

const schema = `
CREATE TABLE IF NOT EXISTS receipts (
	id TEXT PRIMARY KEY,
	user_sub TEXT NOT NULL,
	type_of_purchase TEXT NOT NULL,
	establishment_name TEXT NOT NULL,
	date TEXT NOT NULL DEFAULT '',
	total TEXT NOT NULL DEFAULT '0',
	in_wallet INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_receipts_user ON receipts (user_sub, created_at DESC);

CREATE TABLE IF NOT EXISTS receipt_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	receipt_id TEXT NOT NULL REFERENCES receipts (id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	price TEXT NOT NULL DEFAULT '0',
	quantity INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_receipt_items_receipt ON receipt_items (receipt_id);
`

const selectReceiptColumns = `id, type_of_purchase, establishment_name, date, total, in_wallet, created_at`

// Store persists receipts in a local sqlite database, one document per
// receipt with its items in a child table.
type Store struct {
	db *sql.DB
}

// Open opens the receipt database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize receipt schema: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an already opened database. Used by tests.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize receipt schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateReceipt inserts the receipt and its items in one transaction,
// assigning the id and creation time on the way in.
func (s *Store) CreateReceipt(ctx context.Context, userSub string, r *receipt.Receipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	r.ID = uuid.NewString()
	r.CreatedAt = now.Format(time.RFC3339)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO receipts (id, user_sub, type_of_purchase, establishment_name, date, total, in_wallet, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		r.ID, userSub, string(r.Type), r.EstablishmentName, r.Date, r.Total.String(), now.UnixNano(),
	); err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	for _, it := range r.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO receipt_items (receipt_id, name, price, quantity)
			VALUES (?, ?, ?, ?)`,
			r.ID, it.Name, it.Price.String(), int(it.Quantity),
		); err != nil {
			return fmt.Errorf("failed to insert receipt item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit receipt: %w", err)
	}

	return nil
}

// ListReceipts returns the user's receipts, newest first, items
// included.
func (s *Store) ListReceipts(ctx context.Context, userSub string) ([]receipt.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectReceiptColumns+`
		FROM receipts
		WHERE user_sub = ?
		ORDER BY created_at DESC`,
		userSub,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	receipts := []receipt.Receipt{}
	index := map[string]int{}

	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}

		index[r.ID] = len(receipts)
		receipts = append(receipts, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read receipts: %w", err)
	}

	items, err := s.db.QueryContext(ctx, `
		SELECT receipt_id, name, price, quantity
		FROM receipt_items
		WHERE receipt_id IN (SELECT id FROM receipts WHERE user_sub = ?)
		ORDER BY id`,
		userSub,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt items: %w", err)
	}
	defer items.Close()

	for items.Next() {
		var (
			receiptID string
			item      receipt.LineItem
			price     string
			quantity  int
		)

		if err := items.Scan(&receiptID, &item.Name, &price, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan receipt item: %w", err)
		}

		item.Price = receipt.AmountFromString(price)
		item.Quantity = receipt.Quantity(quantity)

		if i, ok := index[receiptID]; ok {
			receipts[i].Items = append(receipts[i].Items, item)
		}
	}

	if err := items.Err(); err != nil {
		return nil, fmt.Errorf("failed to read receipt items: %w", err)
	}

	return receipts, nil
}

// GetReceipt returns one receipt with its items, or
// receipt.ErrNotFound.
func (s *Store) GetReceipt(ctx context.Context, userSub, id string) (*receipt.Receipt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+selectReceiptColumns+`
		FROM receipts
		WHERE user_sub = ? AND id = ?`,
		userSub, id,
	)

	r, err := scanReceipt(row)
	if err != nil {
		return nil, err
	}

	items, err := s.db.QueryContext(ctx, `
		SELECT name, price, quantity
		FROM receipt_items
		WHERE receipt_id = ?
		ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt items: %w", err)
	}
	defer items.Close()

	for items.Next() {
		var (
			item     receipt.LineItem
			price    string
			quantity int
		)

		if err := items.Scan(&item.Name, &price, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan receipt item: %w", err)
		}

		item.Price = receipt.AmountFromString(price)
		item.Quantity = receipt.Quantity(quantity)
		r.Items = append(r.Items, item)
	}

	if err := items.Err(); err != nil {
		return nil, fmt.Errorf("failed to read receipt items: %w", err)
	}

	return r, nil
}

// MarkInWallet flips the receipt's wallet flag. Linking twice is
// allowed and changes nothing.
func (s *Store) MarkInWallet(ctx context.Context, userSub, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE receipts
		SET in_wallet = 1
		WHERE user_sub = ? AND id = ?`,
		userSub, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark receipt in wallet: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check wallet update: %w", err)
	}

	if affected == 0 {
		return receipt.ErrNotFound
	}

	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanReceipt.
type scanner interface {
	Scan(dest ...any) error
}

func scanReceipt(sc scanner) (*receipt.Receipt, error) {
	var (
		r         receipt.Receipt
		purchase  string
		total     string
		inWallet  int
		createdAt int64
	)

	err := sc.Scan(&r.ID, &purchase, &r.EstablishmentName, &r.Date, &total, &inWallet, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, receipt.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan receipt: %w", err)
	}

	r.Type = receipt.PurchaseType(purchase)
	r.Total = receipt.AmountFromString(total)
	r.InWallet = inWallet != 0
	r.CreatedAt = time.Unix(0, createdAt).UTC().Format(time.RFC3339)
	r.Items = []receipt.LineItem{}

	return &r, nil
}
