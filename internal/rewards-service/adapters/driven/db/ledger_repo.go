package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"waste-collect/internal/rewards-service/core/domain/model"
	"waste-collect/internal/rewards-service/core/myerrors"
)

// LedgerColumns is the column set of ledger_entries. The pickup settlement
// transaction writes the same table, so its INSERT must name these columns.
const LedgerColumns = `entry_id, user_id, entry_type, amount, reference, created_at`

type LedgerRepo struct {
	db *DB
}

func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func (lr *LedgerRepo) Credit(ctx context.Context, userID string, amount int64, reference string) (model.LedgerEntry, error) {
	conn := lr.db.GetConn()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("begin credit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	entry, err := insertEntry(ctx, tx, userID, model.EntryEarned, amount, reference)
	if err != nil {
		return model.LedgerEntry{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO balances (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = balances.balance + EXCLUDED.balance`,
		userID, amount,
	); err != nil {
		return model.LedgerEntry{}, fmt.Errorf("bump balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.LedgerEntry{}, fmt.Errorf("commit credit tx: %w", err)
	}
	return entry, nil
}

func (lr *LedgerRepo) Debit(ctx context.Context, userID string, amount int64, reference string) (model.LedgerEntry, error) {
	conn := lr.db.GetConn()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("begin debit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// The balance check and the subtraction are one statement, so two
	// concurrent debits can never both pass the check.
	tag, err := tx.Exec(ctx, `
		UPDATE balances SET balance = balance - $1
		WHERE user_id = $2 AND balance >= $1`,
		amount, userID,
	)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("debit balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.LedgerEntry{}, fmt.Errorf("%w: need %d points", myerrors.ErrInsufficientBalance, amount)
	}

	entry, err := insertEntry(ctx, tx, userID, model.EntrySpent, amount, reference)
	if err != nil {
		return model.LedgerEntry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.LedgerEntry{}, fmt.Errorf("commit debit tx: %w", err)
	}
	return entry, nil
}

func (lr *LedgerRepo) Balance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := lr.db.GetConn().QueryRow(ctx,
		`SELECT balance FROM balances WHERE user_id = $1`, userID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

func (lr *LedgerRepo) Entries(ctx context.Context, userID string) ([]model.LedgerEntry, error) {
	rows, err := lr.db.GetConn().Query(ctx, `
		SELECT `+LedgerColumns+`
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.EntryType, &e.Amount, &e.Reference, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertEntry(ctx context.Context, tx pgx.Tx, userID, entryType string, amount int64, reference string) (model.LedgerEntry, error) {
	var e model.LedgerEntry
	err := tx.QueryRow(ctx, `
		INSERT INTO ledger_entries (entry_id, user_id, entry_type, amount, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING `+LedgerColumns,
		uuid.NewString(), userID, entryType, amount, reference,
	).Scan(&e.ID, &e.UserID, &e.EntryType, &e.Amount, &e.Reference, &e.CreatedAt)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("insert %s entry: %w", entryType, err)
	}
	return e, nil
}
