package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waste-collect/internal/pickup-service/core/domain/model"
	"waste-collect/internal/pickup-service/core/myerrors"
	"waste-collect/internal/pickup-service/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PickupsRepo struct {
	db *DB
}

func NewPickupsRepo(db *DB) ports.IPickupRepo {
	return &PickupsRepo{db: db}
}

const pickupColumns = `
	pickup_id,
	pickup_number,
	requester_id,
	address,
	scheduled_at,
	categories,
	estimated_weight_kg,
	status,
	driver_id,
	actual_weight_kg,
	points_earned,
	commission_amount,
	cancellation_reason,
	created_at,
	completed_at`

// insertEarnedEntry writes into the ledger_entries table owned by the rewards
// service; the column names follow its schema, not this package's.
const insertEarnedEntry = `
	INSERT INTO ledger_entries(entry_id, user_id, entry_type, amount, reference, created_at)
	VALUES ($1, $2, 'EARNED', $3, $4, NOW())`

func (pr *PickupsRepo) Create(ctx context.Context, p model.Pickup) (model.Pickup, error) {
	q := `
	INSERT INTO pickups(
		pickup_number,
		requester_id,
		address,
		scheduled_at,
		categories,
		estimated_weight_kg,
		status
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + pickupColumns

	row := pr.db.conn.QueryRow(ctx, q,
		p.PickupNumber,
		p.RequesterID,
		p.Address,
		p.ScheduledAt,
		p.Categories,
		p.EstimatedWeightKg,
		p.Status,
	)
	return scanPickup(row)
}

func (pr *PickupsRepo) GetByID(ctx context.Context, pickupID string) (model.Pickup, error) {
	q := `SELECT ` + pickupColumns + ` FROM pickups WHERE pickup_id = $1`

	p, err := scanPickup(pr.db.conn.QueryRow(ctx, q, pickupID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Pickup{}, myerrors.ErrNotFound
	}
	return p, err
}

func (pr *PickupsRepo) CountForDay(ctx context.Context, day time.Time) (int64, error) {
	q := `SELECT COUNT(*) FROM pickups WHERE created_at::date = $1::date`

	var count int64
	if err := pr.db.conn.QueryRow(ctx, q, day).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (pr *PickupsRepo) ListOfferable(ctx context.Context) ([]model.Pickup, error) {
	q := `
	SELECT ` + pickupColumns + `
	FROM pickups
	WHERE status = 'SCHEDULED' AND driver_id IS NULL
	ORDER BY scheduled_at`

	rows, err := pr.db.conn.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pickups []model.Pickup
	for rows.Next() {
		p, err := scanPickup(rows)
		if err != nil {
			return nil, err
		}
		pickups = append(pickups, p)
	}
	return pickups, rows.Err()
}

// Accept is the compare-and-swap on (status, driver_id): the row mutates only
// if it is still SCHEDULED and unassigned, so exactly one of two concurrent
// drivers wins.
func (pr *PickupsRepo) Accept(ctx context.Context, pickupID, driverID string) (model.Pickup, error) {
	q := `
	UPDATE pickups
	SET status = 'ASSIGNED', driver_id = $1
	WHERE pickup_id = $2 AND status = 'SCHEDULED' AND driver_id IS NULL
	RETURNING ` + pickupColumns

	p, err := scanPickup(pr.db.conn.QueryRow(ctx, q, driverID, pickupID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Pickup{}, pr.conflictOrNotFound(ctx, pickupID, "accept")
	}
	return p, err
}

func (pr *PickupsRepo) Advance(ctx context.Context, pickupID, driverID string, from, to model.Status) (model.Pickup, error) {
	q := `
	UPDATE pickups
	SET status = $1
	WHERE pickup_id = $2 AND status = $3 AND driver_id = $4
	RETURNING ` + pickupColumns

	p, err := scanPickup(pr.db.conn.QueryRow(ctx, q, to, pickupID, from, driverID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Pickup{}, pr.conflictOrNotFound(ctx, pickupID, "advance")
	}
	return p, err
}

// Cancel clears the driver so the pickup re-enters the offerable pool.
func (pr *PickupsRepo) Cancel(ctx context.Context, pickupID, reason string) (model.Pickup, error) {
	q := `
	UPDATE pickups
	SET status = 'CANCELLED', driver_id = NULL, cancellation_reason = $1
	WHERE pickup_id = $2 AND status NOT IN ('COMPLETED', 'CANCELLED')
	RETURNING ` + pickupColumns

	p, err := scanPickup(pr.db.conn.QueryRow(ctx, q, reason, pickupID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Pickup{}, pr.conflictOrNotFound(ctx, pickupID, "cancel")
	}
	return p, err
}

// Release returns an assigned pickup to the offerable pool. Guarded on the
// driver still owning the pickup and the status being pre-completion.
func (pr *PickupsRepo) Release(ctx context.Context, pickupID, driverID, reason string) (model.Pickup, error) {
	q := `
	UPDATE pickups
	SET status = 'SCHEDULED', driver_id = NULL, cancellation_reason = $1
	WHERE pickup_id = $2
		AND driver_id = $3
		AND status IN ('ASSIGNED', 'EN_ROUTE', 'ARRIVED', 'COLLECTING')
	RETURNING ` + pickupColumns

	p, err := scanPickup(pr.db.conn.QueryRow(ctx, q, reason, pickupID, driverID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Pickup{}, pr.conflictOrNotFound(ctx, pickupID, "release")
	}
	return p, err
}

// Settle completes the pickup and applies every settlement side effect in a
// single transaction. The guarded UPDATE makes completion exactly-once: a
// second settle attempt matches no row and the transaction never starts
// writing ledger or performance rows.
func (pr *PickupsRepo) Settle(ctx context.Context, params model.SettleParams) (model.Pickup, error) {
	tx, err := pr.db.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Pickup{}, err
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	q := `
	UPDATE pickups
	SET status = 'COMPLETED',
		actual_weight_kg = $1,
		points_earned = $2,
		commission_amount = $3,
		completed_at = $4
	WHERE pickup_id = $5
		AND driver_id = $6
		AND status IN ('ASSIGNED', 'EN_ROUTE', 'ARRIVED', 'COLLECTING')
	RETURNING ` + pickupColumns

	p, err := scanPickup(tx.QueryRow(ctx, q,
		params.ActualWeightKg,
		params.PointsEarned,
		params.CommissionAmount,
		params.CompletedAt,
		params.PickupID,
		params.DriverID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Pickup{}, pr.conflictOrNotFound(ctx, params.PickupID, "settle")
	}
	if err != nil {
		return model.Pickup{}, err
	}

	if _, err := tx.Exec(ctx, insertEarnedEntry, uuid.NewString(), params.RequesterID, params.PointsEarned, params.PickupID); err != nil {
		return model.Pickup{}, err
	}

	q = `
	INSERT INTO balances(user_id, balance)
	VALUES ($1, $2)
	ON CONFLICT (user_id) DO UPDATE
	SET balance = balances.balance + EXCLUDED.balance`
	if _, err := tx.Exec(ctx, q, params.RequesterID, params.PointsEarned); err != nil {
		return model.Pickup{}, err
	}

	q = `
	INSERT INTO driver_daily_performance(driver_id, day, pickups_completed, total_weight_kg, commission_earned)
	VALUES ($1, $2::date, 1, $3, $4)
	ON CONFLICT (driver_id, day) DO UPDATE
	SET pickups_completed = driver_daily_performance.pickups_completed + 1,
		total_weight_kg = driver_daily_performance.total_weight_kg + EXCLUDED.total_weight_kg,
		commission_earned = driver_daily_performance.commission_earned + EXCLUDED.commission_earned`
	if _, err := tx.Exec(ctx, q, params.DriverID, params.CompletedAt, params.ActualWeightKg, params.CommissionAmount); err != nil {
		return model.Pickup{}, err
	}

	return p, tx.Commit(ctx)
}

// conflictOrNotFound disambiguates a missed guarded UPDATE: the row either
// does not exist or is in a state the guard rejected.
func (pr *PickupsRepo) conflictOrNotFound(ctx context.Context, pickupID, op string) error {
	var status string
	err := pr.db.conn.QueryRow(ctx, `SELECT status FROM pickups WHERE pickup_id = $1`, pickupID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return myerrors.ErrNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s rejected, pickup is %s", myerrors.ErrStateConflict, op, status)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPickup(row rowScanner) (model.Pickup, error) {
	var (
		p                  model.Pickup
		driverID           *string
		actualWeight       *float64
		pointsEarned       *int64
		commissionAmount   *float64
		cancellationReason *string
		completedAt        *time.Time
	)

	err := row.Scan(
		&p.ID,
		&p.PickupNumber,
		&p.RequesterID,
		&p.Address,
		&p.ScheduledAt,
		&p.Categories,
		&p.EstimatedWeightKg,
		&p.Status,
		&driverID,
		&actualWeight,
		&pointsEarned,
		&commissionAmount,
		&cancellationReason,
		&p.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return model.Pickup{}, err
	}

	if driverID != nil {
		p.DriverID = *driverID
	}
	if actualWeight != nil {
		p.ActualWeightKg = *actualWeight
	}
	if pointsEarned != nil {
		p.PointsEarned = *pointsEarned
	}
	if commissionAmount != nil {
		p.CommissionAmount = *commissionAmount
	}
	if cancellationReason != nil {
		p.CancellationReason = *cancellationReason
	}
	if completedAt != nil {
		p.CompletedAt = *completedAt
	}
	return p, nil
}
