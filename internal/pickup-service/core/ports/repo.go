package ports

import (
	"context"
	"time"

	"waste-collect/internal/pickup-service/core/domain/model"
)

// IPickupRepo is the persistence substrate for pickup requests. All
// transition methods are compare-and-swap: they mutate only when the stored
// row still satisfies the guard and report myerrors.ErrStateConflict when it
// does not. Exactly one writer can win any given transition.
type IPickupRepo interface {
	Create(ctx context.Context, p model.Pickup) (model.Pickup, error)
	GetByID(ctx context.Context, pickupID string) (model.Pickup, error)
	CountForDay(ctx context.Context, day time.Time) (int64, error)
	ListOfferable(ctx context.Context) ([]model.Pickup, error)

	// Accept moves SCHEDULED -> ASSIGNED and assigns the driver, guarded on
	// (status = SCHEDULED, driver unset) in a single atomic step.
	Accept(ctx context.Context, pickupID, driverID string) (model.Pickup, error)

	// Advance moves from -> to, guarded on the current status still being
	// exactly `from` and the driver still owning the pickup.
	Advance(ctx context.Context, pickupID, driverID string, from, to model.Status) (model.Pickup, error)

	// Cancel moves any non-terminal status to CANCELLED and clears the
	// driver.
	Cancel(ctx context.Context, pickupID, reason string) (model.Pickup, error)

	// Release puts an assigned, not-yet-completed pickup back into the
	// offerable pool: status returns to SCHEDULED and the driver is
	// cleared, so a different driver can accept the same pickup.
	Release(ctx context.Context, pickupID, driverID, reason string) (model.Pickup, error)

	// Settle completes the pickup and applies every settlement side effect
	// (ledger credit, balance bump, driver daily totals) in one atomic step.
	// Guarded on a completable status and the acting driver; a second call
	// for the same pickup always fails.
	Settle(ctx context.Context, params model.SettleParams) (model.Pickup, error)
}

// IRatesRepo reads the waste rate reference table.
type IRatesRepo interface {
	ActiveRates(ctx context.Context) (map[string]model.WasteRate, error)
}
