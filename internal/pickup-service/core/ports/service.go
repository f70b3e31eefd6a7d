package ports

import (
	"context"

	"waste-collect/internal/identity"
	"waste-collect/internal/pickup-service/core/domain/dto"
	"waste-collect/internal/pickup-service/core/domain/model"
)

// IPickupService is the pickup lifecycle core. Every operation takes the
// acting identity explicitly.
type IPickupService interface {
	RequestPickup(ctx context.Context, ident identity.Identity, req dto.PickupRequestDto) (model.Pickup, error)
	AcceptPickup(ctx context.Context, ident identity.Identity, pickupID string) (model.Pickup, error)
	AdvanceStatus(ctx context.Context, ident identity.Identity, pickupID string, next model.Status) (model.Pickup, error)
	CompletePickup(ctx context.Context, ident identity.Identity, pickupID string, actualWeightKg float64) (model.Settlement, error)
	CancelPickup(ctx context.Context, ident identity.Identity, pickupID, reason string) (model.Pickup, error)
	GetPickup(ctx context.Context, pickupID string) (model.Pickup, error)
	ListOfferable(ctx context.Context) ([]model.Pickup, error)
}
