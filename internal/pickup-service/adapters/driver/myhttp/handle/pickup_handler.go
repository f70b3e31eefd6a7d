package handle

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"waste-collect/internal/identity"
	"waste-collect/internal/mylogger"
	"waste-collect/internal/pickup-service/core/domain/dto"
	"waste-collect/internal/pickup-service/core/domain/model"
	"waste-collect/internal/pickup-service/core/ports"

	"github.com/go-chi/chi/v5"
)

type PickupHandler struct {
	pickupService ports.IPickupService
	log           mylogger.Logger
}

func NewPickupHandler(ps ports.IPickupService, log mylogger.Logger) *PickupHandler {
	return &PickupHandler{
		pickupService: ps,
		log:           log,
	}
}

func (ph *PickupHandler) RequestPickup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.PickupRequestDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		p, err := ph.pickupService.RequestPickup(r.Context(), ident, req)
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusCreated, toResponse(p))
	}
}

func (ph *PickupHandler) AcceptPickup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		p, err := ph.pickupService.AcceptPickup(r.Context(), ident, chi.URLParam(r, "pickup_id"))
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusOK, toResponse(p))
	}
}

func (ph *PickupHandler) AdvanceStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.AdvanceStatusDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}
		if req.Status == nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("status is required"))
			return
		}

		p, err := ph.pickupService.AdvanceStatus(r.Context(), ident, chi.URLParam(r, "pickup_id"), model.Status(*req.Status))
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusOK, toResponse(p))
	}
}

func (ph *PickupHandler) CompletePickup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.CompletePickupDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}
		var weight float64
		if req.ActualWeightKg != nil {
			weight = *req.ActualWeightKg
		}

		pickupID := chi.URLParam(r, "pickup_id")
		settlement, err := ph.pickupService.CompletePickup(r.Context(), ident, pickupID, weight)
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.CompletePickupResponseDto{
			PickupID:         settlement.PickupID,
			Status:           string(model.StatusCompleted),
			ActualWeightKg:   settlement.ActualWeightKg,
			PointsEarned:     settlement.PointsEarned,
			CommissionAmount: settlement.CommissionAmount,
			CompletedAt:      settlement.CompletedAt.Format(time.RFC3339),
		})
	}
}

func (ph *PickupHandler) CancelPickup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.CancelPickupDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		p, err := ph.pickupService.CancelPickup(r.Context(), ident, chi.URLParam(r, "pickup_id"), req.Reason)
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusOK, toResponse(p))
	}
}

func (ph *PickupHandler) GetPickup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := ph.pickupService.GetPickup(r.Context(), chi.URLParam(r, "pickup_id"))
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}
		jsonResponse(w, http.StatusOK, toResponse(p))
	}
}

func (ph *PickupHandler) ListOfferable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickups, err := ph.pickupService.ListOfferable(r.Context())
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		out := make([]dto.PickupResponseDto, 0, len(pickups))
		for _, p := range pickups {
			out = append(out, toResponse(p))
		}
		jsonResponse(w, http.StatusOK, out)
	}
}

func toResponse(p model.Pickup) dto.PickupResponseDto {
	out := dto.PickupResponseDto{
		PickupID:           p.ID,
		PickupNumber:       p.PickupNumber,
		RequesterID:        p.RequesterID,
		Address:            p.Address,
		ScheduledAt:        p.ScheduledAt,
		Categories:         p.Categories,
		EstimatedWeightKg:  p.EstimatedWeightKg,
		Status:             string(p.Status),
		DriverID:           p.DriverID,
		ActualWeightKg:     p.ActualWeightKg,
		PointsEarned:       p.PointsEarned,
		CommissionAmount:   p.CommissionAmount,
		CancellationReason: p.CancellationReason,
		CreatedAt:          p.CreatedAt,
	}
	if !p.CompletedAt.IsZero() {
		completedAt := p.CompletedAt
		out.CompletedAt = &completedAt
	}
	return out
}
