package handle

import (
	"encoding/json"
	"fmt"
	"net/http"

	"waste-collect/internal/identity"
	"waste-collect/internal/mylogger"
	"waste-collect/internal/rewards-service/core/domain/dto"
	"waste-collect/internal/rewards-service/core/domain/model"
	"waste-collect/internal/rewards-service/core/ports"

	"github.com/go-chi/chi/v5"
)

type RewardsHandler struct {
	rewardsService ports.IRewardsService
	log            mylogger.Logger
}

func NewRewardsHandler(rs ports.IRewardsService, log mylogger.Logger) *RewardsHandler {
	return &RewardsHandler{
		rewardsService: rs,
		log:            log,
	}
}

func (rh *RewardsHandler) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		balance, err := rh.rewardsService.Balance(r.Context(), ident.UserID)
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.BalanceResponseDto{
			UserID:  ident.UserID,
			Balance: balance,
		})
	}
}

func (rh *RewardsHandler) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		entries, err := rh.rewardsService.Ledger(r.Context(), ident)
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		out := make([]dto.LedgerEntryDto, 0, len(entries))
		for _, e := range entries {
			out = append(out, dto.LedgerEntryDto{
				EntryID:   e.ID,
				EntryType: e.EntryType,
				Amount:    e.Amount,
				Reference: e.Reference,
				CreatedAt: e.CreatedAt,
			})
		}
		jsonResponse(w, http.StatusOK, out)
	}
}

func (rh *RewardsHandler) ListRewards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := rh.rewardsService.ListRewards(r.Context())
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		out := make([]dto.RewardItemDto, 0, len(items))
		for _, item := range items {
			out = append(out, dto.RewardItemDto{
				ItemID:      item.ID,
				Name:        item.Name,
				Description: item.Description,
				CostPoints:  item.CostPoints,
				Stock:       item.Stock,
			})
		}
		jsonResponse(w, http.StatusOK, out)
	}
}

func (rh *RewardsHandler) Redeem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		redemption, balanceAfter, err := rh.rewardsService.Redeem(r.Context(), ident, chi.URLParam(r, "item_id"))
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusCreated, toResponse(redemption, balanceAfter))
	}
}

func (rh *RewardsHandler) GetRedemption() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		redemption, err := rh.rewardsService.GetRedemption(r.Context(), ident, chi.URLParam(r, "redemption_id"))
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusOK, toResponse(redemption, 0))
	}
}

func (rh *RewardsHandler) AdvanceRedemption() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.RedemptionStatusDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}
		if req.Status == nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("status is required"))
			return
		}

		redemption, err := rh.rewardsService.AdvanceRedemption(r.Context(), ident, chi.URLParam(r, "redemption_id"), model.RedemptionStatus(*req.Status))
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusOK, toResponse(redemption, 0))
	}
}

func toResponse(r model.Redemption, balanceAfter int64) dto.RedemptionResponseDto {
	return dto.RedemptionResponseDto{
		RedemptionID: r.ID,
		ItemID:       r.ItemID,
		ItemName:     r.ItemName,
		CostPoints:   r.CostPoints,
		Status:       string(r.Status),
		BalanceAfter: balanceAfter,
		CreatedAt:    r.CreatedAt,
	}
}
