package handle

import (
	"encoding/json"
	"fmt"
	"net/http"

	"waste-collect/internal/admin-service/core/domain/dto"
	"waste-collect/internal/admin-service/core/ports"
	"waste-collect/internal/identity"
	"waste-collect/internal/mylogger"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	adminService ports.IAdminService
	log          mylogger.Logger
}

func NewAdminHandler(as ports.IAdminService, log mylogger.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: as,
		log:          log,
	}
}

func (ah *AdminHandler) DriverPerformance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		rows, err := ah.adminService.GetDriverPerformance(r.Context(), ident, chi.URLParam(r, "driver_id"))
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		out := make([]dto.DriverPerformanceDto, 0, len(rows))
		for _, row := range rows {
			out = append(out, dto.DriverPerformanceDto{
				Day:              row.Day,
				PickupsCompleted: row.PickupsCompleted,
				TotalWeightKg:    row.TotalWeightKg,
				CommissionEarned: row.CommissionEarned,
				AverageRating:    row.AverageRating,
			})
		}
		jsonResponse(w, http.StatusOK, out)
	}
}

func (ah *AdminHandler) SystemOverview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		overview, err := ah.adminService.GetSystemOverview(r.Context(), ident)
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusOK, overview)
	}
}

func (ah *AdminHandler) UpdateDriverRating() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identity.FromContext(r.Context())
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.UpdateRatingDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}
		if req.Day == nil || req.AverageRating == nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("day and average_rating are required"))
			return
		}

		row, err := ah.adminService.UpdateDriverRating(r.Context(), ident, chi.URLParam(r, "driver_id"), *req.Day, *req.AverageRating)
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.DriverPerformanceDto{
			Day:              row.Day,
			PickupsCompleted: row.PickupsCompleted,
			TotalWeightKg:    row.TotalWeightKg,
			CommissionEarned: row.CommissionEarned,
			AverageRating:    row.AverageRating,
		})
	}
}
