package services

import (
	"fmt"
	"strings"
	"time"

	"waste-collect/internal/pickup-service/core/domain/dto"
	"waste-collect/internal/pickup-service/core/myerrors"
)

const MaxAddressLen = 255

func validatePickupRequest(req dto.PickupRequestDto) (time.Time, []string, error) {
	if err := validateAddress(req.Address); err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: invalid address: %v", myerrors.ErrValidation, err)
	}

	scheduledAt, err := validateScheduledAt(req.ScheduledAt)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: invalid scheduled_at: %v", myerrors.ErrValidation, err)
	}

	categories, err := validateCategories(req.Categories)
	if err != nil {
		return time.Time{}, nil, err
	}

	if req.EstimatedWeightKg == nil || *req.EstimatedWeightKg <= 0 {
		return time.Time{}, nil, myerrors.ErrInvalidWeight
	}

	return scheduledAt, categories, nil
}

func validateAddress(s *string) error {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fmt.Errorf("field is empty")
	}
	if len(*s) > MaxAddressLen {
		return fmt.Errorf("maximum %d characters allowed", MaxAddressLen)
	}
	return nil
}

func validateScheduledAt(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, fmt.Errorf("field is empty")
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be RFC3339: %v", err)
	}
	return t, nil
}

// validateCategories rejects an empty set and normalizes the declared
// categories: trimmed, lowercased, duplicates dropped.
func validateCategories(categories []string) ([]string, error) {
	out := make([]string, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, myerrors.ErrEmptyCategories
	}
	return out, nil
}
