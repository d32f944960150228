package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/repository"
	apperrors "github.com/carewell/carehome-api/pkg/errors"
)

// Service reads and records member health data through the normalizer.
type Service struct {
	memberRepo repository.MemberRepository
	normalizer *Normalizer
}

func NewService(memberRepo repository.MemberRepository, normalizer *Normalizer) *Service {
	return &Service{
		memberRepo: memberRepo,
		normalizer: normalizer,
	}
}

// RecordResult reports what a health write changed.
type RecordResult struct {
	MemberUpdated    bool              `json:"member_updated"`
	HealthConditions []model.Condition `json:"health_conditions"`
	HealthStatusText string            `json:"health_status_text"`
}

// GetMemberHealth returns the member's health info with the stored condition
// list in canonical form.
func (s *Service) GetMemberHealth(ctx context.Context, memberID uuid.UUID) (*model.MemberHealthInfo, error) {
	row, err := s.memberRepo.Get(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, apperrors.NotFound("member", err)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	conds := s.normalizer.NormalizeStored(row.HealthStatus)
	return &model.MemberHealthInfo{
		ID:                   row.ID.String(),
		Name:                 row.Name,
		ResponsibilityWorker: row.ResponsibilityWorker,
		HealthConditions:     conds,
		HealthStatusText:     DisplayText(conds),
		HealthDetail:         row.HealthDetail,
	}, nil
}

// RecordHealth updates the health-related member fields that are present in
// the request. Condition input is taken from health_conditions when given,
// falling back to health_status.
func (s *Service) RecordHealth(ctx context.Context, req *model.RecordHealthRequest) (*RecordResult, error) {
	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		return nil, apperrors.Validation("invalid member id")
	}

	raw := req.HealthConditions
	if len(raw) == 0 {
		raw = req.HealthStatus
	}

	var conds []model.Condition
	var serialized *string
	if len(raw) > 0 {
		conds, err = s.normalizer.Normalize(raw)
		if err != nil {
			if errors.Is(err, ErrInvalidShape) {
				return nil, apperrors.Validation("invalid health condition format")
			}
			return nil, fmt.Errorf("failed to normalize conditions: %w", err)
		}
		text, err := Serialize(conds)
		if err != nil {
			return nil, err
		}
		serialized = &text
	}

	var worker *string
	if req.ResponsibilityWorker != "" {
		worker = &req.ResponsibilityWorker
	}

	updated := worker != nil || serialized != nil || req.HealthDetail != nil
	if updated {
		if err := s.memberRepo.UpdateHealth(ctx, memberID, worker, serialized, req.HealthDetail); err != nil {
			if errors.Is(err, repository.ErrMemberNotFound) {
				return nil, apperrors.NotFound("member", err)
			}
			return nil, fmt.Errorf("failed to update member health: %w", err)
		}
	}

	if conds == nil {
		conds = []model.Condition{}
	}
	return &RecordResult{
		MemberUpdated:    updated,
		HealthConditions: conds,
		HealthStatusText: DisplayText(conds),
	}, nil
}

// NormalizeRaw exposes normalization for other services handling health input
// embedded in member writes.
func (s *Service) NormalizeRaw(raw json.RawMessage) ([]model.Condition, error) {
	return s.normalizer.Normalize(raw)
}

// NormalizeStored parses a persisted health_status column value.
func (s *Service) NormalizeStored(stored string) []model.Condition {
	return s.normalizer.NormalizeStored(stored)
}
