package bed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/repository"
	apperrors "github.com/carewell/carehome-api/pkg/errors"
)

// Service wraps the bed repository, translating assignment failures into the
// API error taxonomy.
type Service struct {
	repo repository.BedRepository
}

func NewService(repo repository.BedRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateBed(ctx context.Context, req *model.CreateBedRequest) (*model.Bed, error) {
	status := model.BedStatusCode(req.Status)
	if status == "" {
		status = model.BedStatusAvailable
	}
	switch status {
	case model.BedStatusAvailable, model.BedStatusMaintenance:
	case model.BedStatusOccupied:
		// occupancy is owned by the assignment path
		return nil, apperrors.Validation("beds are created unoccupied; use assignment")
	default:
		return nil, apperrors.Validation("invalid bed status")
	}

	bed := &model.Bed{
		Base:        model.Base{ID: uuid.New()},
		BedNumber:   req.BedNumber,
		Building:    req.Building,
		Floor:       req.Floor,
		RoomNumber:  req.RoomNumber,
		Status:      status,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, bed); err != nil {
		return nil, fmt.Errorf("failed to create bed: %w", err)
	}
	return bed, nil
}

func (s *Service) UpdateBed(ctx context.Context, id uuid.UUID, req *model.UpdateBedRequest) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBedNotFound) {
			return apperrors.NotFound("bed", err)
		}
		return fmt.Errorf("failed to get bed: %w", err)
	}

	status := model.BedStatusCode(req.Status)
	if status == "" {
		status = current.Status
	}
	// the occupied flag follows the occupant, never a plain field update
	if current.CurrentMemberID != nil {
		status = model.BedStatusOccupied
	} else if status == model.BedStatusOccupied {
		status = current.Status
	}

	bed := &model.Bed{
		Base:        model.Base{ID: id},
		BedNumber:   req.BedNumber,
		Building:    req.Building,
		Floor:       req.Floor,
		RoomNumber:  req.RoomNumber,
		Status:      status,
		Description: req.Description,
	}
	if err := s.repo.Update(ctx, bed); err != nil {
		if errors.Is(err, repository.ErrBedNotFound) {
			return apperrors.NotFound("bed", err)
		}
		return fmt.Errorf("failed to update bed: %w", err)
	}
	return nil
}

func (s *Service) DeleteBed(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBedNotFound) {
			return apperrors.NotFound("bed", err)
		}
		return fmt.Errorf("failed to delete bed: %w", err)
	}
	return nil
}

func (s *Service) ListBeds(ctx context.Context, filters *model.BedFilters, page *model.Pagination) ([]*model.BedView, int, error) {
	page.Normalize()
	normalized := &model.BedFilters{
		Building:   filters.Building,
		Floor:      filters.Floor,
		RoomNumber: filters.RoomNumber,
	}
	if filters.Status != "" {
		normalized.Status = model.BedStatusCode(filters.Status)
	}

	rows, total, err := s.repo.List(ctx, normalized, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list beds: %w", err)
	}

	views := make([]*model.BedView, len(rows))
	for i, row := range rows {
		views[i] = model.NewBedView(row)
	}
	return views, total, nil
}

func (s *Service) Statistics(ctx context.Context) (*model.BedStatistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	return stats, nil
}

// Assign links a member to an available bed. Any bed the member currently
// holds is released inside the same transaction.
func (s *Service) Assign(ctx context.Context, memberID, bedID uuid.UUID) error {
	err := s.repo.Assign(ctx, memberID, bedID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrBedNotFound):
		return apperrors.NotFound("bed", err)
	case errors.Is(err, repository.ErrBedUnavailable):
		return apperrors.Unavailable("bed is not available")
	case errors.Is(err, repository.ErrMemberNotFound):
		return apperrors.NotFound("member", err)
	default:
		return fmt.Errorf("failed to assign bed: %w", err)
	}
}

// Unassign frees a bed. Unassigning a bed that has no occupant succeeds
// without touching anything.
func (s *Service) Unassign(ctx context.Context, bedID uuid.UUID) error {
	err := s.repo.Unassign(ctx, bedID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrBedNotFound):
		return apperrors.NotFound("bed", err)
	default:
		return fmt.Errorf("failed to unassign bed: %w", err)
	}
}
