package member

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/repository"
	"github.com/carewell/carehome-api/internal/service/health"
	apperrors "github.com/carewell/carehome-api/pkg/errors"
	"github.com/carewell/carehome-api/pkg/logger"
)

// Service implements member CRUD and the read-path consistency repair.
type Service struct {
	repo      repository.MemberRepository
	healthSvc *health.Service
	log       *logger.Logger
}

func NewService(repo repository.MemberRepository, healthSvc *health.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &Service{
		repo:      repo,
		healthSvc: healthSvc,
		log:       log,
	}
}

func (s *Service) CreateMember(ctx context.Context, req *model.CreateMemberRequest) (*model.MemberView, error) {
	member := &model.Member{
		Base:                 model.Base{ID: uuid.New()},
		Name:                 req.Name,
		Gender:               defaulted(model.GenderCode(req.Gender), model.GenderMale),
		Age:                  req.Age,
		IDCard:               req.IDCard,
		Phone:                req.Phone,
		EmergencyContact:     req.EmergencyContact,
		EmergencyPhone:       req.EmergencyPhone,
		CareLevel:            defaulted(model.CareLevelCode(req.CareLevel), model.CareLevelSelf),
		Status:               defaulted(model.MemberStatusCode(req.Status), model.MemberStatusActive),
		ResponsibilityWorker: req.Worker(),
		HealthDetail:         req.HealthDetail,
	}

	raw := req.HealthConditions
	if len(raw) == 0 {
		raw = req.HealthStatus
	}
	var conds []model.Condition
	var err error
	switch {
	case len(raw) > 0:
		conds, err = s.healthSvc.NormalizeRaw(raw)
		if err != nil {
			if errors.Is(err, health.ErrInvalidShape) {
				return nil, apperrors.Validation("invalid health condition format")
			}
			return nil, fmt.Errorf("failed to normalize conditions: %w", err)
		}
	case req.HealthNotes != "":
		conds, err = s.healthSvc.NormalizeRaw(quote(req.HealthNotes))
		if err != nil {
			return nil, fmt.Errorf("failed to normalize health notes: %w", err)
		}
	default:
		conds = []model.Condition{}
	}
	member.HealthStatus, err = health.Serialize(conds)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	return s.buildView(&model.MemberRow{Member: *member}), nil
}

// GetMember returns one member, running the consistency repair on their bed
// reference first.
func (s *Service) GetMember(ctx context.Context, id uuid.UUID) (*model.MemberView, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, apperrors.NotFound("member", err)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	s.repairAssignment(ctx, row)
	return s.buildView(row), nil
}

func (s *Service) UpdateMember(ctx context.Context, id uuid.UUID, req *model.UpdateMemberRequest) (*model.MemberView, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, apperrors.NotFound("member", err)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	member := row.Member
	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Gender != nil {
		member.Gender = model.GenderCode(*req.Gender)
	}
	if req.Age != nil {
		member.Age = *req.Age
	}
	if req.IDCard != nil {
		member.IDCard = *req.IDCard
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.EmergencyContact != nil {
		member.EmergencyContact = *req.EmergencyContact
	}
	if req.EmergencyPhone != nil {
		member.EmergencyPhone = *req.EmergencyPhone
	}
	if req.CareLevel != nil {
		member.CareLevel = model.CareLevelCode(*req.CareLevel)
	}
	if req.Status != nil {
		member.Status = model.MemberStatusCode(*req.Status)
	}
	if worker := req.Worker(); worker != nil {
		member.ResponsibilityWorker = *worker
	}
	if req.HealthDetail != nil {
		member.HealthDetail = *req.HealthDetail
	}

	raw := req.HealthConditions
	if len(raw) == 0 {
		raw = req.HealthStatus
	}
	if len(raw) > 0 {
		conds, err := s.healthSvc.NormalizeRaw(raw)
		if err != nil {
			if errors.Is(err, health.ErrInvalidShape) {
				return nil, apperrors.Validation("invalid health condition format")
			}
			return nil, fmt.Errorf("failed to normalize conditions: %w", err)
		}
		member.HealthStatus, err = health.Serialize(conds)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, &member); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, apperrors.NotFound("member", err)
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload member: %w", err)
	}
	return s.buildView(updated), nil
}

func (s *Service) DeleteMember(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return apperrors.NotFound("member", err)
		}
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}

func (s *Service) ListMembers(ctx context.Context, filters *model.MemberFilters, page *model.Pagination) ([]*model.MemberView, int, error) {
	page.Normalize()
	normalized := &model.MemberFilters{
		Name:       filters.Name,
		Gender:     model.GenderCode(filters.Gender),
		CareLevel:  model.CareLevelCode(filters.CareLevel),
		Status:     model.MemberStatusCode(filters.Status),
		Unassigned: filters.Unassigned,
	}
	if filters.Gender == "" {
		normalized.Gender = ""
	}
	if filters.CareLevel == "" {
		normalized.CareLevel = ""
	}
	if filters.Status == "" {
		normalized.Status = ""
	}

	rows, total, err := s.repo.List(ctx, normalized, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}

	views := make([]*model.MemberView, len(rows))
	for i, row := range rows {
		if row.BedID == nil {
			row.ClearBedJoin()
		}
		views[i] = s.buildView(row)
	}
	return views, total, nil
}

// repairAssignment heals a broken bed link: when the member's bed no longer
// exists or hosts someone else, the member's reference is cleared in storage
// and the row is presented unassigned. Triggered only by single-member reads,
// never by a table scan.
func (s *Service) repairAssignment(ctx context.Context, row *model.MemberRow) {
	if row.BedID == nil {
		row.ClearBedJoin()
		return
	}

	occupant, err := s.repo.BedOccupant(ctx, *row.BedID)
	switch {
	case errors.Is(err, repository.ErrBedNotFound):
		// fall through to repair
	case err != nil:
		// storage trouble should not fail the read; leave the row untouched
		s.log.Error(err, "assignment check failed", "member_id", row.ID.String())
		return
	case occupant != nil && *occupant == row.ID:
		return
	}

	s.log.Warn("repairing inconsistent bed assignment",
		"member_id", row.ID.String(), "bed_id", row.BedID.String())

	if err := s.repo.ClearBedAssignment(ctx, row.ID); err != nil {
		s.log.Error(err, "assignment repair failed", "member_id", row.ID.String())
	}
	row.ClearBedJoin()
}

func (s *Service) buildView(row *model.MemberRow) *model.MemberView {
	conds := s.healthSvc.NormalizeStored(row.HealthStatus)

	view := &model.MemberView{
		MemberRow:        *row,
		GenderLabel:      model.GenderLabel(row.Gender),
		CareLevelLabel:   model.CareLevelLabel(row.CareLevel),
		StatusLabel:      model.MemberStatusLabel(row.Status),
		BedInfo:          model.UnassignedText,
		Caregiver:        row.ResponsibilityWorker,
		HealthConditions: conds,
		HealthStatusText: health.DisplayText(conds),
	}
	if view.Caregiver == "" {
		view.Caregiver = model.UnassignedText
	}
	if row.BedNumber != nil {
		view.BedInfo = fmt.Sprintf("%s-%s-%s-%s",
			deref(row.Building), deref(row.Floor), deref(row.RoomNumber), *row.BedNumber)
	}
	return view
}

func defaulted(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// quote wraps free text as a JSON string literal so it flows through the
// normalizer's text branch.
func quote(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}
