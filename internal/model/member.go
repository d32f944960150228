package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Gender codes
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Care level codes
const (
	CareLevelSelf    = "self-care"
	CareLevelSemi    = "semi-care"
	CareLevelFull    = "full-care"
	CareLevelSpecial = "special-care"
)

// Member statuses
const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
	MemberStatusDeceased = "deceased"
)

// UnassignedText is rendered whenever a member has no bed or no caregiver.
const UnassignedText = "未分配"

type Member struct {
	Base
	Name                 string     `db:"name" json:"name"`
	Gender               string     `db:"gender" json:"gender"`
	Age                  int        `db:"age" json:"age"`
	IDCard               string     `db:"id_card" json:"id_card"`
	Phone                string     `db:"phone" json:"phone"`
	EmergencyContact     string     `db:"emergency_contact" json:"emergency_contact"`
	EmergencyPhone       string     `db:"emergency_phone" json:"emergency_phone"`
	CareLevel            string     `db:"care_level" json:"care_level"`
	Status               string     `db:"status" json:"status"`
	BedID                *uuid.UUID `db:"bed_id" json:"bed_id,omitempty"`
	ResponsibilityWorker string     `db:"responsibility_worker" json:"responsibility_worker"`
	HealthStatus         string     `db:"health_status" json:"-"`
	HealthDetail         string     `db:"health_detail" json:"health_detail"`
}

// MemberRow is a member list row joined with its bed, when any.
type MemberRow struct {
	Member
	BedNumber  *string `db:"bed_number" json:"bed_number,omitempty"`
	Building   *string `db:"building" json:"building,omitempty"`
	Floor      *string `db:"floor" json:"floor,omitempty"`
	RoomNumber *string `db:"room_number" json:"room_number,omitempty"`
}

// ClearBedJoin wipes joined bed columns, used when the assignment turned out
// to be stale.
func (r *MemberRow) ClearBedJoin() {
	r.BedID = nil
	r.BedNumber = nil
	r.Building = nil
	r.Floor = nil
	r.RoomNumber = nil
}

// MemberView is the presentation shape for a member: enum codes translated to
// display labels, bed location flattened to one string, health conditions in
// their canonical list form.
type MemberView struct {
	MemberRow
	GenderLabel      string      `json:"gender_label"`
	CareLevelLabel   string      `json:"care_level_label"`
	StatusLabel      string      `json:"status_label"`
	BedInfo          string      `json:"bed_info"`
	Caregiver        string      `json:"caregiver"`
	HealthConditions []Condition `json:"health_conditions"`
	HealthStatusText string      `json:"health_status"`
}

type CreateMemberRequest struct {
	Name                 string          `json:"name" binding:"required"`
	Gender               string          `json:"gender"`
	Age                  int             `json:"age" binding:"required"`
	IDCard               string          `json:"id_card"`
	Phone                string          `json:"phone"`
	EmergencyContact     string          `json:"emergency_contact"`
	EmergencyPhone       string          `json:"emergency_phone"`
	CareLevel            string          `json:"care_level"`
	Status               string          `json:"status"`
	ResponsibilityWorker string          `json:"responsibility_worker"`
	Caregiver            string          `json:"caregiver"`
	HealthConditions     json.RawMessage `json:"health_conditions"`
	HealthStatus         json.RawMessage `json:"health_status"`
	HealthNotes          string          `json:"health_notes"`
	HealthDetail         string          `json:"health_detail"`
}

// Worker resolves the caregiver name, accepting either field the client uses.
func (r *CreateMemberRequest) Worker() string {
	if r.ResponsibilityWorker != "" {
		return r.ResponsibilityWorker
	}
	return r.Caregiver
}

// UpdateMemberRequest uses pointers so absent fields keep their stored values.
type UpdateMemberRequest struct {
	Name                 *string         `json:"name"`
	Gender               *string         `json:"gender"`
	Age                  *int            `json:"age"`
	IDCard               *string         `json:"id_card"`
	Phone                *string         `json:"phone"`
	EmergencyContact     *string         `json:"emergency_contact"`
	EmergencyPhone       *string         `json:"emergency_phone"`
	CareLevel            *string         `json:"care_level"`
	Status               *string         `json:"status"`
	ResponsibilityWorker *string         `json:"responsibility_worker"`
	Caregiver            *string         `json:"caregiver"`
	HealthConditions     json.RawMessage `json:"health_conditions"`
	HealthStatus         json.RawMessage `json:"health_status"`
	HealthDetail         *string         `json:"health_detail"`
}

func (r *UpdateMemberRequest) Worker() *string {
	if r.ResponsibilityWorker != nil {
		return r.ResponsibilityWorker
	}
	return r.Caregiver
}

// MemberFilters are AND-combined list filters. Name matches substrings;
// the rest match exactly. Unassigned selects members without a bed.
type MemberFilters struct {
	Name       string `form:"name"`
	Gender     string `form:"gender"`
	CareLevel  string `form:"care_level"`
	Status     string `form:"status"`
	Unassigned bool   `form:"unassigned"`
}
