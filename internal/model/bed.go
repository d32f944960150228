package model

import (
	"github.com/google/uuid"
)

// Bed statuses. A bed is occupied exactly when current_member_id is set;
// maintenance beds never carry an occupant.
const (
	BedStatusAvailable   = "available"
	BedStatusOccupied    = "occupied"
	BedStatusMaintenance = "maintenance"
)

type Bed struct {
	Base
	BedNumber       string     `db:"bed_number" json:"bed_number"`
	Building        string     `db:"building" json:"building"`
	Floor           string     `db:"floor" json:"floor"`
	RoomNumber      string     `db:"room_number" json:"room_number"`
	Status          string     `db:"status" json:"status"`
	Description     string     `db:"description" json:"description"`
	CurrentMemberID *uuid.UUID `db:"current_member_id" json:"current_member_id,omitempty"`
}

// BedRow is a bed list row joined with its occupant, when any.
type BedRow struct {
	Bed
	MemberName      *string `db:"member_name" json:"member_name,omitempty"`
	MemberGender    *string `db:"member_gender" json:"member_gender,omitempty"`
	MemberAge       *int    `db:"member_age" json:"member_age,omitempty"`
	MemberCareLevel *string `db:"member_care_level" json:"member_care_level,omitempty"`
}

// BedView is the presentation shape for a bed list row.
type BedView struct {
	BedRow
	StatusLabel string `json:"status_label"`
}

// NewBedView translates stored codes into display labels.
func NewBedView(row *BedRow) *BedView {
	v := &BedView{
		BedRow:      *row,
		StatusLabel: BedStatusLabel(row.Status),
	}
	if row.MemberGender != nil {
		g := GenderLabel(*row.MemberGender)
		v.MemberGender = &g
	}
	if row.MemberCareLevel != nil {
		cl := CareLevelLabel(*row.MemberCareLevel)
		v.MemberCareLevel = &cl
	}
	return v
}

type CreateBedRequest struct {
	BedNumber   string `json:"bed_number" binding:"required"`
	Building    string `json:"building" binding:"required"`
	Floor       string `json:"floor" binding:"required"`
	RoomNumber  string `json:"room_number" binding:"required"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

type UpdateBedRequest struct {
	BedNumber   string `json:"bed_number" binding:"required"`
	Building    string `json:"building" binding:"required"`
	Floor       string `json:"floor" binding:"required"`
	RoomNumber  string `json:"room_number" binding:"required"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

type AssignBedRequest struct {
	MemberID string `json:"member_id" binding:"required"`
	BedID    string `json:"bed_id" binding:"required"`
}

// BedFilters are exact-match, AND-combined list filters.
type BedFilters struct {
	Building   string `form:"building"`
	Floor      string `form:"floor"`
	RoomNumber string `form:"room_number"`
	Status     string `form:"status"`
}

// BedStatistics summarizes bed usage. OccupancyRate is occupied/total in
// percent rounded to two decimals, and 0 when there are no beds.
type BedStatistics struct {
	Total         int     `db:"total" json:"total"`
	Occupied      int     `db:"occupied" json:"occupied"`
	Available     int     `db:"available" json:"available"`
	Maintenance   int     `db:"maintenance" json:"maintenance"`
	OccupancyRate float64 `json:"occupancyRate"`
}
