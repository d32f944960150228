package model

import "encoding/json"

// Condition severities. Unknown severities are coerced to moderate when
// normalizing so the stored form always carries one of these three.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// Condition is one normalized health-issue record. The id is minted when a
// condition first appears and preserved across subsequent edits.
type Condition struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
}

// NoRecordText is the placeholder shown when a member has no conditions.
const NoRecordText = "暂无记录"

// FetchFailedText is a legacy sentinel some stored rows carry instead of
// condition data; it normalizes to an empty list.
const FetchFailedText = "获取失败"

// MemberHealthInfo is the monitor endpoint's member payload.
type MemberHealthInfo struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	ResponsibilityWorker string      `json:"responsibility_worker"`
	HealthConditions     []Condition `json:"health_conditions"`
	HealthStatusText     string      `json:"health_status_text"`
	HealthDetail         string      `json:"health_detail"`
}

type RecordHealthRequest struct {
	MemberID             string          `json:"member_id" binding:"required"`
	HealthStatus         json.RawMessage `json:"health_status"`
	HealthConditions     json.RawMessage `json:"health_conditions"`
	ResponsibilityWorker string          `json:"responsibility_worker"`
	HealthDetail         *string         `json:"health_detail"`
}
