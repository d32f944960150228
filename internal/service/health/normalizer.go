package health

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carewell/carehome-api/internal/model"
)

// ErrInvalidShape is returned for input that is structurally not health data:
// a bare number, boolean, or an array holding either. Any string input is
// always accepted.
var ErrInvalidShape = errors.New("invalid health condition shape")

// IDGenerator mints condition ids. Injectable so normalization is a pure
// function under test.
type IDGenerator func() string

// NewConditionID is the production generator.
func NewConditionID() string {
	return fmt.Sprintf("hc-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Normalizer canonicalizes the many shapes health-status input arrives in
// into one ordered condition list.
type Normalizer struct {
	newID IDGenerator
}

func NewNormalizer(gen IDGenerator) *Normalizer {
	if gen == nil {
		gen = NewConditionID
	}
	return &Normalizer{newID: gen}
}

// partialCondition is the boundary shape for object input; any field may be
// absent.
type partialCondition struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
}

// Normalize converts raw input into the canonical condition list. Accepted
// shapes: JSON array of strings/objects, a single object, a JSON string
// (recursively normalized when it parses as JSON, comma-split otherwise),
// and null/absent input for an empty list.
func (n *Normalizer) Normalize(raw json.RawMessage) ([]model.Condition, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []model.Condition{}, nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("malformed string input: %w", err)
		}
		return n.normalizeText(s), nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("malformed array input: %w", err)
		}
		return n.normalizeSequence(items)
	case '{':
		var pc partialCondition
		if err := json.Unmarshal(raw, &pc); err != nil {
			return nil, fmt.Errorf("malformed object input: %w", err)
		}
		return []model.Condition{n.fill(pc)}, nil
	default:
		return nil, ErrInvalidShape
	}
}

// NormalizeStored parses a persisted health_status column. Stored values are
// trusted less than request input: legacy sentinel text and rows predating
// canonicalization appear here, so every failure degrades to comma-split
// text and the result is never an error.
func (n *Normalizer) NormalizeStored(stored string) []model.Condition {
	return n.normalizeText(stored)
}

func (n *Normalizer) normalizeSequence(items []json.RawMessage) ([]model.Condition, error) {
	conds := make([]model.Condition, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(string(item))
		if trimmed == "" || trimmed == "null" {
			continue
		}
		switch trimmed[0] {
		case '"':
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return nil, fmt.Errorf("malformed array element: %w", err)
			}
			if name := strings.TrimSpace(s); name != "" {
				conds = append(conds, n.fromName(name))
			}
		case '{':
			var pc partialCondition
			if err := json.Unmarshal(item, &pc); err != nil {
				return nil, fmt.Errorf("malformed array element: %w", err)
			}
			conds = append(conds, n.fill(pc))
		default:
			return nil, ErrInvalidShape
		}
	}
	return conds, nil
}

// normalizeText handles free text. Text that parses as a JSON array, object,
// or string is normalized recursively; everything else, including text that
// parses to a JSON scalar, is treated as a comma-separated list of names.
func (n *Normalizer) normalizeText(s string) []model.Condition {
	text := strings.TrimSpace(s)
	if text == "" || text == model.NoRecordText || text == model.FetchFailedText {
		return []model.Condition{}
	}

	switch text[0] {
	case '[', '{', '"':
		if json.Valid([]byte(text)) {
			if conds, err := n.Normalize(json.RawMessage(text)); err == nil {
				return conds
			}
		}
	}

	parts := strings.Split(text, ",")
	conds := make([]model.Condition, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		conds = append(conds, n.fromName(name))
	}
	return conds
}

func (n *Normalizer) fromName(name string) model.Condition {
	return model.Condition{
		ID:       n.newID(),
		Name:     name,
		Severity: model.SeverityModerate,
	}
}

// fill completes a partial condition: a present id is preserved so edits keep
// stable identities, a missing one is minted; severities outside the known
// set are coerced to moderate.
func (n *Normalizer) fill(pc partialCondition) model.Condition {
	cond := model.Condition{
		ID:       pc.ID,
		Name:     strings.TrimSpace(pc.Name),
		Severity: pc.Severity,
	}
	if cond.ID == "" {
		cond.ID = n.newID()
	}
	switch cond.Severity {
	case model.SeverityMild, model.SeverityModerate, model.SeveritySevere:
	default:
		cond.Severity = model.SeverityModerate
	}
	return cond
}

// Serialize renders the canonical stored form of a condition list.
func Serialize(conds []model.Condition) (string, error) {
	if conds == nil {
		conds = []model.Condition{}
	}
	data, err := json.Marshal(conds)
	if err != nil {
		return "", fmt.Errorf("failed to serialize conditions: %w", err)
	}
	return string(data), nil
}

// DisplayText joins condition names for display, with a placeholder for the
// empty list.
func DisplayText(conds []model.Condition) string {
	if len(conds) == 0 {
		return model.NoRecordText
	}
	names := make([]string, len(conds))
	for i, c := range conds {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
