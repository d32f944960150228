package model

// labelTable is a bidirectional mapping between stored enum codes and the
// display labels the front-end renders. Both directions are stored explicitly
// so lookups never iterate. Unknown values pass through unchanged.
type labelTable struct {
	toLabel map[string]string
	toCode  map[string]string
}

func newLabelTable(pairs map[string]string) labelTable {
	t := labelTable{
		toLabel: make(map[string]string, len(pairs)),
		toCode:  make(map[string]string, len(pairs)*2),
	}
	for code, label := range pairs {
		t.toLabel[code] = label
		t.toCode[label] = code
		// codes map to themselves so clients may send either form
		t.toCode[code] = code
	}
	return t
}

func (t labelTable) Label(code string) string {
	if label, ok := t.toLabel[code]; ok {
		return label
	}
	return code
}

func (t labelTable) Code(value string) string {
	if code, ok := t.toCode[value]; ok {
		return code
	}
	return value
}

var (
	genderLabels = newLabelTable(map[string]string{
		GenderMale:   "男",
		GenderFemale: "女",
	})

	careLevelLabels = newLabelTable(map[string]string{
		CareLevelSelf:    "自理",
		CareLevelSemi:    "介助",
		CareLevelFull:    "全护理",
		CareLevelSpecial: "特护",
	})

	memberStatusLabels = newLabelTable(map[string]string{
		MemberStatusActive:   "在住",
		MemberStatusInactive: "离开",
		MemberStatusDeceased: "过世",
	})

	bedStatusLabels = newLabelTable(map[string]string{
		BedStatusAvailable:   "空闲",
		BedStatusOccupied:    "已入住",
		BedStatusMaintenance: "维修中",
	})
)

// Alternate spellings the legacy client sends for care levels. They resolve
// to codes before storage but are never produced on output.
var careLevelAliases = map[string]string{
	"半自理": CareLevelSemi,
	"介护":  CareLevelFull,
}

func GenderLabel(code string) string { return genderLabels.Label(code) }
func GenderCode(value string) string { return genderLabels.Code(value) }

func CareLevelLabel(code string) string { return careLevelLabels.Label(code) }

func CareLevelCode(value string) string {
	if code, ok := careLevelAliases[value]; ok {
		return code
	}
	return careLevelLabels.Code(value)
}

func MemberStatusLabel(code string) string { return memberStatusLabels.Label(code) }
func MemberStatusCode(value string) string { return memberStatusLabels.Code(value) }

func BedStatusLabel(code string) string { return bedStatusLabels.Label(code) }
func BedStatusCode(value string) string { return bedStatusLabels.Code(value) }
