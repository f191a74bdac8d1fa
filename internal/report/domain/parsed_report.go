package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString decodes a JSON string, number, or null without coercing the
// value. Model output is inconsistent about quoting numerics, so the parsed
// shape keeps everything in string form and conversion happens at
// persistence time.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	return fmt.Errorf("cannot decode %q as string or number", string(b))
}

// Str returns the trimmed string value, or "" for a nil field.
func (f *FlexString) Str() string {
	if f == nil {
		return ""
	}
	return strings.TrimSpace(string(*f))
}

// ParsedRoom is a line item in the vacant/dirty or out-of-order tables.
type ParsedRoom struct {
	RoomNumber FlexString `json:"room_number"`
	Reason     FlexString `json:"reason"`
	Days       FlexString `json:"days"`
	Action     FlexString `json:"action"`
}

// ParsedCompRoom is a complimentary room line item.
type ParsedCompRoom struct {
	RoomNumber FlexString `json:"room_number"`
	Notes      FlexString `json:"notes"`
}

// ParsedIncident is a free-text incident entry.
type ParsedIncident struct {
	Description FlexString `json:"description"`
}

// ParsedReport is the structured intermediate form produced by report
// structuring, prior to persistence. All scalar fields are optional; an
// empty collection is valid.
type ParsedReport struct {
	PropertyName           *FlexString `json:"property_name"`
	ReportDate             *FlexString `json:"report_date"`
	Department             *FlexString `json:"department"`
	Auditor                *FlexString `json:"auditor"`
	Revenue                *FlexString `json:"revenue"`
	ADR                    *FlexString `json:"adr"`
	Occupancy              *FlexString `json:"occupancy"`
	VacantClean            *FlexString `json:"vacant_clean"`
	VacantDirty            *FlexString `json:"vacant_dirty"`
	OutOfOrderRoomsStorage *FlexString `json:"out_of_order_rooms_storage"`

	VacantDirtyRooms []ParsedRoom     `json:"vacant_dirty_rooms"`
	OutOfOrderRooms  []ParsedRoom     `json:"out_of_order_rooms"`
	CompRooms        []ParsedCompRoom `json:"comp_rooms"`
	Incidents        []ParsedIncident `json:"incidents"`
}

// EmptyParsedReport is the canonical degraded result: all scalar fields nil,
// all collections empty.
func EmptyParsedReport() *ParsedReport {
	return &ParsedReport{
		VacantDirtyRooms: []ParsedRoom{},
		OutOfOrderRooms:  []ParsedRoom{},
		CompRooms:        []ParsedCompRoom{},
		Incidents:        []ParsedIncident{},
	}
}
