package domain

import "time"

// Report is one daily audit record for one motel on one date. It owns its
// four child collections; deleting a report cascades to them.
type Report struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	MotelID uint `json:"motel_id" gorm:"not null;index"`

	PropertyName           string     `json:"property_name" gorm:"index"`
	ReportDate             *time.Time `json:"report_date" gorm:"type:date;index"`
	Department             *string    `json:"department"`
	Auditor                *string    `json:"auditor"`
	Revenue                float64    `json:"revenue" gorm:"default:0"`
	ADR                    float64    `json:"adr" gorm:"column:adr;default:0"`
	Occupancy              int        `json:"occupancy" gorm:"default:0"`
	VacantClean            int        `json:"vacant_clean" gorm:"default:0"`
	VacantDirty            int        `json:"vacant_dirty" gorm:"default:0"`
	OutOfOrderStorageRooms int        `json:"out_of_order_storage_rooms" gorm:"column:out_of_order_storage_rooms;default:0"`
	CreatedAt              time.Time  `json:"created_at"`

	Motel            Motel             `json:"-" gorm:"foreignKey:MotelID"`
	VacantDirtyRooms []VacantDirtyRoom `json:"vacant_dirty_rooms" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	OutOfOrderRooms  []OutOfOrderRoom  `json:"out_of_order_rooms" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	CompRooms        []CompRoom        `json:"comp_rooms" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	Incidents        []Incident        `json:"incidents" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (Report) TableName() string {
	return "motel_daily_report"
}

// VacantDirtyRoom is a room reported vacant and dirty on a given day.
type VacantDirtyRoom struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ReportID   uint   `json:"report_id" gorm:"index"`
	RoomNumber string `json:"room_number" gorm:"not null"`
	Reason     string `json:"reason" gorm:"type:text"`
	Days       int    `json:"days" gorm:"default:0"`
	Action     string `json:"action" gorm:"type:text"`
}

func (VacantDirtyRoom) TableName() string {
	return "report_vacant_dirty_room"
}

// OutOfOrderRoom is a room taken out of service, with the reason and the
// number of days it has been down.
type OutOfOrderRoom struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ReportID   uint   `json:"report_id" gorm:"index"`
	RoomNumber string `json:"room_number" gorm:"not null"`
	Reason     string `json:"reason" gorm:"type:text"`
	Days       int    `json:"days" gorm:"default:0"`
	Action     string `json:"action" gorm:"type:text"`
}

func (OutOfOrderRoom) TableName() string {
	return "report_out_of_order_room"
}

// CompRoom is a complimentary room entry.
type CompRoom struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ReportID   uint   `json:"report_id" gorm:"index"`
	RoomNumber string `json:"room_number" gorm:"not null"`
	Notes      string `json:"notes" gorm:"type:text"`
}

func (CompRoom) TableName() string {
	return "report_comp_room"
}

// Incident is a guest or staff incident noted on the report.
type Incident struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ReportID    uint   `json:"report_id" gorm:"index"`
	Description string `json:"description" gorm:"type:text"`
}

func (Incident) TableName() string {
	return "report_incident"
}
