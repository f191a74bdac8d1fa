package domain

import "time"

// Motel is the master record for a property. Reports belong to exactly one
// motel and are removed with it.
type Motel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MotelName string    `json:"motel_name" gorm:"column:motel_name;uniqueIndex;not null"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`

	Reports []Report `json:"-" gorm:"foreignKey:MotelID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (Motel) TableName() string {
	return "motel_master"
}
