package models

import "time"

// OptionModel is the persistence model for named store options.
type OptionModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"column:option_name;type:varchar(191);not null;uniqueIndex"`
	Value     string    `gorm:"column:option_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OptionModel) TableName() string {
	return "options"
}
