package models

import "time"

// AppSetting is a small persisted key/value pair, e.g. the gateway token
// hash. See database.GetSetting / SetSetting.
type AppSetting struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
