package domain

import (
	"time"
)

type ShiftDefinition struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	StartTime     string    `json:"startTime"` // HH:mm
	EndTime       string    `json:"endTime"`   // HH:mm
	DurationHours float64   `json:"durationHours"`
	DisplayOrder  int32     `json:"displayOrder"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}
