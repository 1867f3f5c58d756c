package model

import "time"

// User is a controller UI/API account.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64" json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RunRecord is the relational copy of a remediation report kept by the
// controller for long-term history; log lines are newline-joined.
type RunRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RunID     string    `gorm:"size:64;index" json:"runId"`
	Host      string    `gorm:"size:255;index" json:"host"`
	Domain    string    `gorm:"size:255" json:"domain,omitempty"`
	Procedure string    `gorm:"size:64;index" json:"procedure"`
	Severity  int       `json:"severity"`
	Logs      string    `gorm:"type:text" json:"logs,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
