package domain

import "time"

// AuditLog records one admin write request
type AuditLog struct {
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`

	Action    string `gorm:"column:action;size:32;index" json:"action"` // publish, draft_update, draft_publish, draft_delete, post_delete, upload
	Method    string `gorm:"column:method;size:8" json:"method"`
	Path      string `gorm:"column:path;size:255" json:"path"`
	Locale    string `gorm:"column:locale;size:8" json:"locale"`
	Slug      string `gorm:"column:slug;size:255;index" json:"slug"`
	Status    int    `gorm:"column:status" json:"status"`
	ClientIP  string `gorm:"column:client_ip;size:64" json:"client_ip"`
	UserAgent string `gorm:"column:user_agent;size:255" json:"user_agent"`
	RequestID string `gorm:"column:request_id;size:64" json:"request_id"`

	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
