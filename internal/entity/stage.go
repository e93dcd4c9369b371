package entity

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// StageName identifies one discrete pipeline stage.
type StageName string

const (
	StageFetchFinancial   StageName = "fetch_financial"
	StageAnalyzeSentiment StageName = "analyze_sentiment"
	StageComposeArticle   StageName = "compose_article"
	StageNotifyPending    StageName = "notify_pending"
	StageCleanup          StageName = "cleanup"
)

// StageRun statuses.
const (
	StageRunStatusRunning   = "running"
	StageRunStatusCompleted = "completed"
	StageRunStatusFailed    = "failed"
	StageRunStatusSkipped   = "skipped"
)

// StageSchedule is a cron-driven trigger for one stage.
type StageSchedule struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Stage          StageName      `gorm:"type:varchar(50);not null;unique" json:"stage"`
	CronExpression string         `gorm:"not null" json:"cron_expression"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	Payload        datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	NextExecution  sql.NullTime   `json:"next_execution"`
	LastExecution  sql.NullTime   `json:"last_execution"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the StageSchedule model.
func (StageSchedule) TableName() string {
	return "stage_schedules"
}

// StageRun records one execution of a stage, scheduled or on-demand.
type StageRun struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Stage        StageName      `gorm:"type:varchar(50);not null;index" json:"stage"`
	ScheduleID   *uint          `json:"schedule_id"`
	Status       string         `gorm:"type:varchar(20);not null" json:"status"`
	Output       sql.NullString `json:"output"`
	ErrorMessage sql.NullString `json:"error_message"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at"`
}

// TableName specifies the table name for the StageRun model.
func (StageRun) TableName() string {
	return "stage_runs"
}
