package store

import (
	"time"

	"gorm.io/gorm"
)

// Video is a source media file clips are cut from.
type Video struct {
	gorm.Model
	Path     string  `json:"path" gorm:"uniqueIndex;size:1024;not null"`
	Title    string  `json:"title" gorm:"size:256"`
	Duration float64 `json:"duration"`

	Clips []Clip `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Clip is an audio segment extracted from a video.
type Clip struct {
	gorm.Model
	VideoID    uint    `json:"video_id" gorm:"index;not null"`
	StartTime  float64 `json:"start_time" gorm:"not null"`
	EndTime    float64 `json:"end_time" gorm:"not null"`
	AudioPath  string  `json:"audio_path" gorm:"size:1024;not null"`
	Transcript string  `json:"transcript" gorm:"type:text"`

	Recordings []Recording `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Duration is the clip length in seconds.
func (c *Clip) Duration() float64 {
	return c.EndTime - c.StartTime
}

// Session is one practice sitting.
type Session struct {
	gorm.Model
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Notes     string     `json:"notes" gorm:"type:text"`

	Recordings []Recording `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// DurationMinutes returns the session length, or 0 while still running.
func (s *Session) DurationMinutes() float64 {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt).Minutes()
}

// Recording is one uploaded shadowing attempt, optionally tied to a clip
// and a session.
type Recording struct {
	gorm.Model
	ClipID        *uint  `json:"clip_id" gorm:"index"`
	SessionID     *uint  `json:"session_id" gorm:"index"`
	AudioPath     string `json:"-" gorm:"size:1024;not null"`
	Filename      string `json:"filename" gorm:"size:256;not null;index"`
	AttemptNumber int    `json:"attempt_number" gorm:"default:1"`
}

// Stats aggregates practice totals for the dashboard.
type Stats struct {
	TotalRecordings         int64   `json:"total_recordings"`
	TotalSessions           int64   `json:"total_sessions"`
	TotalClips              int64   `json:"total_clips"`
	TotalPracticeMinutes    float64 `json:"total_practice_minutes"`
	RecordingsThisWeek      int64   `json:"recordings_this_week"`
	AvgRecordingsPerSession float64 `json:"average_recordings_per_session"`
}
