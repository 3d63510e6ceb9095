package store

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps the SQLite database behind typed accessors.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&Video{}, &Clip{}, &Session{}, &Recording{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetOrCreateVideo returns the video row for a path, creating it on first use.
func (s *Store) GetOrCreateVideo(path, title string, duration float64) (*Video, error) {
	var video Video
	err := s.db.Where("path = ?", path).First(&video).Error
	if err == nil {
		return &video, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	video = Video{Path: path, Title: title, Duration: duration}
	if err := s.db.Create(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// CreateClip records an extracted clip.
func (s *Store) CreateClip(clip *Clip) error {
	return s.db.Create(clip).Error
}

// GetClip fetches a clip by ID.
func (s *Store) GetClip(id uint) (*Clip, error) {
	var clip Clip
	if err := s.db.First(&clip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &clip, nil
}

// ListClips returns clips newest-first, optionally filtered by video.
// videoID 0 means all videos.
func (s *Store) ListClips(videoID uint, limit int) ([]Clip, error) {
	q := s.db.Order("created_at DESC").Limit(limit)
	if videoID != 0 {
		q = q.Where("video_id = ?", videoID)
	}

	var clips []Clip
	if err := q.Find(&clips).Error; err != nil {
		return nil, err
	}
	return clips, nil
}

// DeleteClip removes a clip row and its recordings.
func (s *Store) DeleteClip(id uint) error {
	res := s.db.Select("Recordings").Delete(&Clip{Model: gorm.Model{ID: id}})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateRecording stores an uploaded attempt, assigning the next attempt
// number for its clip.
func (s *Store) CreateRecording(rec *Recording) error {
	if rec.ClipID != nil {
		var count int64
		if err := s.db.Model(&Recording{}).Where("clip_id = ?", *rec.ClipID).Count(&count).Error; err != nil {
			return err
		}
		rec.AttemptNumber = int(count) + 1
	} else if rec.AttemptNumber == 0 {
		rec.AttemptNumber = 1
	}
	return s.db.Create(rec).Error
}

// ListRecordings returns recordings newest-first, optionally filtered by clip.
func (s *Store) ListRecordings(clipID uint, limit int) ([]Recording, error) {
	q := s.db.Order("created_at DESC").Limit(limit)
	if clipID != 0 {
		q = q.Where("clip_id = ?", clipID)
	}

	var recs []Recording
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// GetRecordingByFilename fetches a recording by its stored filename.
func (s *Store) GetRecordingByFilename(filename string) (*Recording, error) {
	var rec Recording
	if err := s.db.Where("filename = ?", filename).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// DeleteRecording removes a recording row by filename.
func (s *Store) DeleteRecording(filename string) error {
	res := s.db.Where("filename = ?", filename).Delete(&Recording{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateSession starts a new practice session.
func (s *Store) CreateSession(notes string) (*Session, error) {
	session := Session{StartedAt: time.Now().UTC(), Notes: notes}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession fetches a session by ID.
func (s *Store) GetSession(id uint) (*Session, error) {
	var session Session
	if err := s.db.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListSessions returns sessions newest-first.
func (s *Store) ListSessions(limit int) ([]Session, error) {
	var sessions []Session
	if err := s.db.Order("started_at DESC").Limit(limit).Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// EndSession marks a session finished, appending notes if provided.
func (s *Store) EndSession(id uint, notes string) (*Session, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}
	if session.EndedAt != nil {
		return session, nil
	}

	now := time.Now().UTC()
	session.EndedAt = &now
	if notes != "" {
		session.Notes = notes
	}
	if err := s.db.Save(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes a session and detaches nothing else; recordings made
// during it are deleted with it.
func (s *Store) DeleteSession(id uint) error {
	res := s.db.Select("Recordings").Delete(&Session{Model: gorm.Model{ID: id}})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStats aggregates overall practice statistics.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats

	if err := s.db.Model(&Recording{}).Count(&stats.TotalRecordings).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&Session{}).Count(&stats.TotalSessions).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&Clip{}).Count(&stats.TotalClips).Error; err != nil {
		return nil, err
	}

	var ended []Session
	if err := s.db.Where("ended_at IS NOT NULL").Find(&ended).Error; err != nil {
		return nil, err
	}
	for i := range ended {
		stats.TotalPracticeMinutes += ended[i].DurationMinutes()
	}
	stats.TotalPracticeMinutes = math.Round(stats.TotalPracticeMinutes*10) / 10

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	if err := s.db.Model(&Recording{}).Where("created_at >= ?", weekAgo).Count(&stats.RecordingsThisWeek).Error; err != nil {
		return nil, err
	}

	if stats.TotalSessions > 0 {
		avg := float64(stats.TotalRecordings) / float64(stats.TotalSessions)
		stats.AvgRecordingsPerSession = math.Round(avg*10) / 10
	}
	return &stats, nil
}
