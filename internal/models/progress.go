package models

import (
	"time"
)

// ReadingProgress is the bookmark of one partition: a user's personal track
// when GroupID is nil, or their track inside a group.
type ReadingProgress struct {
	ID              uint      `gorm:"primarykey" json:"-"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	GroupID         *uint     `gorm:"index" json:"group_id"`
	LastReadBook    *string   `gorm:"size:255" json:"last_read_book"`
	LastReadChapter *int      `json:"last_read_chapter"`
	LastReadVerse   *int      `json:"last_read_verse"`
	UpdatedAt       time.Time `json:"updated_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ReadingProgress) TableName() string { return "reading_progress" }

type CompletedChapter struct {
	ID            uint      `gorm:"primarykey" json:"-"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	GroupID       *uint     `gorm:"index" json:"group_id"`
	BookName      string    `gorm:"size:255;not null" json:"book_name"`
	ChapterNumber int       `gorm:"not null" json:"chapter_number"`
	CompletedAt   time.Time `json:"completed_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CompletedChapter) TableName() string { return "completed_chapters" }

// ReadingHistory is append-only; rows are never deduplicated or updated.
type ReadingHistory struct {
	ID              uint      `gorm:"primarykey" json:"-"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	GroupID         *uint     `gorm:"index" json:"group_id"`
	BookName        string    `gorm:"size:255;not null" json:"book"`
	ChapterNumber   int       `gorm:"not null;check:chk_reading_history_chapter,chapter_number > 0" json:"startChapter"`
	VerseNumber     int       `gorm:"not null;check:chk_reading_history_verse,verse_number > 0" json:"startVerse"`
	ReadAt          time.Time `gorm:"not null" json:"date"`
	DurationMinutes int       `gorm:"not null;default:0" json:"duration_minutes"`
	SessionID       *string   `gorm:"size:255" json:"session_id,omitempty"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ReadingHistory) TableName() string { return "reading_history" }

type HallOfFame struct {
	ID          uint      `gorm:"primarykey" json:"-"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	GroupID     *uint     `gorm:"index" json:"group_id"`
	Round       int       `gorm:"not null" json:"round"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

func (HallOfFame) TableName() string { return "hall_of_fame" }

// LastRead is a position in the text.
type LastRead struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
}

// HistoryEntry is one reading session as submitted by the client.
type HistoryEntry struct {
	Date            time.Time
	Book            string
	StartChapter    int
	StartVerse      int
	DurationMinutes int
}

// ProgressSnapshot is the read model of one partition.
type ProgressSnapshot struct {
	LastReadBook           string           `json:"lastReadBook"`
	LastReadChapter        int              `json:"lastReadChapter"`
	LastReadVerse          int              `json:"lastReadVerse"`
	LastProgressUpdateDate *time.Time       `json:"lastProgressUpdateDate"`
	CompletedChapters      []string         `json:"completedChapters"`
	History                []ReadingHistory `json:"history"`
}

// LeaderboardRow is one user's aggregate inside a partition scope.
type LeaderboardRow struct {
	UserID                 uint       `json:"-" msgpack:"user_id"`
	Username               string     `json:"username" msgpack:"username"`
	LastReadBook           string     `json:"lastReadBook" msgpack:"last_read_book"`
	LastReadChapter        int        `json:"lastReadChapter" msgpack:"last_read_chapter"`
	LastReadVerse          int        `json:"lastReadVerse" msgpack:"last_read_verse"`
	LastProgressUpdateDate *time.Time `json:"lastProgressUpdateDate" msgpack:"last_progress_update_date"`
	CompletedChaptersCount int64      `json:"completedChaptersCount" msgpack:"completed_chapters_count"`
	CompletedCount         int64      `json:"completed_count" msgpack:"completed_count"`
	CompletionRate         float64    `gorm:"-" json:"completionRate" msgpack:"completion_rate"`
}

// HallOfFameEntry is one completion round joined with its user.
type HallOfFameEntry struct {
	UserID      uint      `json:"user_id" msgpack:"user_id"`
	Username    string    `json:"username" msgpack:"username"`
	Round       int       `json:"round" msgpack:"round"`
	CompletedAt time.Time `json:"completed_at" msgpack:"completed_at"`
}
