package models

import (
	"time"
)

type AudioRecording struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	GroupID         *uint     `gorm:"index" json:"group_id"`
	FileKey         string    `gorm:"size:512;uniqueIndex;not null" json:"file_key"`
	BookName        string    `gorm:"size:255;not null" json:"book_name"`
	Chapter         int       `gorm:"not null" json:"chapter"`
	Verse           int       `gorm:"not null" json:"verse"`
	DurationSeconds float64   `gorm:"not null;default:0" json:"duration_seconds"`
	FileSizeBytes   int64     `gorm:"not null;default:0" json:"file_size_bytes"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

func (AudioRecording) TableName() string { return "audio_recordings" }
