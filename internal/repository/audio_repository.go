package repository

import (
	"context"

	"github.com/noteduco342/bible-reading-backend/internal/models"
	"gorm.io/gorm"
)

type AudioRepository struct {
	db *gorm.DB
}

func NewAudioRepository(db *gorm.DB) *AudioRepository {
	return &AudioRepository{db: db}
}

func (r *AudioRepository) Create(ctx context.Context, rec *models.AudioRecording) error {
	return r.db.WithContext(ctx).Create(rec).Error
}
