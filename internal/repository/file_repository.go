package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studynotes/internal/model"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *model.File) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}
	return nil
}

func (r *FileRepository) ListByUsername(ctx context.Context, username string) ([]model.File, error) {
	var list []model.File
	if err := r.db.WithContext(ctx).Where("username = ?", username).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list files failed: %w", err)
	}
	return list, nil
}

func (r *FileRepository) DeleteByIDAndUsername(ctx context.Context, id uint, username string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND username = ?", id, username).Delete(&model.File{})
	if res.Error != nil {
		return false, fmt.Errorf("delete file failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
