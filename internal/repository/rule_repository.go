package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"gorm.io/gorm"

	"studynotes/internal/model"
)

type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// Rules streams a user's rules in insertion order. The sequence holds an
// open cursor while it is being ranged over and can be consumed only once.
func (r *RuleRepository) Rules(ctx context.Context, username string) iter.Seq2[model.Rule, error] {
	return func(yield func(model.Rule, error) bool) {
		rows, err := r.db.WithContext(ctx).
			Model(&model.Rule{}).
			Where("username = ?", username).
			Order("id ASC").
			Rows()
		if err != nil {
			yield(model.Rule{}, fmt.Errorf("query rules failed: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var rule model.Rule
			if err := r.db.ScanRows(rows, &rule); err != nil {
				yield(model.Rule{}, fmt.Errorf("scan rule failed: %w", err))
				return
			}
			if !yield(rule, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.Rule{}, fmt.Errorf("iterate rules failed: %w", err))
		}
	}
}

func (r *RuleRepository) Create(ctx context.Context, rule *model.Rule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("create rule failed: %w", err)
	}
	return nil
}

func (r *RuleRepository) ListByUsername(ctx context.Context, username string) ([]model.Rule, error) {
	var list []model.Rule
	if err := r.db.WithContext(ctx).Where("username = ?", username).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list rules failed: %w", err)
	}
	return list, nil
}

func (r *RuleRepository) GetByName(ctx context.Context, username, name string) (*model.Rule, error) {
	var rule model.Rule
	if err := r.db.WithContext(ctx).Where("username = ? AND name = ?", username, name).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rule failed: %w", err)
	}
	return &rule, nil
}

// UpdateByName rewrites type and description of the rule identified by
// (username, name). It reports whether a row was changed.
func (r *RuleRepository) UpdateByName(ctx context.Context, username, name, ruleType, description string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Rule{}).
		Where("username = ? AND name = ?", username, name).
		Updates(map[string]interface{}{
			"type":        ruleType,
			"description": description,
		})
	if res.Error != nil {
		return false, fmt.Errorf("update rule failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *RuleRepository) DeleteByIDAndUsername(ctx context.Context, id uint, username string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND username = ?", id, username).Delete(&model.Rule{})
	if res.Error != nil {
		return false, fmt.Errorf("delete rule failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
