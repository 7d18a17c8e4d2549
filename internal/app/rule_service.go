package app

import (
	"context"
	"errors"
	"strings"

	"studynotes/internal/model"
)

var (
	ErrRuleExists   = errors.New("rule already exists")
	ErrRuleNotFound = errors.New("rule not found")
)

type RuleStore interface {
	Create(ctx context.Context, rule *model.Rule) error
	ListByUsername(ctx context.Context, username string) ([]model.Rule, error)
	GetByName(ctx context.Context, username, name string) (*model.Rule, error)
	UpdateByName(ctx context.Context, username, name, ruleType, description string) (bool, error)
	DeleteByIDAndUsername(ctx context.Context, id uint, username string) (bool, error)
}

type RuleService struct {
	rules RuleStore
}

func NewRuleService(rules RuleStore) *RuleService {
	return &RuleService{rules: rules}
}

// RuleInput describes a category. Type is kept as typed; it is normalized
// only when rules are handed to the classifier.
type RuleInput struct {
	Name        string
	Type        string
	Description string
}

func (in RuleInput) trimmed() (RuleInput, bool) {
	out := RuleInput{
		Name:        strings.TrimSpace(in.Name),
		Type:        strings.TrimSpace(in.Type),
		Description: strings.TrimSpace(in.Description),
	}
	return out, out.Name != "" && out.Type != "" && out.Description != ""
}

func (s *RuleService) List(ctx context.Context, username string) ([]model.Rule, error) {
	if username == "" {
		return nil, ErrInvalidInput
	}
	return s.rules.ListByUsername(ctx, username)
}

func (s *RuleService) Create(ctx context.Context, username string, input RuleInput) (*model.Rule, error) {
	in, ok := input.trimmed()
	if username == "" || !ok {
		return nil, ErrInvalidInput
	}

	existing, err := s.rules.GetByName(ctx, username, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRuleExists
	}

	rule := &model.Rule{
		Username:    username,
		Name:        in.Name,
		Type:        in.Type,
		Description: in.Description,
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// Update replaces type and description of the rule named input.Name.
func (s *RuleService) Update(ctx context.Context, username string, input RuleInput) (*model.Rule, error) {
	in, ok := input.trimmed()
	if username == "" || !ok {
		return nil, ErrInvalidInput
	}

	updated, err := s.rules.UpdateByName(ctx, username, in.Name, in.Type, in.Description)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrRuleNotFound
	}
	return s.rules.GetByName(ctx, username, in.Name)
}

func (s *RuleService) Delete(ctx context.Context, username string, id uint) error {
	if username == "" || id == 0 {
		return ErrInvalidInput
	}
	deleted, err := s.rules.DeleteByIDAndUsername(ctx, id, username)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRuleNotFound
	}
	return nil
}
