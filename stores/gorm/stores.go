package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	authd "github.com/gamecrate/authd"
)

// AutoMigrate runs database migrations for the principal table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&PrincipalModel{})
}

// PrincipalStore implements authd.PrincipalStore using GORM.
type PrincipalStore struct {
	db *gorm.DB
}

func NewPrincipalStore(db *gorm.DB) *PrincipalStore {
	return &PrincipalStore{db: db}
}

func (s *PrincipalStore) ByIdentifier(ctx context.Context, identifier string) (*authd.Principal, error) {
	var model PrincipalModel
	err := s.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)", identifier, identifier).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authd.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("principal lookup failed: %w", err)
	}
	return model.ToPrincipal(), nil
}

func (s *PrincipalStore) ByUsername(ctx context.Context, username string) (*authd.Principal, error) {
	var model PrincipalModel
	err := s.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", username).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authd.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("principal lookup failed: %w", err)
	}
	return model.ToPrincipal(), nil
}

func (s *PrincipalStore) ByProviderID(ctx context.Context, provider, externalID string) (*authd.Principal, error) {
	var model PrincipalModel
	err := s.db.WithContext(ctx).
		Where("provider = ? AND external_id = ?", provider, externalID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authd.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("principal lookup failed: %w", err)
	}
	return model.ToPrincipal(), nil
}

func (s *PrincipalStore) Create(ctx context.Context, p *authd.Principal) error {
	model := PrincipalToModel(p)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("principal create failed: %w", err)
	}
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (s *PrincipalStore) Save(ctx context.Context, p *authd.Principal) error {
	model := PrincipalToModel(p)
	if err := s.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("principal save failed: %w", err)
	}
	p.UpdatedAt = model.UpdatedAt
	return nil
}
