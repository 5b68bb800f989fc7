package gorm

import (
	"time"

	authd "github.com/gamecrate/authd"
)

// PrincipalModel is the GORM model for principals. The partial unique
// index on (provider, external_id) enforces one principal per external
// identity while leaving local-only rows unconstrained.
type PrincipalModel struct {
	ID        string `gorm:"primaryKey;size:64"`
	Username  string `gorm:"size:64;uniqueIndex"`
	Email     string `gorm:"size:255;uniqueIndex"`
	FirstName string `gorm:"size:128"`
	LastName  string `gorm:"size:128"`

	PasswordHash string `gorm:"size:255"`

	Provider   string `gorm:"size:32;index:idx_provider_external,unique,where:provider <> ''"`
	ExternalID string `gorm:"size:255;index:idx_provider_external,unique,where:provider <> ''"`

	IsActive bool   `gorm:"default:true"`
	Role     string `gorm:"size:32;default:user"`

	DateOfBirth     *time.Time
	CountryOfOrigin string `gorm:"size:64"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (PrincipalModel) TableName() string {
	return "principals"
}

func (m *PrincipalModel) ToPrincipal() *authd.Principal {
	return &authd.Principal{
		ID:              m.ID,
		Username:        m.Username,
		Email:           m.Email,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		PasswordHash:    m.PasswordHash,
		Provider:        m.Provider,
		ExternalID:      m.ExternalID,
		IsActive:        m.IsActive,
		Role:            m.Role,
		DateOfBirth:     m.DateOfBirth,
		CountryOfOrigin: m.CountryOfOrigin,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func PrincipalToModel(p *authd.Principal) *PrincipalModel {
	return &PrincipalModel{
		ID:              p.ID,
		Username:        p.Username,
		Email:           p.Email,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		PasswordHash:    p.PasswordHash,
		Provider:        p.Provider,
		ExternalID:      p.ExternalID,
		IsActive:        p.IsActive,
		Role:            p.Role,
		DateOfBirth:     p.DateOfBirth,
		CountryOfOrigin: p.CountryOfOrigin,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
