package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/pysugar/atlassian-bridge/internal/db/models"
	"gorm.io/gorm"
)

// ConnectionStore owns all reads and writes of Connection rows. Callers get
// copies back; every mutation goes through one of the methods below, each a
// single-row transaction with respect to the same user.
type ConnectionStore struct {
	db *gorm.DB
}

// NewConnectionStore wraps the given database handle.
func NewConnectionStore(db *gorm.DB) *ConnectionStore {
	return &ConnectionStore{db: db}
}

// GetActiveByUserID returns the user's active connection, or nil if none.
func (s *ConnectionStore) GetActiveByUserID(userID string) (*models.Connection, error) {
	var conn models.Connection
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).First(&conn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// CreateParams carries everything needed to record a fresh OAuth grant.
type CreateParams struct {
	UserID             string
	AtlassianAccountID string
	AccessToken        string
	RefreshToken       string
	TokenExpiresAt     time.Time
	Scopes             string
}

// Create inserts a new active connection for the user, deactivating any
// existing rows in the same transaction. Prior grants stay around as history.
func (s *ConnectionStore) Create(p CreateParams) (*models.Connection, error) {
	conn := models.Connection{
		ID:                 uuid.New().String(),
		UserID:             p.UserID,
		AtlassianAccountID: p.AtlassianAccountID,
		AccessToken:        p.AccessToken,
		RefreshToken:       p.RefreshToken,
		TokenExpiresAt:     p.TokenExpiresAt,
		Scopes:             p.Scopes,
		IsActive:           true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Connection{}).
			Where("user_id = ?", p.UserID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&conn).Error
	})
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// UpdateTokens writes a refreshed credential onto the user's active row.
// All three fields change together or not at all.
func (s *ConnectionStore) UpdateTokens(userID, accessToken, refreshToken string, expiresAt time.Time) (*models.Connection, error) {
	var conn models.Connection
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND is_active = ?", userID, true).First(&conn).Error; err != nil {
			return err
		}
		conn.AccessToken = accessToken
		conn.RefreshToken = refreshToken
		conn.TokenExpiresAt = expiresAt
		return tx.Save(&conn).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// Deactivate flips the user's active connection off. Returns false when the
// user had no active connection.
func (s *ConnectionStore) Deactivate(userID string) (bool, error) {
	result := s.db.Model(&models.Connection{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete permanently removes every connection row for the user, active or
// not. Distinct from Deactivate, which keeps history.
func (s *ConnectionStore) Delete(userID string) (bool, error) {
	result := s.db.Where("user_id = ?", userID).Delete(&models.Connection{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListActive returns every active connection across all users.
func (s *ConnectionStore) ListActive() ([]models.Connection, error) {
	var conns []models.Connection
	if err := s.db.Where("is_active = ?", true).Order("updated_at DESC").Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}
