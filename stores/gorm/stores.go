package gorm

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/panyam/whispr"
)

// AutoMigrate runs database migrations for all whispr tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{})
}

// CredentialStore implements whispr.CredentialStore using GORM. The db
// must be opened with TranslateError so unique-constraint violations
// surface as gorm.ErrDuplicatedKey.
type CredentialStore struct {
	db *gorm.DB
}

func NewCredentialStore(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) FindByID(userID string) (*whispr.User, error) {
	return s.first("id = ?", userID)
}

func (s *CredentialStore) FindByUsername(username string) (*whispr.User, error) {
	return s.first("username = ?", username)
}

// FindOrCreateByGoogleID relies on the unique index on google_id for
// atomicity: when two concurrent calls race, the loser's insert fails with
// a duplicate-key error and is retried as a lookup.
func (s *CredentialStore) FindOrCreateByGoogleID(googleID string) (*whispr.User, error) {
	user, err := s.first("google_id = ?", googleID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, whispr.ErrNotFound) {
		return nil, err
	}

	model := &UserModel{ID: uuid.NewString(), GoogleID: &googleID}
	err = s.db.Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race; the other caller's record wins.
		return s.first("google_id = ?", googleID)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return model.ToUser(), nil
}

func (s *CredentialStore) CreateLocal(username, rawPassword string) (*whispr.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(passwordHash)
	model := &UserModel{ID: uuid.NewString(), Username: &username, PasswordHash: &hash}
	err = s.db.Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, whispr.ErrDuplicateUsername
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return model.ToUser(), nil
}

func (s *CredentialStore) VerifyLocal(username, rawPassword string) (*whispr.User, error) {
	user, err := s.FindByUsername(username)
	if errors.Is(err, whispr.ErrNotFound) {
		return nil, whispr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		// Federated-only account; no local credential to check.
		return nil, whispr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(rawPassword)); err != nil {
		return nil, whispr.ErrInvalidCredentials
	}
	return user, nil
}

func (s *CredentialStore) SetSecret(userID, secret string) error {
	result := s.db.Model(&UserModel{}).Where("id = ?", userID).Update("secret", secret)
	if result.Error != nil {
		return storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return whispr.ErrNotFound
	}
	return nil
}

func (s *CredentialStore) ListUsersWithSecret() ([]*whispr.User, error) {
	var models []UserModel
	if err := s.db.Find(&models, "secret IS NOT NULL AND secret != ''").Error; err != nil {
		return nil, storeErr(err)
	}
	users := make([]*whispr.User, 0, len(models))
	for i := range models {
		users = append(users, models[i].ToUser())
	}
	return users, nil
}

func (s *CredentialStore) first(query string, args ...any) (*whispr.User, error) {
	var model UserModel
	err := s.db.First(&model, append([]any{query}, args...)...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, whispr.ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return model.ToUser(), nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", whispr.ErrStoreUnavailable, err)
}
