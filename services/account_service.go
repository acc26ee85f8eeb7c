// services/account_service.go - Registration and login
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mentora/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	University  string `json:"university"`
}

// CreateAccount creates the user and its profile in one transaction.
// The profile is not an after-the-fact hook: a user without a profile
// must never be observable.
func (s *AccountService) CreateAccount(in RegisterInput) (*models.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	var existing models.User
	if err := s.db.Where("username = ?", in.Username).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: username already taken", ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:    in.Username,
		Password:    string(hashed),
		DisplayName: strings.TrimSpace(in.DisplayName),
		CreatedAt:   time.Now(),
	}
	if in.Email != "" {
		user.Email = &in.Email
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile := &models.UserProfile{
			UserID:       user.ID,
			IDStatus:     models.IDStatusPending,
			Rating:       5.0,
			LocationText: in.University,
		}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials by username or email.
func (s *AccountService) Authenticate(login, password string) (*models.User, error) {
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}

	var user models.User
	err := s.db.Where("username = ?", login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.Where("LOWER(email) = LOWER(?)", login).First(&user).Error
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	s.db.Model(&user).Update("last_login", time.Now())
	return &user, nil
}

// Profile returns the profile for userID, creating it if an old account
// predates the atomic create path.
func (s *AccountService) Profile(userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.UserProfile{UserID: userID, IDStatus: models.IDStatusPending, Rating: 5.0}
		err = s.db.Create(&profile).Error
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile edits the caller's public profile fields.
func (s *AccountService) UpdateProfile(userID uint, displayName, skills, bio string) error {
	profile, err := s.Profile(userID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if strings.TrimSpace(displayName) != "" {
			if err := tx.Model(&models.User{}).Where("id = ?", userID).
				Update("display_name", strings.TrimSpace(displayName)).Error; err != nil {
				return err
			}
		}
		return tx.Model(profile).Updates(map[string]interface{}{
			"skills": skills,
			"bio":    bio,
		}).Error
	})
}
