// services/verification_service.go - Identity verification gate
package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"mentora/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Institution markers accepted on the ID document. Matching is
// case-insensitive substring search over the extracted text.
var institutionMarkers = []string{"palawan state", "psu"}

type VerificationService struct {
	db    *gorm.DB
	store ObjectStore
	ocr   TextExtractor
}

// NewVerificationService wires the gate. ocr may be nil (or a typed nil
// must be avoided by the caller) when the analysis collaborator is not
// configured; uploads then stay pending for manual review.
func NewVerificationService(db *gorm.DB, store ObjectStore, ocr TextExtractor) *VerificationService {
	return &VerificationService{db: db, store: store, ocr: ocr}
}

// VerifyResult is the user-visible outcome of an upload.
type VerifyResult struct {
	Status  string `json:"id_status"`
	Message string `json:"message"`
}

// Verify runs the identity gate for userID over an uploaded document.
//
// The document hash is checked for reuse across accounts before
// anything else; a duplicate leaves the caller's status untouched. The
// analysis call happens with no row lock held and any failure there
// degrades the status to pending instead of surfacing an error.
func (s *VerificationService) Verify(userID uint, fileName, contentType string, data []byte) (*VerifyResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: an ID document is required", ErrValidation)
	}

	var profile models.UserProfile
	if err := s.db.Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	if profile.IsVerified() {
		return &VerifyResult{Status: profile.IDStatus, Message: "Your ID is already verified."}, nil
	}

	sum := sha256.Sum256(data)
	docHash := hex.EncodeToString(sum[:])

	var count int64
	s.db.Model(&models.UserProfile{}).
		Where("id_document_hash = ? AND user_id <> ?", docHash, userID).
		Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: this ID has already been used by another user", ErrDuplicateDocument)
	}

	objectKey := fmt.Sprintf("ids/%s%s", uuid.New().String(), path.Ext(fileName))
	if s.store != nil {
		if err := s.store.Upload(objectKey, data, contentType); err != nil {
			return nil, err
		}
	}

	if s.ocr == nil {
		if err := s.setStatus(&profile, models.IDStatusPending, objectKey, nil); err != nil {
			return nil, err
		}
		return &VerifyResult{
			Status:  models.IDStatusPending,
			Message: "ID uploaded. Verification will be processed manually.",
		}, nil
	}

	text, err := s.ocr.ExtractText(fileName, contentType, data)
	if err != nil {
		// Collaborator failure is never a hard error for the user.
		log.Printf("ID verification service unavailable for user %d: %v", userID, err)
		if err := s.setStatus(&profile, models.IDStatusPending, objectKey, nil); err != nil {
			return nil, err
		}
		return &VerifyResult{
			Status:  models.IDStatusPending,
			Message: "ID uploaded but verification service is currently not available. Status set to pending for manual review.",
		}, nil
	}

	if MatchesIdentity(text, profile.User.Name()) {
		if err := s.setStatus(&profile, models.IDStatusVerified, objectKey, &docHash); err != nil {
			return nil, err
		}
		return &VerifyResult{Status: models.IDStatusVerified, Message: "ID verified successfully."}, nil
	}

	if err := s.setStatus(&profile, models.IDStatusRejected, objectKey, nil); err != nil {
		return nil, err
	}
	return &VerifyResult{Status: models.IDStatusRejected, Message: "ID verification failed."}, nil
}

// Status returns the current verification state for userID.
func (s *VerificationService) Status(userID uint) (string, error) {
	var profile models.UserProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return "", err
	}
	return profile.IDStatus, nil
}

func (s *VerificationService) setStatus(profile *models.UserProfile, status, objectKey string, docHash *string) error {
	updates := map[string]interface{}{
		"id_status":       status,
		"id_document_key": objectKey,
		"updated_at":      time.Now(),
	}
	if docHash != nil {
		updates["id_document_hash"] = *docHash
	}
	return s.db.Model(profile).Updates(updates).Error
}

// MatchesIdentity reports whether the extracted document text carries
// an institution marker and a fragment of the holder's display name.
// Name tokens shorter than 2 characters are ignored.
func MatchesIdentity(extractedText, displayName string) bool {
	lowered := strings.ToLower(extractedText)

	hasInstitution := false
	for _, marker := range institutionMarkers {
		if strings.Contains(lowered, marker) {
			hasInstitution = true
			break
		}
	}
	if !hasInstitution {
		return false
	}

	for _, part := range strings.Fields(strings.ToLower(displayName)) {
		if len(part) >= 2 && strings.Contains(lowered, part) {
			return true
		}
	}
	return false
}
