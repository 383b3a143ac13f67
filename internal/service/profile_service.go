package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meetmii/internal/models"
	"meetmii/internal/repository"
	"meetmii/internal/util"
)

var ErrProfileNotFound = errors.New("profile not found")

// ScanNotifier is the fire-and-forget hook invoked on every successful
// public profile lookup. Implemented by events.ScanPublisher.
type ScanNotifier interface {
	PublishScan(ctx context.Context, username string)
}

// ProfileService handles profile upserts and public lookups.
type ProfileService struct {
	profiles repository.ProfileRepository
	notifier ScanNotifier
	logger   *zap.Logger
}

// ProfileUpdateRequest is the body for POST /profile. All fields are
// optional; only supplied fields are applied.
type ProfileUpdateRequest struct {
	DisplayName        *string `json:"display_name,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	Instagram          *string `json:"instagram,omitempty"`
	Snapchat           *string `json:"snapchat,omitempty"`
	LinkedIn           *string `json:"linkedin,omitempty"`
	Twitter            *string `json:"twitter,omitempty"`
	TikTok             *string `json:"tiktok,omitempty"`
	ContactEmail       *string `json:"email,omitempty"`
	Website            *string `json:"website,omitempty"`
	IsProfessionalMode *bool   `json:"is_professional_mode,omitempty"`
}

func NewProfileService(profiles repository.ProfileRepository, notifier ScanNotifier, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
	}
}

// Upsert creates the caller's profile when none exists (seeding the
// username from the token identity) and otherwise applies only the
// supplied fields, refreshing updated_at.
func (s *ProfileService) Upsert(ctx context.Context, userID uint, username string, req *ProfileUpdateRequest) (*models.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("find profile: %w", err)
		}
		profile = &models.Profile{
			UserID:   userID,
			Username: username,
		}
	}

	applyUpdate(profile, req)
	profile.UpdatedAt = time.Now().UTC()

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("profile upserted",
		util.Int("user_id", int(userID)),
		util.String("username", profile.Username),
	)

	return profile, nil
}

// GetPublic returns the viewer-facing projection of a profile and fires the
// scan-event notification. The notification never affects the response.
func (s *ProfileService) GetPublic(ctx context.Context, username string) (*models.ProfileView, error) {
	profile, err := s.profiles.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}

	view := profile.PublicView()

	if s.notifier != nil {
		s.notifier.PublishScan(ctx, profile.Username)
	}

	return &view, nil
}

// HealthCheck verifies the profile store is reachable.
func (s *ProfileService) HealthCheck(ctx context.Context) error {
	return s.profiles.HealthCheck(ctx)
}

func applyUpdate(profile *models.Profile, req *ProfileUpdateRequest) {
	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Instagram != nil {
		profile.Instagram = *req.Instagram
	}
	if req.Snapchat != nil {
		profile.Snapchat = *req.Snapchat
	}
	if req.LinkedIn != nil {
		profile.LinkedIn = *req.LinkedIn
	}
	if req.Twitter != nil {
		profile.Twitter = *req.Twitter
	}
	if req.TikTok != nil {
		profile.TikTok = *req.TikTok
	}
	if req.ContactEmail != nil {
		profile.ContactEmail = *req.ContactEmail
	}
	if req.Website != nil {
		profile.Website = *req.Website
	}
	if req.IsProfessionalMode != nil {
		profile.IsProfessionalMode = *req.IsProfessionalMode
	}
}
