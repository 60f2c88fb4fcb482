package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
)

type SiteConfigService struct {
	repo     domain.Repository
	uploader domain.Uploader
	folder   string
	defaults models.WorkshopContent
	logger   *zerolog.Logger
}

func NewSiteConfigService(repo domain.Repository, uploader domain.Uploader, folder string, defaults models.WorkshopContent, logger *zerolog.Logger) *SiteConfigService {
	return &SiteConfigService{
		repo:     repo,
		uploader: uploader,
		folder:   folder,
		defaults: defaults,
		logger:   logger,
	}
}

// BannerURL returns "" while no banner has been uploaded.
func (s *SiteConfigService) BannerURL(ctx context.Context) (string, error) {
	return s.setting(ctx, database.KeyBanner)
}

func (s *SiteConfigService) WorkshopBannerURL(ctx context.Context) (string, error) {
	return s.setting(ctx, database.KeyWorkshopBanner)
}

func (s *SiteConfigService) SetBanner(ctx context.Context, fileName string, r io.Reader) (string, error) {
	return s.upload(ctx, database.KeyBanner, "banners", fileName, r)
}

func (s *SiteConfigService) SetWorkshopBanner(ctx context.Context, fileName string, r io.Reader) (string, error) {
	return s.upload(ctx, database.KeyWorkshopBanner, "workshop", fileName, r)
}

// Workshop returns the stored workshop content or the configured defaults.
func (s *SiteConfigService) Workshop(ctx context.Context) (models.WorkshopContent, error) {
	w, err := s.repo.GetWorkshop(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return models.WorkshopContent{}, err
	}
	return *w, nil
}

func (s *SiteConfigService) UpdateWorkshop(ctx context.Context, w models.WorkshopContent) (models.WorkshopContent, error) {
	w.Title = strings.TrimSpace(w.Title)
	if w.Title == "" {
		return models.WorkshopContent{}, invalid("title", "title is required")
	}
	if err := s.repo.SetWorkshop(ctx, w); err != nil {
		return models.WorkshopContent{}, err
	}
	s.logger.Info().Str("title", w.Title).Msg("Workshop content updated")
	return w, nil
}

// SiteConfig assembles everything the public pages display.
func (s *SiteConfigService) SiteConfig(ctx context.Context) (*models.SiteConfig, error) {
	banner, err := s.BannerURL(ctx)
	if err != nil {
		return nil, err
	}
	workshopBanner, err := s.WorkshopBannerURL(ctx)
	if err != nil {
		return nil, err
	}
	workshop, err := s.Workshop(ctx)
	if err != nil {
		return nil, err
	}
	return &models.SiteConfig{BannerURL: banner, WorkshopBannerURL: workshopBanner, Workshop: workshop}, nil
}

func (s *SiteConfigService) setting(ctx context.Context, key string) (string, error) {
	v, err := s.repo.GetSetting(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (s *SiteConfigService) upload(ctx context.Context, key, sub, fileName string, r io.Reader) (string, error) {
	if fileName == "" || r == nil {
		return "", ErrUploadRequired
	}
	url, err := s.uploader.Upload(ctx, path.Join(s.folder, sub), fileName, r)
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}
	if err := s.repo.SetSetting(ctx, key, url); err != nil {
		return "", err
	}
	s.logger.Info().Str("key", key).Str("url", url).Msg("Banner updated")
	return url, nil
}
