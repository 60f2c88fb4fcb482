package service

import (
	"context"
	"fmt"
	"sync"

	"slotbook/internal/config"
	"slotbook/internal/domain"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
)

// CatalogService keeps the package catalog in memory, refreshed after every write.
type CatalogService struct {
	repo     domain.Repository
	logger   *zerolog.Logger
	packages []models.EventPackage
	byPrice  map[string]models.EventPackage
	mu       sync.RWMutex
}

func NewCatalogService(repo domain.Repository, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		repo:    repo,
		logger:  logger,
		byPrice: make(map[string]models.EventPackage),
	}
}

// Seed stores defaults when the catalog table is empty, then loads the catalog.
func (s *CatalogService) Seed(ctx context.Context, defaults []models.EventPackage) error {
	seeded, err := s.repo.SeedPackages(ctx, defaults)
	if err != nil {
		return fmt.Errorf("failed to seed packages: %w", err)
	}
	if seeded {
		s.logger.Info().Int("count", len(defaults)).Msg("Seeded package catalog")
	}
	return s.Refresh(ctx)
}

func (s *CatalogService) Packages() []models.EventPackage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.EventPackage(nil), s.packages...)
}

// Lookup finds a package by its price string.
func (s *CatalogService) Lookup(price string) (models.EventPackage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byPrice[price]
	return p, ok
}

// Replace swaps the whole catalog. Prices must be unique and non-empty.
func (s *CatalogService) Replace(ctx context.Context, pkgs []models.EventPackage) error {
	if err := config.ValidatePackages(pkgs); err != nil {
		return invalid("packages", err.Error())
	}
	if err := s.repo.ReplacePackages(ctx, pkgs); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *CatalogService) Refresh(ctx context.Context) error {
	pkgs, err := s.repo.ListPackages(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages = pkgs
	s.byPrice = make(map[string]models.EventPackage, len(pkgs))
	for _, p := range pkgs {
		s.byPrice[p.Price] = p
	}
	return nil
}
