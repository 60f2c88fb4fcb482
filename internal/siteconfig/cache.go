// Package siteconfig caches the display configuration and package catalog the booking form reads.
package siteconfig

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"slotbook/internal/models"

	"github.com/rs/zerolog"
)

// Source is where the cache pulls from, usually the backend client.
type Source interface {
	ListPackages(ctx context.Context) ([]models.EventPackage, error)
	SiteConfig(ctx context.Context) (*models.SiteConfig, error)
}

type Cache struct {
	source         Source
	defaultPackage string
	logger         *zerolog.Logger
	now            func() time.Time

	mu        sync.RWMutex
	packages  []models.EventPackage
	byPrice   map[string]models.EventPackage
	config    models.SiteConfig
	refreshed time.Time
}

// New builds a cache seeded with packages. defaultPackage is the price selected on a new form.
func New(source Source, defaultPackage string, packages []models.EventPackage, logger *zerolog.Logger) *Cache {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	c := &Cache{
		source:         source,
		defaultPackage: defaultPackage,
		logger:         logger,
		now:            time.Now,
		config:         models.SiteConfig{Workshop: models.DefaultWorkshop()},
	}
	c.setPackages(packages)
	return c
}

// Refresh reloads the catalog and site config. A catalog failure is returned and the
// previous catalog kept; a site config failure keeps the previous content.
func (c *Cache) Refresh(ctx context.Context) error {
	packages, err := c.source.ListPackages(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to refresh package catalog")
		return fmt.Errorf("failed to refresh packages: %w", err)
	}
	c.setPackages(packages)

	cfg, err := c.source.SiteConfig(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to refresh site config, keeping previous content")
	} else {
		if cfg.Workshop.Title == "" {
			cfg.Workshop = models.DefaultWorkshop()
		}
		c.mu.Lock()
		c.config = *cfg
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.refreshed = c.now()
	c.mu.Unlock()

	c.logger.Debug().Int("packages", len(packages)).Msg("site config refreshed")
	return nil
}

// RefreshIfStale refreshes when the last successful refresh is older than ttl.
func (c *Cache) RefreshIfStale(ctx context.Context, ttl time.Duration) error {
	c.mu.RLock()
	fresh := !c.refreshed.IsZero() && c.now().Sub(c.refreshed) < ttl
	c.mu.RUnlock()
	if fresh {
		return nil
	}
	return c.Refresh(ctx)
}

func (c *Cache) setPackages(packages []models.EventPackage) {
	sorted := append([]models.EventPackage(nil), packages...)
	SortPackages(sorted)

	byPrice := make(map[string]models.EventPackage, len(sorted))
	for _, p := range sorted {
		byPrice[p.Price] = p
	}

	c.mu.Lock()
	c.packages = sorted
	c.byPrice = byPrice
	c.mu.Unlock()
}

// Packages returns the catalog in display order.
func (c *Cache) Packages() []models.EventPackage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.EventPackage(nil), c.packages...)
}

// Prices returns the catalog prices in display order.
func (c *Cache) Prices() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.packages))
	for _, p := range c.packages {
		out = append(out, p.Price)
	}
	return out
}

func (c *Cache) PackageByPrice(price string) (models.EventPackage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byPrice[price]
	return p, ok
}

// DefaultPackage returns the configured default if it is in the catalog, else the first package.
func (c *Cache) DefaultPackage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.byPrice[c.defaultPackage]; ok {
		return c.defaultPackage
	}
	if len(c.packages) > 0 {
		return c.packages[0].Price
	}
	return c.defaultPackage
}

func (c *Cache) Config() models.SiteConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// SortPackages orders by SortOrder, then numeric price.
func SortPackages(pkgs []models.EventPackage) {
	sort.SliceStable(pkgs, func(i, j int) bool {
		if pkgs[i].SortOrder != pkgs[j].SortOrder {
			return pkgs[i].SortOrder < pkgs[j].SortOrder
		}
		a, aErr := strconv.ParseFloat(pkgs[i].Price, 64)
		b, bErr := strconv.ParseFloat(pkgs[j].Price, 64)
		if aErr == nil && bErr == nil {
			return a < b
		}
		return pkgs[i].Price < pkgs[j].Price
	})
}
