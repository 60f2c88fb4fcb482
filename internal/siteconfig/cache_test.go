package siteconfig

import (
	"context"
	"errors"
	"testing"
	"time"

	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	packages    []models.EventPackage
	config      *models.SiteConfig
	packagesErr error
	configErr   error
	calls       int
}

func (f *fakeSource) ListPackages(context.Context) ([]models.EventPackage, error) {
	f.calls++
	return f.packages, f.packagesErr
}

func (f *fakeSource) SiteConfig(context.Context) (*models.SiteConfig, error) {
	return f.config, f.configErr
}

func TestRefreshLoadsCatalog(t *testing.T) {
	src := &fakeSource{
		packages: []models.EventPackage{
			{Name: "Pro", Price: "999"},
			{Name: "Basic", Price: "499"},
			{Name: "Elite", Price: "1499", SortOrder: 1},
		},
		config: &models.SiteConfig{BannerURL: "https://cdn/b.png", Workshop: models.WorkshopContent{Title: "Custom"}},
	}
	c := New(src, "999", nil, nil)
	require.NoError(t, c.Refresh(context.Background()))

	assert.Equal(t, []string{"499", "999", "1499"}, c.Prices())
	assert.Equal(t, "999", c.DefaultPackage())

	p, ok := c.PackageByPrice("499")
	require.True(t, ok)
	assert.Equal(t, "Basic", p.Name)

	assert.Equal(t, "https://cdn/b.png", c.Config().BannerURL)
	assert.Equal(t, "Custom", c.Config().Workshop.Title)
}

func TestDefaultPackageFallsBackToFirst(t *testing.T) {
	c := New(&fakeSource{}, "250", []models.EventPackage{{Price: "999"}, {Price: "499"}}, nil)
	assert.Equal(t, "499", c.DefaultPackage())

	empty := New(&fakeSource{}, "499", nil, nil)
	assert.Equal(t, "499", empty.DefaultPackage())
}

func TestRefreshFailureKeepsCatalog(t *testing.T) {
	seed := []models.EventPackage{{Name: "Basic", Price: "499"}}
	src := &fakeSource{packagesErr: errors.New("offline")}
	c := New(src, "499", seed, nil)

	assert.Error(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"499"}, c.Prices())
	assert.Equal(t, models.DefaultWorkshop(), c.Config().Workshop)
}

func TestSiteConfigFailureUsesDefaults(t *testing.T) {
	src := &fakeSource{packages: []models.EventPackage{{Price: "499"}}, configErr: errors.New("500")}
	c := New(src, "499", nil, nil)

	require.NoError(t, c.Refresh(context.Background()))
	assert.True(t, c.Config().Workshop.IsFree)
	assert.Equal(t, "50000", c.Config().Workshop.PrizeAmount)
}

func TestRefreshIfStale(t *testing.T) {
	src := &fakeSource{packages: []models.EventPackage{{Price: "499"}}, config: &models.SiteConfig{}}
	c := New(src, "499", nil, nil)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, c.RefreshIfStale(ctx, time.Minute))
	require.NoError(t, c.RefreshIfStale(ctx, time.Minute))
	assert.Equal(t, 1, src.calls)

	now = now.Add(2 * time.Minute)
	require.NoError(t, c.RefreshIfStale(ctx, time.Minute))
	assert.Equal(t, 2, src.calls)
}
