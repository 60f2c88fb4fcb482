package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"slotbook/internal/models"
)

const (
	cacheKeyPackages       = "packages"
	cacheKeyBanner         = "config:banner"
	cacheKeyWorkshop       = "config:workshop"
	cacheKeyWorkshopBanner = "config:workshop-banner"
)

type bannerResponse struct {
	URL string `json:"bannerUrl"`
}

func (c *Client) ListPackages(ctx context.Context) ([]models.EventPackage, error) {
	var pkgs []models.EventPackage
	if err := c.cachedGet(ctx, cacheKeyPackages, "/packages", &pkgs); err != nil {
		return nil, err
	}
	return pkgs, nil
}

// ReplacePackages overwrites the catalog.
func (c *Client) ReplacePackages(ctx context.Context, token string, pkgs []models.EventPackage) ([]models.EventPackage, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	var out []models.EventPackage
	if err := c.doJSON(ctx, http.MethodPut, "/packages", token, nil, pkgs, &out); err != nil {
		return nil, err
	}
	c.dropCache(ctx, cacheKeyPackages)
	return out, nil
}

func (c *Client) BannerURL(ctx context.Context) (string, error) {
	var res bannerResponse
	if err := c.cachedGet(ctx, cacheKeyBanner, "/config/banner", &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

func (c *Client) WorkshopBannerURL(ctx context.Context) (string, error) {
	var res bannerResponse
	if err := c.cachedGet(ctx, cacheKeyWorkshopBanner, "/config/workshop-banner", &res); err != nil {
		return "", err
	}
	return res.URL, nil
}

func (c *Client) Workshop(ctx context.Context) (*models.WorkshopContent, error) {
	var w models.WorkshopContent
	if err := c.cachedGet(ctx, cacheKeyWorkshop, "/config/workshop", &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) UpdateWorkshop(ctx context.Context, token string, w models.WorkshopContent) (*models.WorkshopContent, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	var out models.WorkshopContent
	if err := c.doJSON(ctx, http.MethodPut, "/config/workshop", token, nil, w, &out); err != nil {
		return nil, err
	}
	c.dropCache(ctx, cacheKeyWorkshop)
	return &out, nil
}

// UploadBanner replaces the landing page banner and returns its public URL.
func (c *Client) UploadBanner(ctx context.Context, token string, file models.Upload) (string, error) {
	url, err := c.uploadImage(ctx, token, "/config/banner", "banner", file)
	if err != nil {
		return "", err
	}
	c.dropCache(ctx, cacheKeyBanner)
	return url, nil
}

func (c *Client) UploadWorkshopBanner(ctx context.Context, token string, file models.Upload) (string, error) {
	url, err := c.uploadImage(ctx, token, "/config/workshop-banner", "banner", file)
	if err != nil {
		return "", err
	}
	c.dropCache(ctx, cacheKeyWorkshopBanner)
	return url, nil
}

// SiteConfig fetches banners and workshop content in one call.
func (c *Client) SiteConfig(ctx context.Context) (*models.SiteConfig, error) {
	banner, err := c.BannerURL(ctx)
	if err != nil {
		return nil, err
	}
	workshopBanner, err := c.WorkshopBannerURL(ctx)
	if err != nil {
		return nil, err
	}
	workshop, err := c.Workshop(ctx)
	if err != nil {
		return nil, err
	}
	return &models.SiteConfig{BannerURL: banner, WorkshopBannerURL: workshopBanner, Workshop: *workshop}, nil
}

func (c *Client) uploadImage(ctx context.Context, token, path, field string, file models.Upload) (string, error) {
	if err := requireToken(token); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, file.FileName)
	if err != nil {
		return "", fmt.Errorf("failed to attach %s: %w", field, err)
	}
	if _, err := fw.Write(file.Data); err != nil {
		return "", fmt.Errorf("failed to attach %s: %w", field, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, token, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var res bannerResponse
	if err := c.do(req, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}
