package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"slotbook/internal/config"
	"slotbook/internal/domain"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrUnsupportedType = errors.New("unsupported file type")

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// CheckImage rejects file names without an image extension.
func CheckImage(fileName string) error {
	if !imageExtensions[strings.ToLower(filepath.Ext(fileName))] {
		return fmt.Errorf("%s: %w", fileName, ErrUnsupportedType)
	}
	return nil
}

func objectName(fileName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	logger *zerolog.Logger
}

func NewCloudinary(cloudinaryURL string, logger *zerolog.Logger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, logger: logger}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, folder, fileName string, r io.Reader) (string, error) {
	if err := CheckImage(fileName); err != nil {
		return "", err
	}
	name := objectName(fileName)
	result, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID: strings.TrimSuffix(name, filepath.Ext(name)),
		Folder:   folder,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}
	c.logger.Debug().Str("url", result.SecureURL).Msg("Uploaded image")
	return result.SecureURL, nil
}

// Local writes uploads under root and serves them from baseURL.
type Local struct {
	root    string
	baseURL string
	logger  *zerolog.Logger
}

func NewLocal(root, baseURL string, logger *zerolog.Logger) *Local {
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (l *Local) Root() string {
	return l.root
}

func (l *Local) Upload(ctx context.Context, folder, fileName string, r io.Reader) (string, error) {
	if err := CheckImage(fileName); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(l.root, filepath.Clean("/" + folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := objectName(fileName)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	url := l.baseURL + path.Join("/uploads", path.Clean("/"+folder), name)
	l.logger.Debug().Str("url", url).Msg("Stored image locally")
	return url, nil
}

// New returns Cloudinary when a URL is configured and local disk otherwise.
func New(cfg config.UploadConfig, logger *zerolog.Logger) (domain.Uploader, error) {
	l := logger.With().Str("component", "uploads").Logger()
	if cfg.CloudinaryURL != "" {
		return NewCloudinary(cfg.CloudinaryURL, &l)
	}
	return NewLocal(cfg.LocalPath, cfg.PublicBaseURL, &l), nil
}
