// Package export renders the filtered booking view into downloadable files.
// Rows keep the order they are given in.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"slotbook/internal/models"
)

type Kind string

const (
	KindCSV  Kind = "csv"
	KindPDF  Kind = "pdf"
	KindXLSX Kind = "xlsx"
	KindJSON Kind = "json"
)

const timeLayout = "2006-01-02 15:04"

var Columns = []string{"Token", "Name", "Phone", "Address", "Package", "Payment Mode", "Paid", "Created At"}

// ParseKind accepts a file extension with or without the dot.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimPrefix(s, "."))); k {
	case KindCSV, KindPDF, KindXLSX, KindJSON:
		return k, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FileName builds bookings-<unix>.<ext>.
func FileName(kind Kind, now time.Time) string {
	return fmt.Sprintf("bookings-%d.%s", now.Unix(), kind)
}

// Write renders view as kind into w.
func Write(w io.Writer, kind Kind, view []models.Booking) error {
	switch kind {
	case KindCSV:
		return CSV(w, view)
	case KindPDF:
		return PDF(w, view)
	case KindXLSX:
		return XLSX(w, view)
	case KindJSON:
		return JSON(w, view)
	default:
		return fmt.Errorf("unsupported export format %q", kind)
	}
}

// Save writes view into dir under FileName and returns the file path.
func Save(dir string, kind Kind, view []models.Booking, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(kind, now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Write(f, kind, view); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}

func row(b *models.Booking) []string {
	return []string{
		b.Token,
		b.Name,
		b.Phone,
		b.Address,
		b.PackagePrice,
		b.PaymentMode,
		paidLabel(b.IsPaid),
		formatTime(b.CreatedAt),
	}
}

func paidLabel(paid bool) string {
	if paid {
		return "Paid"
	}
	return "Pending"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

// JSON writes the view as an indented array.
func JSON(w io.Writer, view []models.Booking) error {
	if view == nil {
		view = []models.Booking{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("failed to encode bookings: %w", err)
	}
	return nil
}
