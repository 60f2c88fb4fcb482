package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func view() []models.Booking {
	created := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	return []models.Booking{
		{Token: "ZZ000002", Name: "Ravi", Phone: "9123456780", Address: `12 "Lake" Road, Pune`, PackagePrice: "999", PaymentMode: "online", IsPaid: true, CreatedAt: created},
		{Token: "AA000001", Name: "Asha, R", Phone: "9876543210", Address: "Delhi", PackagePrice: "499", PaymentMode: "cash", CreatedAt: created},
		{Token: "MM000003", Name: "Meena", Phone: "9988776655", Address: "", PackagePrice: "499", PaymentMode: "cash"},
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, view()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Token,Name,Phone,Address,Package,Payment Mode,Paid,Created At", lines[0])
	assert.Equal(t, `ZZ000002,Ravi,9123456780,"12 ""Lake"" Road, Pune",999,online,Paid,2025-03-01 10:30`, lines[1])
	assert.Equal(t, `AA000001,"Asha, R",9876543210,"Delhi",499,cash,Pending,2025-03-01 10:30`, lines[2])
	assert.Equal(t, `MM000003,Meena,9988776655,"",499,cash,Pending,`, lines[3])
}

func TestCSVLineCount(t *testing.T) {
	for _, n := range []int{0, 1, 25} {
		bookings := make([]models.Booking, n)
		for i := range bookings {
			bookings[i] = models.Booking{Token: "T", Address: "line"}
		}
		var buf bytes.Buffer
		require.NoError(t, CSV(&buf, bookings))
		assert.Equal(t, n+1, strings.Count(buf.String(), "\n"))
	}
}

func TestCSVFlattensLineBreaks(t *testing.T) {
	bookings := []models.Booking{
		{Token: "T1", Name: "Asha\nR", Address: "Flat 4\r\nLake View\n\nKochi"},
		{Token: "T2", Name: "Ravi", Address: "Pune"},
	}
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, bookings))

	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `T1,Asha R,,"Flat 4 Lake View Kochi",,,Pending,`, lines[1])
	assert.NotContains(t, buf.String(), "\r")
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, view()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestXLSXKeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX(&buf, view()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "ZZ000002", rows[1][0])
	assert.Equal(t, "AA000001", rows[2][0])
	assert.Equal(t, "MM000003", rows[3][0])
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, JSON(&buf, view()))
	var out []models.Booking
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "ZZ000002", out[0].Token)
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Unix(1700000000, 0)

	path, err := Save(dir, KindCSV, view(), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bookings-1700000000.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "\n"))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(".PDF")
	require.NoError(t, err)
	assert.Equal(t, KindPDF, k)

	_, err = ParseKind("docx")
	assert.Error(t, err)
	assert.Error(t, Write(&bytes.Buffer{}, Kind("docx"), nil))
}
