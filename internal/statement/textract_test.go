package statement

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestIsSupported(t *testing.T) {
	for _, name := range []string{"a.pdf", "B.CSV", "c.xlsx", "d.Xls"} {
		assert.True(t, IsSupported(name), name)
	}
	for _, name := range []string{"a.txt", "noext", "img.png"} {
		assert.False(t, IsSupported(name), name)
	}
}

func TestExtractTextCSV(t *testing.T) {
	data := []byte("Date, Description ,Amount\n\n01/03/2024,\"Coffee, large\",4.50\n,,\n")
	text, err := NewTextExtractor().ExtractText(context.Background(), "s.csv", data)
	require.NoError(t, err)
	assert.Equal(t, "Date,Description ,Amount\n01/03/2024,\"Coffee, large\",4.50\n", text)
}

func TestExtractTextXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Date"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Description"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "2024-03-01"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "SWIGGY"))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	text, err := NewTextExtractor().ExtractText(context.Background(), "s.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Date,Description\n2024-03-01,SWIGGY\n", text)
}

func TestExtractTextUnsupported(t *testing.T) {
	_, err := NewTextExtractor().ExtractText(context.Background(), "notes.txt", []byte("hi"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestExtractTextEmptyCSV(t *testing.T) {
	_, err := NewTextExtractor().ExtractText(context.Background(), "s.csv", []byte("\n ,\n"))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestExtractTextPDF(t *testing.T) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.Text(20, 20, "01/03/2024 SWIGGY 250.00")
	doc.Text(20, 40, "02/03/2024 SALARY 50000.00")
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))

	text, err := NewTextExtractor().ExtractText(context.Background(), "s.pdf", buf.Bytes())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "SWIGGY")
	assert.Contains(t, lines[1], "SALARY")
}

func TestExtractTextInvalidPDF(t *testing.T) {
	_, err := NewTextExtractor().ExtractText(context.Background(), "s.pdf", []byte("%PDF-1.4 truncated"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFileType)
}
