package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeTempCSV(t,
		"Наименование,Артикул,Цена\n"+
			"Конвектор Ballu,BEC-1000,14990\n"+
			",,\n"+
			"Обогреватель,НС-1,9990\n")

	data, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Наименование", "Артикул", "Цена"}, data.Headers)
	assert.Equal(t, 3, data.TotalRows, "empty rows count toward the total")
	require.Len(t, data.Rows, 2, "empty rows are skipped")

	assert.Equal(t, 1, data.Rows[0].Number)
	assert.Equal(t, "Конвектор Ballu", data.Rows[0].Fields["Наименование"])
	assert.Equal(t, 3, data.Rows[1].Number)
	assert.Equal(t, "НС-1", data.Rows[1].Fields["Артикул"])
}

func TestReadCSVWithBOM(t *testing.T) {
	path := writeTempCSV(t, "\uFEFFНаименование,Цена\nТовар,100\n")

	data, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "Наименование", data.Headers[0], "BOM must be stripped from the first header")
}

func TestReadCSVRaggedRows(t *testing.T) {
	path := writeTempCSV(t,
		"Наименование,Артикул,Цена\n"+
			"Короткая строка,SKU-1\n"+
			"Длинная строка,SKU-2,100,лишнее\n")

	data, err := Read(path)
	require.NoError(t, err)
	require.Len(t, data.Rows, 2)

	// Short rows pad missing cells with "".
	assert.Equal(t, "", data.Rows[0].Fields["Цена"])
	// Long rows drop the extra cells.
	assert.Equal(t, "100", data.Rows[1].Fields["Цена"])
}

func TestReadCSVDuplicateHeaders(t *testing.T) {
	path := writeTempCSV(t, "Цена,Цена,\nоптовая,розничная,x\n")

	data, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Цена", "Цена_2", "column_3"}, data.Headers)
	assert.Equal(t, "оптовая", data.Rows[0].Fields["Цена"])
	assert.Equal(t, "розничная", data.Rows[0].Fields["Цена_2"])
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"Наименование", "Артикул", "Цена"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"Конвектор Ballu", "BEC-1000", "14990"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]string{"Обогреватель", "НС-1", "9990"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	data, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Наименование", "Артикул", "Цена"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "BEC-1000", data.Rows[0].Fields["Артикул"])
	assert.Equal(t, "9990", data.Rows[1].Fields["Цена"])
}

func TestReadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := Read(path)
	assert.ErrorContains(t, err, "unsupported catalog format")
}

func TestCheckColumns(t *testing.T) {
	data := &Data{Headers: []string{"Наименование", "Цена"}}

	assert.Empty(t, data.CheckColumns([]string{"Наименование"}))
	assert.Equal(t, []string{"Артикул"}, data.CheckColumns([]string{"Наименование", "Артикул"}))
}
