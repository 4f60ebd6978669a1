package file

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const sampleCSV = `PassengerId,Survived,Pclass,Name,Sex,Age,Fare,Cabin,Embarked
1,0,3,"Braund, Mr. Owen Harris",male,22,7.25,,S
2,1,1,"Cumings, Mrs. John Bradley",female,38,71.2833,C85,C
3,1,3,"Heikkinen, Miss. Laina",female,,7.925,,S
`

func TestReadCSVKeepsStrings(t *testing.T) {
	df, err := ReadCSV(strings.NewReader(sampleCSV), "")
	require.NoError(t, err)

	assert.Equal(t, 3, df.Nrow())
	ages := df.Col("Age").Records()
	assert.Equal(t, []string{"22", "38"}, ages[:2])
	assert.Contains(t, []string{"", "NaN"}, ages[2])
	assert.Equal(t, "Cumings, Mrs. John Bradley", df.Col("Name").Records()[1])
	assert.Equal(t, "1", df.Col("PassengerId").Records()[0])
}

func TestReadCSVDecodesGBK(t *testing.T) {
	src := "姓名,Age\n张三,30\n"
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(src)
	require.NoError(t, err)

	df, err := ReadCSV(strings.NewReader(encoded), "gbk")
	require.NoError(t, err)
	assert.Equal(t, []string{"张三"}, df.Col("姓名").Records())
}

func TestReadCSVUnknownEncoding(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(sampleCSV), "latin-9")
	assert.Error(t, err)
}

func writeXLSX(t *testing.T, path, sheet string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellStr(sheet, cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanic.xlsx")
	writeXLSX(t, path, "passengers", [][]string{
		{"PassengerId", "Survived", "Pclass", "Sex", "Age"},
		{"1", "0", "3", "male", "22"},
		{"2", "1", "1", "female"},
	})

	df, err := ReadXLSX(path, "passengers")
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"male", "female"}, df.Col("Sex").Records())
	assert.Equal(t, "", df.Col("Age").Records()[1])

	_, err = ReadXLSX(path, "missing")
	assert.Error(t, err)
}

func TestLoadDatasetDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "titanic.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0644))
	df, err := LoadDataset(csvPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, df.Nrow())

	xlsxPath := filepath.Join(dir, "titanic.xlsx")
	writeXLSX(t, xlsxPath, "Sheet1", [][]string{{"Age"}, {"4"}})
	df, err = LoadDataset(xlsxPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, df.Col("Age").Records())

	_, err = ReadBytes("titanic.json", []byte("{}"), Options{})
	assert.Error(t, err)

	_, err = LoadDataset(filepath.Join(dir, "nope.csv"), Options{})
	assert.Error(t, err)
}

func TestReadBytesCSV(t *testing.T) {
	df, err := ReadBytes("Titanic-Dataset.CSV", bytes.Clone([]byte(sampleCSV)), Options{Encoding: "utf-8"})
	require.NoError(t, err)
	assert.Equal(t, 9, df.Ncol())
}
