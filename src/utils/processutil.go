package utils

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// EnsureDir 确保目录存在
func EnsureDir(dirPath string) error {
	if info, err := os.Stat(dirPath); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", dirPath)
	}
	return os.MkdirAll(dirPath, 0755)
}

// SaveToExcel 将DataFrame保存为Excel文件
// NaN 单元格留空
func SaveToExcel(df dataframe.DataFrame, filePath, sheetName string) error {
	if df.Err != nil {
		return df.Err
	}
	if err := EnsureDir(filepath.Dir(filePath)); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return fmt.Errorf("设置工作表名失败: %w", err)
		}
	}

	// 写入列名
	colNames := df.Names()
	for i, name := range colNames {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, name)
	}

	// 写入数据
	for colIdx, colName := range colNames {
		col := df.Col(colName)
		for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			val := col.Val(rowIdx)
			if v, ok := val.(float64); ok && math.IsNaN(v) {
				continue
			}
			f.SetCellValue(sheetName, cell, val)
		}
	}

	// 保存文件
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}
