// reader.go
package file

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// Options 数据集读取参数
type Options struct {
	SheetName string // xlsx 工作表, 为空时取第一个
	Encoding  string // csv 编码, 支持 utf-8 / gbk / gb18030
}

// LoadDataset 按扩展名读取 csv 或 xlsx, 所有列均为字符串
func LoadDataset(filePath string, opts Options) (dataframe.DataFrame, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("读取数据文件失败: %w", err)
	}
	return ReadBytes(filepath.Base(filePath), data, opts)
}

// ReadBytes 从内存读取数据集, 用于邮件附件
func ReadBytes(name string, data []byte, opts Options) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ReadCSV(bytes.NewReader(data), opts.Encoding)
	case ".xlsx":
		xlFile, err := xlsx.OpenBinary(data)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("xlsx open binary false: %w", err)
		}
		return sheetFromFile(xlFile, opts.SheetName)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("不支持的文件类型: %s", name)
	}
}

// ReadCSV 读取csv, 不做类型推断
func ReadCSV(r io.Reader, encoding string) (dataframe.DataFrame, error) {
	decoded, err := decodeReader(r, encoding)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	df := dataframe.ReadCSV(decoded,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df, fmt.Errorf("解析csv失败: %w", df.Err)
	}
	return df, nil
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return r, nil
	case "gbk", "gb2312":
		return transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()), nil
	case "gb18030":
		return transform.NewReader(r, simplifiedchinese.GB18030.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("不支持的编码: %s", encoding)
	}
}

// ReadXLSX 读取xlsx工作表
func ReadXLSX(filePath, sheetName string) (dataframe.DataFrame, error) {
	// 1. 使用tealeg/xlsx打开Excel文件
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("xlsx open file false: %w", err)
	}
	return sheetFromFile(xlFile, sheetName)
}

func sheetFromFile(xlFile *xlsx.File, sheetName string) (dataframe.DataFrame, error) {
	// 2. 获取工作表
	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("excel文件中没有工作表")
	}
	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("工作表 %s 不存在", sheetName)
		}
		sheet = s
	}

	// 3. 转换为Gota DataFrame
	return convertSheetToDataFrame(sheet)
}

// convertSheetToDataFrame 将xlsx.Sheet转换为dataframe.DataFrame
// 第一行为标题行
func convertSheetToDataFrame(sheet *xlsx.Sheet) (dataframe.DataFrame, error) {
	if len(sheet.Rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("工作表 %s 为空", sheet.Name)
	}

	// 获取列名
	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, strings.TrimSpace(cell.String()))
	}

	// 准备数据列
	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(sheet.Rows)-1)
	}

	// 填充数据(从第二行开始), 短行补空
	for _, row := range sheet.Rows[1:] {
		if row == nil {
			continue
		}
		for i := range headers {
			value := ""
			if i < len(row.Cells) && row.Cells[i] != nil {
				value = row.Cells[i].String()
			}
			columns[i] = append(columns[i], value)
		}
	}

	// 创建Series切片
	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}

	df := dataframe.New(seriesList...)
	return df, df.Err
}
