// export.go
package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"SurvivalDashboard/src/processor"
	"SurvivalDashboard/src/utils"
)

// ExportResult 一次导出的结果
type ExportResult struct {
	Files   []string // 写出的文件
	Skipped []View   // 没有数据而未生成 PNG 的图表
}

// ExportHTML 把三个图表分别写成独立的 HTML 文件
func (b *Builder) ExportHTML(dir string, v processor.ViewResults) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(Views))
	for _, view := range Views {
		data, err := b.RenderHTML(view, v)
		if err != nil {
			return files, err
		}
		path := filepath.Join(dir, view.FileBase()+".html")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return files, fmt.Errorf("写入 %s 失败: %w", path, err)
		}
		files = append(files, path)
	}
	return files, nil
}

// ExportPNG 写出三个图表的 PNG 快照, 没有数据的图表跳过
func (b *Builder) ExportPNG(dir string, v processor.ViewResults) (ExportResult, error) {
	var res ExportResult
	if err := utils.EnsureDir(dir); err != nil {
		return res, err
	}

	for _, view := range Views {
		data, err := b.Snapshot(view, v)
		if errors.Is(err, ErrNoData) {
			res.Skipped = append(res.Skipped, view)
			continue
		}
		if err != nil {
			return res, err
		}
		path := filepath.Join(dir, view.FileBase()+".png")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return res, fmt.Errorf("写入 %s 失败: %w", path, err)
		}
		res.Files = append(res.Files, path)
	}
	return res, nil
}

// Export 写出 HTML 与 PNG
func (b *Builder) Export(dir string, v processor.ViewResults) (ExportResult, error) {
	html, err := b.ExportHTML(dir, v)
	if err != nil {
		return ExportResult{Files: html}, err
	}
	res, err := b.ExportPNG(dir, v)
	res.Files = append(html, res.Files...)
	return res, err
}
