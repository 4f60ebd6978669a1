package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron"

	"SurvivalDashboard/src/chart"
	"SurvivalDashboard/src/config"
	"SurvivalDashboard/src/datasource/email"
	"SurvivalDashboard/src/datasource/file"
	"SurvivalDashboard/src/processor"
	"SurvivalDashboard/src/storage"
	"SurvivalDashboard/src/utils"
)

// 富化表导出文件
const enrichedFile = "enriched.xlsx"

// app 把数据源、处理器、图表和调度串起来
type app struct {
	cfg    *config.Config
	dcfg   *config.DataConfig
	logger *storage.Logger

	builder *chart.Builder
	panels  *chart.Panels
	ctrl    *processor.Controller
	sender  *email.ReportSender

	exportMu sync.Mutex
}

// newApp 加载初始数据集并计算默认状态
func newApp(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger, sourcePath string) (*app, error) {
	builder, err := chart.NewBuilder(dcfg.ClassColorMap())
	if err != nil {
		return nil, fmt.Errorf("图表配置错误: %w", err)
	}

	a := &app{
		cfg:     cfg,
		dcfg:    dcfg,
		logger:  logger,
		builder: builder,
		panels:  chart.NewPanels(builder),
	}

	if cfg.SendEmail.Enabled {
		if a.sender, err = email.NewReportSender(cfg); err != nil {
			return nil, err
		}
	}

	table, err := a.loadTable(sourcePath)
	if err != nil {
		return nil, err
	}
	if a.ctrl, err = processor.NewController(table, a.panels); err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("数据集加载完成: %s, %d 行", sourcePath, table.Len()))
	return a, nil
}

func (a *app) loadTable(path string) (*processor.EnrichedTable, error) {
	t1 := time.Now()
	raw, err := file.LoadDataset(path, file.Options{
		SheetName: a.cfg.Source.SheetName,
		Encoding:  a.cfg.Source.Encoding,
	})
	if err != nil {
		return nil, err
	}
	table, err := processor.Prepare(raw, processor.ColumnMap(a.dcfg.ColumnMap()))
	if err != nil {
		return nil, err
	}
	a.logger.Debug(fmt.Sprintf("数据处理时间: %v", time.Since(t1)))
	return table, nil
}

// reload 重新加载数据集, 失败时保留原表
func (a *app) reload(path string) {
	table, err := a.loadTable(path)
	if err != nil {
		a.logger.Error(fmt.Sprintf("重新加载 %s 失败: %v", path, err))
		return
	}
	state, err := a.ctrl.ReplaceTable(table)
	if err != nil {
		a.logger.Error("刷新图表失败: " + err.Error())
		return
	}
	a.logger.Info(fmt.Sprintf("数据集已重新加载: %s, %d 行, 当前筛选 %d 行",
		path, table.Len(), state.Views.Rows))
}

// export 写出三个图表、PNG 快照和富化表
func (a *app) export(state processor.RenderState) ([]string, error) {
	a.exportMu.Lock()
	defer a.exportMu.Unlock()

	res, err := a.builder.Export(a.cfg.OutputDir, state.Views)
	if err != nil {
		return res.Files, err
	}
	for _, v := range res.Skipped {
		a.logger.Warning(fmt.Sprintf("图表 %s 没有数据, 跳过 PNG", v))
	}

	xlsxPath := filepath.Join(a.cfg.OutputDir, enrichedFile)
	if err := utils.SaveToExcel(a.ctrl.Table().DataFrame(), xlsxPath, "Enriched"); err != nil {
		return res.Files, err
	}
	files := append(res.Files, xlsxPath)

	a.logger.Info(fmt.Sprintf("导出完成: %s", strings.Join(files, ", ")))
	return files, nil
}

// exportAndSend 导出后按配置发送报告邮件
func (a *app) exportAndSend() error {
	state := a.ctrl.State()
	files, err := a.export(state)
	if err != nil {
		return err
	}
	if a.sender == nil {
		return nil
	}

	body := fmt.Sprintf("class=%s gender=%s, %d passengers", state.Selection.Class, state.Selection.Gender, state.Views.Rows)
	if err := a.sender.Send(body, files); err != nil {
		return err
	}
	a.logger.Info("报告邮件发送成功")
	return nil
}

// pollMailbox 检查邮箱, 有新数据集附件时重新加载
func (a *app) pollMailbox(svc email.MailService, handler *email.DatasetAttachmentHandler) {
	newEmail, err := email.CheckAndProcessEmails(svc, a.cfg.Email.TargetSubject, a.logger)
	if err != nil {
		a.logger.Error("检查处理邮件失败: " + err.Error())
		return
	}
	if newEmail == nil {
		return
	}

	path, err := handler.Handle(newEmail)
	if err != nil {
		a.logger.Error(fmt.Sprintf("处理邮件失败(UID:%d): %v", newEmail.UID, err))
		return
	}
	if path != "" {
		a.reload(path)
	}
}

// schedule 注册定时导出与邮箱检查
func (a *app) schedule(c *cron.Cron, svc email.MailService) error {
	if a.cfg.ExportInterval > 0 {
		spec := fmt.Sprintf("@every %s", time.Duration(a.cfg.ExportInterval))
		err := c.AddFunc(spec, func() {
			if err := a.exportAndSend(); err != nil {
				a.logger.Error("定时导出失败: " + err.Error())
			}
		})
		if err != nil {
			return fmt.Errorf("创建导出任务失败: %w", err)
		}
		a.logger.Info(fmt.Sprintf("定时导出已启动(间隔: %v)", time.Duration(a.cfg.ExportInterval)))
	}

	if a.cfg.Email.Enabled && svc != nil {
		handler := email.NewDatasetAttachmentHandler(a.cfg.Email.TargetSubject, a.cfg.DataDir, a.logger)
		spec := fmt.Sprintf("@every %s", time.Duration(a.cfg.Email.CheckInterval))
		err := c.AddFunc(spec, func() {
			a.pollMailbox(svc, handler)
		})
		if err != nil {
			return fmt.Errorf("创建邮件检查任务失败: %w", err)
		}
		a.logger.Info(fmt.Sprintf("邮件监控已启动(检查间隔: %v)", time.Duration(a.cfg.Email.CheckInterval)))
	}
	return nil
}

// watchSource 源文件变化时重新加载, 阻塞直到 monitor 关闭
func (a *app) watchSource(monitor *file.FileMonitor) {
	err := monitor.Watch(func(path string) {
		a.logger.Info("检测到数据文件更新: " + path)
		a.reload(path)
	})
	if err != nil {
		a.logger.Error("文件监控错误: " + err.Error())
	}
}
