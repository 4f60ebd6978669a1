package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"

	"SurvivalDashboard/src/config"
	"SurvivalDashboard/src/datasource/email"
	"SurvivalDashboard/src/datasource/file"
	"SurvivalDashboard/src/storage"
	"SurvivalDashboard/src/web"
)

func main() {
	jsonFolder := "./config"
	jsonFile := "config.json"
	dataJsonFile := "dataconfig.json"
	cfg, dcfg, err := config.LoadConfig(jsonFolder, jsonFile, dataJsonFile)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName, cfg.LogMaxSize)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	var mailbox email.MailService
	if cfg.Email.Enabled {
		mailbox = email.NewEmailClient(cfg.Email.Server, cfg.Email.Username, cfg.Email.Password, logger)
	}

	source, err := resolveSource(cfg, mailbox, logger)
	if err != nil {
		logger.Fatal("没有可用的数据集: " + err.Error())
		log.Fatal(err)
	}

	a, err := newApp(cfg, dcfg, logger, source)
	if err != nil {
		logger.Fatal("初始化失败: " + err.Error())
		log.Fatal(err)
	}

	// 启动时导出一次默认视图
	if err := a.exportAndSend(); err != nil {
		logger.Error("初始导出失败: " + err.Error())
	}

	c := cron.New()
	if err := a.schedule(c, mailbox); err != nil {
		logger.Fatal(err.Error())
		log.Fatal(err)
	}
	c.Start()
	defer c.Stop()

	if cfg.Source.Watch && source == cfg.Source.File {
		monitor, err := file.NewFileMonitor(source)
		if err != nil {
			logger.Error("创建文件监控失败: " + err.Error())
		} else {
			defer monitor.Close()
			go a.watchSource(monitor)
		}
	}

	server, err := web.NewServer(a.ctrl, a.panels, a.export, logger)
	if err != nil {
		logger.Fatal(err.Error())
		log.Fatal(err)
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info(fmt.Sprintf("仪表盘已启动: http://localhost%s", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP服务异常退出: " + err.Error())
		}
	}()

	waitForShutdown(srv, logger)
}

// resolveSource 优先使用配置的文件, 没有时从邮箱取最新附件
func resolveSource(cfg *config.Config, mailbox email.MailService, logger *storage.Logger) (string, error) {
	if cfg.Source.File != "" {
		if _, err := os.Stat(cfg.Source.File); err == nil {
			return cfg.Source.File, nil
		} else if mailbox == nil {
			return "", err
		}
		logger.Warning(fmt.Sprintf("数据文件 %s 不存在, 尝试从邮箱获取", cfg.Source.File))
	}
	if mailbox == nil {
		return "", errors.New("未配置数据文件且邮箱未启用")
	}

	msg, err := email.CheckAndProcessEmails(mailbox, cfg.Email.TargetSubject, logger)
	if err != nil {
		return "", err
	}
	handler := email.NewDatasetAttachmentHandler(cfg.Email.TargetSubject, cfg.DataDir, logger)
	path, err := handler.Handle(msg)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", errors.New("邮箱中没有数据集附件")
	}
	return path, nil
}

// waitForShutdown SIGHUP 重新打开日志文件, SIGINT/SIGTERM 优雅退出
func waitForShutdown(srv *http.Server, logger *storage.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigChan {
		if sig == syscall.SIGHUP {
			if err := logger.Reopen(); err != nil {
				log.Println("重新打开日志失败:", err)
			}
			logger.Info("日志文件已重新打开")
			continue
		}

		logger.Info("Received signal: " + sig.String() + ", shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("关闭HTTP服务失败: " + err.Error())
		}
		cancel()
		logger.Close()
		return
	}
}
