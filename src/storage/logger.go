package storage

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// LogLevel 定义日志级别类型
type LogLevel int

// 日志级别常量定义
const (
	DEBUG   LogLevel = iota // 调试信息
	INFO                    // 普通信息
	WARNING                 // 警告信息
	ERROR                   // 错误信息
	FATAL                   // 致命错误
)

// Logger 日志记录器结构体
type Logger struct {
	filename    string        // 日志文件路径
	maxSize     int64         // 超过该大小时轮转, 0 表示不轮转
	file        *os.File      // 日志文件句柄
	mu          sync.Mutex    // 互斥锁，保证并发安全
	subscribers []chan string // 订阅者通道列表
	now         func() time.Time
}

// NewLogger 创建新的日志记录器
// 参数:
//
//	filename: 日志文件路径
//	maxSize: 轮转阈值, 形如 "10 * 1024 * 1024", 为空表示不轮转
func NewLogger(filename, maxSize string) (*Logger, error) {
	// 打开或创建日志文件，权限设置为0644
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	size, err := ParseSize(maxSize)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Logger{
		filename: filename,
		maxSize:  size,
		file:     file,
		now:      time.Now,
	}, nil
}

// Close 关闭日志文件
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Reopen 重新打开日志文件, 配合外部 logrotate 使用(SIGHUP)
func (l *Logger) Reopen() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// 关闭旧文件
	if l.file != nil {
		_ = l.file.Close()
	}

	// 重新打开
	file, err := os.OpenFile(l.filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		l.file = nil
		return err
	}
	l.file = file
	return nil
}

// Log 记录日志方法
// 参数:
//
//	level: 日志级别
//	message: 日志消息内容
func (l *Logger) Log(level LogLevel, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// 格式化日志条目: [时间] 级别: 消息
	entry := fmt.Sprintf("[%s] %s: %s\n",
		l.now().Format("2006-01-02 15:04:05"),
		level.String(),
		message)

	if l.file != nil {
		l.file.WriteString(entry)
		l.rotateIfNeeded()
	}

	// 通知所有订阅者
	for _, ch := range l.subscribers {
		select {
		case ch <- entry: // 尝试发送日志条目
		default: // 如果通道已满则跳过
		}
	}
}

// rotateIfNeeded 调用方需持有锁
func (l *Logger) rotateIfNeeded() {
	if l.maxSize <= 0 {
		return
	}
	info, err := l.file.Stat()
	if err != nil || info.Size() <= l.maxSize {
		return
	}

	l.file.Close()
	rotated := fmt.Sprintf("%s.%s", l.filename, l.now().Format("20060102150405"))
	_ = os.Rename(l.filename, rotated)

	file, err := os.OpenFile(l.filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		l.file = nil
		return
	}
	l.file = file
}

// Subscribe 订阅日志消息
// 返回值:
//
//	<-chan string: 只读通道，用于接收日志消息
func (l *Logger) Subscribe() <-chan string {
	l.mu.Lock()
	defer l.mu.Unlock()

	// 创建带缓冲的通道(容量100)
	ch := make(chan string, 100)
	l.subscribers = append(l.subscribers, ch)
	return ch
}

// Unsubscribe 取消订阅, 客户端断开后调用
func (l *Logger) Unsubscribe(sub <-chan string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, ch := range l.subscribers {
		if ch == sub {
			l.subscribers = append(l.subscribers[:i], l.subscribers[i+1:]...)
			return
		}
	}
}

// String 实现LogLevel的String方法
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSize 解析 "10 * 1024 * 1024" 形式的大小表达式
func ParseSize(expr string) (int64, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, nil
	}
	var result int64 = 1
	for _, part := range strings.Split(expr, "*") {
		num, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid log size %q: %w", expr, err)
		}
		result *= num
	}
	return result, nil
}

// 以下是快捷日志方法
func (l *Logger) Debug(msg string)   { l.Log(DEBUG, msg) }   // 记录调试信息
func (l *Logger) Info(msg string)    { l.Log(INFO, msg) }    // 记录普通信息
func (l *Logger) Warning(msg string) { l.Log(WARNING, msg) } // 记录警告信息
func (l *Logger) Error(msg string)   { l.Log(ERROR, msg) }   // 记录错误信息
func (l *Logger) Fatal(msg string)   { l.Log(FATAL, msg) }   // 记录致命错误
