// monitor.go
package file

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileMonitor 监听数据集文件变化
// 监听所在目录, 以便编辑器"写临时文件再改名"的保存方式也能触发
type FileMonitor struct {
	watchFile string
	watcher   *fsnotify.Watcher
	lastMod   time.Time
	mu        sync.Mutex
}

func NewFileMonitor(filePath string) (*FileMonitor, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &FileMonitor{
		watchFile: abs,
		watcher:   watcher,
	}, nil
}

// Watch 阻塞监听, 文件有更新时调用 handler
// Close 后返回 nil
func (m *FileMonitor) Watch(handler func(string)) error {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != m.watchFile {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			info, err := os.Stat(m.watchFile)
			if err != nil {
				continue
			}

			m.mu.Lock()
			changed := info.ModTime().After(m.lastMod)
			if changed {
				m.lastMod = info.ModTime()
			}
			m.mu.Unlock()

			if changed {
				handler(m.watchFile)
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func (m *FileMonitor) Close() error {
	return m.watcher.Close()
}
