package markwidget

import (
	"log"
	"os"
)

// Logger 全局日志记录器
var Logger = log.New(os.Stderr, "[markwidget] ", log.LstdFlags)

// SetLogger 设置自定义日志记录器
func SetLogger(logger *log.Logger) {
	Logger = logger
}

// logf 通过当前的 Logger 输出，SetLogger 之后同样生效
func logf(format string, args ...any) {
	Logger.Printf(format, args...)
}
