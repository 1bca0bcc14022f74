package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// current 全局日志实例，未初始化时为 nil
	current atomic.Pointer[logrus.Logger]
	// discardLogger 未初始化时使用，丢弃全部输出
	discardLogger = newDiscard()
	// currentLogFile 当前日志文件路径
	currentLogFile string
	// logMu 串行化 Init 和 SetOutput
	logMu sync.Mutex
)

// Config 日志配置
type Config struct {
	Level      string // 日志级别: debug, info, warn, error
	OutputFile string // 日志文件路径（可选，为空则只输出到控制台）
	MaxSize    int    // 日志文件最大大小（MB）
	MaxBackups int    // 保留的旧日志文件数量
	MaxAge     int    // 保留旧日志文件的天数
	Compress   bool   // 是否压缩旧日志文件
	Console    *bool  // 是否输出到控制台（nil 表示输出）
}

func newFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "06-01-02 15:04:05", // 格式: yy-mm-dd HH:MM:ss
	}
}

// Init 初始化日志系统
func Init(config Config) error {
	logMu.Lock()
	defer logMu.Unlock()

	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(newFormatter())

	var writers []io.Writer
	if config.Console == nil || *config.Console {
		writers = append(writers, os.Stderr)
	}

	currentLogFile = ""
	if config.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0755); err != nil {
			return err
		}

		// 配置日志轮转
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.OutputFile,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
		currentLogFile = config.OutputFile
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = io.MultiWriter(writers...)
	}
	logger.SetOutput(out)

	// 同步全局 logrus，确保直接使用 logrus 的地方也写入同一输出
	logrus.SetOutput(out)
	logrus.SetLevel(level)
	logrus.SetFormatter(newFormatter())

	current.Store(logger)
	return nil
}

// InitDefault 使用默认配置初始化日志系统（仅控制台）
func InitDefault() error {
	return Init(Config{Level: "info"})
}

// SetOutput 替换日志输出（测试中捕获日志）
// 新建实例后整体替换，不修改正在被其他 goroutine 使用的实例
func SetOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	l := logrus.New()
	l.SetFormatter(newFormatter())
	if old := current.Load(); old != nil {
		l.SetLevel(old.GetLevel())
		l.SetFormatter(old.Formatter)
	}
	l.SetOutput(w)
	current.Store(l)
}

// L 返回当前日志实例，未初始化时返回丢弃输出的实例
func L() *logrus.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return discardLogger
}

// Debugf 记录格式化的 DEBUG 级别日志
func Debugf(format string, args ...interface{}) {
	L().Debugf(format, args...)
}

// Info 记录 INFO 级别日志
func Info(args ...interface{}) {
	L().Info(args...)
}

// Infof 记录格式化的 INFO 级别日志
func Infof(format string, args ...interface{}) {
	L().Infof(format, args...)
}

// Warnf 记录格式化的 WARN 级别日志
func Warnf(format string, args ...interface{}) {
	L().Warnf(format, args...)
}

// Errorf 记录格式化的 ERROR 级别日志
func Errorf(format string, args ...interface{}) {
	L().Errorf(format, args...)
}

// WithField 添加字段到日志上下文
func WithField(key string, value interface{}) *logrus.Entry {
	return L().WithField(key, value)
}

// WithFields 添加多个字段到日志上下文
func WithFields(fields logrus.Fields) *logrus.Entry {
	return L().WithFields(fields)
}

// GetCurrentLogFile 获取当前日志文件路径
func GetCurrentLogFile() string {
	logMu.Lock()
	defer logMu.Unlock()
	return currentLogFile
}

func newDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
