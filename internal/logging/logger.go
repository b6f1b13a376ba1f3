package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	gormlogger "gorm.io/gorm/logger"
)

// Logger is the process-wide structured logger.
var Logger = logrus.New()

var once sync.Once

// Init configures Logger exactly once. An empty file keeps output on stdout;
// otherwise entries go to a rotating file.
func Init(level, file string) {
	once.Do(func() {
		Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

		var out io.Writer = os.Stdout
		if file != "" {
			out = &lumberjack.Logger{
				Filename:   file,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		Logger.SetOutput(out)

		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		Logger.SetLevel(lvl)

		Logger.WithFields(logrus.Fields{
			"level":  lvl.String(),
			"output": outputName(file),
		}).Info("logger initialized")
	})
}

// GormLogger bridges gorm's SQL logging onto Logger.
func GormLogger() gormlogger.Interface {
	level := gormlogger.Warn
	if Logger.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}

	return gormlogger.New(Logger, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func outputName(file string) string {
	if file == "" {
		return "stdout"
	}
	return file
}
