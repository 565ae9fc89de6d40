// File: internal/repository/database.go
package repository

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Open connects to the sqlite database at path and migrates the schema.
// gorm warnings go to stderr.
func Open(path string) (*gorm.DB, error) {
	return OpenWithLogger(path, nil)
}

// OpenWithLogger is Open with gorm's warnings and errors written to l.
// Lookups of missing rows are expected (unsaved option groups, new orders)
// and are not reported.
func OpenWithLogger(path string, l logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.New(gormWriter(l), gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Option{}, &domain.SentMessage{}, &domain.OrderState{}); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}

func gormWriter(l logger.Logger) gormlogger.Writer {
	if l == nil {
		return log.New(os.Stderr, "\r\n", log.LstdFlags)
	}
	return loggerWriter{log: l}
}

// loggerWriter adapts Logger to gorm's Printf based writer.
type loggerWriter struct {
	log logger.Logger
}

func (w loggerWriter) Printf(format string, args ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	for _, a := range args {
		if _, ok := a.(error); ok {
			w.log.Error("database error", "detail", msg)
			return
		}
	}
	w.log.Warn("database warning", "detail", msg)
}
