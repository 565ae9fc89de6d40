package repository

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
)

func TestMissingRowsAreNotLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := OpenWithLogger(filepath.Join(t.TempDir(), "quiet.db"), logger.NewFromZap(zap.New(core)))
	require.NoError(t, err)

	var opt domain.Option
	err = db.Where("name = ?", "new_status_wc-processing").First(&opt).Error
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	assert.Zero(t, logs.Len())
}

func TestDatabaseErrorsReachLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := OpenWithLogger(filepath.Join(t.TempDir(), "loud.db"), logger.NewFromZap(zap.New(core)))
	require.NoError(t, err)

	err = db.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)

	entries := logs.FilterMessage("database error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}
