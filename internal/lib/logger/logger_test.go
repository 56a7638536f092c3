package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/linemk/pos-orders/internal/lib/logger"
	"github.com/stretchr/testify/assert"
)

func TestNew_ProdSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.EnvProd, &buf)

	log.Debug("hidden")
	log.Info("visible", logger.Err(errors.New("boom")))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"visible"`)
	assert.Contains(t, buf.String(), `"env":"prod"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestNew_DevWritesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.EnvDev, &buf)

	log.Debug("debug line")
	assert.Contains(t, buf.String(), "debug line")
}
