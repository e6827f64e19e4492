package utils

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestValidateTaxID(t *testing.T) {
	tests := []struct {
		name    string
		taxID   string
		wantErr bool
	}{
		{"18 character credit code", "91310000MA1FL8XQ30", false},
		{"15 character legacy code", "310101123456789", false},
		{"20 character code", "91310000MA1FL8XQ30AB", false},
		{"spaces ignored", "9131 0000 MA1F L8XQ 30", false},
		{"lower case rejected", "91310000ma1fl8xq30", true},
		{"wrong length", "9131000", true},
		{"punctuation", "91310000MA1FL8XQ3-", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaxID(tt.taxID)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("13800138000"))
	assert.Error(t, ValidatePhone("021-62345678"))
	assert.Error(t, ValidatePhone("12345"))
	assert.Error(t, ValidatePhone("23800138000"))
}

func TestNewValidator_CustomTags(t *testing.T) {
	type form struct {
		TaxNumber string `validate:"required,taxid"`
		Phone     string `validate:"required,phone"`
	}
	v := NewValidator()

	assert.NoError(t, v.Struct(form{TaxNumber: "91310000MA1FL8XQ30", Phone: "13800138000"}))
	assert.Error(t, v.Struct(form{TaxNumber: "123", Phone: "13800138000"}))
	assert.Error(t, v.Struct(form{TaxNumber: "91310000MA1FL8XQ30", Phone: ""}))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("a\x00b\x1fc"))
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := NewLogger(LoggerConfig{Level: "nonsense", OutputPath: path, Format: "json"})
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())
	assert.FileExists(t, path)
}

func TestKeyValueLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	kv := NewKeyValueLogger(zap.New(core))

	kv.Info("bill confirmed", "bill_no", "B001", 42, "dropped", "orders", 3)
	kv.Error("apply failed", "error", errors.New("boom"), "odd")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "bill confirmed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "B001", fields["bill_no"])
	assert.EqualValues(t, 3, fields["orders"])
	assert.Len(t, fields, 2)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
