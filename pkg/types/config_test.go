package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "valid sqlite config",
			config: Config{Backend: BackendSQLite, DataDir: "/tmp/data"},
		},
		{
			name:   "memory backend is valid",
			config: Config{Backend: BackendMemory},
		},
		{
			name:    "unknown sync strategy",
			config:  Config{Backend: BackendSQLite, SQLite: SQLiteConfig{SyncStrategy: "hourly"}},
			wantErr: ErrSyncStrategyUnknown,
		},
		{
			name:    "negative batch size",
			config:  Config{Backend: BackendSQLite, SQLite: SQLiteConfig{SyncStrategy: SyncBatch, BatchSize: -1}},
			wantErr: ErrBatchSizeInvalid,
		},
		{
			name:    "negative batch interval",
			config:  Config{Backend: BackendSQLite, SQLite: SQLiteConfig{SyncStrategy: SyncBatch, BatchInterval: -time.Second}},
			wantErr: ErrBatchIntervalInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSQLiteConfigDefaults(t *testing.T) {
	var s SQLiteConfig
	if got := s.GetSyncStrategy(); got != SyncImmediate {
		t.Errorf("GetSyncStrategy() = %q, want %q", got, SyncImmediate)
	}
	if got := s.GetBatchSize(); got != DefaultBatchSize {
		t.Errorf("GetBatchSize() = %d, want %d", got, DefaultBatchSize)
	}
	if got := s.GetBatchInterval(); got != DefaultBatchInterval {
		t.Errorf("GetBatchInterval() = %v, want %v", got, DefaultBatchInterval)
	}

	s = SQLiteConfig{SyncStrategy: SyncBatch, BatchSize: 3, BatchInterval: time.Minute}
	if got := s.GetBatchSize(); got != 3 {
		t.Errorf("GetBatchSize() = %d, want 3", got)
	}
	if got := s.GetBatchInterval(); got != time.Minute {
		t.Errorf("GetBatchInterval() = %v, want 1m", got)
	}
}
