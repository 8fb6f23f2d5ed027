package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// saveBackup compresses blob and appends it to network_backups, tagging
// the row with a fresh correlation id. Unlike device/group rows, a
// backup is never updated in place, so there is no upsert-by-key here,
// only insert.
func (s *Store) saveBackup(ctx context.Context, blob []byte) error {
	compressed, err := compressBackup(blob)
	if err != nil {
		return fmt.Errorf("store: compress backup: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().UTC().Format(timeLayout)
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (id, created_at, blob, uncompressed_size, compressed_size) VALUES (?, ?, ?, ?, ?)
		`, tableNetworkBackups), id, now, compressed, len(blob), len(compressed))
		return err
	})
}

// compressBackup zstd-compresses blob. A fresh encoder per call keeps
// this allocation-light path free of shared encoder-state bugs; backups
// are infrequent enough (one per explicit Backup() call) that reusing a
// pooled encoder would not be worth the added bookkeeping.
func compressBackup(blob []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(blob, make([]byte, 0, len(blob))), nil
}

// decompressBackup reverses compressBackup, used by LoadBackups.
func decompressBackup(compressed []byte, hint int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(compressed, make([]byte, 0, hint))
}

// BackupRecord is one row of the append-only network_backups log.
type BackupRecord struct {
	ID        string
	CreatedAt time.Time
	Blob      []byte
}

// LoadBackups returns every stored backup, oldest first, with blobs
// decompressed back to their original JSON form.
func (s *Store) LoadBackups(ctx context.Context) ([]BackupRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, blob, uncompressed_size FROM network_backups ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: load network_backups: %v", ErrPersistenceBackendFailed, err)
	}
	defer rows.Close()

	var out []BackupRecord
	for rows.Next() {
		var id, createdAt string
		var compressed []byte
		var uncompressedSize int
		if err := rows.Scan(&id, &createdAt, &compressed, &uncompressedSize); err != nil {
			return nil, err
		}
		blob, err := decompressBackup(compressed, uncompressedSize)
		if err != nil {
			return nil, fmt.Errorf("store: decompress backup %s: %w", id, err)
		}
		ts, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			ts = time.Time{}
		}
		out = append(out, BackupRecord{ID: id, CreatedAt: ts, Blob: bytes.Clone(blob)})
	}
	return out, rows.Err()
}
