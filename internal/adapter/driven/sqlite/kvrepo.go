package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KVStore = (*KVRepo)(nil)

// KVRepo is the SQLite implementation of the KVStore port interface.
// Values are encrypted with AES-256-GCM before write and decrypted after read.
type KVRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil when encryption is disabled.
}

// NewKVRepo creates a new KVRepo. key must be 32 bytes for AES-256-GCM,
// or nil to disable storage (Set and Get will return ErrEncryptionKeyNotSet).
func NewKVRepo(db *DB, key []byte) *KVRepo {
	return &KVRepo{db: db, key: key}
}

// Set stores or replaces the value under namespace/key.
func (r *KVRepo) Set(ctx context.Context, namespace, key, value string) error {
	encrypted, err := r.encrypt(value)
	if err != nil {
		return err
	}

	const query = `INSERT INTO kv_entries (namespace, key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	_, err = r.db.Writer.ExecContext(ctx, query, namespace, key, encrypted)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Get returns the plaintext value under namespace/key, or ("", nil) if absent.
func (r *KVRepo) Get(ctx context.Context, namespace, key string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT value FROM kv_entries WHERE namespace = ? AND key = ?`
	var encrypted string
	err := r.db.Reader.QueryRowContext(ctx, query, namespace, key).Scan(&encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s/%s: %w", namespace, key, err)
	}

	plaintext, err := r.decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("decrypt %s/%s: %w", namespace, key, err)
	}
	return plaintext, nil
}

// Delete removes namespace/key.
func (r *KVRepo) Delete(ctx context.Context, namespace, key string) error {
	const query = `DELETE FROM kv_entries WHERE namespace = ? AND key = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, namespace, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// DeleteNamespace removes every key stored under namespace.
func (r *KVRepo) DeleteNamespace(ctx context.Context, namespace string) error {
	const query = `DELETE FROM kv_entries WHERE namespace = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, namespace); err != nil {
		return fmt.Errorf("delete namespace %s: %w", namespace, err)
	}
	return nil
}

// PruneIdle removes every namespace whose newest entry is older than maxAge
// and returns the number of rows deleted.
func (r *KVRepo) PruneIdle(ctx context.Context, maxAge time.Duration) (int64, error) {
	const query = `DELETE FROM kv_entries WHERE namespace IN (
		SELECT namespace FROM kv_entries GROUP BY namespace
		HAVING MAX(updated_at) < datetime('now', ?))`
	modifier := fmt.Sprintf("-%d seconds", int64(maxAge.Seconds()))
	res, err := r.db.Writer.ExecContext(ctx, query, modifier)
	if err != nil {
		return 0, fmt.Errorf("prune idle namespaces: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune idle namespaces: %w", err)
	}
	return n, nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *KVRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *KVRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *KVRepo) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
