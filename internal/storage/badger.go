// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/chatstat/internal/config"
	"github.com/tomtom215/chatstat/internal/logging"
)

// Key prefixes for BadgerDB storage
const (
	objectKeyPrefix = "obj:"
	metaKeyPrefix   = "meta:"
)

// DownloadPath is the route prefix serving signed local downloads.
const DownloadPath = "/api/v1/files/"

// Download link errors.
var (
	ErrSignatureInvalid = errors.New("storage: download signature invalid")
	ErrLinkExpired      = errors.New("storage: download link expired")
)

// BadgerStore keeps objects in an embedded BadgerDB. Presigned links point
// back at this service and carry an HMAC over the key and expiry.
type BadgerStore struct {
	db         *badger.DB
	signingKey []byte
	baseURL    string
	now        func() time.Time
}

// NewBadgerStore opens (or creates) the database at cfg.Path, or an
// in-memory one when cfg.InMemory is set.
func NewBadgerStore(cfg config.BadgerConfig, publicURL string) (*BadgerStore, error) {
	if len(cfg.SigningKey) < 32 {
		return nil, fmt.Errorf("badger store: signing key must be at least 32 characters")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Badger object store ready")

	return &BadgerStore{
		db:         db,
		signingKey: []byte(cfg.SigningKey),
		baseURL:    strings.TrimRight(publicURL, "/"),
		now:        time.Now,
	}, nil
}

// Put stores data and its metadata atomically.
func (s *BadgerStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	meta, err := json.Marshal(ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		LastModified: s.now().UTC(),
		ContentType:  contentType,
	})
	if err != nil {
		return fmt.Errorf("marshal object info: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(objectKeyPrefix+key), data); err != nil {
			return fmt.Errorf("set object: %w", err)
		}
		if err := txn.Set([]byte(metaKeyPrefix+key), meta); err != nil {
			return fmt.Errorf("set object info: %w", err)
		}
		return nil
	})
}

// Get returns the object at key.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(objectKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		if err != nil {
			return fmt.Errorf("get object: %w", err)
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Stat returns the metadata of the object at key.
func (s *BadgerStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	var info ObjectInfo
	if err := validateKey(key); err != nil {
		return info, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		if err != nil {
			return fmt.Errorf("get object info: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &info)
		})
	})
	return info, err
}

// List returns the metadata of every object under prefix, in key order.
func (s *BadgerStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var infos []ObjectInfo
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := []byte(metaKeyPrefix + prefix)
		for it.Seek(seek); it.ValidForPrefix(seek); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var info ObjectInfo
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &info)
			}); err != nil {
				return fmt.Errorf("decode object info: %w", err)
			}
			infos = append(infos, info)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	return infos, nil
}

// Presign returns a signed download link to this service, valid for ttl.
func (s *BadgerStore) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if _, err := s.Stat(ctx, key); err != nil {
		return "", err
	}
	expires := s.now().Add(ttl).Unix()

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", s.sign(key, expires))
	return s.baseURL + DownloadPath + key + "?" + q.Encode(), nil
}

// Verify checks a download link's expiry and signature.
func (s *BadgerStore) Verify(key, expires, signature string) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrSignatureInvalid
	}
	want := s.sign(key, exp)
	if !hmac.Equal([]byte(want), []byte(signature)) {
		return ErrSignatureInvalid
	}
	if s.now().Unix() > exp {
		return ErrLinkExpired
	}
	return nil
}

// Download verifies a signed link and returns the object and its metadata.
func (s *BadgerStore) Download(ctx context.Context, key, expires, signature string) ([]byte, ObjectInfo, error) {
	if err := s.Verify(key, expires, signature); err != nil {
		return nil, ObjectInfo{}, err
	}
	info, err := s.Stat(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	return data, info, nil
}

func (s *BadgerStore) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(key))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// LocalDownloads returns the Badger backend behind b, if any. The HTTP layer
// uses it to serve signed links.
func LocalDownloads(b ObjectStore) (*BadgerStore, bool) {
	for {
		switch v := b.(type) {
		case *BadgerStore:
			return v, true
		case interface{ Unwrap() Backend }:
			b = v.Unwrap()
		default:
			return nil, false
		}
	}
}
