// Package cache implements the content-addressed, TTL-bounded fetch cache
// (spec §4.1): memoizes the result of a pure function call keyed by
// (function identity, argument tuple), atomically, with a textual codec
// for small structured values and a binary (zstd) codec for tabular
// frames. Grounded on the teacher's storage.CachedChunkReader /
// ChunkWriter shape (cmd/cimis/query.go, cmd/cimis/ingest.go): an
// in-process LRU in front of an on-disk directory, atomic write-then-
// rename, and explicit compression.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/dl-alexandre/meteo/internal/core/logger"
)

// Codec names understood by Get/Put.
type Codec int

const (
	CodecJSON Codec = iota
	CodecBinary
)

// ErrMiss is returned by Get when the key is absent or expired. It is not
// a failure — the caller should fall through to the origin call.
var ErrMiss = errors.New("cache: miss")

// Cache is a directory-backed, TTL-bounded memoizer with an in-process
// LRU layer for repeated lookups inside one process lifetime.
type Cache struct {
	dir     string
	enabled bool
	mem     *lru.Cache[string, memEntry]
	enc     *zstd.Encoder
	dec     *zstd.Decoder
}

type memEntry struct {
	raw   []byte
	stamp time.Time
}

// New creates a Cache rooted at dir. memSize bounds the in-process LRU
// entry count; dir is created with owner-only permissions if missing.
func New(dir string, enabled bool, memSize int) (*Cache, error) {
	if memSize <= 0 {
		memSize = 256
	}
	mc, err := lru.New[string, memEntry](memSize)
	if err != nil {
		return nil, err
	}
	if enabled {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &Cache{dir: dir, enabled: enabled, mem: mc, enc: enc, dec: dec}, nil
}

// key hashes the function identity and argument tuple into a filesystem-
// safe content address.
func key(fn, args string) string {
	sum := sha256.Sum256([]byte(fn + "\x00" + args))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(k string) string {
	return filepath.Join(c.dir, k[:2], k+".bin")
}

// Get returns the bytes persisted under (fn, args) if present and not
// older than ttl. A cache failure (I/O error, corrupt file) degrades to
// ErrMiss rather than propagating, per spec §4.1's failure policy.
func (c *Cache) Get(fn, args string, ttl time.Duration) ([]byte, error) {
	if !c.enabled {
		return nil, ErrMiss
	}
	k := key(fn, args)

	if e, ok := c.mem.Get(k); ok {
		if ttl <= 0 || time.Since(e.stamp) <= ttl {
			return e.raw, nil
		}
		c.mem.Remove(k)
	}

	p := c.path(k)
	fi, err := os.Stat(p)
	if err != nil {
		return nil, ErrMiss
	}
	if ttl > 0 && time.Since(fi.ModTime()) > ttl {
		return nil, ErrMiss
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		logger.Warn("cache: read %s failed: %v", p, err)
		return nil, ErrMiss
	}
	c.mem.Add(k, memEntry{raw: raw, stamp: fi.ModTime()})
	return raw, nil
}

// Put persists value under (fn, args), atomically (write-temp, rename)
// and with owner-only permissions. A nil value is never written — spec
// §4.1: "None results are not cached".
func (c *Cache) Put(fn, args string, value []byte) error {
	if !c.enabled || value == nil {
		return nil
	}
	k := key(fn, args)
	c.mem.Add(k, memEntry{raw: value, stamp: time.Now()})

	p := c.path(k)
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		logger.Warn("cache: mkdir failed: %v", err)
		return nil
	}
	tmp := p + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		logger.Warn("cache: create temp failed: %v", err)
		return nil
	}
	if _, err := f.Write(value); err != nil {
		f.Close()
		os.Remove(tmp)
		logger.Warn("cache: write failed: %v", err)
		return nil
	}
	if err := f.Close(); err != nil {
		logger.Warn("cache: close failed: %v", err)
		return nil
	}
	if err := os.Rename(tmp, p); err != nil {
		logger.Warn("cache: rename failed: %v", err)
	}
	return nil
}

// Purge removes on-disk entries older than olderThan.
func (c *Cache) Purge(olderThan time.Duration) error {
	if !c.enabled {
		return nil
	}
	cutoff := time.Now().Add(-olderThan)
	return filepath.Walk(c.dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if rmErr := os.Remove(p); rmErr != nil {
				logger.Warn("cache: purge %s failed: %v", p, rmErr)
			}
		}
		return nil
	})
}

// EncodeJSON and DecodeJSON implement the textual codec for small
// structured values (spec §4.1).
func EncodeJSON(v any) ([]byte, error) { return json.Marshal(v) }
func DecodeJSON(raw []byte, v any) error {
	return json.Unmarshal(raw, v)
}

// EncodeJSONT and DecodeJSONT are the generic (*T) forms Decorate expects,
// thin wrappers over EncodeJSON/DecodeJSON for adapter payload types.
func EncodeJSONT[T any](v *T) ([]byte, error) { return EncodeJSON(v) }
func DecodeJSONT[T any](raw []byte) (*T, error) {
	var v T
	if err := DecodeJSON(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// EncodeBinary and DecodeBinary implement the zstd-compressed binary
// codec used for tabular Frame payloads.
func (c *Cache) EncodeBinary(raw []byte) []byte {
	return c.enc.EncodeAll(raw, nil)
}

func (c *Cache) DecodeBinary(compressed []byte) ([]byte, error) {
	return c.dec.DecodeAll(compressed, nil)
}

// Decorate wraps compute as a memoized call keyed by (fnName, args), per
// spec §9's "model as a higher-order wrapper that takes the function and
// its argument tuple" design note. A nil result from compute is passed
// through without being cached (spec §4.1: providers that fail-open must
// be retried on the next call).
func Decorate[T any](c *Cache, fnName string, ttl time.Duration, marshal func(*T) ([]byte, error), unmarshal func([]byte) (*T, error), compute func() (*T, error)) func(args string) (*T, error) {
	return func(args string) (*T, error) {
		if raw, err := c.Get(fnName, args, ttl); err == nil {
			plain, derr := c.DecodeBinary(raw)
			if derr != nil {
				logger.Warn("cache: decode %s failed: %v", fnName, derr)
			} else if v, uerr := unmarshal(plain); uerr == nil {
				return v, nil
			}
		}

		v, err := compute()
		if err != nil || v == nil {
			return v, err
		}

		plain, merr := marshal(v)
		if merr != nil {
			logger.Warn("cache: marshal %s failed: %v", fnName, merr)
			return v, nil
		}
		if err := c.Put(fnName, args, c.EncodeBinary(plain)); err != nil {
			logger.Warn("cache: put %s failed: %v", fnName, err)
		}
		return v, nil
	}
}
