// Package store is the collection-level persistence layer. A named collection
// of JSON records is read and written as one unit against an ordered list of
// backends: the remote key-value service when configured, then the local file
// store. A failing backend is skipped and the operation completes on the next
// one, so a remote outage degrades to file storage instead of an error.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aromas-andinas/storefront/internal/config"
	"github.com/aromas-andinas/storefront/internal/errs"
	"github.com/aromas-andinas/storefront/internal/logger"
)

// ErrKeyMissing is returned by backends when a key has never been written.
// The store translates it into an empty collection; it never reaches callers.
var ErrKeyMissing = errors.New("key missing")

// Collection is an ordered sequence of opaque JSON records.
type Collection []json.RawMessage

// Version identifies the content a writer read before modifying it.
// Conditional writes fail when the stored content no longer hashes to it.
type Version string

// NoVersion is the version of a key that has never been written.
const NoVersion Version = ""

// Backend is one storage strategy. Get returns ErrKeyMissing for absent keys.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

type Store struct {
	backends []Backend
	log      *logger.Logger
}

// New builds the backend chain from configuration. The remote key-value
// backend leads when both its URL and token are present; the file backend is
// always last.
func New(cfg config.StoreConfig, log *logger.Logger) *Store {
	backends := []Backend{}
	if cfg.RemoteConfigured() {
		backends = append(backends, NewRedisBackend(cfg.KVURL, cfg.KVToken))
		log.LogStore("INIT", "-", "remote key-value backend configured, file backend as fallback")
	} else {
		log.LogStore("INIT", "-", "no remote key-value endpoint configured, using file backend")
	}
	backends = append(backends, NewFileBackend(cfg.DataDir, cfg.ReadOnlyFS))
	return &Store{backends: backends, log: log}
}

// NewWithBackends wires an explicit backend chain. Tests substitute fakes here.
func NewWithBackends(log *logger.Logger, backends ...Backend) *Store {
	return &Store{backends: backends, log: log}
}

func versionOf(data []byte) Version {
	if len(data) == 0 {
		return NoVersion
	}
	sum := sha256.Sum256(data)
	return Version(hex.EncodeToString(sum[:]))
}

// Save replaces the entire collection at key. The first backend that accepts
// the write wins; a backend failure is logged and the next one is tried.
func (s *Store) Save(ctx context.Context, key string, c Collection) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errs.NewPersistence("encode", "save", err)
	}
	return s.write(ctx, key, data)
}

func (s *Store) write(ctx context.Context, key string, data []byte) error {
	var lastErr error
	var lastBackend string
	for i, b := range s.backends {
		err := b.Set(ctx, key, data)
		if err == nil {
			if i > 0 {
				s.log.Warn("STORE", fmt.Sprintf("[SAVE] %s - wrote via fallback backend %s", key, b.Name()))
			}
			return nil
		}
		lastErr = err
		lastBackend = b.Name()
		if i < len(s.backends)-1 {
			s.log.Warn("STORE", fmt.Sprintf("[SAVE] %s - %s backend failed (%v), falling back", key, b.Name(), err))
		}
	}

	// A read-only filesystem is a deployment problem, not a storage fault.
	var cfgErr *errs.ConfigurationError
	if errors.As(lastErr, &cfgErr) {
		return lastErr
	}
	return errs.NewPersistence(lastBackend, "save", lastErr)
}

// Load returns the full collection at key along with its version. A key that
// has never been written, and a read that fails on every backend, both come
// back as an empty collection: reads degrade to "no data" rather than erroring.
// Malformed stored data does fail, so corruption surfaces at the boundary.
func (s *Store) Load(ctx context.Context, key string) (Collection, Version, error) {
	for i, b := range s.backends {
		data, err := b.Get(ctx, key)
		if errors.Is(err, ErrKeyMissing) {
			return Collection{}, NoVersion, nil
		}
		if err != nil {
			if i < len(s.backends)-1 {
				s.log.Warn("STORE", fmt.Sprintf("[LOAD] %s - %s backend failed (%v), falling back", key, b.Name(), err))
				continue
			}
			s.log.Error("STORE", fmt.Sprintf("[LOAD] %s - all backends failed, returning empty collection (%v)", key, err))
			return Collection{}, NoVersion, nil
		}

		var c Collection
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, NoVersion, errs.NewPersistence(b.Name(), "decode", err)
		}
		return c, versionOf(data), nil
	}
	return Collection{}, NoVersion, nil
}

// CompareAndSave writes the collection only if the stored content still
// matches expect. A moved version returns errs.ErrVersionConflict so the
// caller gets a deterministic conflict signal instead of last-writer-wins.
func (s *Store) CompareAndSave(ctx context.Context, key string, c Collection, expect Version) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errs.NewPersistence("encode", "save", err)
	}

	var lastErr error
	var lastBackend string
	for i, b := range s.backends {
		current, err := b.Get(ctx, key)
		if err != nil && !errors.Is(err, ErrKeyMissing) {
			lastErr = err
			lastBackend = b.Name()
			if i < len(s.backends)-1 {
				s.log.Warn("STORE", fmt.Sprintf("[CAS] %s - %s backend failed (%v), falling back", key, b.Name(), err))
			}
			continue
		}
		if versionOf(current) != expect {
			return errs.ErrVersionConflict
		}

		if err := b.Set(ctx, key, data); err != nil {
			lastErr = err
			lastBackend = b.Name()
			if i < len(s.backends)-1 {
				s.log.Warn("STORE", fmt.Sprintf("[CAS] %s - %s backend failed (%v), falling back", key, b.Name(), err))
			}
			continue
		}
		return nil
	}

	var cfgErr *errs.ConfigurationError
	if errors.As(lastErr, &cfgErr) {
		return lastErr
	}
	return errs.NewPersistence(lastBackend, "save", lastErr)
}

// Append reads the collection, appends record and writes it back. The
// read-modify-write is guarded by the version check; a single conflicting
// writer is absorbed by one reload before the conflict surfaces.
func (s *Store) Append(ctx context.Context, key string, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return errs.NewPersistence("encode", "append", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		c, version, err := s.Load(ctx, key)
		if err != nil {
			return err
		}
		c = append(c, raw)
		err = s.CompareAndSave(ctx, key, c, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errs.ErrVersionConflict) {
			return err
		}
	}
	return errs.ErrVersionConflict
}

// DecodeAll decodes every record in the collection into T, validating the
// stored shape at the boundary.
func DecodeAll[T any](c Collection) ([]T, error) {
	out := make([]T, 0, len(c))
	for i, raw := range c {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Encode builds a collection from typed records.
func Encode[T any](items []T) (Collection, error) {
	c := make(Collection, 0, len(items))
	for i, v := range items {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		c = append(c, raw)
	}
	return c, nil
}
