package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/billagee/dropbox-to-s3/internal/backup"
)

// MemoryStore is an in-memory implementation of backup.ObjectStore.
// Use in tests as a stand-in for S3.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]memoryObject
	now     func() time.Time
}

type memoryObject struct {
	data    []byte
	modTime time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]map[string]memoryObject),
		now:     time.Now,
	}
}

// SetClock overrides the timestamp source for stored objects, so tests
// can control modification times.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Put seeds an object directly, with the given modification time.
func (m *MemoryStore) Put(bucket, key string, data []byte, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.buckets[bucket] == nil {
		m.buckets[bucket] = make(map[string]memoryObject)
	}
	m.buckets[bucket][key] = memoryObject{data: data, modTime: modTime}
}

func (m *MemoryStore) List(_ context.Context, bucket, prefix string) (map[string]backup.RemoteObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	objects := make(map[string]backup.RemoteObject)
	for key, obj := range m.buckets[bucket] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects[key] = backup.RemoteObject{Key: key, Size: int64(len(obj.data)), ModTime: obj.modTime}
	}
	return objects, nil
}

func (m *MemoryStore) Upload(_ context.Context, bucket, key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading upload body: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch for %s: expected %d bytes, got %d", key, size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.buckets[bucket] == nil {
		m.buckets[bucket] = make(map[string]memoryObject)
	}
	m.buckets[bucket][key] = memoryObject{data: data, modTime: m.now()}
	return nil
}

func (m *MemoryStore) Download(_ context.Context, bucket, key string, w io.Writer) error {
	m.mu.Lock()
	obj, ok := m.buckets[bucket][key]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("object not found: s3://%s/%s", bucket, key)
	}

	if _, err := io.Copy(w, bytes.NewReader(obj.data)); err != nil {
		return fmt.Errorf("writing object content: %w", err)
	}
	return nil
}

// Keys returns the object keys in a bucket, for test assertions.
func (m *MemoryStore) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.buckets[bucket]))
	for key := range m.buckets[bucket] {
		keys = append(keys, key)
	}
	return keys
}

// Compile-time check that MemoryStore implements backup.ObjectStore.
var _ backup.ObjectStore = (*MemoryStore)(nil)
