package storage

import (
	"bytes"
	"context"
	"io"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/exceptions"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	body         []byte
	lastModified time.Time
}

// MemoryStorage keeps objects in process. It backs local runs without an
// object store and the tests of the storage consumers.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	Now     func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]memoryObject),
		Now:     time.Now,
	}
}

var _ contracts.ObjectStorage = (*MemoryStorage)(nil)

func (m *MemoryStorage) List(ctx context.Context, prefix string, maxKeys int) ([]models.ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0)
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	if maxKeys > 0 && len(keys) > maxKeys {
		keys = keys[:maxKeys]
	}

	objects := make([]models.ObjectInfo, 0, len(keys))
	for _, key := range keys {
		object := m.objects[key]
		objects = append(objects, models.ObjectInfo{Key: key, Size: int64(len(object.body)), LastModified: object.lastModified})
	}
	return objects, nil
}

func (m *MemoryStorage) Stat(ctx context.Context, key string) (*models.ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	object, ok := m.objects[key]
	if !ok {
		return nil, exceptions.ErrStorageObjectNotFound(nil, key)
	}
	return &models.ObjectInfo{Key: key, Size: int64(len(object.body)), LastModified: object.lastModified}, nil
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	object, ok := m.objects[key]
	if !ok {
		return nil, exceptions.ErrStorageObjectNotFound(nil, key)
	}
	return io.NopCloser(bytes.NewReader(object.body)), nil
}

func (m *MemoryStorage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = memoryObject{body: bytes.Clone(body), lastModified: m.Now()}
	return nil
}

func (m *MemoryStorage) Copy(ctx context.Context, srcKey, dstKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	object, ok := m.objects[srcKey]
	if !ok {
		return exceptions.ErrStorageObjectNotFound(nil, srcKey)
	}
	m.objects[dstKey] = memoryObject{body: bytes.Clone(object.body), lastModified: m.Now()}
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)
	return nil
}
