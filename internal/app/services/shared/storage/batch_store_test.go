package storage

import (
	"context"
	"io"
	"testing"
	"time"

	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readObject(t *testing.T, s *MemoryStorage, key string) string {
	t.Helper()
	body, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	defer body.Close()
	content, err := io.ReadAll(body)
	require.NoError(t, err)
	return string(content)
}

func TestBatchStore_BackupAndSaveMetadata(t *testing.T) {
	ctx := context.Background()
	objects := NewMemoryStorage()
	store := NewBatchStore(objects, zap.NewNop())

	first := &models.Metadata{SubmissionSchema: "CQGC_Germline"}
	second := &models.Metadata{SubmissionSchema: "CQGC_Exome_Tumeur_Seul"}
	third := &models.Metadata{SubmissionSchema: "CQGC_Germline"}

	require.NoError(t, store.BackupAndSaveMetadata(ctx, "B1", first))
	_, err := objects.Stat(ctx, ".backup/B1/metadata.json.1")
	assert.True(t, exceptions.IsNotFound(err), "first save has nothing to back up")
	assert.Contains(t, readObject(t, objects, ".backup/B1/metadata.json.latest"), "CQGC_Germline")

	require.NoError(t, store.BackupAndSaveMetadata(ctx, "B1", second))
	require.NoError(t, store.BackupAndSaveMetadata(ctx, "B1", third))

	assert.Contains(t, readObject(t, objects, ".backup/B1/metadata.json.1"), "CQGC_Germline")
	assert.Contains(t, readObject(t, objects, ".backup/B1/metadata.json.2"), "CQGC_Exome_Tumeur_Seul")
	assert.Contains(t, readObject(t, objects, "B1/metadata.json"), "CQGC_Germline")
	assert.Contains(t, readObject(t, objects, "B1/metadata.json"), "\n  \"submissionSchema\"", "pretty printed")

	current, err := store.GetMetadata(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, "CQGC_Germline", current.SubmissionSchema)

	previous, err := store.GetMetadataVersion(ctx, "B1", "2")
	require.NoError(t, err)
	assert.Equal(t, "CQGC_Exome_Tumeur_Seul", previous.SubmissionSchema)
}

func TestBatchStore_ListMetadataVersions(t *testing.T) {
	ctx := context.Background()
	objects := NewMemoryStorage()
	modified := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	objects.Now = func() time.Time { return modified }
	store := NewBatchStore(objects, zap.NewNop())

	require.NoError(t, store.BackupAndSaveMetadata(ctx, "B1", &models.Metadata{}))
	require.NoError(t, store.BackupAndSaveMetadata(ctx, "B1", &models.Metadata{}))
	require.NoError(t, objects.Put(ctx, ".backup/B10/metadata.json.1", []byte("{}"), ""))

	versions, err := store.ListMetadataVersions(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, []models.MetadataVersion{
		{Version: "1", LastModified: modified},
		{Version: "latest", LastModified: modified},
	}, versions)
}

func TestBatchStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewBatchStore(NewMemoryStorage(), zap.NewNop())

	_, err := store.GetMetadata(ctx, "missing")
	assert.True(t, exceptions.IsNotFound(err))

	_, err = store.GetMetadataVersion(ctx, "missing", "3")
	assert.True(t, exceptions.IsNotFound(err))
}

func TestBatchStore_GetMetadataMalformed(t *testing.T) {
	ctx := context.Background()
	objects := NewMemoryStorage()
	require.NoError(t, objects.Put(ctx, "B1/metadata.json", []byte("{not json"), ""))

	_, err := NewBatchStore(objects, zap.NewNop()).GetMetadata(ctx, "B1")
	assert.Error(t, err)
	assert.False(t, exceptions.IsNotFound(err))
}

func TestBatchStore_ListBatchFiles(t *testing.T) {
	ctx := context.Background()
	objects := NewMemoryStorage()
	for _, key := range []string{
		"B1/",
		"B1/_SUCCESS",
		"B1/metadata.json",
		"B1/S1.cram",
		"B1/S1.cram.md5sum",
		"B1/S1.hard-filtered.gvcf.gz",
		"B1/S1.extra_results.tgz",
		"B1/S1.hpo",
		"B1/logs/run.log",
		"B1/nested/S2.crai",
		"B2/S3.cram",
	} {
		require.NoError(t, objects.Put(ctx, key, []byte("x"), ""))
	}

	files, err := NewBatchStore(objects, zap.NewNop()).ListBatchFiles(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1.cram", "S1.hard-filtered.gvcf.gz", "nested/S2.crai"}, files)
}
