package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duksosleepy/scraper/internal/models"
)

func TestFactory_CreateMemory(t *testing.T) {
	store, err := NewFactory().Create(models.StorageConfig{Type: models.StorageTypeMemory})
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &MemoryStorage{}, store)
}

func TestFactory_CreateSQLite(t *testing.T) {
	store, err := NewFactory().Create(models.StorageConfig{
		Type: models.StorageTypeSQLite,
		Path: filepath.Join(t.TempDir(), "factory.db"),
	})
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &SQLiteStorage{}, store)
}

func TestFactory_CreateUnsupported(t *testing.T) {
	_, err := NewFactory().Create(models.StorageConfig{Type: "redis"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage type")
}

func TestFactory_SupportedProviders(t *testing.T) {
	providers := NewFactory().SupportedProviders()
	assert.ElementsMatch(t, []string{"memory", "sqlite", "postgres"}, providers)
}
