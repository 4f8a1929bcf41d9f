package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func runKVSuite(t *testing.T, kv KV) {
	var doc testDoc

	found, err := kv.Get("missing", &doc)
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, kv.Set("doc", testDoc{Name: "orders", Count: 3}))

	found, err = kv.Get("doc", &doc)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "orders", doc.Name)
	assert.Equal(t, 3, doc.Count)

	// set overwrites wholesale
	assert.NoError(t, kv.Set("doc", testDoc{Name: "orders", Count: 4}))
	_, err = kv.Get("doc", &doc)
	assert.NoError(t, err)
	assert.Equal(t, 4, doc.Count)

	assert.NoError(t, kv.Delete("doc"))
	found, err = kv.Get("doc", &doc)
	assert.NoError(t, err)
	assert.False(t, found)

	// deleting a missing key is fine
	assert.NoError(t, kv.Delete("doc"))
}

func TestMemoryKV(t *testing.T) {
	runKVSuite(t, NewMemory())
}

func TestGormKV(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&Record{}))

	runKVSuite(t, NewGorm(db))
}
