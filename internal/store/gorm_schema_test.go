package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestMappingRecordSchema(t *testing.T) {
	s, err := schema.Parse(&mappingRecord{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	t.Run("created_at keeps microseconds", func(t *testing.T) {
		field := s.LookUpField("CreatedAt")
		require.NotNil(t, field)

		assert.Equal(t, 6, field.Precision)
	})

	t.Run("owner and code share one unique index", func(t *testing.T) {
		idx := s.LookIndex("idx_url_mappings_owner_code")
		require.NotNil(t, idx)

		assert.Equal(t, "UNIQUE", idx.Class)
		require.Len(t, idx.Fields, 2)
		assert.Equal(t, "owner_id", idx.Fields[0].DBName)
		assert.Equal(t, "code", idx.Fields[1].DBName)
	})
}
