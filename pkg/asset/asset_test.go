package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recontriage/recontriage/pkg/jsonutil"
)

func TestRecordDecodeWireFields(t *testing.T) {
	line := `{"timestamp":"2026-08-26T10:00:00Z","subdomain":"shop.example.com","status_code":200,"title":"Shop","tech_stack":["nginx","php"],"source":"subfinder","asn":"AS13335","org":"Example Org"}`

	var r Record
	require.NoError(t, jsonutil.Unmarshal([]byte(line), &r))

	assert.Equal(t, "shop.example.com", r.Identifier)
	assert.Equal(t, "2026-08-26T10:00:00Z", r.DiscoveredAt)
	assert.Equal(t, 200, r.StatusCode)
	assert.Equal(t, "Shop", r.Title)
	assert.Equal(t, []string{"nginx", "php"}, r.TechStack)
	assert.Equal(t, "subfinder", r.Source)
	assert.False(t, r.IsNew)
}

func TestRecordDecodeMinimal(t *testing.T) {
	// Engines may omit everything but the identifier.
	var r Record
	require.NoError(t, jsonutil.Unmarshal([]byte(`{"subdomain":"bare.example.com"}`), &r))

	assert.Equal(t, "bare.example.com", r.Identifier)
	assert.Zero(t, r.StatusCode)
	assert.Empty(t, r.TechStack)
}

func TestIdentifiersDeduplicatesInArrivalOrder(t *testing.T) {
	records := []Record{
		{Identifier: "b.example.com"},
		{Identifier: "a.example.com"},
		{Identifier: "b.example.com"},
		{Identifier: ""},
		{Identifier: "c.example.com"},
	}

	ids := Identifiers(records)
	assert.Equal(t, []string{"b.example.com", "a.example.com", "c.example.com"}, ids)
}

func TestMarkNew(t *testing.T) {
	records := []Record{
		{Identifier: "a.example.com"},
		{Identifier: "b.example.com"},
		{Identifier: "a.example.com"},
	}
	MarkNew(records, map[string]struct{}{"a.example.com": {}})

	assert.True(t, records[0].IsNew)
	assert.False(t, records[1].IsNew)
	assert.True(t, records[2].IsNew, "duplicate records share novelty")
}
