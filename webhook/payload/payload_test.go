package payload

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		p, err := New("evt_1", "project.created", "org_1", map[string]string{"name": "demo"})
		require.NoError(t, err)
		assert.Equal(t, "evt_1", p.ID)
		assert.Equal(t, "project.created", p.Type)
		assert.Equal(t, "org_1", p.OrgID)
		assert.False(t, p.CreatedAt.IsZero())
		assert.JSONEq(t, `{"name":"demo"}`, string(p.Data))
	})

	t.Run("error - invalid event type", func(t *testing.T) {
		_, err := New("evt_1", "project..created", "org_1", map[string]string{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type must be hierarchical")
	})

	t.Run("error - missing org", func(t *testing.T) {
		_, err := New("evt_1", "project.created", "", map[string]string{"k": "v"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "org_id is required")
	})
}

func TestParse(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		original, err := New("evt_1", "member.role_changed", "org_1", map[string]string{"role": "admin"})
		require.NoError(t, err)

		bytes, err := original.Bytes()
		require.NoError(t, err)

		parsed, err := Parse(bytes)
		require.NoError(t, err)
		assert.Equal(t, original.ID, parsed.ID)
		assert.Equal(t, original.Type, parsed.Type)
		assert.Equal(t, original.OrgID, parsed.OrgID)
		assert.True(t, original.CreatedAt.Equal(parsed.CreatedAt))
	})

	t.Run("accepts second precision timestamps", func(t *testing.T) {
		raw := []byte(`{"id":"evt_1","type":"test.ping","created_at":"2024-06-01T10:00:00Z","org_id":"org_1","data":{"message":"ping"}}`)
		p, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), p.CreatedAt.UTC())
	})

	t.Run("error - invalid data", func(t *testing.T) {
		_, err := Parse([]byte(`{"id":"evt_1","type":"test.ping","created_at":"2024-06-01T10:00:00Z","org_id":"org_1"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "data is required")
	})
}

func TestBytes(t *testing.T) {
	t.Run("stable across calls", func(t *testing.T) {
		p, err := New("evt_1", "project.created", "org_1", map[string]string{"name": "demo"})
		require.NoError(t, err)

		// Signing and delivery reuse the serialized payload; two
		// serializations of the same value must be identical
		b1, err := p.Bytes()
		require.NoError(t, err)
		b2, err := p.Bytes()
		require.NoError(t, err)
		assert.Equal(t, b1, b2)
	})

	t.Run("wire format has the contract fields", func(t *testing.T) {
		p, err := New("evt_1", "project.created", "org_1", map[string]int{"count": 3})
		require.NoError(t, err)

		bytes, err := p.Bytes()
		require.NoError(t, err)

		var wire map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(bytes, &wire))
		assert.Contains(t, wire, "id")
		assert.Contains(t, wire, "type")
		assert.Contains(t, wire, "created_at")
		assert.Contains(t, wire, "org_id")
		assert.Contains(t, wire, "data")
	})
}

func TestValidateEventType(t *testing.T) {
	valid := []string{"project.created", "member.role_changed", "test.ping", "billing.invoice.paid"}
	for _, et := range valid {
		assert.NoError(t, ValidateEventType(et), et)
	}

	invalid := []string{"", ".project", "project.", "project..created", "project created", "project-created"}
	for _, et := range invalid {
		assert.Error(t, ValidateEventType(et), et)
	}
}
