package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryListOrder(t *testing.T) {
	r := NewRegistry(
		&fakeTool{name: "read_emails"},
		&fakeTool{name: "send_email"},
		&fakeTool{name: "web_search"},
	)

	specs := r.List()
	require.Len(t, specs, 3)
	assert.Equal(t, "read_emails", specs[0].Name)
	assert.Equal(t, "send_email", specs[1].Name)
	assert.Equal(t, "web_search", specs[2].Name)
	assert.Equal(t, 3, r.Len())
}

func TestRegistryDefinitions(t *testing.T) {
	r := NewRegistry(&fakeTool{name: "web_search"})

	defs := r.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, "web_search", defs[0].Function.Name)
	assert.NotNil(t, defs[0].Function.Parameters)
}

func TestRegistryLookup(t *testing.T) {
	ft := &fakeTool{name: "send_email"}
	r := NewRegistry(ft)

	got, ok := r.Lookup("send_email")
	require.True(t, ok)
	assert.Equal(t, ft, got)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}
