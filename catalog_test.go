package chromeasync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(`{
		"tabs": ["create", "query"],
		"storage.sync": ["get", "set"]
	}`))
	require.NoError(t, err)

	assert.Equal(t, Catalog{
		"tabs":         {"create", "query"},
		"storage.sync": {"get", "set"},
	}, c)
}

func TestParseCatalog_Invalid(t *testing.T) {
	_, err := ParseCatalog([]byte(`["not", "an", "object"]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing catalog")
}

func TestCatalog_Bind(t *testing.T) {
	var last LastError

	host := Host{
		"tabs": Namespace{
			"create": immediateHost("tab created"),
			"remove": immediateHost("untouched"),
		},
		"storage": Namespace{
			"sync": Namespace{
				"get": immediateHost("synced value"),
			},
			"local": Namespace{
				"get": immediateHost("local value"),
			},
		},
	}

	catalog := Catalog{
		"tabs":          {"create"},
		"storage.sync":  {"get"},
		"storage.local": {"get"},
		"downloads":     {"download"}, // not exposed by this host
	}

	catalog.Bind(NewBinder(&last), host)

	val, err := awaitWithTimeout(t, host["tabs"]["create"].(AsyncFunc)(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "tab created", val)

	// Grouped sub-surfaces are structurally identical and bound per instance.
	sync := host["storage"]["sync"].(Namespace)
	val, err = awaitWithTimeout(t, sync["get"].(AsyncFunc)(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "synced value", val)

	local := host["storage"]["local"].(Namespace)
	val, err = awaitWithTimeout(t, local["get"].(AsyncFunc)(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "local value", val)

	// Methods outside the catalog keep their callback convention.
	_, adapted := host["tabs"]["remove"].(AsyncFunc)
	assert.False(t, adapted)
}

func TestLookupNamespace(t *testing.T) {
	inner := Namespace{"get": immediateHost("x")}

	host := Host{
		"storage": Namespace{
			"sync": inner,
			"area": "data, not a namespace",
		},
	}

	assert.Nil(t, lookupNamespace(host, "missing"))
	assert.Nil(t, lookupNamespace(host, "storage.missing"))
	assert.Nil(t, lookupNamespace(host, "storage.area"))
	assert.Nil(t, lookupNamespace(host, "missing.sync.deep"))

	resolved := lookupNamespace(host, "storage.sync")
	require.NotNil(t, resolved)
	assert.Contains(t, resolved, "get")
}
