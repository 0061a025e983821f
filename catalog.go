package chromeasync

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Catalog enumerates, per namespace, the method names known to follow the
// callback convention. Keys are namespace paths; grouped sub-surfaces are
// addressed with a dotted path, e.g. "storage.sync". A catalog is plain
// configuration constructed for one binding run, it carries no state of its
// own.
type Catalog map[string][]string

// ParseCatalog decodes a catalog from a JSON object of the form
//
//	{"tabs": ["create", "query"], "storage.sync": ["get", "set"]}
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	return c, nil
}

// Bind applies b across every catalog entry present in host. Namespaces the
// host does not expose are skipped, the same accommodation the binder makes
// for missing methods.
func (c Catalog) Bind(b *Binder, host Host) {
	for path, names := range c {
		b.Apply(lookupNamespace(host, path), names...)
	}
}

// lookupNamespace resolves a dotted namespace path against host, descending
// into nested Namespace members. Any missing or non-namespace segment
// resolves to nil.
func lookupNamespace(host Host, path string) Namespace {
	segments := strings.Split(path, ".")

	ns := host[segments[0]]

	for _, segment := range segments[1:] {
		if ns == nil {
			return nil
		}

		next, ok := ns[segment].(Namespace)
		if !ok {
			return nil
		}

		ns = next
	}

	return ns
}
