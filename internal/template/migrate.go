package template

import (
	"fmt"
)

// legacyVersion identifies templates written before schema_version existed.
const legacyVersion = ""

// migration upgrades a decoded document by one schema version.
type migration struct {
	to    string
	apply func(doc map[string]any) error
}

var migrations = map[string]migration{
	legacyVersion: {to: SchemaVersion, apply: migrateLegacySelectors},
}

// Migrate upgrades doc in place to SchemaVersion.
func Migrate(doc map[string]any) error {
	for {
		v, _ := doc["schema_version"].(string)
		if v == SchemaVersion {
			return nil
		}
		m, ok := migrations[v]
		if !ok {
			return fmt.Errorf("%w: unsupported schema_version %q", ErrInvalidTemplate, v)
		}
		if err := m.apply(doc); err != nil {
			return fmt.Errorf("migrating %q to %q: %w", v, m.to, err)
		}
		doc["schema_version"] = m.to
	}
}

// migrateLegacySelectors rewrites {select: {by_header_normalized: x}} and
// {select: {by_header: x}} column selectors into {header: x}.
func migrateLegacySelectors(doc map[string]any) error {
	mapping, ok := doc["mapping"].(map[string]any)
	if !ok {
		return nil
	}
	return rewriteSelectors(mapping)
}

func rewriteSelectors(node map[string]any) error {
	for key, val := range node {
		switch v := val.(type) {
		case map[string]any:
			if sel, ok := v["select"].(map[string]any); ok {
				col, err := legacyColumn(sel)
				if err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
				node[key] = col
				continue
			}
			if err := rewriteSelectors(v); err != nil {
				return err
			}
		case []any:
			for i, item := range v {
				m, ok := item.(map[string]any)
				if !ok {
					continue
				}
				sel, ok := m["select"].(map[string]any)
				if !ok {
					continue
				}
				col, err := legacyColumn(sel)
				if err != nil {
					return fmt.Errorf("%s[%d]: %w", key, i, err)
				}
				v[i] = col
			}
		}
	}
	return nil
}

func legacyColumn(sel map[string]any) (map[string]any, error) {
	for _, k := range []string{"by_header_normalized", "by_header"} {
		if h, ok := sel[k].(string); ok && h != "" {
			return map[string]any{"header": h}, nil
		}
	}
	if _, ok := sel["by_index"]; ok {
		return nil, fmt.Errorf("index selectors are not supported")
	}
	return map[string]any{"header": ""}, nil
}
