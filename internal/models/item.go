package models

import (
	"fmt"
	"time"

	"github.com/jimmiewester/skippy/internal/store"
	"github.com/jimmiewester/skippy/internal/utils"
)

// Attribute coercion helpers for the raw item form. Items round-trip through
// JSON, so maps arrive as map[string]any regardless of backend.

func itemString(item store.Item, key string) string {
	s, _ := item[key].(string)
	return s
}

func itemBool(item store.Item, key string) bool {
	b, _ := item[key].(bool)
	return b
}

func itemStringMap(item store.Item, key string) map[string]string {
	raw, ok := item[key].(map[string]any)
	if !ok {
		// Pre-serialization items may still carry the typed map.
		if typed, ok := item[key].(map[string]string); ok {
			return typed
		}
		return nil
	}
	m := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			m[k] = s
		}
	}
	return m
}

func itemTime(item store.Item, key string) (time.Time, error) {
	s, ok := item[key].(string)
	if !ok {
		return time.Time{}, fmt.Errorf("item missing %s timestamp", key)
	}
	t, err := utils.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}

func itemTimePtr(item store.Item, key string) (*time.Time, error) {
	if _, ok := item[key]; !ok {
		return nil, nil
	}
	if item[key] == nil {
		return nil, nil
	}
	t, err := itemTime(item, key)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
