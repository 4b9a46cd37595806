package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at the given YAML path and its source.
//
// Paths use the config file keys joined by dots, for example:
//
//	log_level
//	snap.commit_delay_ms
//	viewport.source
//	chrome.controls
//	chrome.controls[1]
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	var cur any = tree
	for _, part := range strings.Split(path, ".") {
		key, index, hasIndex, err := splitIndex(part)
		if err != nil {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		cur, ok = m[key]
		if !ok {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		if !hasIndex {
			continue
		}
		list, ok := cur.([]any)
		if !ok || index < 0 || index >= len(list) {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		cur = list[index]
	}
	return cur, nil
}

// splitIndex parses "key[3]" into ("key", 3, true).
func splitIndex(part string) (string, int, bool, error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return part, 0, false, nil
	}
	if !strings.HasSuffix(part, "]") {
		return "", 0, false, fmt.Errorf("malformed index in %q", part)
	}
	n, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil {
		return "", 0, false, err
	}
	return part[:open], n, true, nil
}
