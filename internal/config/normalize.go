package config

import (
	"fmt"
	"sort"
	"strings"
)

// normalize expands paths, canonicalizes category rules, and builds the
// extension index. Category tables in TOML carry no order, so overlapping
// extension claims are resolved deterministically: the lexicographically
// first category name wins.
func (c *Config) normalize() error {
	logDir, err := expandPath(c.Paths.LogDir)
	if err != nil {
		return err
	}
	c.Paths.LogDir = logDir

	targets := make([]string, 0, len(c.Watch.TargetDirectories))
	seen := make(map[string]struct{}, len(c.Watch.TargetDirectories))
	for _, target := range c.Watch.TargetDirectories {
		trimmed := strings.TrimSpace(target)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return err
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		targets = append(targets, expanded)
	}
	c.Watch.TargetDirectories = targets

	c.Categories.Default = strings.TrimSpace(c.Categories.Default)
	if c.Categories.Default == "" {
		c.Categories.Default = defaultCategoryName
	}

	rules := make(map[string][]string, len(c.Categories.Rules))
	names := make([]string, 0, len(c.Categories.Rules))
	for name, extensions := range c.Categories.Rules {
		cleanName := strings.TrimSpace(name)
		if cleanName == "" {
			return fmt.Errorf("categories: empty category name")
		}
		cleaned := make([]string, 0, len(extensions))
		for _, ext := range extensions {
			normalized := strings.ToLower(strings.TrimSpace(ext))
			normalized = strings.TrimPrefix(normalized, ".")
			if normalized == "" {
				return fmt.Errorf("categories: category %q contains an empty extension", cleanName)
			}
			cleaned = append(cleaned, normalized)
		}
		rules[cleanName] = cleaned
		names = append(names, cleanName)
	}
	c.Categories.Rules = rules

	sort.Strings(names)
	c.extIndex = make(map[string]string)
	for _, name := range names {
		for _, ext := range rules[name] {
			if _, claimed := c.extIndex[ext]; claimed {
				continue
			}
			c.extIndex[ext] = name
		}
	}

	return nil
}

func sortStrings(values []string) {
	sort.Strings(values)
}
