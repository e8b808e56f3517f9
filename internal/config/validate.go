package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable. Validation failures are fatal
// at startup; the daemon must not run with ambiguous rules.
func (c *Config) Validate() error {
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateCategories(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWatch() error {
	if len(c.Watch.TargetDirectories) == 0 {
		return errors.New("watch.target_directories must list at least one directory")
	}
	for _, target := range c.Watch.TargetDirectories {
		if !filepath.IsAbs(target) {
			return fmt.Errorf("watch.target_directories entry %q did not resolve to an absolute path", target)
		}
	}
	if c.Watch.SettleSeconds < 0 {
		return errors.New("watch.settle_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if !c.Archive.Enabled {
		return nil
	}
	if c.Archive.Days <= 0 {
		return errors.New("archive.days must be positive when archive.enabled is true")
	}
	if c.Archive.IntervalHours <= 0 {
		return errors.New("archive.interval_hours must be positive when archive.enabled is true")
	}
	return nil
}

func (c *Config) validateCategories() error {
	reserved := strings.ToLower(c.Categories.Default)
	for name := range c.Categories.Rules {
		if strings.ContainsRune(name, filepath.Separator) {
			return fmt.Errorf("categories: category name %q must not contain a path separator", name)
		}
		if strings.EqualFold(name, reserved) {
			return fmt.Errorf("categories: category name %q collides with the default category", name)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		return errors.New("workflow.error_retry_interval must be positive")
	}
	return nil
}
