package config

import (
	"strings"
)

// normalize expands and cleans every path field and canonicalizes
// user-supplied lookup tables.
func (c *Config) normalize() error {
	var err error
	if c.Paths.RootDir, err = expandPath(c.Paths.RootDir); err != nil {
		return err
	}
	if c.Paths.WatchDir != "" {
		if c.Paths.WatchDir, err = expandPath(c.Paths.WatchDir); err != nil {
			return err
		}
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Organize.DefaultCustomer = strings.TrimSpace(c.Organize.DefaultCustomer)
	c.Organize.Schedule = strings.TrimSpace(c.Organize.Schedule)
	c.Server.JWTSecret = strings.TrimSpace(c.Server.JWTSecret)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	// Extension overrides are matched case-insensitively without a dot.
	if len(c.Categories) > 0 {
		normalized := make(map[string]string, len(c.Categories))
		for ext, category := range c.Categories {
			key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if key == "" {
				continue
			}
			normalized[key] = strings.TrimSpace(category)
		}
		c.Categories = normalized
	}

	return nil
}
