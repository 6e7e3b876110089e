package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/customfm/fmlint/pkg/dialect"
	"github.com/customfm/fmlint/pkg/lint"
)

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "json", "github", "markdown"}

// Validate checks if the configuration is valid. Rule selectors are checked
// later by LintConfig, once plugins are registered.
func (c *Config) Validate() error {
	if !strings.EqualFold(c.Templater, DefaultTemplater) {
		return fmt.Errorf("templater %q is not supported, only %q", c.Templater, DefaultTemplater)
	}
	if _, err := dialect.Lookup(c.Dialect); err != nil {
		return err
	}
	if !slices.Contains(OutputFormats, strings.ToLower(c.OutputFormat)) {
		return fmt.Errorf("unknown output format %q (available: %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.Processes < 0 {
		return fmt.Errorf("processes must not be negative, got %d", c.Processes)
	}
	if c.RunawayLimit < 0 {
		return fmt.Errorf("runaway_limit must not be negative, got %d", c.RunawayLimit)
	}
	for id, s := range c.Severity {
		if _, ok := lint.ParseSeverity(s); !ok {
			return fmt.Errorf("severity of %s: invalid severity %q", id, s)
		}
	}
	return nil
}

// LintConfig converts the rule settings into a lint configuration and
// checks every selector against the registered rules.
func (c *Config) LintConfig() (*lint.Config, error) {
	lc := lint.NewConfig()
	if len(c.Rules) > 0 {
		lc.Rules = c.Rules
	}
	lc.ExcludeRules = c.ExcludeRules
	for id, s := range c.Severity {
		sev, ok := lint.ParseSeverity(s)
		if !ok {
			return nil, fmt.Errorf("severity of %s: invalid severity %q", id, s)
		}
		lc.SetSeverity(id, sev)
	}
	for id, opts := range c.RuleOptions {
		for key, v := range opts {
			lc.SetRuleOption(id, key, v)
		}
	}
	if c.RunawayLimit > 0 {
		lc.RunawayLimit = c.RunawayLimit
	}
	if err := lc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule configuration: %w", err)
	}
	return lc, nil
}
