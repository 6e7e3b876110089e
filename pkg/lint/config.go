package lint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultRunawayLimit bounds the number of fix passes over one source.
const DefaultRunawayLimit = 10

// Config controls which rules are enabled, their severity and options.
//
// Rule selectors in Rules and ExcludeRules may be "all", a rule ID, an
// alias, a rule name or a group. A rule runs when it matches Rules and does
// not match ExcludeRules.
type Config struct {
	Rules        []string
	ExcludeRules []string

	// SeverityOverrides changes the default severity of rules, keyed by ID or alias
	SeverityOverrides map[string]Severity

	// RuleOptions holds per-rule options, keyed by ID or alias
	RuleOptions map[string]map[string]any

	// RunawayLimit bounds fix passes
	RunawayLimit int
}

// NewConfig creates a default configuration with all rules enabled.
func NewConfig() *Config {
	return &Config{
		Rules:             []string{"all"},
		SeverityOverrides: make(map[string]Severity),
		RuleOptions:       make(map[string]map[string]any),
		RunawayLimit:      DefaultRunawayLimit,
	}
}

func selects(r Rule, selector string) bool {
	s := strings.TrimSpace(selector)
	if s == "" {
		return false
	}
	if strings.EqualFold(s, "all") || strings.EqualFold(s, r.ID()) ||
		strings.EqualFold(s, r.Name()) || strings.EqualFold(s, r.Group()) {
		return true
	}
	return containsFold(r.Aliases(), s) || containsFold(r.Groups(), s)
}

func selectsAny(r Rule, selectors []string) bool {
	for _, s := range selectors {
		if selects(r, s) {
			return true
		}
	}
	return false
}

// IsEnabled reports whether the rule runs under this configuration.
func (c *Config) IsEnabled(r Rule) bool {
	if c == nil {
		return true
	}
	if len(c.Rules) > 0 && !selectsAny(r, c.Rules) {
		return false
	}
	return !selectsAny(r, c.ExcludeRules)
}

// IsDisabled returns true if the registered rule with this ID should be skipped.
func (c *Config) IsDisabled(ruleID string) bool {
	rule, ok := GetRule(ruleID)
	if !ok {
		return true
	}
	return !c.IsEnabled(rule)
}

// GetSeverity returns the severity for a rule, applying any override.
func (c *Config) GetSeverity(r Rule) Severity {
	if c != nil {
		for _, id := range ruleKeys(r) {
			for k, sev := range c.SeverityOverrides {
				if strings.EqualFold(k, id) {
					return sev
				}
			}
		}
	}
	return r.DefaultSeverity()
}

// GetRuleOptions returns the rule's options: plugin defaults overlaid with
// configured values.
func (c *Config) GetRuleOptions(r Rule) map[string]any {
	opts := make(map[string]any)
	for k, v := range DefaultRuleOptions(r.ID()) {
		opts[k] = v
	}
	if c == nil {
		return opts
	}
	// Aliases first so the canonical ID wins.
	keys := ruleKeys(r)
	for i := len(keys) - 1; i >= 0; i-- {
		for id, overrides := range c.RuleOptions {
			if !strings.EqualFold(id, keys[i]) {
				continue
			}
			for k, v := range overrides {
				opts[k] = v
			}
		}
	}
	return opts
}

func ruleKeys(r Rule) []string {
	return append([]string{r.ID()}, r.Aliases()...)
}

// Disable disables a rule by ID.
func (c *Config) Disable(ruleID string) *Config {
	c.ExcludeRules = append(c.ExcludeRules, ruleID)
	return c
}

// SetSeverity overrides the severity for a rule.
func (c *Config) SetSeverity(ruleID string, severity Severity) *Config {
	if c.SeverityOverrides == nil {
		c.SeverityOverrides = make(map[string]Severity)
	}
	c.SeverityOverrides[ruleID] = severity
	return c
}

// SetRuleOption sets one option of a rule.
func (c *Config) SetRuleOption(ruleID, key string, value any) *Config {
	if c.RuleOptions == nil {
		c.RuleOptions = make(map[string]map[string]any)
	}
	if c.RuleOptions[ruleID] == nil {
		c.RuleOptions[ruleID] = make(map[string]any)
	}
	c.RuleOptions[ruleID][key] = value
	return c
}

// Validate checks that every selector and override names a registered rule,
// alias or group.
func (c *Config) Validate() error {
	rules := AllRules()
	known := func(sel string) bool {
		for _, r := range rules {
			if selects(r, sel) {
				return true
			}
		}
		return false
	}
	var names []string
	names = append(names, c.Rules...)
	names = append(names, c.ExcludeRules...)
	for id := range c.SeverityOverrides {
		names = append(names, id)
	}
	for id := range c.RuleOptions {
		names = append(names, id)
	}
	sort.Strings(names)
	for _, n := range names {
		if !known(n) {
			return fmt.Errorf("%w %q", ErrUnknownRule, n)
		}
	}
	return nil
}

// Fingerprint returns a stable hash of the configuration and the versions of
// the plugins behind enabled rules, used to key cached lint results.
func (c *Config) Fingerprint() string {
	type enabled struct {
		ID       string         `json:"id"`
		Severity Severity       `json:"severity"`
		Options  map[string]any `json:"options,omitempty"`
		Version  string         `json:"version,omitempty"`
	}
	var out []enabled
	for _, r := range AllRules() {
		if !c.IsEnabled(r) {
			continue
		}
		out = append(out, enabled{
			ID:       r.ID(),
			Severity: c.GetSeverity(r),
			Options:  c.GetRuleOptions(r),
			Version:  pluginVersion(r.ID()),
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		// Unencodable options fall back to their %v form.
		data = []byte(fmt.Sprintf("%v", out))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
