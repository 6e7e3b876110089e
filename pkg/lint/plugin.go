package lint

import (
	"fmt"
	"sort"
)

// ConfigKeyInfo documents one configuration key a plugin accepts.
type ConfigKeyInfo struct {
	Definition string   `json:"definition" yaml:"definition"`
	Validation []string `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// Plugin bundles rules with their default options and option documentation.
type Plugin interface {
	// Name identifies the plugin, e.g., "customfm".
	Name() string
	// Rules returns the rules the plugin contributes.
	Rules() []SegmentRule
	// DefaultConfig returns default options keyed by rule ID, then option key.
	DefaultConfig() map[string]map[string]any
	// ConfigInfo documents the option keys, keyed by option name.
	ConfigInfo() map[string]ConfigKeyInfo
}

// VersionedPlugin is a Plugin whose rules can change behaviour while keeping
// their IDs, e.g. rules read from a file. Its version is part of
// Config.Fingerprint.
type VersionedPlugin interface {
	Plugin
	Version() string
}

// ExternalPlugin is a Plugin loaded at run time rather than built into
// fmlint. Its rules have no pages under DocsBaseURL.
type ExternalPlugin interface {
	Plugin
	External() bool
}

// registeringPlugin returns the plugin that registered ruleID.
func registeringPlugin(ruleID string) (Plugin, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	name, ok := globalRegistry.pluginOf[key(ruleID)]
	if !ok {
		return nil, false
	}
	for _, p := range globalRegistry.plugins {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// pluginVersion returns the version of the plugin that registered ruleID,
// or "" for unversioned plugins and plain rules.
func pluginVersion(ruleID string) string {
	p, _ := registeringPlugin(ruleID)
	if vp, ok := p.(VersionedPlugin); ok {
		return vp.Version()
	}
	return ""
}

// docURL returns the documentation URL of a rule, or "" when the rule comes
// from an external plugin.
func docURL(ruleID string) string {
	p, _ := registeringPlugin(ruleID)
	if ep, ok := p.(ExternalPlugin); ok && ep.External() {
		return ""
	}
	return BuildDocURL(ruleID)
}

// RegisterPlugin registers every rule of p. It fails without registering
// anything when a rule ID or alias is already taken, or when a plugin of the
// same name is registered.
func RegisterPlugin(p Plugin) error {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	for _, existing := range globalRegistry.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin %q: %w", p.Name(), ErrDuplicatePlugin)
		}
	}
	if err := globalRegistry.register(p.Rules()); err != nil {
		return fmt.Errorf("plugin %q: %w", p.Name(), err)
	}
	for _, rule := range p.Rules() {
		globalRegistry.pluginOf[key(rule.ID())] = p.Name()
	}
	for ruleID, opts := range p.DefaultConfig() {
		rule, ok := globalRegistry.lookup(ruleID)
		if !ok {
			continue
		}
		globalRegistry.defaults[key(rule.ID())] = opts
	}
	globalRegistry.plugins = append(globalRegistry.plugins, p)
	return nil
}

// MustRegisterPlugin is RegisterPlugin for init() functions.
func MustRegisterPlugin(p Plugin) {
	if err := RegisterPlugin(p); err != nil {
		panic(err)
	}
}

// Plugins returns registered plugins sorted by name.
func Plugins() []Plugin {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	out := append([]Plugin(nil), globalRegistry.plugins...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// DefaultRuleOptions returns the plugin default options for a rule.
func DefaultRuleOptions(ruleID string) map[string]any {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.lookup(ruleID)
	if !ok {
		return nil
	}
	return globalRegistry.defaults[key(rule.ID())]
}

// ConfigKeyDocs returns option documentation from all plugins.
func ConfigKeyDocs() map[string]ConfigKeyInfo {
	out := make(map[string]ConfigKeyInfo)
	for _, p := range Plugins() {
		for k, v := range p.ConfigInfo() {
			out[k] = v
		}
	}
	return out
}

func pluginOf(ruleID string) (string, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	name, ok := globalRegistry.pluginOf[key(ruleID)]
	return name, ok
}
