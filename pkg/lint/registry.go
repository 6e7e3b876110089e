package lint

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// globalRegistry is the single registry for all lint rules.
var globalRegistry = newRegistry()

// Registry stores registered rules and plugins for discovery.
type Registry struct {
	mu       sync.RWMutex
	rules    map[string]SegmentRule // keyed by lowercase ID
	aliases  map[string]string      // lowercase alias -> lowercase ID
	plugins  []Plugin
	pluginOf map[string]string // lowercase ID -> plugin name
	defaults map[string]map[string]any
}

func newRegistry() *Registry {
	return &Registry{
		rules:    make(map[string]SegmentRule),
		aliases:  make(map[string]string),
		pluginOf: make(map[string]string),
		defaults: make(map[string]map[string]any),
	}
}

func key(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// register adds rules atomically; r.mu must be held.
func (r *Registry) register(rules []SegmentRule) error {
	seen := make(map[string]string)
	claim := func(name, owner string) error {
		k := key(name)
		if _, ok := r.rules[k]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateRule, name)
		}
		if _, ok := r.aliases[k]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateRule, name)
		}
		if prev, ok := seen[k]; ok {
			return fmt.Errorf("%w: %s (declared by %s and %s)", ErrDuplicateRule, name, prev, owner)
		}
		seen[k] = owner
		return nil
	}
	for _, rule := range rules {
		if rule.ID() == "" {
			return fmt.Errorf("rule %q has an empty ID", rule.Name())
		}
		if err := claim(rule.ID(), rule.ID()); err != nil {
			return err
		}
		for _, alias := range rule.Aliases() {
			if err := claim(alias, rule.ID()); err != nil {
				return err
			}
		}
	}
	for _, rule := range rules {
		r.rules[key(rule.ID())] = rule
		for _, alias := range rule.Aliases() {
			r.aliases[key(alias)] = key(rule.ID())
		}
	}
	return nil
}

// Register adds a data-driven rule to the global registry.
// Call this from init() functions in rule packages. It panics on a
// duplicate ID, which is a programming error.
func Register(def RuleDef) {
	if err := RegisterRule(WrapRuleDef(def)); err != nil {
		panic(err)
	}
}

// RegisterRule adds a rule to the global registry.
func RegisterRule(rule SegmentRule) error {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	return globalRegistry.register([]SegmentRule{rule})
}

// GetRule returns a rule by ID or alias, case-insensitively.
func GetRule(idOrAlias string) (SegmentRule, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return globalRegistry.lookup(idOrAlias)
}

func (r *Registry) lookup(idOrAlias string) (SegmentRule, bool) {
	k := key(idOrAlias)
	if id, ok := r.aliases[k]; ok {
		k = id
	}
	rule, ok := r.rules[k]
	return rule, ok
}

// AllRules returns every registered rule, sorted by ID.
func AllRules() []SegmentRule {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]SegmentRule, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID() < rules[j].ID() })
	return rules
}

// AllRuleInfo returns metadata for all registered rules, sorted by ID.
func AllRuleInfo() []RuleInfo {
	rules := AllRules()
	infos := make([]RuleInfo, 0, len(rules))
	for _, rule := range rules {
		infos = append(infos, GetRuleInfo(rule))
	}
	return infos
}

// GetRulesByGroup returns rules whose group or selectors include group.
func GetRulesByGroup(group string) []SegmentRule {
	var out []SegmentRule
	for _, rule := range AllRules() {
		if strings.EqualFold(rule.Group(), group) || containsFold(rule.Groups(), group) {
			out = append(out, rule)
		}
	}
	return out
}

// GetRulesByDialect returns rules applicable to a specific dialect.
// Rules with empty/nil Dialects are included (they apply to all dialects).
func GetRulesByDialect(dialectName string) []SegmentRule {
	var out []SegmentRule
	for _, rule := range AllRules() {
		if len(rule.Dialects()) == 0 || containsFold(rule.Dialects(), dialectName) {
			out = append(out, rule)
		}
	}
	return out
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.rules)
}

// Clear removes all registered rules and plugins. Used for testing.
func Clear() {
	fresh := newRegistry()
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules = fresh.rules
	globalRegistry.aliases = fresh.aliases
	globalRegistry.plugins = nil
	globalRegistry.pluginOf = fresh.pluginOf
	globalRegistry.defaults = fresh.defaults
}

// Snapshot returns a function restoring the registry to its current state.
// Tests use it to register rules temporarily.
func Snapshot() (restore func()) {
	globalRegistry.mu.RLock()
	saved := &Registry{
		rules:    cloneMap(globalRegistry.rules),
		aliases:  cloneMap(globalRegistry.aliases),
		plugins:  append([]Plugin(nil), globalRegistry.plugins...),
		pluginOf: cloneMap(globalRegistry.pluginOf),
		defaults: cloneMap(globalRegistry.defaults),
	}
	globalRegistry.mu.RUnlock()

	return func() {
		globalRegistry.mu.Lock()
		defer globalRegistry.mu.Unlock()
		globalRegistry.rules = saved.rules
		globalRegistry.aliases = saved.aliases
		globalRegistry.plugins = saved.plugins
		globalRegistry.pluginOf = saved.pluginOf
		globalRegistry.defaults = saved.defaults
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
