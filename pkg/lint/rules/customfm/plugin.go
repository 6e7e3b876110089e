package customfm

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/customfm/fmlint/pkg/lint"
)

// PluginName is the name the plugin registers under.
const PluginName = "customfm"

//go:embed plugin_default_config.yaml
var defaultConfigYAML []byte

func init() {
	lint.MustRegisterPlugin(Plugin{})
}

// Plugin contributes the customfm rules.
type Plugin struct{}

// Name implements lint.Plugin.
func (Plugin) Name() string { return PluginName }

// Rules implements lint.Plugin.
func (Plugin) Rules() []lint.SegmentRule {
	return []lint.SegmentRule{
		lint.WrapRuleDef(BlankLineBeforeClause),
		lint.WrapRuleDef(JoinConditionNewline),
		lint.WrapRuleDef(CaseBlankLines),
		lint.WrapRuleDef(WindowKeywordsNewline),
		lint.WrapRuleDef(FinalSelectWildcard),
	}
}

// DefaultConfig implements lint.Plugin with the embedded defaults.
func (Plugin) DefaultConfig() map[string]map[string]any {
	cfg, err := LoadDefaultConfig(defaultConfigYAML)
	if err != nil {
		panic(err)
	}
	return cfg
}

// ConfigInfo implements lint.Plugin.
func (Plugin) ConfigInfo() map[string]lint.ConfigKeyInfo {
	return map[string]lint.ConfigKeyInfo{
		"keywords_to_check": {
			Definition: "A list of keywords to check blank lines for",
			Validation: []string{"from", "where", "group", "having", "qualify", "order", "limit"},
		},
	}
}

// LoadDefaultConfig decodes per-rule default options from YAML.
func LoadDefaultConfig(data []byte) (map[string]map[string]any, error) {
	var cfg map[string]map[string]any
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode customfm defaults: %w", err)
	}
	return cfg, nil
}
