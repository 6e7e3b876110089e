// Package customfm contains the customfm layout rules and the plugin that
// registers them.
//
//   - l001_*.go .. l004_*.go: layout rules (newlines and blank lines)
//   - l006_*.go: structure rule for the final SELECT of a WITH statement
//
// Import this package to register the plugin:
//
//	import _ "github.com/customfm/fmlint/pkg/lint/rules/customfm"
package customfm
