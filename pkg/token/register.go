package token

import "sync"

var (
	dynMu           sync.RWMutex
	nextTokenID     = maxBuiltin
	dynamicTokens   = make(map[TokenType]string)
	dynamicKeywords = make(map[string]TokenType)
)

// Register registers a dialect keyword such as QUALIFY or ILIKE and returns
// its token type. Registering the same name twice returns the first type, so
// dialects sharing a keyword agree on its token.
func Register(name string) TokenType {
	key := lower(name)

	dynMu.Lock()
	defer dynMu.Unlock()

	if t, ok := dynamicKeywords[key]; ok {
		return t
	}
	nextTokenID++
	t := nextTokenID
	dynamicTokens[t] = upper(key)
	dynamicKeywords[key] = t
	return t
}

func getDynamicName(t TokenType) (string, bool) {
	dynMu.RLock()
	defer dynMu.RUnlock()
	name, ok := dynamicTokens[t]
	return name, ok
}

// LookupDynamicKeyword returns the token type for a registered dialect keyword.
func LookupDynamicKeyword(name string) (TokenType, bool) {
	dynMu.RLock()
	defer dynMu.RUnlock()
	if tok, ok := dynamicKeywords[name]; ok {
		return tok, true
	}
	return IDENT, false
}

// IsDynamic returns true if the token type was registered at runtime.
func IsDynamic(t TokenType) bool {
	return t > maxBuiltin
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
