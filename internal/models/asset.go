package models

import "strings"

// Symbols of the supported GalaChain assets.
const (
	SymbolGala  = "GALA"
	SymbolGusdc = "GUSDC"
	SymbolGusdt = "GUSDT"
	SymbolGweth = "GWETH"
)

// classKeys maps each supported symbol to its GalaChain token class key.
var classKeys = map[string]string{
	SymbolGala:  "GALA|Unit|none|none",
	SymbolGusdc: "GUSDC|Unit|none|none",
	SymbolGusdt: "GUSDT|Unit|none|none",
	SymbolGweth: "GWETH|Unit|none|none",
}

// ClassKey returns the exchange class key for a symbol. Symbols outside the
// supported set get a synthesized Unit-class key so callers can still address
// them on the chain.
func ClassKey(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if key, ok := classKeys[symbol]; ok {
		return key
	}
	return symbol + "|Unit|none|none"
}

// SymbolFromClassKey is the inverse of ClassKey. An unknown class key degrades
// to its first pipe-separated segment rather than failing.
func SymbolFromClassKey(key string) string {
	for symbol, known := range classKeys {
		if known == key {
			return symbol
		}
	}
	if i := strings.IndexByte(key, '|'); i >= 0 {
		return strings.ToUpper(key[:i])
	}
	return strings.ToUpper(key)
}

// NormalizeSymbol accepts either a plain symbol or a full class key and
// returns the canonical symbol.
func NormalizeSymbol(token string) string {
	if strings.ContainsRune(token, '|') {
		return SymbolFromClassKey(token)
	}
	return strings.ToUpper(strings.TrimSpace(token))
}

// IsStable reports whether the symbol is pegged to one USD.
func IsStable(symbol string) bool {
	switch NormalizeSymbol(symbol) {
	case SymbolGusdc, SymbolGusdt:
		return true
	}
	return false
}
