// Package translate turns document text into a target language through a
// local Ollama backend, with character-bounded batching, a persistent cache,
// and capacity-aware retry.
package translate

import "strings"

// langNames maps normalized language codes to the English display names the
// prompt templates use. Models follow "translate to French" far more reliably
// than "translate to fr".
var langNames = map[string]string{
	"en":    "English",
	"fr":    "French",
	"de":    "German",
	"es":    "Spanish",
	"it":    "Italian",
	"pt":    "Portuguese",
	"nl":    "Dutch",
	"pl":    "Polish",
	"sv":    "Swedish",
	"da":    "Danish",
	"no":    "Norwegian",
	"fi":    "Finnish",
	"cs":    "Czech",
	"uk":    "Ukrainian",
	"ru":    "Russian",
	"tr":    "Turkish",
	"el":    "Greek",
	"ja":    "Japanese",
	"ko":    "Korean",
	"zh-cn": "Simplified Chinese",
	"zh-tw": "Traditional Chinese",
	"ar":    "Arabic",
	"he":    "Hebrew",
	"fa":    "Persian",
	"hi":    "Hindi",
	"th":    "Thai",
	"vi":    "Vietnamese",
	"id":    "Indonesian",
	"ms":    "Malay",
}

// langAliases folds the code variants seen in the wild onto the normalized
// form used as the cache key.
var langAliases = map[string]string{
	"zh":      "zh-cn",
	"zh-hans": "zh-cn",
	"zh_cn":   "zh-cn",
	"zh-hant": "zh-tw",
	"zh_tw":   "zh-tw",
	"zh-hk":   "zh-tw",
	"jp":      "ja",
	"kr":      "ko",
	"iw":      "he",
	"in":      "id",
	"pt-br":   "pt",
	"en-us":   "en",
	"en-gb":   "en",
}

// NormalizeLangCode lowercases a language code and folds known aliases.
// Unknown codes pass through unchanged so new languages degrade gracefully.
func NormalizeLangCode(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if alias, ok := langAliases[c]; ok {
		return alias
	}
	return c
}

// DisplayName returns the English name for a language code, or the code
// itself when unknown.
func DisplayName(code string) string {
	if name, ok := langNames[NormalizeLangCode(code)]; ok {
		return name
	}
	return code
}

// IsSupported reports whether the code maps to a known language.
func IsSupported(code string) bool {
	_, ok := langNames[NormalizeLangCode(code)]
	return ok
}

// SupportedLanguages returns the normalized codes of all known languages.
func SupportedLanguages() []string {
	out := make([]string, 0, len(langNames))
	for code := range langNames {
		out = append(out, code)
	}
	return out
}

// IsCJK reports whether the language writes without inter-word spaces, which
// changes both sentence splitting and line wrapping.
func IsCJK(code string) bool {
	switch NormalizeLangCode(code) {
	case "ja", "ko", "zh-cn", "zh-tw":
		return true
	}
	return false
}

// IsRTL reports whether the language is written right to left.
func IsRTL(code string) bool {
	switch NormalizeLangCode(code) {
	case "ar", "he", "fa":
		return true
	}
	return false
}
