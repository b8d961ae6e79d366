package summarize

import "strings"

var languageNames = map[string]string{
	"sq": "Albanian",
	"en": "English",
	"it": "Italian",
	"de": "German",
	"fr": "French",
	"el": "Greek",
	"sr": "Serbian",
	"mk": "Macedonian",
}

// LanguageName maps an ISO 639-1 code to an English language name; unknown
// codes are returned unchanged.
func LanguageName(code string) string {
	if code == "" {
		return "the article's language"
	}
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// BuildPrompt fills the {language} and {text} placeholders.
func BuildPrompt(template, language, text string) string {
	r := strings.NewReplacer("{language}", LanguageName(language), "{text}", text)
	return r.Replace(template)
}
