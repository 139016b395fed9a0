package config

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is the language generated documents are written in
type Language struct {
	tag language.Tag
}

// ParseLanguage parses a BCP 47 tag such as "de" or "pt-BR".
// Empty or unparseable input means English.
func ParseLanguage(s string) Language {
	if s == "" {
		return Language{tag: language.English}
	}
	tag, err := language.Parse(s)
	if err != nil {
		if tag, err = language.Parse(strings.ToLower(s)); err != nil {
			return Language{tag: language.English}
		}
	}
	return Language{tag: tag}
}

// Tag returns the parsed tag
func (l Language) Tag() language.Tag {
	return l.tag
}

// String returns the canonical tag, e.g. "en" or "zh-CN"
func (l Language) String() string {
	return l.tag.String()
}

// PromptInstruction names the language in English for prompts: "German",
// "Portuguese (Brazil)". The region is only named when the tag spells it out.
func (l Language) PromptInstruction() string {
	base, _ := l.tag.Base()
	name := display.English.Languages().Name(base)
	if name == "" {
		return l.tag.String()
	}
	if region, conf := l.tag.Region(); conf == language.Exact {
		if r := display.English.Regions().Name(region); r != "" {
			name += " (" + r + ")"
		}
	}
	return name
}

// OutputLanguage returns the configured output language. The system locale is
// deliberately ignored so a seed reproduces the same prompts on any machine.
func (c *OutputConfig) OutputLanguage() Language {
	return ParseLanguage(c.Language)
}

// IsValidLanguage reports whether tag parses as a BCP 47 language tag
func IsValidLanguage(tag string) bool {
	if _, err := language.Parse(tag); err == nil {
		return true
	}
	_, err := language.Parse(strings.ToLower(tag))
	return err == nil
}
