package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"english", "en", "en"},
		{"simplified chinese", "zh-CN", "zh-CN"},
		{"lowercase region", "zh-cn", "zh-CN"},
		{"german", "de", "de"},
		{"empty defaults to english", "", "en"},
		{"invalid defaults to english", "not a tag!", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLanguage(tt.in).String())
		})
	}
	assert.Equal(t, language.MustParse("pt-BR"), ParseLanguage("pt-BR").Tag())
}

func TestLanguage_PromptInstruction(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"en", "English"},
		{"ja", "Japanese"},
		{"fr", "French"},
		{"de-DE", "German (Germany)"},
		{"zh-CN", "Chinese (China)"},
		{"pt-BR", "Portuguese (Brazil)"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLanguage(tt.tag).PromptInstruction())
		})
	}
}

func TestOutputConfig_OutputLanguage(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		cfg := &OutputConfig{Language: "ja"}
		assert.Equal(t, "Japanese", cfg.OutputLanguage().PromptInstruction())
	})

	t.Run("unset ignores the system locale", func(t *testing.T) {
		t.Setenv("LANG", "de_DE.UTF-8")
		t.Setenv("LC_ALL", "de_DE.UTF-8")
		cfg := &OutputConfig{}
		assert.Equal(t, "en", cfg.OutputLanguage().String())
		assert.Equal(t, "English", cfg.OutputLanguage().PromptInstruction())
	})
}

func TestIsValidLanguage(t *testing.T) {
	for _, code := range []string{"en", "zh-cn", "zh-TW", "ja", "pt-BR", "de"} {
		assert.True(t, IsValidLanguage(code), code)
	}
	assert.False(t, IsValidLanguage("not a tag!"))
}
