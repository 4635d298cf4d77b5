package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		configured string
		locale     string
		want       Language
	}{
		{"", "ru_RU.UTF-8", RU},
		{"", "en_US.UTF-8", EN},
		{"ru", "en_US.UTF-8", RU},
		{"", "C", EN},
		{"", "", EN},
		{"de", "ru_RU.UTF-8", RU},
	}

	for _, tt := range tests {
		t.Run(tt.configured+"/"+tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.configured, tt.locale))
		})
	}
}

func TestT_FallsBackToKey(t *testing.T) {
	t.Cleanup(func() { SetLanguage(EN) })

	SetLanguage(EN)
	assert.Equal(t, "OCR confidence", T("ocr_confidence"))
	assert.Equal(t, "no_such_key", T("no_such_key"))

	SetLanguage(RU)
	assert.Equal(t, "Уверенность OCR", T("ocr_confidence"))
}

func TestTranslations_SameKeys(t *testing.T) {
	for key := range translations[EN] {
		_, ok := translations[RU][key]
		assert.True(t, ok, "missing RU translation for %q", key)
	}
	for key := range translations[RU] {
		_, ok := translations[EN][key]
		assert.True(t, ok, "missing EN translation for %q", key)
	}
}
