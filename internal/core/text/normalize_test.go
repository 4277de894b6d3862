package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "diacritics stripped", input: "Daj još", want: "daj jos"},
		{name: "punctuation and digits removed", input: "  Nastavi, dalje! 42 ", want: "nastavi dalje"},
		{name: "cyrillic removed", input: "Наставиabc", want: "abc"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestExtractQueryWords(t *testing.T) {
	words := ExtractQueryWords("Šta je procedura za rad na visini, i zaštitna oprema?")
	assert.Equal(t, []string{"procedura", "rad", "visini", "zaštitna", "oprema"}, words)
}

func TestExtractQueryWords_KeepsDuplicates(t *testing.T) {
	words := ExtractQueryWords("kaciga kaciga KACIGA")
	assert.Equal(t, []string{"kaciga", "kaciga", "kaciga"}, words)
}

func TestExtractQueryWords_DropsShortAndStopWords(t *testing.T) {
	assert.Empty(t, ExtractQueryWords("je i u na the and"))
}

func TestDetectScript(t *testing.T) {
	assert.Equal(t, ScriptCyrillic, DetectScript("Која је процедура?"))
	assert.Equal(t, ScriptCyrillic, DetectScript("mešano ж"))
	assert.Equal(t, ScriptLatin, DetectScript("Koja je procedura?"))
	assert.Equal(t, ScriptLatin, DetectScript(""))
}

func TestFollowUpDetector(t *testing.T) {
	d := NewFollowUpDetector(nil)

	assert.True(t, d.IsFollowUp("nastavi dalje"))
	assert.True(t, d.IsFollowUp("Daj još!"))
	assert.True(t, d.IsFollowUp("Možeš li dalje da objasniš"))
	assert.False(t, d.IsFollowUp("Šta je procedura za evakuaciju?"))
	assert.False(t, d.IsFollowUp(""))
}

func TestFollowUpDetector_CustomTriggers(t *testing.T) {
	d := NewFollowUpDetector([]string{"  Više ", ""})

	assert.Equal(t, []string{"vise"}, d.Triggers())
	assert.True(t, d.IsFollowUp("reci mi više"))
	assert.False(t, d.IsFollowUp("nastavi"))
}
