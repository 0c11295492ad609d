package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmotionTag(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantEmotion Emotion
		wantText    string
	}{
		{"canonical tag", "[concerned]: Take care.", EmotionConcerned, "Take care."},
		{"localized tag", "[senang]: Tentu saja!", EmotionHappy, "Tentu saja!"},
		{"mixed case", "[Khawatir]: Hati-hati ya.", EmotionConcerned, "Hati-hati ya."},
		{"hyphenated variant", "[malu-malu]: Terima kasih...", EmotionBlushing, "Terima kasih..."},
		{"no colon", "[curious] what do you mean?", EmotionCurious, "what do you mean?"},
		{"no tag", "Just a plain answer.", EmotionNeutral, "Just a plain answer."},
		{"unknown token skipped", "[note]: [happy]: hi", EmotionHappy, "[note]: hi"},
		{"first match wins", "[neutral]: one [happy]: two", EmotionNeutral, "one [happy]: two"},
		{"tag mid-text", "Well... [annoyed]: fine.", EmotionAnnoyed, "Well... fine."},
		{"unterminated bracket", "[happy whatever", EmotionNeutral, "[happy whatever"},
		{"empty input", "", EmotionNeutral, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emotion, text := ParseEmotionTag(tt.in)
			assert.Equal(t, tt.wantEmotion, emotion)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestAttributionNote(t *testing.T) {
	t.Run("full verification", func(t *testing.T) {
		b := &EvidenceBundle{Sections: []string{"x"}, Metadata: Metadata{FoundDrugs: []string{"Warfarin"}}}
		assert.Equal(t, noteVerified, AttributionNote(b))
	})

	t.Run("partial verification", func(t *testing.T) {
		b := &EvidenceBundle{Sections: []string{"x"}, Metadata: Metadata{
			FoundDrugs:    []string{"Warfarin"},
			NotFoundDrugs: []string{"mystery"},
		}}
		assert.Equal(t, notePartial, AttributionNote(b))
	})

	t.Run("brand analysis only", func(t *testing.T) {
		b := &EvidenceBundle{Sections: []string{"Brand/ingredient analysis: ..."}, Metadata: Metadata{
			InteractionsFoundLLM: 1,
		}}
		assert.Equal(t, noteBrand, AttributionNote(b))
	})

	t.Run("resolved ingredients count as brand evidence", func(t *testing.T) {
		b := &EvidenceBundle{Sections: []string{"x"}, Metadata: Metadata{
			IngredientFoundDrugs: []string{"Acetaminophen"},
		}}
		assert.Equal(t, noteBrand, AttributionNote(b))
	})

	t.Run("nothing resolved falls back to general knowledge", func(t *testing.T) {
		b := &EvidenceBundle{
			Sections: []string{"Not found in the interaction database: mystery", "User intent: interaction_check"},
			Metadata: Metadata{NotFoundDrugs: []string{"mystery"}},
		}
		assert.Equal(t, noteGeneral, AttributionNote(b))
	})

	t.Run("general knowledge for empty bundle", func(t *testing.T) {
		assert.Equal(t, noteGeneral, AttributionNote(&EvidenceBundle{}))
	})
}

func TestSplitMessages(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, SplitMessages(" one || two "))
	assert.Equal(t, []string{"solo"}, SplitMessages("solo"))
	assert.Equal(t, []string{"a"}, SplitMessages("a || "))
	assert.Equal(t, []string{""}, SplitMessages("  "))
}

func TestPostProcess(t *testing.T) {
	bundle := &EvidenceBundle{Sections: []string{"x"}, Metadata: Metadata{FoundDrugs: []string{"Warfarin"}}}

	messages, emotion := PostProcess("[happy]: All clear! || Stay safe.", bundle)
	require.Len(t, messages, 2)
	assert.Equal(t, EmotionHappy, emotion)
	assert.Equal(t, "All clear!", messages[0])
	assert.Contains(t, messages[1], "Stay safe.")
	assert.Contains(t, messages[1], noteVerified, "attribution lands on the last bubble")
}
