package assistant

import (
	"strings"
)

// Emotion is the canonical expressive label attached to a response.
type Emotion string

const (
	EmotionNeutral   Emotion = "neutral"
	EmotionCurious   Emotion = "curious"
	EmotionConcerned Emotion = "concerned"
	EmotionHappy     Emotion = "happy"
	EmotionBlushing  Emotion = "blushing"
	EmotionAnnoyed   Emotion = "annoyed"
)

// emotionVocabulary maps every accepted tag token, canonical and localized,
// onto its canonical emotion.  Versioned data: new variants are added here.
var emotionVocabulary = map[string]Emotion{
	"neutral":   EmotionNeutral,
	"curious":   EmotionCurious,
	"concerned": EmotionConcerned,
	"happy":     EmotionHappy,
	"blushing":  EmotionBlushing,
	"annoyed":   EmotionAnnoyed,

	"netral":    EmotionNeutral,
	"penasaran": EmotionCurious,
	"khawatir":  EmotionConcerned,
	"senang":    EmotionHappy,
	"malu-malu": EmotionBlushing,
	"kesal":     EmotionAnnoyed,
}

// ParseEmotionTag scans the text for the first bracketed token that belongs
// to the emotion vocabulary, case-insensitively, and splices out exactly that
// span (including one trailing colon, if present).  Ties break on first
// occurrence in scan order.  Without a matching tag, the emotion defaults to
// neutral and the text passes through trimmed but otherwise unmodified.
func ParseEmotionTag(text string) (Emotion, string) {
	for start := 0; start < len(text); start++ {
		if text[start] != '[' {
			continue
		}
		end := strings.IndexByte(text[start:], ']')
		if end < 0 {
			break
		}
		end += start

		token := strings.ToLower(strings.TrimSpace(text[start+1 : end]))
		emotion, ok := emotionVocabulary[token]
		if !ok {
			continue
		}

		spliceEnd := end + 1
		if spliceEnd < len(text) && text[spliceEnd] == ':' {
			spliceEnd++
		}
		if spliceEnd < len(text) && text[spliceEnd] == ' ' {
			spliceEnd++
		}
		cleaned := strings.TrimSpace(text[:start] + text[spliceEnd:])
		return emotion, cleaned
	}
	return EmotionNeutral, strings.TrimSpace(text)
}

// Source attribution notes, chosen deterministically from request metadata.
const (
	noteVerified = "All medicines in this answer were verified against the interaction database."
	notePartial  = "Some medicines were verified against the interaction database; others could not be found there."
	noteBrand    = "This answer is based on the interaction database combined with brand ingredient analysis."
	noteGeneral  = "This answer is based on general medical knowledge; please confirm with a pharmacist or doctor."
)

// AttributionNote derives the source note from the bundle.  Rules, in order:
// full verification when drugs were found and none stayed unresolved; partial
// when both exist; database & brand analysis when nothing resolved directly
// but the brand path produced evidence; general knowledge otherwise.
func AttributionNote(bundle *EvidenceBundle) string {
	meta := bundle.Metadata
	switch {
	case len(meta.FoundDrugs) > 0 && len(meta.NotFoundDrugs) == 0:
		return noteVerified
	case len(meta.FoundDrugs) > 0:
		return notePartial
	case meta.InteractionsFoundLLM > 0 || len(meta.IngredientFoundDrugs) > 0:
		return noteBrand
	default:
		return noteGeneral
	}
}

// SplitMessages breaks a generated answer into chat bubbles on the "||"
// separator, trimming each part and dropping empties.
func SplitMessages(text string) []string {
	parts := strings.Split(text, "||")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		out = append(out, "")
	}
	return out
}

// PostProcess applies tag extraction, message splitting, and source
// attribution to a generated answer.
func PostProcess(generated string, bundle *EvidenceBundle) ([]string, Emotion) {
	emotion, text := ParseEmotionTag(generated)
	messages := SplitMessages(text)
	messages[len(messages)-1] = strings.TrimSpace(messages[len(messages)-1] + "\n\n" + AttributionNote(bundle))
	return messages, emotion
}
