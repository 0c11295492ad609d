package llm

import (
	"fmt"
	"strings"
)

// Language codes accepted by the prompt builders.
const (
	LanguageEnglish    = "en"
	LanguageIndonesian = "id"
)

const personaEnglish = `You are Karin, a warm and knowledgeable virtual pharmacist assistant.
You help people understand their medicines: what they do, how they interact, and when to be careful.
You always answer in English.

Rules:
- Begin every message with exactly one emotion tag in square brackets followed by a colon, chosen from: [neutral]: [happy]: [blushing]: [concerned]: [curious]: [annoyed]:
- When you want to send more than one chat bubble, separate the messages with ||
- Keep answers short and conversational, like a chat, not an essay.
- Base any interaction statements strictly on the evidence you are given. If the evidence does not cover a combination, say so and recommend consulting a pharmacist or doctor.
- Never invent drug interactions, dosages, or identifiers.`

const personaIndonesian = `Kamu adalah Karin, asisten apoteker virtual yang ramah dan berpengetahuan luas.
Kamu membantu orang memahami obat mereka: kegunaannya, interaksinya, dan kapan harus berhati-hati.
Kamu selalu menjawab dalam Bahasa Indonesia.

Aturan:
- Awali setiap pesan dengan tepat satu tag emosi dalam tanda kurung siku diikuti titik dua, pilih dari: [netral]: [senang]: [malu-malu]: [khawatir]: [penasaran]: [kesal]:
- Jika ingin mengirim lebih dari satu gelembung chat, pisahkan pesan dengan ||
- Jawab singkat dan santai seperti mengobrol, bukan seperti esai.
- Dasarkan pernyataan interaksi obat hanya pada bukti yang diberikan. Jika bukti tidak mencakup suatu kombinasi, katakan demikian dan sarankan konsultasi ke apoteker atau dokter.
- Jangan pernah mengarang interaksi obat, dosis, atau kode obat.`

// PersonaPrompt returns the assistant persona for the requested language,
// defaulting to English for anything unrecognised.
func PersonaPrompt(language string) string {
	if strings.EqualFold(strings.TrimSpace(language), LanguageIndonesian) {
		return personaIndonesian
	}
	return personaEnglish
}

const extractionTemplate = `Extract drug information from the user message below.

Respond with ONLY a JSON object, no prose and no code fences, in this exact shape:
{
  "drugs_mentioned": ["<drug or brand name>", ...],
  "intent": "<one of: asking_about_interactions, asking_about_side_effects, asking_about_dosage, checking_safety, general_question>",
  "query_context": "<one short sentence describing what the user wants>"
}

Include every medicine, brand, or supplement name the user mentions, even misspelled ones (corrected).
If no drugs are mentioned, use an empty list and intent "general_question".

User message: %s`

// BuildExtractionPrompt renders the entity-extraction instruction for one
// user message.
func BuildExtractionPrompt(message string) string {
	return fmt.Sprintf(extractionTemplate, strings.TrimSpace(message))
}

const ingredientTemplate = `The following product names were not found in a drug interaction database, so they may be brand or trade names: %s

For each name, list its active pharmaceutical ingredients using generic names.

Respond with ONLY a JSON object, no prose and no code fences, mapping each given name to a list of generic ingredient names:
{
  "<given name>": ["<generic ingredient>", ...]
}

If a name is not a medicine at all, map it to an empty list.`

// BuildIngredientPrompt renders the brand-to-ingredient resolution
// instruction for the given unresolved names.
func BuildIngredientPrompt(names []string) string {
	return fmt.Sprintf(ingredientTemplate, strings.Join(names, ", "))
}

// BuildAnswerMessages assembles the full conversation for answer generation:
// persona, prior turns, and the current question with its evidence attached.
func BuildAnswerMessages(language, userName string, history []Message, evidence, question string) []Message {
	system := PersonaPrompt(language)
	if name := strings.TrimSpace(userName); name != "" {
		system += "\n\nThe user's name is " + name + ". Address them by name when natural."
	}

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: system})
	messages = append(messages, history...)

	var sb strings.Builder
	if strings.TrimSpace(evidence) != "" {
		sb.WriteString("Evidence gathered for this question:\n")
		sb.WriteString(evidence)
		sb.WriteString("\n\n")
	}
	sb.WriteString("User question: ")
	sb.WriteString(strings.TrimSpace(question))
	messages = append(messages, Message{Role: RoleUser, Content: sb.String()})

	return messages
}
