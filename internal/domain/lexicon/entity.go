package lexicon

// Frequency enum
type Frequency string

const (
	FrequencyVeryCommon Frequency = "very_common"
	FrequencyCommon     Frequency = "common"
	FrequencyUncommon   Frequency = "uncommon"
	FrequencyRare       Frequency = "rare"
)

// Register tells whether a word lives in speech, writing or both
type Register string

const (
	RegisterSpoken  Register = "spoken"
	RegisterWritten Register = "written"
	RegisterBoth    Register = "both"
)

// AgeGroup is one age_demographics tag
type AgeGroup string

const (
	AgeChildren        AgeGroup = "children"
	AgeTeens           AgeGroup = "teens"
	AgeTwenties        AgeGroup = "twenties"
	AgeThirtiesForties AgeGroup = "thirties_forties"
	AgeFiftiesPlus     AgeGroup = "fifties_plus"
	AgeAllAges         AgeGroup = "all_ages"
)

// OverallUsage value object
type OverallUsage struct {
	Frequency       Frequency  `json:"frequency"`
	SpokenVsWritten Register   `json:"spoken_vs_written"`
	AgeDemographics []AgeGroup `json:"age_demographics"`
}

// ExampleSentence is a usage example with its translation.
// Source is the sentence in the analysed language.
type ExampleSentence struct {
	Source      string `json:"japanese"`
	Translation string `json:"english"`
	ContextNote string `json:"context_note"`
}

// Definition is one sense of the word; the order of definitions is the sense ranking
type Definition struct {
	DefinitionText       string            `json:"definition_text"`
	PartOfSpeech         string            `json:"part_of_speech"`
	FormalityLevel       string            `json:"formality_level"`
	UsageContexts        []string          `json:"usage_contexts"`
	AppropriatenessNotes string            `json:"appropriateness_notes"`
	ExampleSentences     []ExampleSentence `json:"example_sentences"`
}

// AnalysisResult is the validated lexical analysis of one word.
// Only Parse builds it, so every value handed out satisfies the schema:
// at least one definition, non-nil slices, enum fields inside their sets.
type AnalysisResult struct {
	Term            string       `json:"term"`
	Reading         string       `json:"reading"`
	OverallUsage    OverallUsage `json:"overall_usage"`
	Definitions     []Definition `json:"definitions"`
	LearnerWarnings []string     `json:"learner_warnings"`
}
