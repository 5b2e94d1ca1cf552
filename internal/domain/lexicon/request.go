package lexicon

import "strings"

const (
	// TemplateID identifies the instruction template sent to the provider.
	TemplateID = "kotoba.lexical-analysis"

	// TemplateVersion must be bumped whenever the analysis instructions change.
	TemplateVersion = "2"
)

// AnalysisRequest is a trimmed, non-empty word to analyse
type AnalysisRequest struct {
	word string
}

// NewAnalysisRequest trims word and rejects it when nothing is left.
func NewAnalysisRequest(word string) (AnalysisRequest, error) {
	w := strings.TrimSpace(word)
	if w == "" {
		return AnalysisRequest{}, ErrValidation
	}
	return AnalysisRequest{word: w}, nil
}

// Word returns the trimmed word
func (r AnalysisRequest) Word() string { return r.word }

// ExternalRequest describes one call to the provider: a fixed template plus the bound word.
type ExternalRequest struct {
	TemplateID      string
	TemplateVersion string
	Word            string
}

// BuildQuery binds word to the current analysis template.
func BuildQuery(word string) (ExternalRequest, error) {
	req, err := NewAnalysisRequest(word)
	if err != nil {
		return ExternalRequest{}, err
	}
	return req.Query(), nil
}

// Query binds the request to the current analysis template.
func (r AnalysisRequest) Query() ExternalRequest {
	return ExternalRequest{
		TemplateID:      TemplateID,
		TemplateVersion: TemplateVersion,
		Word:            r.word,
	}
}
