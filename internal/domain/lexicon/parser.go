package lexicon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// wire shapes use pointers so an absent or null value can be told apart from an empty one

type wireExample struct {
	Source      *string `json:"japanese" validate:"required"`
	Translation *string `json:"english" validate:"required"`
	ContextNote *string `json:"context_note" validate:"required"`
}

type wireDefinition struct {
	DefinitionText       *string       `json:"definition_text" validate:"required,min=1"`
	PartOfSpeech         *string       `json:"part_of_speech" validate:"required"`
	FormalityLevel       *string       `json:"formality_level" validate:"required"`
	UsageContexts        []*string     `json:"usage_contexts" validate:"required,dive,required"`
	AppropriatenessNotes *string       `json:"appropriateness_notes" validate:"required"`
	ExampleSentences     []wireExample `json:"example_sentences" validate:"required,dive"`
}

type wireUsage struct {
	Frequency       *string   `json:"frequency" validate:"required,oneof=very_common common uncommon rare"`
	SpokenVsWritten *string   `json:"spoken_vs_written" validate:"required,oneof=spoken written both"`
	AgeDemographics []*string `json:"age_demographics" validate:"required,min=1,dive,required,oneof=children teens twenties thirties_forties fifties_plus all_ages"`
}

type wireResult struct {
	Term            *string          `json:"term" validate:"required"`
	Reading         *string          `json:"reading" validate:"required"`
	OverallUsage    *wireUsage       `json:"overall_usage" validate:"required"`
	Definitions     []wireDefinition `json:"definitions" validate:"required,min=1,dive"`
	LearnerWarnings []*string        `json:"learner_warnings" validate:"required,dive,required"`
}

var (
	schemaOnce     sync.Once
	schemaValidate *validator.Validate
)

func schema() *validator.Validate {
	schemaOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// report json names so field paths match the payload
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		schemaValidate = v
	})
	return schemaValidate
}

// Parse decodes raw into an AnalysisResult.
// The JSON document may be wrapped in prose or code fences; anything outside the
// outermost braces is ignored. Keys match exactly, missing or null values are
// never defaulted and unknown keys are ignored.
func Parse(raw RawPayload) (AnalysisResult, error) {
	doc, err := extractJSON(string(raw))
	if err != nil {
		return AnalysisResult{}, err
	}

	root, err := newObject("", json.RawMessage(doc))
	if err != nil {
		return AnalysisResult{}, err
	}
	w, err := decodeResult(root)
	if err != nil {
		return AnalysisResult{}, err
	}

	if err := schema().Struct(w); err != nil {
		return AnalysisResult{}, schemaError(err)
	}

	return w.toResult(), nil
}

// extractJSON returns the span between the first '{' and the last '}'.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformedPayload)
	}
	doc := s[start : end+1]
	if !json.Valid([]byte(doc)) {
		return "", fmt.Errorf("%w: invalid JSON", ErrMalformedPayload)
	}
	return doc, nil
}

// object is one JSON object level. Lookups are case-sensitive, unlike
// encoding/json struct decoding.
type object struct {
	path   string
	fields map[string]json.RawMessage
}

func newObject(path string, raw json.RawMessage) (object, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return object{}, mismatch(path, "object", raw)
	}
	return object{path: path, fields: m}, nil
}

func (o object) at(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

// value returns the raw value under key, nil when absent or null
func (o object) value(key string) json.RawMessage {
	v, ok := o.fields[key]
	if !ok || isNull(v) {
		return nil
	}
	return v
}

func (o object) str(key string) (*string, error) {
	v := o.value(key)
	if v == nil {
		return nil, nil
	}
	return decodeString(o.at(key), v)
}

func (o object) object(key string) (*object, error) {
	v := o.value(key)
	if v == nil {
		return nil, nil
	}
	obj, err := newObject(o.at(key), v)
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

func (o object) array(key string) ([]json.RawMessage, error) {
	v := o.value(key)
	if v == nil {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, mismatch(o.at(key), "array", v)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

// strs keeps null elements as nil so validation can reject them by index
func (o object) strs(key string) ([]*string, error) {
	items, err := o.array(key)
	if items == nil || err != nil {
		return nil, err
	}
	out := make([]*string, len(items))
	for i, it := range items {
		if isNull(it) {
			continue
		}
		s, err := decodeString(fmt.Sprintf("%s[%d]", o.at(key), i), it)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (o object) objects(key string) ([]object, error) {
	items, err := o.array(key)
	if items == nil || err != nil {
		return nil, err
	}
	out := make([]object, len(items))
	for i, it := range items {
		path := fmt.Sprintf("%s[%d]", o.at(key), i)
		if isNull(it) {
			return nil, &SchemaError{Field: path, Reason: "is required"}
		}
		obj, err := newObject(path, it)
		if err != nil {
			return nil, err
		}
		out[i] = obj
	}
	return out, nil
}

func decodeString(path string, v json.RawMessage) (*string, error) {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, mismatch(path, "string", v)
	}
	return &s, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func mismatch(path, want string, v json.RawMessage) error {
	if path == "" {
		path = "$"
	}
	return &SchemaError{Field: path, Reason: fmt.Sprintf("expected %s, got %s", want, jsonKind(v))}
}

func jsonKind(v json.RawMessage) string {
	t := bytes.TrimSpace(v)
	if len(t) == 0 {
		return "nothing"
	}
	switch t[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func decodeResult(root object) (wireResult, error) {
	var (
		w   wireResult
		err error
	)
	if w.Term, err = root.str("term"); err != nil {
		return w, err
	}
	if w.Reading, err = root.str("reading"); err != nil {
		return w, err
	}

	usage, err := root.object("overall_usage")
	if err != nil {
		return w, err
	}
	if usage != nil {
		if w.OverallUsage, err = decodeUsage(*usage); err != nil {
			return w, err
		}
	}

	defs, err := root.objects("definitions")
	if err != nil {
		return w, err
	}
	if defs != nil {
		w.Definitions = make([]wireDefinition, len(defs))
		for i, d := range defs {
			if w.Definitions[i], err = decodeDefinition(d); err != nil {
				return w, err
			}
		}
	}

	w.LearnerWarnings, err = root.strs("learner_warnings")
	return w, err
}

func decodeUsage(o object) (*wireUsage, error) {
	var (
		u   wireUsage
		err error
	)
	if u.Frequency, err = o.str("frequency"); err != nil {
		return nil, err
	}
	if u.SpokenVsWritten, err = o.str("spoken_vs_written"); err != nil {
		return nil, err
	}
	if u.AgeDemographics, err = o.strs("age_demographics"); err != nil {
		return nil, err
	}
	return &u, nil
}

func decodeDefinition(o object) (wireDefinition, error) {
	var (
		d   wireDefinition
		err error
	)
	if d.DefinitionText, err = o.str("definition_text"); err != nil {
		return d, err
	}
	if d.PartOfSpeech, err = o.str("part_of_speech"); err != nil {
		return d, err
	}
	if d.FormalityLevel, err = o.str("formality_level"); err != nil {
		return d, err
	}
	if d.UsageContexts, err = o.strs("usage_contexts"); err != nil {
		return d, err
	}
	if d.AppropriatenessNotes, err = o.str("appropriateness_notes"); err != nil {
		return d, err
	}

	examples, err := o.objects("example_sentences")
	if err != nil {
		return d, err
	}
	if examples != nil {
		d.ExampleSentences = make([]wireExample, len(examples))
		for i, ex := range examples {
			e := &d.ExampleSentences[i]
			if e.Source, err = ex.str("japanese"); err != nil {
				return d, err
			}
			if e.Translation, err = ex.str("english"); err != nil {
				return d, err
			}
			if e.ContextNote, err = ex.str("context_note"); err != nil {
				return d, err
			}
		}
	}
	return d, nil
}

func schemaError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &SchemaError{Field: "$", Reason: err.Error()}
	}
	fe := verrs[0]
	// drop the root struct name: "wireResult.definitions[0].term" -> "definitions[0].term"
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	return &SchemaError{Field: field, Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must not be empty"
		}
		return "must have at least " + fe.Param() + " item(s)"
	case "oneof":
		return fmt.Sprintf("%v is not one of [%s]", fe.Value(), fe.Param())
	default:
		return "failed " + fe.Tag()
	}
}

func derefAll(in []*string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = *s
	}
	return out
}

func (w wireResult) toResult() AnalysisResult {
	ages := make([]AgeGroup, len(w.OverallUsage.AgeDemographics))
	for i, a := range w.OverallUsage.AgeDemographics {
		ages[i] = AgeGroup(*a)
	}

	defs := make([]Definition, len(w.Definitions))
	for i, d := range w.Definitions {
		examples := make([]ExampleSentence, len(d.ExampleSentences))
		for j, ex := range d.ExampleSentences {
			examples[j] = ExampleSentence{
				Source:      *ex.Source,
				Translation: *ex.Translation,
				ContextNote: *ex.ContextNote,
			}
		}
		defs[i] = Definition{
			DefinitionText:       *d.DefinitionText,
			PartOfSpeech:         *d.PartOfSpeech,
			FormalityLevel:       *d.FormalityLevel,
			UsageContexts:        derefAll(d.UsageContexts),
			AppropriatenessNotes: *d.AppropriatenessNotes,
			ExampleSentences:     examples,
		}
	}

	return AnalysisResult{
		Term:    *w.Term,
		Reading: *w.Reading,
		OverallUsage: OverallUsage{
			Frequency:       Frequency(*w.OverallUsage.Frequency),
			SpokenVsWritten: Register(*w.OverallUsage.SpokenVsWritten),
			AgeDemographics: ages,
		},
		Definitions:     defs,
		LearnerWarnings: derefAll(w.LearnerWarnings),
	}
}
