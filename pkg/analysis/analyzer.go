package analysis

import (
	"math/rand"
	"strings"

	"github.com/salulink/authi/pkg/common/models"
)

// Condition reported when no trigger phrase matches the notes.
const fallbackCondition = "Hypertension"

// Reported as a fixed figure: the upstream model endpoint this stands in
// for answered in a constant two seconds and downstream consumers display
// that number, so it is kept rather than measured.
const processingTimeMillis = 2000

// Analyzer maps free-text clinical notes to chronic condition labels by
// trigger-phrase matching. The confidence it reports is a synthetic value
// in [0.7, 1.0) with no clinical meaning; treat it as presentation data
// only, never as a model signal.
type Analyzer struct {
	catalog KeywordCatalog
}

func NewAnalyzer(catalog KeywordCatalog) *Analyzer {
	return &Analyzer{catalog: catalog}
}

// Analyze never fails: notes matching no trigger phrase yield the fallback
// condition. Labels are emitted in catalog order, cardiovascular first.
// Labels appearing in both tables are reported twice; deduplication is
// deliberately left to the caller.
func (a *Analyzer) Analyze(notes string) models.AnalysisResult {
	notesLower := strings.ToLower(notes)

	var detected []string
	for _, table := range [][]ConditionKeywords{a.catalog.Cardiovascular, a.catalog.Endocrine} {
		for _, entry := range table {
			for _, keyword := range entry.Keywords {
				if strings.Contains(notesLower, keyword) {
					detected = append(detected, entry.Condition)
					break
				}
			}
		}
	}

	if len(detected) == 0 {
		detected = []string{fallbackCondition}
	}

	return models.AnalysisResult{
		DetectedConditions:   detected,
		Confidence:           0.7 + rand.Float64()*0.3,
		ProcessingTimeMillis: processingTimeMillis,
	}
}

// Validate reports whether the condition label itself appears in the notes,
// tolerating the spaced, joined and hyphenated spellings.
func (a *Analyzer) Validate(condition, notes string) bool {
	notesLower := strings.ToLower(notes)
	conditionLower := strings.ToLower(condition)

	return strings.Contains(notesLower, conditionLower) ||
		strings.Contains(notesLower, strings.ReplaceAll(conditionLower, " ", "")) ||
		strings.Contains(notesLower, strings.ReplaceAll(conditionLower, " ", "-"))
}
