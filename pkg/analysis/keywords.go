package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type ConditionKeywords struct {
	Condition string   `yaml:"condition" json:"condition"`
	Keywords  []string `yaml:"keywords" json:"keywords"`
}

// KeywordCatalog maps condition labels to their trigger phrases. Entries
// are ordered so detection output is deterministic; cardiovascular labels
// are reported before endocrine ones, matching the benefit documentation.
type KeywordCatalog struct {
	Cardiovascular []ConditionKeywords `yaml:"cardiovascular" json:"cardiovascular"`
	Endocrine      []ConditionKeywords `yaml:"endocrine" json:"endocrine"`
}

func LoadKeywordCatalog(path string) (KeywordCatalog, error) {
	if path == "" {
		return DefaultKeywordCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultKeywordCatalog(), err
	}
	var cat KeywordCatalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return DefaultKeywordCatalog(), err
	}
	if len(cat.Cardiovascular) == 0 && len(cat.Endocrine) == 0 {
		return DefaultKeywordCatalog(), fmt.Errorf("keyword catalog empty")
	}
	return cat, nil
}

func DefaultKeywordCatalog() KeywordCatalog {
	return KeywordCatalog{
		Cardiovascular: []ConditionKeywords{
			{Condition: "Cardiac Failure", Keywords: []string{"heart failure", "cardiac failure", "congestive heart failure", "chf", "left ventricular failure"}},
			{Condition: "Cardiomyopathy", Keywords: []string{"cardiomyopathy", "dilated cardiomyopathy", "hypertrophic cardiomyopathy"}},
			{Condition: "Coronary Artery Disease", Keywords: []string{"coronary artery disease", "cad", "angina", "myocardial infarction", "heart attack"}},
			{Condition: "Dysrhythmias", Keywords: []string{"atrial fibrillation", "afib", "ventricular tachycardia", "arrhythmia", "irregular heartbeat"}},
			{Condition: "Haemophilia", Keywords: []string{"haemophilia", "hemophilia", "factor viii deficiency", "factor ix deficiency"}},
			{Condition: "Hyperlipidaemia", Keywords: []string{"hyperlipidemia", "high cholesterol", "elevated lipids", "dyslipidemia"}},
			{Condition: "Hypertension", Keywords: []string{"hypertension", "high blood pressure", "elevated blood pressure", "htn"}},
		},
		Endocrine: []ConditionKeywords{
			{Condition: "Diabetes Insipidus", Keywords: []string{"diabetes insipidus", "di", "vasopressin deficiency"}},
			{Condition: "Diabetes Mellitus Type 1", Keywords: []string{"diabetes mellitus type 1", "type 1 diabetes", "insulin dependent diabetes", "t1dm"}},
			{Condition: "Diabetes Mellitus Type 2", Keywords: []string{"diabetes mellitus type 2", "type 2 diabetes", "non-insulin dependent diabetes", "t2dm", "diabetes"}},
		},
	}
}
