package entity

// PatternKey builds the exact, case-sensitive key for one supplier+product
// pair. No fuzzy merging: "Seara" and "seara" are distinct on purpose.
func PatternKey(supplier, product string) string {
	return supplier + "::" + product
}

// KnowledgeBase is the root aggregate the learning store owns: de-duplicated
// lookup lists for autocomplete, the bounded reading log, and the per-pair
// patterns. Serialized as a single JSON document.
type KnowledgeBase struct {
	Suppliers     []string                    `json:"suppliers"`
	Products      []string                    `json:"products"`
	ImageReadings []LabelReading              `json:"image_readings"`
	Patterns      map[string]*LearningPattern `json:"learning_patterns"`
}

func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		Suppliers:     []string{},
		Products:      []string{},
		ImageReadings: []LabelReading{},
		Patterns:      map[string]*LearningPattern{},
	}
}
