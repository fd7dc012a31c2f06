package models

// VocabularyKind names one dropdown vocabulary supplied by reference data.
type VocabularyKind string

// Vocabularies the engine consumes. Branching logic reads these as injected
// sets, so extending a vocabulary is a data change only.
const (
	VocabularyPurposes       VocabularyKind = "PURPOSES"
	VocabularyContactRoles   VocabularyKind = "CONTACT_ROLES"
	VocabularyTravelModes    VocabularyKind = "TRAVEL_MODES"
	VocabularyConditions     VocabularyKind = "SPECIMEN_CONDITIONS"
	VocabularySupplyChannels VocabularyKind = "SUPPLY_CHANNELS"
	VocabularyCategories     VocabularyKind = "EXPENSE_CATEGORIES"
)

// VocabularyEntry is one value of a vocabulary.
type VocabularyEntry struct {
	Kind  VocabularyKind `db:"kind" json:"kind"`
	Value string         `db:"value" json:"value"`
	Label string         `db:"label" json:"label,omitempty"`
}

// Vocabulary is the value set of one kind, immutable for the session.
type Vocabulary struct {
	Kind   VocabularyKind `json:"kind"`
	Values []string       `json:"values"`
}

// Contains reports whether the vocabulary carries the value.
func (v Vocabulary) Contains(value string) bool {
	for _, candidate := range v.Values {
		if candidate == value {
			return true
		}
	}
	return false
}
