package privacy

const (
	// VocabularySeed is mixed into every label hash.
	VocabularySeed int64 = 42

	// CategoryLengthThreshold separates category-like text (longer) from
	// tag-like text (this length or shorter), counted in runes.
	CategoryLengthThreshold = 20

	// AnonymizedDescription replaces every free-text description.
	AnonymizedDescription = "Income payment"
)

var categoryVocabulary = [...]string{
	"Employment Income",
	"Freelance Work",
	"Investment Returns",
	"Business Revenue",
	"Other Income",
}

var tagVocabulary = [...]string{
	"monthly income",
	"project payment",
	"dividend",
	"interest",
	"bonus",
	"commission",
	"other",
}

// CategoryVocabulary returns a copy of the category labels.
func CategoryVocabulary() []string {
	out := make([]string, len(categoryVocabulary))
	copy(out, categoryVocabulary[:])
	return out
}

// TagVocabulary returns a copy of the tag labels.
func TagVocabulary() []string {
	out := make([]string, len(tagVocabulary))
	copy(out, tagVocabulary[:])
	return out
}

// InVocabulary reports whether s is one of the replacement labels.
func InVocabulary(s string) bool {
	for _, v := range categoryVocabulary {
		if v == s {
			return true
		}
	}
	for _, v := range tagVocabulary {
		if v == s {
			return true
		}
	}
	return false
}
