package privacy

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// AnonymizeText replaces text with a vocabulary label. The same text and seed
// always give the same label. Text longer than CategoryLengthThreshold runes
// draws from the category list, anything shorter from the tag list.
func AnonymizeText(text string, seed int64) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if utf8.RuneCountInString(text) > CategoryLengthThreshold {
		return pick(categoryVocabulary[:], text, seed)
	}
	return pick(tagVocabulary[:], text, seed)
}

// AnonymizeCategory maps a category field onto the category list regardless
// of its length.
func AnonymizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return ""
	}
	return pick(categoryVocabulary[:], category, VocabularySeed)
}

// AnonymizeTags anonymizes each comma separated tag, keeping the first
// occurrence of every resulting label.
func AnonymizeTags(tags string) string {
	parts := strings.Split(tags, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		label := AnonymizeText(p, VocabularySeed)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return strings.Join(out, ", ")
}

func pick(list []string, text string, seed int64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], xxhash.Sum64String(text)+uint64(seed))
	return list[xxhash.Sum64(buf[:])%uint64(len(list))]
}
