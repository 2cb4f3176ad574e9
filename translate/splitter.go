package translate

import (
	"strings"

	"doctrans/internal/constants"
)

// sentence terminators; CJK prose splits on the fullwidth set without
// relying on spaces.
var (
	cjkSentenceEnders = []rune{'。', '！', '？', '；'}
	sentenceEnders    = []rune{'。', '！', '？', '；', '.', '!', '?', ';'}
)

func isSentenceEnder(r rune, enders []rune) bool {
	for _, e := range enders {
		if r == e {
			return true
		}
	}
	return false
}

// SplitSentences splits text into sentences, keeping each terminator attached
// to its sentence. A CJK langHint tries the fullwidth terminators first, where
// ASCII periods are almost always numbers or abbreviations; everything else,
// and CJK text without fullwidth terminators, splits on the combined set.
// Text without any terminator comes back as a single sentence.
func SplitSentences(text, langHint string) []string {
	if IsCJK(langHint) {
		if out := splitOnEnders(text, cjkSentenceEnders); len(out) > 1 {
			return out
		}
	}
	return splitOnEnders(text, sentenceEnders)
}

func splitOnEnders(text string, enders []rune) []string {
	var (
		out     []string
		current strings.Builder
	)
	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if !isSentenceEnder(r, enders) {
			continue
		}
		// "3.14" and "e.g." style interior dots stay intact.
		if r == '.' && i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\n' {
			continue
		}
		if s := current.String(); strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
		current.Reset()
	}
	if s := current.String(); strings.TrimSpace(s) != "" {
		out = append(out, s)
	}
	return out
}

// ChunkUnit is one piece of a chunked translation together with the separator
// that joins it to the following piece in the original text.
type ChunkUnit struct {
	Text      string
	Separator string
}

// ChunkText splits a text that the backend rejected as too large into units
// no longer than maxChars, descending paragraph, line, sentence, and finally
// hard character slices. Joining each unit's Text followed by its Separator
// reconstructs the original.
func ChunkText(text string, maxChars int) []ChunkUnit {
	if maxChars <= 0 {
		maxChars = constants.MaxChunkChars
	}
	return splitWithSeparator(text, "\n\n", func(para string) []ChunkUnit {
		if len([]rune(para)) <= maxChars {
			return []ChunkUnit{{Text: para}}
		}
		return splitWithSeparator(para, "\n", func(line string) []ChunkUnit {
			if len([]rune(line)) <= maxChars {
				return []ChunkUnit{{Text: line}}
			}
			var units []ChunkUnit
			for _, sentence := range SplitSentences(line, "") {
				if len([]rune(sentence)) <= maxChars {
					units = append(units, ChunkUnit{Text: sentence})
					continue
				}
				units = append(units, hardSlices(sentence, maxChars)...)
			}
			return units
		})
	})
}

// splitWithSeparator applies sub to every piece of text split on sep, then
// re-attaches sep as the trailing separator of each piece's last unit.
func splitWithSeparator(text, sep string, sub func(string) []ChunkUnit) []ChunkUnit {
	pieces := strings.Split(text, sep)
	var out []ChunkUnit
	for i, piece := range pieces {
		units := sub(piece)
		if len(units) == 0 {
			units = []ChunkUnit{{Text: ""}}
		}
		if i < len(pieces)-1 {
			units[len(units)-1].Separator = sep
		}
		out = append(out, units...)
	}
	return out
}

func hardSlices(text string, maxChars int) []ChunkUnit {
	runes := []rune(text)
	var out []ChunkUnit
	for len(runes) > 0 {
		n := maxChars
		if n > len(runes) {
			n = len(runes)
		}
		out = append(out, ChunkUnit{Text: string(runes[:n])})
		runes = runes[n:]
	}
	return out
}

// JoinChunks reassembles translated chunk texts using the separators captured
// at split time.
func JoinChunks(units []ChunkUnit, translated []string) string {
	var sb strings.Builder
	for i, u := range units {
		if i < len(translated) {
			sb.WriteString(translated[i])
		} else {
			sb.WriteString(u.Text)
		}
		sb.WriteString(u.Separator)
	}
	return sb.String()
}
