package export

import (
	"strings"
	"unicode"
)

const (
	maxFilenameRunes = 80
	fallbackPlayer   = "Jogador"

	// AllDraftsFilename names the export of every open draft.
	AllDraftsFilename = "Observacoes.pdf"
)

// GroupFilename names the export of every report about one player.
func GroupFilename(player string) string {
	return "Relatorios_" + sanitizeFilename(player) + ".pdf"
}

// DraftFilename names the export of a single draft.
func DraftFilename(player string) string {
	return "Observacao_" + sanitizeFilename(player) + ".pdf"
}

// sanitizeFilename turns whitespace runs into underscores and drops anything
// that is not a letter, digit, dash or underscore.
func sanitizeFilename(name string) string {
	var b strings.Builder
	n := 0
	for _, word := range strings.Fields(name) {
		if n > 0 {
			b.WriteRune('_')
			n++
		}
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
				b.WriteRune(r)
				n++
			}
		}
		if n >= maxFilenameRunes {
			break
		}
	}

	result := strings.Trim(b.String(), "_")
	if runes := []rune(result); len(runes) > maxFilenameRunes {
		result = string(runes[:maxFilenameRunes])
	}
	if result == "" {
		return fallbackPlayer
	}
	return result
}
