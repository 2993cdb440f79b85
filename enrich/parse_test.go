package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCleanup(t *testing.T) {
	response := `[LANGUAGE:de]
[Titel] Bibliothek geschlossen
[Text] Die Bibliothek bleibt am Freitag geschlossen.
[LANGUAGE:en]
[Titel] Library closed
[Text] The library stays closed on Friday.`

	parts, err := ParseCleanup(response)
	require.NoError(t, err)
	assert.Equal(t, "Bibliothek geschlossen", parts.GermanTitle)
	assert.Equal(t, "Die Bibliothek bleibt am Freitag geschlossen.", parts.GermanBody)
	assert.Equal(t, "Library closed", parts.EnglishTitle)
	assert.Equal(t, "The library stays closed on Friday.", parts.EnglishBody)
}

func TestParseCleanupFailsClosed(t *testing.T) {
	for _, response := range []string{
		"",
		"Bibliothek geschlossen",
		"[LANGUAGE:de] [Titel] nur deutsch [Text] ohne englischen Teil",
	} {
		_, err := ParseCleanup(response)
		assert.ErrorIs(t, err, ErrCleanupParse, response)
	}
}

func TestParseCategorization(t *testing.T) {
	content, audience, err := ParseCategorization(
		"[Inhaltskategorien] Veranstaltungen, Campusleben\n[Publikumskategorien] Studierende")
	require.NoError(t, err)
	assert.Equal(t, []string{"Veranstaltungen", "Campusleben"}, content)
	assert.Equal(t, []string{"Studierende"}, audience)
}

func TestParseCategorizationFailsClosed(t *testing.T) {
	_, _, err := ParseCategorization("Veranstaltungen, Campusleben")
	assert.ErrorIs(t, err, ErrCategorizationParse)
}

func TestParseTranslation(t *testing.T) {
	title, body, err := ParseTranslation("[Titel] Bibliothèque fermée\n[Text] La bibliothèque reste fermée vendredi.")
	require.NoError(t, err)
	assert.Equal(t, "Bibliothèque fermée", title)
	assert.Equal(t, "La bibliothèque reste fermée vendredi.", body)
}

func TestParseTranslationFailsClosed(t *testing.T) {
	_, _, err := ParseTranslation("no markers at all")
	assert.ErrorIs(t, err, ErrTranslationParse)
}
