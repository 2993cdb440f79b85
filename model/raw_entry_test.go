package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireTimeRoundtrip(t *testing.T) {
	original := WireTime{Time: time.Date(2024, 3, 7, 14, 30, 5, 0, Timezone())}

	encoded, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"07.03.2024 14:30:05"`, string(encoded))

	var decoded WireTime
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.True(t, original.Equal(decoded.Time))
}

func TestWireTimeRejectsInvalidFormat(t *testing.T) {
	var decoded WireTime
	assert.Error(t, json.Unmarshal([]byte(`"2024-03-07T14:30:05Z"`), &decoded))
}

func TestRawEntryDecodesGermanKeys(t *testing.T) {
	payload := `{
		"link": "https://rundmail.campushub.de/archiv?id=4711",
		"titel": "Bibliothek am Freitag geschlossen",
		"erstellungsdatum": "01.02.2024 09:15:00",
		"text": "Wegen Wartungsarbeiten bleibt die Bibliothek geschlossen.",
		"standorte": ["Kaiserslautern"],
		"source_type": "Rundmail",
		"source_name": "Rundmail vom 01.02.2024",
		"rundmail_id": "4711"
	}`

	var entry RawEntry
	require.NoError(t, json.Unmarshal([]byte(payload), &entry))

	assert.Equal(t, "Bibliothek am Freitag geschlossen", entry.Title)
	assert.Equal(t, SourceTypeRundmail, entry.SourceType)
	assert.Equal(t, "4711", entry.RundmailId)
	assert.Equal(t, []string{LocationKaiserslautern}, entry.Locations)
	assert.Equal(t, 2024, entry.CreationTimestamp.Year())
	assert.Equal(t, time.February, entry.CreationTimestamp.Month())
}
