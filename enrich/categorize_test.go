package enrich

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/campushub/campusnews/utils"
	"github.com/campushub/campusnews/utils/dotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := dotenv.LoadDotEnvsInTests(); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeClient scripts the LLM response for a test.
type fakeClient struct {
	response string
	tokens   int64
	err      error

	lastRequest CompletionRequest
}

func (f *fakeClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return &CompletionResult{Text: f.response, TokensUsed: f.tokens}, nil
}

// setupEnrichmentDirs points PROMPT_DIR / CONFIG_DIR at temp copies of the
// prompt and allow-list files.
func setupEnrichmentDirs(t *testing.T) {
	t.Helper()

	promptDir := t.TempDir()
	configDir := t.TempDir()

	prompts := map[string]string{
		"bereinigung.txt":     "Bereinige die Meldung.",
		"kategorisierung.txt": "Wähle aus:\n%Inhaltskategorien%\n%Publikumskategorien%",
		"uebersetzung.txt":    "Translate into %Sprache%.",
	}
	for name, content := range prompts {
		require.NoError(t, os.WriteFile(filepath.Join(promptDir, name), []byte(content), 0644))
	}

	configs := map[string]string{
		"inhaltskategorien.txt":   "# allowed\nVeranstaltungen\nCampusleben\n",
		"publikumskategorien.txt": "Studierende\nBeschäftigte\n",
	}
	for name, content := range configs {
		require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
	}

	t.Setenv("PROMPT_DIR", promptDir)
	t.Setenv("CONFIG_DIR", configDir)
}

func TestClassifyReturnsValidatedCategories(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	setupEnrichmentDirs(t)

	client := &fakeClient{
		response: "[Inhaltskategorien] Veranstaltungen\n[Publikumskategorien] Studierende, Beschäftigte",
		tokens:   400,
	}
	categorizer := NewCategorizer(db, client, 10000)

	content, audience, err := categorizer.Classify(context.Background(), "Party", "Es wird gefeiert.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Veranstaltungen"}, content)
	assert.Equal(t, []string{"Studierende", "Beschäftigte"}, audience)

	// The allow-lists are substituted into the prompt.
	assert.Contains(t, client.lastRequest.SystemPrompt, "Veranstaltungen, Campusleben")
	assert.Contains(t, client.lastRequest.SystemPrompt, "Studierende, Beschäftigte")
}

func TestClassifyRejectsUnknownCategory(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	setupEnrichmentDirs(t)

	client := &fakeClient{
		response: "[Inhaltskategorien] Partys\n[Publikumskategorien] Studierende",
		tokens:   400,
	}
	categorizer := NewCategorizer(db, client, 10000)

	_, _, err := categorizer.Classify(context.Background(), "Party", "Es wird gefeiert.")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestClassifyRefusedOnExhaustedBudget(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	setupEnrichmentDirs(t)

	client := &fakeClient{response: "unused"}
	categorizer := NewCategorizer(db, client, 100)

	_, _, err := categorizer.Classify(context.Background(), "Party", "Es wird gefeiert.")
	assert.ErrorIs(t, err, ErrTokenLimitExceeded)
	// No LLM call may happen on a refused reservation.
	assert.Empty(t, client.lastRequest.SystemPrompt)
}
