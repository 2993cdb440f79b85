package server

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/campushub/campusnews/enrich"
	"github.com/campushub/campusnews/model"
	"github.com/campushub/campusnews/pipeline"
	"github.com/campushub/campusnews/utils"
	"github.com/campushub/campusnews/utils/dotenv"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	if err := dotenv.LoadDotEnvsInTests(); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	m.Run()
}

type emptyClient struct{}

func (emptyClient) Complete(ctx context.Context, req enrich.CompletionRequest) (*enrich.CompletionResult, error) {
	return &enrich.CompletionResult{Text: "", TokensUsed: 10}, nil
}

func setupServerDirs(t *testing.T) {
	t.Helper()
	promptDir := t.TempDir()
	configDir := t.TempDir()
	for name, content := range map[string]string{
		"bereinigung.txt":     "Bereinige.",
		"kategorisierung.txt": "%Inhaltskategorien% %Publikumskategorien%",
		"uebersetzung.txt":    "Translate into %Sprache%.",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(promptDir, name), []byte(content), 0644))
	}
	for name, content := range map[string]string{
		"inhaltskategorien.txt":   "Veranstaltungen\n",
		"publikumskategorien.txt": "Studierende\n",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
	}
	t.Setenv("PROMPT_DIR", promptDir)
	t.Setenv("CONFIG_DIR", configDir)
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, _ := utils.CreateTempDB(t)
	setupServerDirs(t)
	t.Setenv("API_KEY", "sekrit")
	processor := pipeline.NewProcessor(db, emptyClient{}, 10000, nil)
	return SetupRouter(NewHandler(db, processor)), db
}

func entryPayload(t *testing.T, title string) []byte {
	t.Helper()
	entries := []model.RawEntry{{
		Link:              "https://rundmail.campushub.de/archiv/detail?id=4711",
		Title:             title,
		CreationTimestamp: model.WireTime{Time: time.Date(2024, 2, 5, 10, 0, 0, 0, model.Timezone())},
		Body:              "Textkörper.",
		SourceType:        model.SourceTypeRundmail,
		SourceName:        "Rundmail vom 05.02.2024",
		RundmailId:        "4711",
	}}
	payload, err := json.Marshal(entries)
	require.NoError(t, err)
	return payload
}

func TestIngestRequiresAPIKey(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/news", bytes.NewReader(entryPayload(t, "Meldung")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/news", bytes.NewReader(entryPayload(t, "Meldung")))
	req.Header.Set("API-Key", "wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIngestAcceptsPlainAndGzipBodies(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/news", bytes.NewReader(entryPayload(t, "Erste Meldung")))
	req.Header.Set("API-Key", "sekrit")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	_, err := gz.Write(entryPayload(t, "Zweite Meldung"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/news", &compressed)
	req.Header.Set("API-Key", "sekrit")
	req.Header.Set("Content-Encoding", "gzip")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIngestRejectsInvalidEnvironment(t *testing.T) {
	router, _ := newTestRouter(t)
	t.Setenv("ENVIRONMENT", "staging")

	req := httptest.NewRequest(http.MethodPost, "/api/news", bytes.NewReader(entryPayload(t, "Meldung")))
	req.Header.Set("API-Key", "sekrit")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid environment")
}

func TestLatestRundmailDate(t *testing.T) {
	router, _ := newTestRouter(t)

	// Empty store: 404 so the collector walks the full archive.
	req := httptest.NewRequest(http.MethodGet, "/api/news/rundmail/date", nil)
	req.Header.Set("API-Key", "sekrit")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/news", bytes.NewReader(entryPayload(t, "Datierte Meldung")))
	req.Header.Set("API-Key", "sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/news/rundmail/date", nil)
	req.Header.Set("API-Key", "sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "05.02.2024 10:00:00", body["date"])
}

func TestFilteredNewsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/news", bytes.NewReader(entryPayload(t, "Gefilterte Meldung")))
	req.Header.Set("API-Key", "sekrit")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/news?rundmail=true", nil)
	req.Header.Set("API-Key", "sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var news []model.News
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &news))
	require.Len(t, news, 1)
	assert.Equal(t, "Gefilterte Meldung", news[0].Title)

	// A facet nothing matches.
	req = httptest.NewRequest(http.MethodGet, "/api/news?standorte=ld", nil)
	req.Header.Set("API-Key", "sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestIngestBulkEntryWithoutSourceName(t *testing.T) {
	router, db := newTestRouter(t)

	// As a collector would post it, without a source_name.
	payload := `[{
		"titel": "Bibliothek öffnet länger",
		"erstellungsdatum": "01.10.2025 09:00:00",
		"text": "Die Bibliothek öffnet ab sofort länger.",
		"standorte": ["Kaiserslautern"],
		"source_type": "Sammel-Rundmail",
		"rundmail_id": "12345"
	}]`

	req := httptest.NewRequest(http.MethodPost, "/api/news", strings.NewReader(payload))
	req.Header.Set("API-Key", "sekrit")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var news model.News
	require.NoError(t, db.Preload("Locations").
		Where("title = ?", "Bibliothek öffnet länger").First(&news).Error)
	require.Len(t, news.Locations, 1)
	assert.Equal(t, model.LocationKaiserslautern, news.Locations[0].Name)

	var source model.Source
	require.NoError(t, db.Where("id = ?", news.SourceID).First(&source).Error)
	assert.Equal(t, "Sammel-Rundmail vom 01.10.2025", source.Name)
	assert.Equal(t, model.SourceTypeSammelRundmail, source.Variant)
	require.NotNil(t, source.RundmailId)
	assert.Equal(t, "12345", *source.RundmailId)
}

func TestTokenUsageEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/news/tokens", nil)
	req.Header.Set("API-Key", "sekrit")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 0, body["used_tokens"])
}
