package server

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/campushub/campusnews/ledger"
	"github.com/campushub/campusnews/model"
	"github.com/campushub/campusnews/pipeline"
	"github.com/campushub/campusnews/retrieval"
	"github.com/campushub/campusnews/utils/dotenv"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Handler bundles the dependencies of all API routes.
type Handler struct {
	DB        *gorm.DB
	Processor *pipeline.Processor
}

func NewHandler(db *gorm.DB, processor *pipeline.Processor) *Handler {
	return &Handler{DB: db, Processor: processor}
}

// Ingest is the authenticated batch endpoint the collectors post to. The
// body is a JSON array of raw entries, optionally gzip-compressed. Each
// entry is dispatched to the per-entry pipeline; a failing entry is logged
// and never aborts its batch.
func (h *Handler) Ingest(c *gin.Context) {
	if !dotenv.IsValidEnv() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid environment"})
		return
	}

	entries, err := decodeEntries(c)
	if err != nil {
		Logger.Log.Warn("undecodable ingest body: ", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}

	for idx := range entries {
		entry := &entries[idx]
		if err := h.Processor.ProcessEntry(c.Request.Context(), entry); err != nil {
			Logger.Log.WithField("title", entry.Title).Error("fail to process entry: ", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func decodeEntries(c *gin.Context) ([]model.RawEntry, error) {
	var reader io.Reader = c.Request.Body
	if strings.Contains(c.GetHeader("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, errors.Wrap(err, "fail to open gzip body")
		}
		defer gz.Close()
		reader = gz
	}

	var entries []model.RawEntry
	if err := json.NewDecoder(reader).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "fail to decode entries")
	}
	return entries, nil
}

// LatestRundmailDate returns the creation timestamp of the newest bulletin
// news. The bulletin collector probes it to short-circuit its archive walk.
func (h *Handler) LatestRundmailDate(c *gin.Context) {
	var news model.News
	res := h.DB.
		Where("source_type IN ?", []string{
			model.SourceTypeRundmail,
			model.SourceTypeSammelRundmail,
			model.SourceTypeJobRundmail,
		}).
		Order("creation_timestamp DESC").
		First(&news)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no bulletin news"})
		return
	}
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date": news.CreationTimestamp.In(model.Timezone()).Format(model.WireTimeLayout),
	})
}

// FilteredNews serves the faceted read API over the canonical store.
// Within a facet selections combine with OR, across facets with AND.
func (h *Handler) FilteredNews(c *gin.Context) {
	params := retrieval.Params{
		Locations:  facetValues(c, "standorte"),
		Categories: facetValues(c, "kategorien"),
		Audiences:  facetValues(c, "publikum"),
		Sources:    facetValues(c, "quellen"),
		Limit:      intQuery(c, "limit", retrieval.DefaultLimit),
		Offset:     intQuery(c, "offset", 0),
	}
	if c.Query("rundmail") == "true" {
		params.Sources = append(params.Sources, retrieval.TokenRundmail)
	}
	if c.Query("sammel_rundmail") == "true" {
		params.Sources = append(params.Sources, retrieval.TokenSammelRundmail)
	}

	news, err := retrieval.Filtered(h.DB, params)
	if err != nil {
		Logger.Log.Error("fail to run filtered query: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if news == nil {
		news = []model.News{}
	}
	c.JSON(http.StatusOK, news)
}

// PersonalizedFeed maps the user's stored preferences into the same facet
// structure and serves the result.
func (h *Handler) PersonalizedFeed(c *gin.Context) {
	news, err := retrieval.ForUser(
		h.DB,
		c.Param("userID"),
		intQuery(c, "limit", retrieval.DefaultLimit),
		intQuery(c, "offset", 0),
	)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown user"})
		return
	}
	if err != nil {
		Logger.Log.Error("fail to build personalized feed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if news == nil {
		news = []model.News{}
	}
	c.JSON(http.StatusOK, news)
}

// TokenUsage exposes today's ledger row for operations dashboards.
func (h *Handler) TokenUsage(c *gin.Context) {
	used, err := ledger.UsedToday(h.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"used_tokens": used})
}

// facetValues reads a facet from the query string. Both repeated params and
// a single comma-separated value are accepted.
func facetValues(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
