// Package retrieval builds the composed facet query over the canonical
// store: selections within a facet combine with OR, conditions across
// facets combine with AND. It is strictly read-only.
package retrieval

import (
	"github.com/campushub/campusnews/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultLimit = 20

// Tokens of the sources facet that denote bulletin variants. They filter on
// News.SourceType instead of the source slug.
const (
	TokenRundmail       = "rundmail"
	TokenSammelRundmail = "sammel-rundmail"
)

// Params maps facet names to selected slugs. Empty facets do not constrain
// the result.
type Params struct {
	Locations  []string
	Categories []string
	Audiences  []string
	Sources    []string

	Limit  int
	Offset int
}

// Filtered returns the news matching the facet selection, strictly ordered
// by creation timestamp descending, join-expansion duplicates eliminated,
// paginated with the half-open window [offset, offset+limit).
func Filtered(db *gorm.DB, params Params) ([]model.News, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := db.Model(&model.News{}).
		Preload(clause.Associations).
		Distinct("news.*")

	if len(params.Locations) > 0 {
		query = query.
			Joins("JOIN news_locations ON news_locations.news_id = news.id").
			Joins("JOIN locations ON locations.id = news_locations.location_id").
			Where("locations.slug IN ?", params.Locations)
	}
	if len(params.Categories) > 0 {
		query = query.
			Joins("JOIN news_content_categories ON news_content_categories.news_id = news.id").
			Joins("JOIN content_categories ON content_categories.id = news_content_categories.content_category_id").
			Where("content_categories.slug IN ?", params.Categories)
	}
	if len(params.Audiences) > 0 {
		query = query.
			Joins("JOIN news_audience_categories ON news_audience_categories.news_id = news.id").
			Joins("JOIN audience_categories ON audience_categories.id = news_audience_categories.audience_category_id").
			Where("audience_categories.slug IN ?", params.Audiences)
	}
	if len(params.Sources) > 0 {
		sourceTypes, sourceSlugs := splitSourceFacet(params.Sources)
		query = query.Joins("LEFT JOIN sources ON sources.id = news.source_id")
		switch {
		case len(sourceTypes) > 0 && len(sourceSlugs) > 0:
			query = query.Where("news.source_type IN ? OR sources.slug IN ?", sourceTypes, sourceSlugs)
		case len(sourceTypes) > 0:
			query = query.Where("news.source_type IN ?", sourceTypes)
		default:
			query = query.Where("sources.slug IN ?", sourceSlugs)
		}
	}

	var news []model.News
	err := query.
		Order("news.creation_timestamp DESC").
		Offset(params.Offset).
		Limit(limit).
		Find(&news).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to query filtered news")
	}
	return news, nil
}

// splitSourceFacet separates bulletin tokens (matched on source_type) from
// regular source slugs.
func splitSourceFacet(selections []string) (sourceTypes []string, sourceSlugs []string) {
	for _, selection := range selections {
		switch selection {
		case TokenRundmail:
			sourceTypes = append(sourceTypes, model.SourceTypeRundmail)
		case TokenSammelRundmail:
			sourceTypes = append(sourceTypes, model.SourceTypeSammelRundmail, model.SourceTypeJobRundmail)
		default:
			sourceSlugs = append(sourceSlugs, selection)
		}
	}
	return sourceTypes, sourceSlugs
}

// ForUser maps a user's stored preference sets into the facet structure and
// runs Filtered. The two booleans append the bulletin tokens.
func ForUser(db *gorm.DB, userID string, limit int, offset int) ([]model.News, error) {
	var user model.User
	res := db.
		Preload("Locations").
		Preload("ContentCategories").
		Preload("AudienceCategories").
		Preload("Sources").
		Where("id = ?", userID).
		First(&user)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "fail to load user %s", userID)
	}

	params := Params{Limit: limit, Offset: offset}
	for _, location := range user.Locations {
		params.Locations = append(params.Locations, location.Slug)
	}
	for _, category := range user.ContentCategories {
		params.Categories = append(params.Categories, category.Slug)
	}
	for _, audience := range user.AudienceCategories {
		params.Audiences = append(params.Audiences, audience.Slug)
	}
	for _, source := range user.Sources {
		params.Sources = append(params.Sources, source.Slug)
	}
	if user.IncludeRundmail {
		params.Sources = append(params.Sources, TokenRundmail)
	}
	if user.IncludeSammelRundmail {
		params.Sources = append(params.Sources, TokenSammelRundmail)
	}

	return Filtered(db, params)
}
