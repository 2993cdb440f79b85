package retrieval

import (
	"testing"
	"time"

	"github.com/campushub/campusnews/model"
	"github.com/campushub/campusnews/utils"
	"github.com/campushub/campusnews/utils/dotenv"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	if err := dotenv.LoadDotEnvsInTests(); err != nil {
		panic(err)
	}
	m.Run()
}

type fixture struct {
	db *gorm.DB

	kl, ld             *model.Location
	events, jobs       *model.ContentCategory
	students, staff    *model.AudienceCategory
	bulletin, pressure *model.Source
}

// seedFixture creates two sources and a handful of news spanning the
// facets. Timestamps are strictly ordered so result order is observable.
func seedFixture(t *testing.T) *fixture {
	t.Helper()
	db, _ := utils.CreateTempDB(t)
	f := &fixture{db: db}

	require.NoError(t, db.Where("slug = ?", "kl").First(&f.kl).Error)
	require.NoError(t, db.Where("slug = ?", "ld").First(&f.ld).Error)

	f.events = &model.ContentCategory{Id: uuid.New().String(), Name: "Veranstaltungen", Slug: "veranstaltungen"}
	f.jobs = &model.ContentCategory{Id: uuid.New().String(), Name: "Stellenangebote", Slug: "stellenangebote"}
	require.NoError(t, db.Create(f.events).Error)
	require.NoError(t, db.Create(f.jobs).Error)

	f.students = &model.AudienceCategory{Id: uuid.New().String(), Name: "Studierende", Slug: "studierende"}
	f.staff = &model.AudienceCategory{Id: uuid.New().String(), Name: "Beschäftigte", Slug: "beschaeftigte"}
	require.NoError(t, db.Create(f.students).Error)
	require.NoError(t, db.Create(f.staff).Error)

	f.bulletin = &model.Source{Id: uuid.New().String(), Variant: model.SourceTypeRundmail,
		Name: "Rundmail vom 01.02.2024", Slug: "rundmail-vom-01-02-2024"}
	f.pressure = &model.Source{Id: uuid.New().String(), Variant: model.SourceTypeInterneSeite,
		Name: "Pressestelle", Slug: "pressestelle"}
	require.NoError(t, db.Create(f.bulletin).Error)
	require.NoError(t, db.Create(f.pressure).Error)

	return f
}

type newsSpec struct {
	title      string
	age        time.Duration
	source     *model.Source
	sourceType string

	locations  []*model.Location
	categories []*model.ContentCategory
	audiences  []*model.AudienceCategory
}

func (f *fixture) addNews(t *testing.T, spec newsSpec) *model.News {
	t.Helper()
	news := &model.News{
		Id:                uuid.New().String(),
		Title:             spec.title,
		CreationTimestamp: time.Now().Add(-spec.age),
		SourceID:          spec.source.Id,
		SourceType:        spec.sourceType,
	}
	require.NoError(t, f.db.Create(news).Error)
	if len(spec.locations) > 0 {
		require.NoError(t, f.db.Model(news).Association("Locations").Append(spec.locations))
	}
	if len(spec.categories) > 0 {
		require.NoError(t, f.db.Model(news).Association("ContentCategories").Append(spec.categories))
	}
	if len(spec.audiences) > 0 {
		require.NoError(t, f.db.Model(news).Association("AudienceCategories").Append(spec.audiences))
	}
	return news
}

func titles(news []model.News) []string {
	var out []string
	for _, n := range news {
		out = append(out, n.Title)
	}
	return out
}

func TestFilteredOrWithinFacetAndAcrossFacets(t *testing.T) {
	f := seedFixture(t)

	f.addNews(t, newsSpec{title: "Party in KL", age: 1 * time.Hour,
		source: f.bulletin, sourceType: model.SourceTypeRundmail,
		locations: []*model.Location{f.kl}, categories: []*model.ContentCategory{f.events},
		audiences: []*model.AudienceCategory{f.students}})
	f.addNews(t, newsSpec{title: "Jobmesse in LD", age: 2 * time.Hour,
		source: f.bulletin, sourceType: model.SourceTypeRundmail,
		locations: []*model.Location{f.ld}, categories: []*model.ContentCategory{f.jobs},
		audiences: []*model.AudienceCategory{f.students}})
	f.addNews(t, newsSpec{title: "Pressemitteilung ohne Ort", age: 3 * time.Hour,
		source: f.pressure, sourceType: model.SourceTypeInterneSeite,
		categories: []*model.ContentCategory{f.events},
		audiences:  []*model.AudienceCategory{f.staff}})

	// One facet, two selections: OR.
	news, err := Filtered(f.db, Params{Locations: []string{"kl", "ld"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Party in KL", "Jobmesse in LD"}, titles(news))

	// Two facets: AND between them.
	news, err = Filtered(f.db, Params{Locations: []string{"kl", "ld"}, Audiences: []string{"studierende"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Party in KL", "Jobmesse in LD"}, titles(news))

	news, err = Filtered(f.db, Params{Categories: []string{"veranstaltungen"}, Audiences: []string{"beschaeftigte"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pressemitteilung ohne Ort"}, titles(news))
}

func TestFilteredNoDuplicatesFromJoinExpansion(t *testing.T) {
	f := seedFixture(t)

	// Matches both selected locations, must still appear once.
	f.addNews(t, newsSpec{title: "Campusweite Meldung", age: time.Hour,
		source: f.bulletin, sourceType: model.SourceTypeRundmail,
		locations: []*model.Location{f.kl, f.ld}})

	news, err := Filtered(f.db, Params{Locations: []string{"kl", "ld"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Campusweite Meldung"}, titles(news))
}

func TestFilteredOrderingAndPagination(t *testing.T) {
	f := seedFixture(t)

	for i, title := range []string{"neueste", "mittlere", "älteste"} {
		f.addNews(t, newsSpec{title: title, age: time.Duration(i+1) * time.Hour,
			source: f.pressure, sourceType: model.SourceTypeInterneSeite})
	}

	news, err := Filtered(f.db, Params{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"neueste", "mittlere"}, titles(news))

	news, err = Filtered(f.db, Params{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"älteste"}, titles(news))
}

func TestFilteredSourceFacetBulletinTokens(t *testing.T) {
	f := seedFixture(t)

	f.addNews(t, newsSpec{title: "Einzelrundmail", age: 1 * time.Hour,
		source: f.bulletin, sourceType: model.SourceTypeRundmail})
	f.addNews(t, newsSpec{title: "Sammelbeitrag", age: 2 * time.Hour,
		source: f.bulletin, sourceType: model.SourceTypeSammelRundmail})
	f.addNews(t, newsSpec{title: "Stellenausschreibung", age: 3 * time.Hour,
		source: f.bulletin, sourceType: model.SourceTypeJobRundmail})
	f.addNews(t, newsSpec{title: "Pressebeitrag", age: 4 * time.Hour,
		source: f.pressure, sourceType: model.SourceTypeInterneSeite})

	// The bulk token covers the job section too.
	news, err := Filtered(f.db, Params{Sources: []string{TokenSammelRundmail}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sammelbeitrag", "Stellenausschreibung"}, titles(news))

	// Token and slug mix with OR.
	news, err = Filtered(f.db, Params{Sources: []string{TokenRundmail, "pressestelle"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Einzelrundmail", "Pressebeitrag"}, titles(news))
}

func TestForUserMapsPreferences(t *testing.T) {
	f := seedFixture(t)

	f.addNews(t, newsSpec{title: "Party in KL", age: 1 * time.Hour,
		source: f.bulletin, sourceType: model.SourceTypeRundmail,
		locations: []*model.Location{f.kl}})
	f.addNews(t, newsSpec{title: "Jobmesse in LD", age: 2 * time.Hour,
		source: f.bulletin, sourceType: model.SourceTypeRundmail,
		locations: []*model.Location{f.ld}})

	user := &model.User{Id: uuid.New().String(), Name: "erika"}
	require.NoError(t, f.db.Create(user).Error)
	require.NoError(t, f.db.Model(user).Association("Locations").Append(f.kl))

	news, err := ForUser(f.db, user.Id, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Party in KL"}, titles(news))

	_, err = ForUser(f.db, uuid.New().String(), 0, 0)
	assert.Error(t, err)
}
