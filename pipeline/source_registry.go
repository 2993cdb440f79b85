package pipeline

import (
	"strings"
	"time"

	"github.com/campushub/campusnews/model"
	"github.com/campushub/campusnews/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrUnknownSourceType is returned when an entry carries a tag outside the
// closed source type set. The entry is skipped, never persisted.
var ErrUnknownSourceType = errors.New("unknown source type")

// ResolveSource looks up or creates the typed source record for an entry.
// Creation is an atomic get-or-create keyed by (variant, name); a name can
// never change variant once assigned.
func ResolveSource(db *gorm.DB, entry *model.RawEntry) (*model.Source, error) {
	name := entry.SourceName
	if name == "" && model.IsBulletinType(entry.SourceType) {
		// Direct submissions may omit the name; bulletin sources are named
		// after their issue date, matching what the archive collector sends.
		name = bulletinSourceName(entry.SourceType, entry.CreationTimestamp.Time)
	}

	switch entry.SourceType {
	case model.SourceTypeRundmail:
		return getOrCreateSource(db, entry.SourceType, name, entry.Link, entry)
	case model.SourceTypeSammelRundmail, model.SourceTypeJobRundmail:
		// Bulk issues are linked by in-page anchor, the source itself points
		// at the issue page.
		return getOrCreateSource(db, entry.SourceType, name, stripAnchor(entry.Link), entry)
	case model.SourceTypeFachbereich, model.SourceTypeInterneSeite,
		model.SourceTypeExterneSeite, model.SourceTypeMailingliste,
		model.SourceTypeTrustedAccount:
		return getOrCreateSource(db, entry.SourceType, name, entry.Link, entry)
	default:
		return nil, errors.Wrapf(ErrUnknownSourceType, "%q", entry.SourceType)
	}
}

// bulletinSourceName names a bulletin source after its issue date. Both bulk
// variants share one source per issue, the job section is only a different
// tag on the news itself.
func bulletinSourceName(sourceType string, timestamp time.Time) string {
	tag := model.SourceTypeRundmail
	if sourceType != model.SourceTypeRundmail {
		tag = model.SourceTypeSammelRundmail
	}
	return tag + " vom " + timestamp.In(model.Timezone()).Format("02.01.2006")
}

func getOrCreateSource(db *gorm.DB, variant string, name string, url string, entry *model.RawEntry) (*model.Source, error) {
	attrs := model.Source{
		Id:   uuid.New().String(),
		Slug: utils.Slugify(name),
		Url:  url,
	}
	if model.IsBulletinType(variant) && entry.RundmailId != "" {
		rundmailId := entry.RundmailId
		attrs.RundmailId = &rundmailId
	}
	if variant == model.SourceTypeTrustedAccount && entry.TrustedUserId != "" {
		userId := entry.TrustedUserId
		attrs.UserID = &userId
	}

	var source model.Source
	res := db.Where(model.Source{Variant: variant, Name: name}).
		Attrs(attrs).
		FirstOrCreate(&source)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "fail to resolve source %q", name)
	}
	return &source, nil
}

func stripAnchor(link string) string {
	if idx := strings.Index(link, "#"); idx >= 0 {
		return link[:idx]
	}
	return link
}
