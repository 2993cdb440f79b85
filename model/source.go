package model

import (
	"time"
)

// Wire tags for the closed set of source types. These are the literal values
// collectors put into RawEntry.SourceType and are also persisted on News.
const (
	SourceTypeRundmail       = "Rundmail"
	SourceTypeSammelRundmail = "Sammel-Rundmail"
	SourceTypeJobRundmail    = "Job-Rundmail"
	SourceTypeFachbereich    = "Fachbereichsseite"
	SourceTypeInterneSeite   = "Interne Seite"
	SourceTypeExterneSeite   = "Externe Seite"
	SourceTypeMailingliste   = "Mailingliste"
	SourceTypeTrustedAccount = "Vertrauenswürdiger Account"
)

// IsBulletinType returns true iff the tag denotes a bulletin variant
// (single or bulk). Those are filtered on News.SourceType directly.
func IsBulletinType(sourceType string) bool {
	return sourceType == SourceTypeRundmail ||
		sourceType == SourceTypeSammelRundmail ||
		sourceType == SourceTypeJobRundmail
}

/*

Source is the persisted, typed origin of news items.

Example: the "Sammel-Rundmail vom 01.10.2025" bulk bulletin, the physics
department page, a mailing list, a trusted user account.

Id: primary key
CreatedAt: time when entity is created

Variant: one of the SourceType* tags, discriminates which auxiliary fields
	are meaningful. A name can never change variant once assigned, enforced
	by the composite unique index with Name.
Name: display name, unique within its variant
Slug: url-safe identifier used by the retrieval facets
Url: canonical url of the source (anchor-stripped for bulk bulletins)

RundmailId: stable id of the mailing issue, only set for bulletin variants
UserID: issuing account, only set for trusted account sources
*/
type Source struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time

	Variant string `gorm:"uniqueIndex:idx_source_variant_name;not null"`
	Name    string `gorm:"uniqueIndex:idx_source_variant_name;not null"`
	Slug    string `gorm:"index"`
	Url     string

	RundmailId *string
	UserID     *string
	User       *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
