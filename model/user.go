package model

import "time"

/*

User carries the preference sets the personalized retrieval consumes.
Account management itself lives outside this service, the pipeline only
reads the relations below.

Locations / ContentCategories / AudienceCategories / Sources: multi-valued
	preference sets, "many-to-many" relations
IncludeRundmail / IncludeSammelRundmail: whether the personalized feed also
	includes single / bulk bulletins
*/
type User struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time

	Name string

	Locations          []*Location         `gorm:"many2many:user_locations;"`
	ContentCategories  []*ContentCategory  `gorm:"many2many:user_content_categories;"`
	AudienceCategories []*AudienceCategory `gorm:"many2many:user_audience_categories;"`
	Sources            []*Source           `gorm:"many2many:user_sources;"`

	IncludeRundmail       bool
	IncludeSammelRundmail bool
}
