package pipeline

import (
	"testing"
	"time"

	"github.com/campushub/campusnews/model"
	"github.com/campushub/campusnews/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSourceRejectsUnknownType(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	_, err := ResolveSource(db, &model.RawEntry{SourceType: "Newsletter", SourceName: "x"})
	assert.ErrorIs(t, err, ErrUnknownSourceType)
}

func TestResolveSourceIsStablePerVariantAndName(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	entry := &model.RawEntry{
		Link:              "https://rundmail.campushub.de/archiv/detail?id=4711#msg-1",
		Title:             "Eintrag",
		CreationTimestamp: model.WireTime{Time: time.Now()},
		SourceType:        model.SourceTypeSammelRundmail,
		SourceName:        "Sammel-Rundmail vom 05.02.2024",
		RundmailId:        "4711",
	}

	first, err := ResolveSource(db, entry)
	require.NoError(t, err)
	// Bulk sources point at the issue page, not the in-page anchor.
	assert.Equal(t, "https://rundmail.campushub.de/archiv/detail?id=4711", first.Url)
	require.NotNil(t, first.RundmailId)
	assert.Equal(t, "4711", *first.RundmailId)
	assert.Equal(t, "sammel-rundmail-vom-05-02-2024", first.Slug)

	second, err := ResolveSource(db, entry)
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)

	var count int64
	require.NoError(t, db.Model(&model.Source{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestResolveSourceDerivesBulletinNameFromIssueDate(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	// Direct submissions carry no source_name, the registry names the
	// bulletin source after the issue date.
	entry := &model.RawEntry{
		Title:             "Bibliothek öffnet länger",
		CreationTimestamp: model.WireTime{Time: time.Date(2025, 10, 1, 9, 0, 0, 0, model.Timezone())},
		SourceType:        model.SourceTypeSammelRundmail,
		RundmailId:        "12345",
	}

	source, err := ResolveSource(db, entry)
	require.NoError(t, err)
	assert.Equal(t, "Sammel-Rundmail vom 01.10.2025", source.Name)
	assert.Equal(t, model.SourceTypeSammelRundmail, source.Variant)
	require.NotNil(t, source.RundmailId)
	assert.Equal(t, "12345", *source.RundmailId)

	// The job section of the same issue shares the issue-date name under its
	// own variant; a single issue gets the single tag.
	jobEntry := &model.RawEntry{
		Title:             "HiWi gesucht",
		CreationTimestamp: entry.CreationTimestamp,
		SourceType:        model.SourceTypeJobRundmail,
		RundmailId:        "12345",
	}
	jobSource, err := ResolveSource(db, jobEntry)
	require.NoError(t, err)
	assert.Equal(t, "Sammel-Rundmail vom 01.10.2025", jobSource.Name)

	singleEntry := &model.RawEntry{
		Title:             "Stromabschaltung",
		CreationTimestamp: entry.CreationTimestamp,
		SourceType:        model.SourceTypeRundmail,
	}
	singleSource, err := ResolveSource(db, singleEntry)
	require.NoError(t, err)
	assert.Equal(t, "Rundmail vom 01.10.2025", singleSource.Name)
}
