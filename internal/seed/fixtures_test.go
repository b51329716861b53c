package seed

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bolsas/internal/model"
)

const sampleFixture = `
name: Auxílio Moradia 2026.1
description: Apoio para estudantes em situação de vulnerabilidade
academicPeriod: "2026.1"
enrollmentStart: 2026-02-01T00:00:00Z
enrollmentEnd: 2026-02-28T23:59:59Z
maxApproved: 20
requiredDocuments:
  - type: Comprovante de Residência
    mandatory: true
questions:
  - id: Q1
    text: Renda familiar per capita
    subtype: number
    required: true
    scoreBands:
      - {min: 0, max: 700, weight: 1}
      - {min: 700.01, max: 1500, weight: 0.5}
  - id: Q2
    text: Mora com a família?
    subtype: yes_no
    yesWeight: 0.2
    noWeight: 0.8
formula: Q1 + Q2
`

func TestLoadAnnouncements(t *testing.T) {
	fsys := fstest.MapFS{
		"editais/b.yaml":   {Data: []byte(sampleFixture)},
		"editais/a.yml":    {Data: []byte("name: Outro\nformula: Q1\n")},
		"editais/notes.md": {Data: []byte("# ignored")},
	}

	fixtures, err := LoadAnnouncements(fsys, "")
	require.NoError(t, err)
	require.Len(t, fixtures, 2)
	assert.Equal(t, "editais/a.yml", fixtures[0].Path)

	a := fixtures[1].Announcement
	assert.Equal(t, "Auxílio Moradia 2026.1", a.Name)
	assert.Equal(t, "2026.1", a.AcademicPeriod)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), a.EnrollmentStart.UTC())
	require.NotNil(t, a.MaxApproved)
	assert.Equal(t, 20, *a.MaxApproved)
	require.Len(t, a.Questions, 2)
	assert.Equal(t, "Q1", a.Questions[0].Identifier)
	assert.Equal(t, model.SubtypeNumber, a.Questions[0].Subtype)
	assert.Len(t, a.Questions[0].ScoreBands, 2)
	assert.Equal(t, 0.8, a.Questions[1].NoWeight)
	assert.True(t, a.RequiredDocuments[0].Mandatory)
}

func TestLoadAnnouncementsErrors(t *testing.T) {
	t.Run("invalid yaml", func(t *testing.T) {
		fsys := fstest.MapFS{"bad.yaml": {Data: []byte("name: [unclosed")}}
		_, err := LoadAnnouncements(fsys, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.yaml")
	})

	t.Run("empty file", func(t *testing.T) {
		fsys := fstest.MapFS{"empty.yaml": {Data: []byte("")}}
		_, err := LoadAnnouncements(fsys, "")
		assert.Error(t, err)
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := LoadAnnouncements(fstest.MapFS{}, "[")
		assert.Error(t, err)
	})

	t.Run("no matches", func(t *testing.T) {
		fixtures, err := LoadAnnouncements(fstest.MapFS{}, "")
		require.NoError(t, err)
		assert.Empty(t, fixtures)
	})
}
