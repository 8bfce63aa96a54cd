package entities

import "github.com/JonMunkholm/fedora-migrate/internal/core"

func init() {
	registerMedia()
	registerMediaRevisions()
}

// mediaFieldSpecs is shared by media.csv and media_revisions.csv.
func mediaFieldSpecs() []core.FieldSpec {
	return []core.FieldSpec{
		{Name: "pid", Aliases: []string{"primary_id"}, Type: core.FieldText, Required: true},
		{Name: "dsid", Aliases: []string{"sub_id"}, Type: core.FieldText, Required: true},
		{Name: "version", Type: core.FieldText, Required: true},
		{Name: "bundle", Type: core.FieldText},
		{Name: "created_date", Type: core.FieldTimestamp},
		{Name: "file_size", Aliases: []string{"size"}, Type: core.FieldNumeric},
		{Name: "label", Type: core.FieldText},
		{Name: "mime_type", Type: core.FieldText},
		{Name: "name", Type: core.FieldText},
		{Name: "user", Type: core.FieldText, Required: true},
	}
}

func registerMedia() {
	core.Register(core.EntityDefinition{
		Type:       core.EntityMedia,
		Label:      "Media",
		Order:      orderMedia,
		Inputs:     []string{MediaCSV},
		FieldSpecs: mediaFieldSpecs(),
		KeyFields:  []string{"pid", "dsid"},
		References: []core.Reference{
			{Target: core.EntityUser, Fields: []string{"user"}},
		},
	})
}

// registerMediaRevisions reads media.csv ahead of media_revisions.csv. Every
// media item is revision zero of itself, and reading it first gives it the
// same vid as its mid. Keep media.csv first.
func registerMediaRevisions() {
	core.Register(core.EntityDefinition{
		Type:       core.EntityMediaRevision,
		Label:      "Media Revisions",
		Order:      orderMediaRevisions,
		Inputs:     []string{MediaCSV, MediaRevisionsCSV},
		FieldSpecs: mediaFieldSpecs(),
		KeyFields:  []string{"pid", "dsid", "version"},
		References: []core.Reference{
			{Target: core.EntityUser, Fields: []string{"user"}},
			{Target: core.EntityMedia, Fields: []string{"pid", "dsid"}},
		},
	})
}
