package entities

import "github.com/JonMunkholm/fedora-migrate/internal/core"

func init() {
	registerFiles()
}

func registerFiles() {
	core.Register(core.EntityDefinition{
		Type:   core.EntityFile,
		Label:  "Files",
		Order:  orderFiles,
		Inputs: []string{FilesCSV},
		FieldSpecs: []core.FieldSpec{
			{Name: "pid", Aliases: []string{"primary_id"}, Type: core.FieldText, Required: true},
			{Name: "dsid", Aliases: []string{"sub_id"}, Type: core.FieldText, Required: true},
			{Name: "version", Type: core.FieldText, Required: true},
			{Name: "created_date", Type: core.FieldTimestamp},
			{Name: "mime_type", Type: core.FieldText},
			{Name: "name", Type: core.FieldText},
			{Name: "path", Type: core.FieldText},
			{Name: "user", Type: core.FieldText, Required: true},
			{Name: "sha1", Aliases: []string{"content_hash"}, Type: core.FieldText},
			{Name: "size", Type: core.FieldNumeric},
		},
		KeyFields: []string{"pid", "dsid", "version"},
		References: []core.Reference{
			{Target: core.EntityUser, Fields: []string{"user"}},
		},
	})
}
