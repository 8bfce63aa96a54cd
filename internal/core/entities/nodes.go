package entities

import "github.com/JonMunkholm/fedora-migrate/internal/core"

func init() {
	registerNodes()
}

func registerNodes() {
	core.Register(core.EntityDefinition{
		Type:   core.EntityNode,
		Label:  "Nodes",
		Order:  orderNodes,
		Inputs: []string{NodesCSV},
		FieldSpecs: []core.FieldSpec{
			{Name: "pid", Aliases: []string{"primary_id"}, Type: core.FieldText, Required: true},
			{Name: "created_date", Type: core.FieldTimestamp},
			{Name: "label", Type: core.FieldText},
			{Name: "weight", Type: core.FieldNumeric},
			{Name: "model", Type: core.FieldText},
			{Name: "modified_date", Type: core.FieldTimestamp},
			{Name: "state", Type: core.FieldText},
			{Name: "user", Type: core.FieldText, Required: true},
			{Name: "display_hint", Type: core.FieldText},
			{Name: "parents", Type: core.FieldText},
		},
		KeyFields: []string{"pid"},
		References: []core.Reference{
			{Target: core.EntityUser, Fields: []string{"user"}},
		},
	})
}
