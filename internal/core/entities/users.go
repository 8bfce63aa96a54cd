package entities

import "github.com/JonMunkholm/fedora-migrate/internal/core"

// AdminName is the account Drupal creates on install.
const AdminName = "admin"

// AdminUID is the uid Drupal gives AdminName. uid 0 is the anonymous user.
const AdminUID = 1

// userOffset reserves uids 0 and 1 for the accounts the site already has.
const userOffset = 2

func init() {
	registerUsers()
}

// pinAdmin maps the literal user name "admin" to uid 1. It is consulted before
// hashing, so references to admin resolve even though the admin row is never
// migrated. Do not generalise: any other name must go through the registry.
func pinAdmin(ids []string) (int, bool) {
	if len(ids) == 1 && ids[0] == AdminName {
		return AdminUID, true
	}
	return 0, false
}

func registerUsers() {
	core.Register(core.EntityDefinition{
		Type:   core.EntityUser,
		Label:  "Users",
		Order:  orderUsers,
		Inputs: []string{UsersCSV},
		FieldSpecs: []core.FieldSpec{
			{Name: "name", Type: core.FieldText, Required: true},
			{Name: "pass", Aliases: []string{"password"}, Type: core.FieldText},
			{Name: "mail", Type: core.FieldText},
			{Name: "status", Type: core.FieldBool},
			{Name: "timezone", Type: core.FieldText},
			{Name: "language", Type: core.FieldText},
		},
		KeyFields: []string{"name"},
		Offset:    userOffset,
		Pin:       pinAdmin,
	})
}
