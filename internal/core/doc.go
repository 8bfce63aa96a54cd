// Package core provides the identifier assignment and cross-reference engine
// for Fedora export migrations.
//
// This package is the heart of the migrator. It knows nothing about CSV files
// or SQL; loaders and emitters plug in through the [Loader] and [Emitter]
// interfaces, so the same engine backs the SQL script, direct database loads
// and dry runs.
//
// # Entity Definitions
//
// The five entity types are registered at init time using [Register] (see the
// entities subpackage). Each [EntityDefinition] declares its inputs, field
// specs, key fields, ID offset, pin rule and references:
//
//	core.Register(core.EntityDefinition{
//	    Type:       core.EntityMedia,
//	    Order:      30,
//	    Inputs:     []string{"media.csv"},
//	    KeyFields:  []string{"pid", "dsid"},
//	    References: []core.Reference{{Target: core.EntityUser, Fields: []string{"user"}}},
//	})
//
// # Source Keys
//
// [SourceKey] hashes the serialized source identifiers with SHA-256. The result
// is the source_ids_hash column of Drupal's migrate map tables, so keys must
// stay byte-for-byte stable across runs.
//
// # Destination IDs
//
// [Migration.Run] processes definitions in [EntityDefinition.Order]. Each pass
// assigns offset+position IDs in first-seen order and commits one slice of the
// [IDRegistry]; later passes resolve their references against it. A reference
// that cannot be resolved aborts the run with [ErrReferenceNotFound].
//
// # Error Handling
//
// Failures carry a kind ([ErrInputUnavailable], [ErrMalformedRow],
// [ErrReferenceNotFound], [ErrOutputWrite]) plus entity, file and line where
// known. [MapError] turns any of them into a coded [UserMessage].
package core
