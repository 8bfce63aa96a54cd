// Package entities registers the five Fedora entity definitions with the core
// registry. Import this package to ensure all entities are registered.
package entities

// Processing order. Files, Media and Nodes reference Users; Media Revisions
// reference Media.
const (
	orderUsers          = 10
	orderFiles          = 20
	orderMedia          = 30
	orderMediaRevisions = 40
	orderNodes          = 50
)

// Input file names written by the Fedora CSV export.
const (
	UsersCSV          = "users.csv"
	FilesCSV          = "files.csv"
	MediaCSV          = "media.csv"
	MediaRevisionsCSV = "media_revisions.csv"
	NodesCSV          = "nodes.csv"
)
