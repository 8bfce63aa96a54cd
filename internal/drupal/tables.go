package drupal

import "github.com/JonMunkholm/fedora-migrate/internal/core"

// userTables skips pinned rows: the site already has its admin account.
func (s *Schema) userTables(b *core.Batch) []Table {
	users := Table{
		Name:    "users",
		Columns: []string{"uid", "uuid", "langcode"},
	}
	data := Table{
		Name: "users_field_data",
		Columns: []string{
			"uid", "langcode", "preferred_langcode", "name", "pass", "mail",
			"timezone", "status", "created", "access", "default_langcode",
		},
	}

	for _, r := range b.Rows {
		if r.Pinned {
			continue
		}
		u := r.Record
		preferred := u.Get("language")
		if preferred == "" {
			preferred = s.Langcode
		}
		status := 1
		if v, ok := core.ToBool(u.Get("status")); ok {
			status = core.BoolInt(v)
		}

		users.Rows = append(users.Rows, []any{r.ID, s.uuid(), s.Langcode})
		data.Rows = append(data.Rows, []any{
			r.ID, s.Langcode, preferred, u.Get("name"), optional(u.Get("pass")), optional(u.Get("mail")),
			optional(u.Get("timezone")), status, s.now(), 0, 1,
		})
	}
	return []Table{users, data}
}

func (s *Schema) fileTables(b *core.Batch) []Table {
	managed := Table{
		Name: "file_managed",
		Columns: []string{
			"fid", "uuid", "langcode", "uid", "filename", "uri", "filemime",
			"filesize", "status", "created", "changed",
		},
	}
	hashes := Table{
		Name:    "filehash",
		Columns: []string{"fid", "sha1"},
	}

	for _, r := range b.Rows {
		f := r.Record
		managed.Rows = append(managed.Rows, []any{
			r.ID, s.uuid(), s.Langcode, r.Ref(core.EntityUser), f.Get("name"), f.Get("path"),
			optional(f.Get("mime_type")), optionalInt(f.Get("size")), 1,
			s.timestamp(f, "created_date"), s.now(),
		})
		hashes.Rows = append(hashes.Rows, []any{r.ID, optional(f.Get("sha1"))})
	}
	return []Table{managed, hashes}
}

// mediaTables gives every media item vid == mid: media rows are the first
// rows of the media revision input, so revision zero gets the same id.
func (s *Schema) mediaTables(b *core.Batch) []Table {
	media := Table{
		Name:    "media",
		Columns: []string{"mid", "vid", "bundle", "uuid", "langcode"},
	}
	data := Table{
		Name: "media_field_data",
		Columns: []string{
			"mid", "vid", "bundle", "langcode", "status", "uid", "name",
			"created", "changed", "default_langcode",
		},
	}

	for _, r := range b.Rows {
		m := r.Record
		created := s.timestamp(m, "created_date")
		media.Rows = append(media.Rows, []any{r.ID, r.ID, m.Get("bundle"), s.uuid(), s.Langcode})
		data.Rows = append(data.Rows, []any{
			r.ID, r.ID, m.Get("bundle"), s.Langcode, 1, r.Ref(core.EntityUser), m.Get("name"),
			created, created, 1,
		})
	}
	return []Table{media, data}
}

func (s *Schema) mediaRevisionTables(b *core.Batch) []Table {
	revisions := Table{
		Name: "media_revision",
		Columns: []string{
			"mid", "vid", "langcode", "revision_user", "revision_created", "revision_default",
		},
	}
	data := Table{
		Name: "media_field_revision",
		Columns: []string{
			"mid", "vid", "langcode", "status", "uid", "name",
			"created", "changed", "default_langcode",
		},
	}

	for _, r := range b.Rows {
		m := r.Record
		mid := r.Ref(core.EntityMedia)
		uid := r.Ref(core.EntityUser)
		created := s.timestamp(m, "created_date")
		revisions.Rows = append(revisions.Rows, []any{mid, r.ID, s.Langcode, uid, created, 1})
		data.Rows = append(data.Rows, []any{
			mid, r.ID, s.Langcode, 1, uid, m.Get("name"), created, created, 1,
		})
	}
	return []Table{revisions, data}
}

func (s *Schema) nodeTables(b *core.Batch) []Table {
	node := Table{
		Name:    "node",
		Columns: []string{"nid", "vid", "type", "uuid", "langcode"},
	}
	data := Table{
		Name: "node_field_data",
		Columns: []string{
			"nid", "vid", "type", "langcode", "status", "uid", "title",
			"created", "changed", "promote", "sticky", "default_langcode",
		},
	}
	revision := Table{
		Name: "node_field_revision",
		Columns: []string{
			"nid", "vid", "langcode", "status", "uid", "title",
			"created", "changed", "promote", "sticky", "default_langcode",
		},
	}

	for _, r := range b.Rows {
		n := r.Record
		uid := r.Ref(core.EntityUser)
		status := publishedState(n.Get("state"))
		created := s.timestamp(n, "created_date")
		changed := s.timestamp(n, "modified_date")

		node.Rows = append(node.Rows, []any{r.ID, r.ID, s.NodeType, s.uuid(), s.Langcode})
		data.Rows = append(data.Rows, []any{
			r.ID, r.ID, s.NodeType, s.Langcode, status, uid, n.Get("label"),
			created, changed, 1, 0, 1,
		})
		revision.Rows = append(revision.Rows, []any{
			r.ID, r.ID, s.Langcode, status, uid, n.Get("label"),
			created, changed, 1, 0, 1,
		})
	}
	return []Table{node, data, revision}
}
