package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pinName(name string, id int) PinFunc {
	return func(ids []string) (int, bool) {
		if len(ids) == 1 && ids[0] == name {
			return id, true
		}
		return 0, false
	}
}

var (
	userDef = EntityDefinition{
		Type:       EntityUser,
		Label:      "Users",
		Order:      10,
		Inputs:     []string{"users.csv"},
		FieldSpecs: []FieldSpec{{Name: "name", Required: true}, {Name: "mail"}},
		KeyFields:  []string{"name"},
		Offset:     2,
		Pin:        pinName("admin", 1),
	}
	fileDef = EntityDefinition{
		Type:       EntityFile,
		Order:      20,
		Inputs:     []string{"files.csv"},
		FieldSpecs: []FieldSpec{{Name: "pid"}, {Name: "dsid"}, {Name: "version"}, {Name: "user"}},
		KeyFields:  []string{"pid", "dsid", "version"},
		References: []Reference{{Target: EntityUser, Fields: []string{"user"}}},
	}
	mediaDef = EntityDefinition{
		Type:       EntityMedia,
		Order:      30,
		Inputs:     []string{"media.csv"},
		FieldSpecs: []FieldSpec{{Name: "pid"}, {Name: "dsid"}, {Name: "version"}, {Name: "user"}},
		KeyFields:  []string{"pid", "dsid"},
		References: []Reference{{Target: EntityUser, Fields: []string{"user"}}},
	}
	revisionDef = EntityDefinition{
		Type:       EntityMediaRevision,
		Order:      40,
		Inputs:     []string{"media.csv", "media_revisions.csv"},
		FieldSpecs: mediaDef.FieldSpecs,
		KeyFields:  []string{"pid", "dsid", "version"},
		References: []Reference{
			{Target: EntityUser, Fields: []string{"user"}},
			{Target: EntityMedia, Fields: []string{"pid", "dsid"}},
		},
	}
	testDefs = []EntityDefinition{userDef, fileDef, mediaDef, revisionDef}
)

func users(names ...string) []Record {
	recs := make([]Record, len(names))
	for i, n := range names {
		recs[i] = NewRecord("users.csv", i+2, map[string]string{"name": n, "mail": n + "@example.org"})
	}
	return recs
}

func mediaRec(source string, line int, pid, dsid, version, user string) Record {
	return NewRecord(source, line, map[string]string{"pid": pid, "dsid": dsid, "version": version, "user": user})
}

func ids(b *Batch) []int {
	out := make([]int, len(b.Rows))
	for i, r := range b.Rows {
		out[i] = r.ID
	}
	return out
}

func TestProcessUsersOffsetAndAdmin(t *testing.T) {
	p := NewProcessor(NewIDRegistry(), testDefs)

	b, err := p.Process(userDef, users("alice", "admin", "bob"))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1, 3}, ids(b))
	assert.True(t, b.Rows[1].Pinned)
	assert.False(t, b.Rows[0].Pinned)
	assert.Equal(t, 3, b.Read)

	require.Len(t, b.Map, 3)
	assert.Equal(t, MapEntry{SourceKey: SourceKey("admin"), SourceIDs: []string{"admin"}, DestinationID: 1}, b.Map[1])
}

func TestProcessAdminFirst(t *testing.T) {
	p := NewProcessor(NewIDRegistry(), testDefs)

	b, err := p.Process(userDef, users("admin", "alice"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(b))
}

func TestProcessDuplicatesLastWriteFirstPosition(t *testing.T) {
	p := NewProcessor(NewIDRegistry(), testDefs)
	recs := []Record{
		NewRecord("users.csv", 2, map[string]string{"name": "alice", "mail": "old@example.org"}),
		NewRecord("users.csv", 3, map[string]string{"name": "bob"}),
		NewRecord("users.csv", 4, map[string]string{"name": "alice", "mail": "new@example.org"}),
	}

	b, err := p.Process(userDef, recs)
	require.NoError(t, err)

	require.Len(t, b.Rows, 2)
	assert.Equal(t, []int{2, 3}, ids(b))
	assert.Equal(t, "new@example.org", b.Rows[0].Record.Get("mail"))
	assert.Equal(t, 4, b.Rows[0].Record.Line)
	assert.Equal(t, 3, b.Read)
}

func TestProcessIDsAreDenseFromOffset(t *testing.T) {
	p := NewProcessor(NewIDRegistry(), testDefs)
	var recs []Record
	for i, v := range []string{"OBJ.0", "OBJ.1", "OBJ.0", "OBJ.2"} {
		recs = append(recs, mediaRec("files.csv", i+2, "vcu:1", "OBJ", v, "admin"))
	}

	b, err := p.Process(fileDef, recs)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, ids(b))
}

func TestProcessResolvesReferences(t *testing.T) {
	reg := NewIDRegistry()
	p := NewProcessor(reg, testDefs)

	_, err := p.Process(userDef, users("alice", "bob"))
	require.NoError(t, err)

	b, err := p.Process(fileDef, []Record{
		mediaRec("files.csv", 2, "vcu:1", "OBJ", "OBJ.0", "bob"),
		mediaRec("files.csv", 3, "vcu:2", "OBJ", "OBJ.0", "admin"),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, b.Rows[0].Ref(EntityUser))
	assert.Equal(t, 1, b.Rows[1].Ref(EntityUser), "admin resolves through the pin rule")
	assert.True(t, reg.Populated(EntityFile))
}

func TestProcessMissingReference(t *testing.T) {
	p := NewProcessor(NewIDRegistry(), testDefs)
	_, err := p.Process(userDef, users("alice"))
	require.NoError(t, err)

	_, err = p.Process(fileDef, []Record{
		mediaRec("files.csv", 2, "vcu:1", "OBJ", "OBJ.0", "alice"),
		mediaRec("files.csv", 3, "vcu:2", "OBJ", "OBJ.0", "carol"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReferenceNotFound)

	ce, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, EntityFile, ce.Entity)
	assert.Equal(t, "files.csv", ce.Source)
	assert.Equal(t, 3, ce.Line)
	assert.Equal(t, "user", ce.Field)
	assert.ErrorContains(t, err, `"carol"`)
}

func TestProcessReferenceBeforeTargetProcessed(t *testing.T) {
	p := NewProcessor(NewIDRegistry(), testDefs)

	_, err := p.Process(mediaDef, []Record{mediaRec("media.csv", 2, "vcu:1", "OBJ", "OBJ.0", "alice")})
	assert.ErrorIs(t, err, ErrReferenceNotFound)
	assert.ErrorContains(t, err, "not been assigned")
}

func TestProcessOutOfOrderLeavesRegistryUntouched(t *testing.T) {
	reg := NewIDRegistry()
	p := NewProcessor(reg, testDefs)

	_, err := p.Process(fileDef, nil)
	assert.ErrorIs(t, err, ErrReferenceNotFound)
	assert.False(t, reg.Populated(EntityFile))
}

func TestProcessMediaRevisionsReferenceMedia(t *testing.T) {
	p := NewProcessor(NewIDRegistry(), testDefs)
	_, err := p.Process(userDef, users("alice"))
	require.NoError(t, err)

	media := []Record{
		mediaRec("media.csv", 2, "vcu:1", "OBJ", "OBJ.2", "alice"),
		mediaRec("media.csv", 3, "vcu:2", "TN", "TN.0", "alice"),
	}
	mb, err := p.Process(mediaDef, media)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, ids(mb))

	revisions := append(append([]Record{}, media...),
		mediaRec("media_revisions.csv", 2, "vcu:1", "OBJ", "OBJ.0", "alice"),
		mediaRec("media_revisions.csv", 3, "vcu:1", "OBJ", "OBJ.1", "alice"),
	)
	rb, err := p.Process(revisionDef, revisions)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3}, ids(rb), "media rows take the first vids")
	for i, want := range []int{0, 1, 0, 0} {
		assert.Equal(t, want, rb.Rows[i].Ref(EntityMedia), "row %d", i)
	}
	assert.Equal(t, 2, rb.Rows[0].Ref(EntityUser))
}

func TestProcessSameEntityTwiceFails(t *testing.T) {
	p := NewProcessor(NewIDRegistry(), testDefs)
	_, err := p.Process(userDef, users("alice"))
	require.NoError(t, err)

	_, err = p.Process(userDef, users("alice"))
	assert.Error(t, err)
}

func TestProcessIsDeterministic(t *testing.T) {
	run := func() []MapEntry {
		p := NewProcessor(NewIDRegistry(), testDefs)
		b, err := p.Process(userDef, users("zed", "admin", "amy", "zed", "bob"))
		require.NoError(t, err)
		return b.Map
	}
	assert.Equal(t, run(), run())
}

func TestProcessEmptyInput(t *testing.T) {
	reg := NewIDRegistry()
	p := NewProcessor(reg, testDefs)

	b, err := p.Process(userDef, nil)
	require.NoError(t, err)
	assert.Empty(t, b.Rows)
	assert.Empty(t, b.Map)
	assert.True(t, reg.Populated(EntityUser))
}

func TestResolve(t *testing.T) {
	p := NewProcessor(NewIDRegistry(), testDefs)
	_, err := p.Process(userDef, users("alice"))
	require.NoError(t, err)

	id, err := p.Resolve(EntityUser, []string{"alice"})
	require.NoError(t, err)
	assert.Equal(t, 2, id)

	id, err = p.Resolve(EntityUser, []string{"admin"})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = p.Resolve(EntityUser, []string{"Admin"})
	assert.ErrorIs(t, err, ErrReferenceNotFound, "the pin rule is case sensitive")
}
