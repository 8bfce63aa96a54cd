package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fedora-migrate/internal/core"
)

var testDef = core.EntityDefinition{
	Type:   core.EntityFile,
	Inputs: []string{"files.csv"},
	FieldSpecs: []core.FieldSpec{
		{Name: "pid", Aliases: []string{"primary_id"}, Required: true},
		{Name: "dsid", Required: true},
		{Name: "created_date", Type: core.FieldTimestamp},
		{Name: "size", Type: core.FieldNumeric},
		{Name: "user", Required: true},
	},
	KeyFields: []string{"pid", "dsid"},
}

func read(t *testing.T, body string) ([]core.Record, error) {
	t.Helper()
	return ReadRecords(context.Background(), testDef, "files.csv", strings.NewReader(body))
}

func TestReadRecords(t *testing.T) {
	recs, err := read(t, "\xEF\xBB\xBFprimary_id,DSID,created_date,size,user,extra\n"+
		"vcu:1,OBJ,2019-01-01,\"1,024\",alice,ignored\n"+
		"vcu:2,TN,,,bob,\n")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "vcu:1", recs[0].Get("pid"), "aliases resolve to the field name")
	assert.Equal(t, "1,024", recs[0].Get("size"))
	assert.Equal(t, 2, recs[0].Line)
	assert.Equal(t, 3, recs[1].Line)
	assert.Equal(t, "files.csv", recs[1].Source)
	assert.Empty(t, recs[1].Get("created_date"))
	assert.Empty(t, recs[0].Get("extra"), "unspecified columns are dropped")
}

func TestReadRecordsLineNumbersSkipQuotedNewlines(t *testing.T) {
	recs, err := read(t, "pid,dsid,created_date,size,user\n"+
		"vcu:1,\"two\nlines\",,,alice\n"+
		"vcu:2,OBJ,,,alice\n")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 4, recs[1].Line)
}

func TestReadRecordsErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		line  int
		field string
		msg   string
	}{
		{
			name: "empty file",
			body: "",
			line: 1,
			msg:  "missing header row",
		},
		{
			name: "missing column",
			body: "pid,dsid,size,user\nvcu:1,OBJ,1,alice\n",
			line: 1,
			msg:  "missing required columns: created_date",
		},
		{
			name: "short row",
			body: "pid,dsid,created_date,size,user\nvcu:1,OBJ,,,alice\nvcu:2,OBJ\n",
			line: 3,
			msg:  "wrong number of fields",
		},
		{
			name:  "empty required field",
			body:  "pid,dsid,created_date,size,user\nvcu:1,OBJ,,,\n",
			line:  2,
			field: "user",
			msg:   "required field is empty",
		},
		{
			name:  "bad timestamp",
			body:  "pid,dsid,created_date,size,user\nvcu:1,OBJ,yesterday,,alice\n",
			line:  2,
			field: "created_date",
			msg:   "invalid timestamp",
		},
		{
			name:  "bad number",
			body:  "pid,dsid,created_date,size,user\nvcu:1,OBJ,,big,alice\n",
			line:  2,
			field: "size",
			msg:   "invalid numeric",
		},
		{
			name:  "invalid utf-8 in key",
			body:  "pid,dsid,created_date,size,user\nvcu:1,OBJ,,,alice\nvcu:\x80,OBJ,,,alice\n",
			line:  3,
			field: "pid",
			msg:   "invalid UTF-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := read(t, tt.body)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrMalformedRow)

			ce, ok := core.AsError(err)
			require.True(t, ok)
			assert.Equal(t, core.EntityFile, ce.Entity)
			assert.Equal(t, "files.csv", ce.Source)
			assert.Equal(t, tt.line, ce.Line)
			assert.Equal(t, tt.field, ce.Field)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestReadRecordsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadRecords(ctx, testDef, "files.csv", strings.NewReader("pid,dsid,created_date,size,user\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSVLoaderMissingFile(t *testing.T) {
	l := NewCSVLoader(t.TempDir())

	_, err := l.Load(context.Background(), testDef, "files.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInputUnavailable)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCSVLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	body := "pid,dsid,created_date,size,user\nvcu:1,OBJ,1546300800,10,alice\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "files.csv"), []byte(body), 0o644))

	recs, err := NewCSVLoader(dir).Load(context.Background(), testDef, "files.csv")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1546300800", recs[0].Get("created_date"))
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.csv"), []byte("name\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nodes.csv"), 0o755))

	err := ValidateDir(dir, []string{"users.csv", "files.csv", "media.csv", "nodes.csv"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInputUnavailable)
	assert.ErrorContains(t, err, "files.csv")
	assert.ErrorContains(t, err, "media.csv")
	assert.ErrorContains(t, err, "not a regular file")
	assert.NotContains(t, err.Error(), "users.csv")

	assert.NoError(t, ValidateDir(dir, []string{"users.csv"}))
}

func TestValidateDirNotADirectory(t *testing.T) {
	err := ValidateDir(filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, core.ErrInputUnavailable)
}

var usersDef = core.EntityDefinition{
	Type:       core.EntityUser,
	Inputs:     []string{"users.csv"},
	FieldSpecs: []core.FieldSpec{{Name: "name", Required: true}},
	KeyFields:  []string{"name"},
	Offset:     2,
	Pin: func(ids []string) (int, bool) {
		return 1, len(ids) == 1 && ids[0] == "admin"
	},
}

func TestReadRecordsKeepsKeysDistinct(t *testing.T) {
	body := "name\n" +
		"alice\n" +
		"\" alice\"\n" +
		"alice \n" +
		"\"=\"\"alice\"\"\"\n" +
		"\" admin\"\n"
	recs, err := ReadRecords(context.Background(), usersDef, "users.csv", strings.NewReader(body))
	require.NoError(t, err)

	b, err := core.NewProcessor(core.NewIDRegistry(), []core.EntityDefinition{usersDef}).Process(usersDef, recs)
	require.NoError(t, err)
	require.Len(t, b.Rows, 5)

	var names []string
	for _, r := range b.Rows {
		names = append(names, r.SourceIDs[0])
		assert.False(t, r.Pinned, "%q", r.SourceIDs[0])
	}
	assert.Equal(t, []string{"alice", " alice", "alice ", `="alice"`, " admin"}, names)
	assert.Equal(t, 6, b.Rows[4].ID)
}

func TestReadRecordsRejectsInvalidUTF8Keys(t *testing.T) {
	_, err := ReadRecords(context.Background(), usersDef, "users.csv", strings.NewReader("name\nj\x80n\nj\x81n\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMalformedRow)

	ce, ok := core.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 2, ce.Line)
	assert.Equal(t, "name", ce.Field)
}
