package core

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ToTimestamp Tests
// ----------------------------------------------------------------------------

func TestToTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      time.Time
	}{
		{name: "unix seconds", input: "1546300800", wantValid: true, want: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "RFC3339", input: "2019-01-01T00:00:00Z", wantValid: true, want: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "RFC3339 with offset", input: "2019-01-01T02:00:00+02:00", wantValid: true, want: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "Fedora millis", input: "2019-01-01T00:00:00.123Z", wantValid: true, want: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "no zone", input: "2019-01-01T10:30:00", wantValid: true, want: time.Date(2019, 1, 1, 10, 30, 0, 0, time.UTC)},
		{name: "space separated", input: "2019-01-01 10:30:00", wantValid: true, want: time.Date(2019, 1, 1, 10, 30, 0, 0, time.UTC)},
		{name: "date only", input: "2019-01-01", wantValid: true, want: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "US date", input: "1/2/2019", wantValid: true, want: time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)},
		{name: "month name", input: "Jan 2, 2019", wantValid: true, want: time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding whitespace", input: "  2019-01-01  ", wantValid: true, want: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},

		{name: "empty", input: "", wantValid: false},
		{name: "word", input: "yesterday", wantValid: false},
		{name: "impossible date", input: "2019-02-30", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToTimestamp(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ToTimestamp(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if ok && got != tt.want.Unix() {
				t.Errorf("ToTimestamp(%q) = %d, want %d", tt.input, got, tt.want.Unix())
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToInt Tests
// ----------------------------------------------------------------------------

func TestToInt(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      int64
	}{
		{"123", true, 123},
		{"-456", true, -456},
		{"+7", true, 7},
		{"1,048,576", true, 1048576},
		{"12.9", true, 12},
		{".5", true, 0},
		{"1e3", true, 1000},
		{" 42 ", true, 42},
		{"", false, 0},
		{"abc", false, 0},
		{"12abc", false, 0},
		{"$12", false, 0},
	}

	for _, tt := range tests {
		got, ok := ToInt(tt.input)
		if ok != tt.wantValid {
			t.Errorf("ToInt(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ToInt(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// ToBool Tests
// ----------------------------------------------------------------------------

func TestToBool(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      bool
	}{
		{"true", true, true},
		{"TRUE", true, true},
		{"yes", true, true},
		{"Y", true, true},
		{"1", true, true},
		{"active", true, true},
		{"false", true, false},
		{"no", true, false},
		{"0", true, false},
		{"blocked", true, false},
		{" Inactive ", true, false},
		{"", false, false},
		{"maybe", false, false},
		{"2", false, false},
	}

	for _, tt := range tests {
		got, ok := ToBool(tt.input)
		if ok != tt.wantValid {
			t.Errorf("ToBool(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ToBool(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBoolInt(t *testing.T) {
	if BoolInt(true) != 1 || BoolInt(false) != 0 {
		t.Errorf("BoolInt = %d/%d, want 1/0", BoolInt(true), BoolInt(false))
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "vcu:1", "vcu:1"},
		{"whitespace", "  vcu:1\t", "vcu:1"},
		{"excel formula", `="00123"`, "00123"},
		{"excel formula empty", `=""`, ""},
		{"not a formula", `=SUM(A1)`, "=SUM(A1)"},
		{"lone equals quote", `="`, `="`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// MakeHeaderIndex Tests
// ----------------------------------------------------------------------------

func TestMakeHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{"PID", " dsid ", "Created_Date"})

	want := map[string]int{"pid": 0, "dsid": 1, "created_date": 2}
	for k, v := range want {
		if idx[k] != v {
			t.Errorf("idx[%q] = %d, want %d", k, idx[k], v)
		}
	}
	if len(idx) != len(want) {
		t.Errorf("len(idx) = %d, want %d", len(idx), len(want))
	}
}

func TestMakeHeaderIndex_DuplicateHeaders(t *testing.T) {
	idx := MakeHeaderIndex([]string{"name", "mail", "Name"})

	// First occurrence wins
	if idx["name"] != 0 {
		t.Errorf("idx[name] = %d, want 0", idx["name"])
	}
}
