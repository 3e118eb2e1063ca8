package database

import (
	"testing"
	"testing/fstest"
)

func TestPendingFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"002_activity.sql":  {Data: []byte("select 1")},
		"001_members.sql":   {Data: []byte("select 1")},
		"003_reset_all.sql": {Data: []byte("drop table members")},
		"README.md":         {Data: []byte("docs")},
		"004_settings.sql":  {Data: []byte("select 1")},
	}

	got, err := PendingFiles(fsys, ".", map[string]bool{"002_activity.sql": true})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"001_members.sql", "004_settings.sql"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
