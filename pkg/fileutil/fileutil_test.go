package fileutil

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestFindFileCaseInsensitive(t *testing.T) {
	// Create a temporary directory for testing
	tmpDir := t.TempDir()

	// Create test files with various cases
	testFiles := []string{
		"TestFile.txt",
		"UPPERCASE.WAV",
		"lowercase.mid",
		"MixedCase.BMP",
	}

	for _, filename := range testFiles {
		path := filepath.Join(tmpDir, filename)
		if err := os.WriteFile(path, []byte("test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	tests := []struct {
		name          string
		searchName    string
		shouldFind    bool
		expectedMatch string
	}{
		{
			name:          "exact match",
			searchName:    "TestFile.txt",
			shouldFind:    true,
			expectedMatch: "TestFile.txt",
		},
		{
			name:          "lowercase search for mixed case file",
			searchName:    "testfile.txt",
			shouldFind:    true,
			expectedMatch: "TestFile.txt",
		},
		{
			name:          "uppercase search for mixed case file",
			searchName:    "TESTFILE.TXT",
			shouldFind:    true,
			expectedMatch: "TestFile.txt",
		},
		{
			name:          "mixed case search for uppercase file",
			searchName:    "Uppercase.wav",
			shouldFind:    true,
			expectedMatch: "UPPERCASE.WAV",
		},
		{
			name:          "uppercase search for lowercase file",
			searchName:    "LOWERCASE.MID",
			shouldFind:    true,
			expectedMatch: "lowercase.mid",
		},
		{
			name:       "file not found",
			searchName: "nonexistent.txt",
			shouldFind: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := FindFileCaseInsensitive(tmpDir, tt.searchName)

			if tt.shouldFind {
				if err != nil {
					t.Errorf("Expected to find file, but got error: %v", err)
					return
				}

				actualFilename := filepath.Base(path)
				if actualFilename != tt.expectedMatch {
					t.Errorf("Expected filename %s, got %s", tt.expectedMatch, actualFilename)
				}

				// Verify the file actually exists
				if _, err := os.Stat(path); err != nil {
					t.Errorf("Returned path does not exist: %s", path)
				}
			} else {
				if err == nil {
					t.Errorf("Expected error for non-existent file, but got path: %s", path)
				}
			}
		})
	}
}



func TestFSResolveNestedPath(t *testing.T) {
	fsys := fstest.MapFS{
		"Game/Data/System.json":   {Data: []byte(`{}`)},
		"Game/Data/Map001.json":   {Data: []byte(`{"width":1}`)},
		"Game/Data/MapInfos.json": {Data: []byte(`[]`)},
		"Game/Audio/bgm/a.ogg":    {Data: []byte{0}},
	}
	e, err := NewEmbedFS(fsys, "Game")
	if err != nil {
		t.Fatalf("NewEmbedFS() error = %v", err)
	}
	if !e.IsEmbedded() || e.BasePath() != "Game" {
		t.Errorf("IsEmbedded() = %v, BasePath() = %q", e.IsEmbedded(), e.BasePath())
	}

	got, err := e.Resolve("/data/map001.JSON")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "Data/Map001.json" {
		t.Errorf("Resolve() = %q, want Data/Map001.json", got)
	}

	data, err := e.ReadFile(`DATA\map001.json`)
	if err != nil || string(data) != `{"width":1}` {
		t.Errorf("ReadFile() = %q, %v", data, err)
	}

	if _, err := e.ReadFile("data/Map002.json"); err == nil {
		t.Error("ReadFile() of a missing file succeeded")
	}
	if _, ok := e.OSPath("data/Map001.json"); ok {
		t.Error("OSPath() reported a path for an embedded file system")
	}
}

func TestFSList(t *testing.T) {
	fsys := fstest.MapFS{
		"data/b.json":     {},
		"data/a.json":     {},
		"data/sub/c.json": {},
	}
	e, err := NewEmbedFS(fsys, ".")
	if err != nil {
		t.Fatalf("NewEmbedFS() error = %v", err)
	}
	names, err := e.List("DATA")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 2 || names[0] != "a.json" || names[1] != "b.json" {
		t.Errorf("List() = %v, want [a.json b.json]", names)
	}
}

func TestRealFSOSPath(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "Data"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "Data", "Actors.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRealFS(tmpDir)
	p, ok := r.OSPath("data/actors.json")
	if !ok {
		t.Fatal("OSPath() = false for an existing file")
	}
	if want := filepath.Join(tmpDir, "Data", "Actors.json"); p != want {
		t.Errorf("OSPath() = %q, want %q", p, want)
	}
}
