package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-smoke", "Cornell Smoke"},
		{"random_spheres", "Random Spheres"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestListSceneFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zebra-room.json", "attic.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}

	scenes, err := ListSceneFiles(dir)
	if err != nil {
		t.Fatalf("ListSceneFiles failed: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 JSON scenes, got %d", len(scenes))
	}
	if scenes[0].DisplayName != "Attic" || scenes[1].DisplayName != "Zebra Room" {
		t.Errorf("Unexpected order %q, %q", scenes[0].DisplayName, scenes[1].DisplayName)
	}
	if scenes[0].Type != "file" || scenes[0].FilePath != filepath.Join(dir, "attic.json") {
		t.Errorf("Unexpected scene info %+v", scenes[0])
	}
}

func TestListSceneFiles_MissingDirectory(t *testing.T) {
	scenes, err := ListSceneFiles(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(scenes) != 0 {
		t.Errorf("Expected no scenes and no error, got %v, %v", scenes, err)
	}
}

func TestListAllScenes_BuiltinsFirst(t *testing.T) {
	scenes, err := ListAllScenes(t.TempDir())
	if err != nil {
		t.Fatalf("ListAllScenes failed: %v", err)
	}
	if len(scenes) != len(builtinScenes) {
		t.Fatalf("Expected only built-in scenes, got %d", len(scenes))
	}
	if scenes[0].ID != "cornell" || scenes[0].Type != "builtin" || scenes[0].DisplayName != "Cornell" {
		t.Errorf("Unexpected first scene %+v", scenes[0])
	}
}

func TestLoad(t *testing.T) {
	desc, err := Load("cornell-smoke")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := desc.Objects["smoke"]; !ok {
		t.Error("Expected the smoke object in the built-in description")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected an error for an unknown scene")
	}
}
