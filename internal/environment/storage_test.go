package environment

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStorage_CRUD(t *testing.T) {
	tmpDir := t.TempDir()
	storage := NewStorageWithPath(tmpDir)

	t.Run("initial state is empty", func(t *testing.T) {
		envs, err := storage.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(envs) != 0 {
			t.Errorf("expected 0 environments, got %d", len(envs))
		}
	})

	t.Run("add environment", func(t *testing.T) {
		err := storage.Add(Environment{Name: "prod", URL: "https://prod.example.com/elsa/api"})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		env, err := storage.Get("prod")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if env == nil {
			t.Fatal("expected environment, got nil")
		}
		if env.URL != "https://prod.example.com/elsa/api" {
			t.Errorf("got URL %q, want %q", env.URL, "https://prod.example.com/elsa/api")
		}
	})

	t.Run("add duplicate environment fails", func(t *testing.T) {
		err := storage.Add(Environment{Name: "prod", URL: "https://other.example.com"})
		if err == nil {
			t.Error("expected error for duplicate environment")
		}
	})

	t.Run("add with invalid URL fails", func(t *testing.T) {
		err := storage.Add(Environment{Name: "bad", URL: "not-a-url"})
		if err == nil {
			t.Error("expected error for invalid URL")
		}
	})

	t.Run("add reserved name fails", func(t *testing.T) {
		err := storage.Add(Environment{Name: PrimaryName, URL: "https://x.example.com"})
		if err == nil {
			t.Error("expected error for reserved name")
		}
	})

	t.Run("set current", func(t *testing.T) {
		if err := storage.SetCurrent("prod"); err != nil {
			t.Fatalf("SetCurrent failed: %v", err)
		}

		name, err := storage.CurrentName()
		if err != nil {
			t.Fatalf("CurrentName failed: %v", err)
		}
		if name != "prod" {
			t.Errorf("got current %q, want %q", name, "prod")
		}
	})

	t.Run("set current to nonexistent fails", func(t *testing.T) {
		err := storage.SetCurrent("nonexistent")
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("update environment", func(t *testing.T) {
		err := storage.Update(Environment{Name: "prod", URL: "https://new.example.com/api", Description: "moved"})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		env, _ := storage.Get("prod")
		if env.URL != "https://new.example.com/api" || env.Description != "moved" {
			t.Errorf("update not applied: %+v", env)
		}
	})

	t.Run("update nonexistent fails", func(t *testing.T) {
		if err := storage.Update(Environment{Name: "ghost", URL: "https://x.example.com"}); err == nil {
			t.Error("expected error updating nonexistent environment")
		}
	})

	t.Run("rename carries current", func(t *testing.T) {
		if err := storage.Rename("prod", "production"); err != nil {
			t.Fatalf("Rename failed: %v", err)
		}
		name, _ := storage.CurrentName()
		if name != "production" {
			t.Errorf("got current %q after rename, want %q", name, "production")
		}
		if env, _ := storage.Get("prod"); env != nil {
			t.Error("old name still present after rename")
		}
	})

	t.Run("rename onto existing fails", func(t *testing.T) {
		if err := storage.Add(Environment{Name: "staging", URL: "https://staging.example.com"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if err := storage.Rename("staging", "production"); err == nil {
			t.Error("expected error renaming onto existing environment")
		}
	})

	t.Run("names", func(t *testing.T) {
		names, err := storage.Names()
		if err != nil {
			t.Fatalf("Names failed: %v", err)
		}
		if strings.Join(names, ",") != "production,staging" {
			t.Errorf("got names %v", names)
		}
	})

	t.Run("delete current clears selection", func(t *testing.T) {
		if err := storage.Delete("production"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		current, err := storage.Current()
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if current != nil {
			t.Errorf("expected no current environment, got %q", current.Name)
		}
	})

	t.Run("delete nonexistent fails", func(t *testing.T) {
		if err := storage.Delete("ghost"); err == nil {
			t.Error("expected error deleting nonexistent environment")
		}
	})
}

func TestStorage_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	storage := NewStorageWithPath(tmpDir)

	if err := storage.Add(Environment{Name: "test", URL: "https://test.example.com"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(tmpDir, FileName))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0644 {
		t.Errorf("got file permissions %o, want 0644", perm)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only %s in config dir, found %d entries", FileName, len(entries))
	}
}

func TestStorage_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte("environments: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewStorageWithPath(tmpDir).Load()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("unexpected error: %v", err)
	}
}
