package knowledge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/schardosin/docqa/pkg/document"
)

func TestStoreSaveAndClear(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "kb"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if store.Current() != nil {
		t.Fatal("new store should have no current base")
	}

	kb := NewBase("report.pdf", []document.Chunk{
		{ID: 0, Text: "alpha beta", WordCount: 2},
		{ID: 1, Text: "gamma", WordCount: 1},
	})
	path, err := store.Save(kb)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if filepath.Base(path) != "report_kb.json" {
		t.Errorf("path = %q, expected report_kb.json", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("knowledge base file missing: %v", err)
	}
	if got := store.Current(); got == nil || got.TotalChunks != 2 {
		t.Errorf("Current = %+v", got)
	}

	store.Clear()
	if store.Current() != nil {
		t.Error("Clear should forget the current base")
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("Clear should keep the file on disk")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read knowledge base file: %v", err)
	}
	var saved Base
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("knowledge base file is not valid JSON: %v", err)
	}
	if saved.Filename != "report.pdf" || saved.TotalChunks != 2 || saved.Chunks[1].Text != "gamma" {
		t.Errorf("saved = %+v", saved)
	}
}
