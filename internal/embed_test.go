package internal

import (
	"io/fs"
	"testing"
)

func TestListBuiltinRules(t *testing.T) {
	files, err := ListBuiltinRules()
	if err != nil {
		t.Fatalf("ListBuiltinRules error: %v", err)
	}
	if len(files) != 8 {
		t.Fatalf("expected 8 builtin rule files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if _, err := fs.Stat(GetBuiltinRulesFS(), f); err != nil {
			t.Errorf("listed file %s not readable: %v", f, err)
		}
	}
}
