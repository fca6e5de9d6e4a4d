package internal

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

// BuiltinRulesDir is the root of the embedded rule table
const BuiltinRulesDir = "builtin"

// BuiltinRules contains the built-in scoring rules and their test suites
//
//go:embed builtin/*/*.yaml
var BuiltinRules embed.FS

// GetBuiltinRulesFS returns the embedded filesystem containing built-in rules
func GetBuiltinRulesFS() fs.FS {
	return BuiltinRules
}

// ListBuiltinRules returns the rule files (test suites excluded) under the builtin tree
func ListBuiltinRules() ([]string, error) {
	var files []string
	err := fs.WalkDir(BuiltinRules, BuiltinRulesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".yaml" || strings.HasSuffix(p, "-test.yaml") {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
