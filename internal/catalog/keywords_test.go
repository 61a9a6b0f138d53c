package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeAliasFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write alias fixture: %v", err)
	}
	return path
}

func TestLoadKeywordAliasesParsesKeywordLines(t *testing.T) {
	dir := t.TempDir()
	path := writeAliasFile(t, dir, "ar.txt", "شقة: سكن, بيت\n# comment\nفيلا: قصر\n")

	aliases := loadKeywordAliases([]string{path})
	assert.Equal(t, []string{"سكن", "بيت"}, aliases["شقة"])
	assert.Equal(t, []string{"قصر"}, aliases["فيلا"])
}

func TestLoadKeywordAliasesSkipsBlankAndMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := writeAliasFile(t, dir, "en.txt", "\n   \nno-colon-here\napartment: flat\n")

	aliases := loadKeywordAliases([]string{path})
	assert.Equal(t, []string{"flat"}, aliases["apartment"])
	assert.Len(t, aliases, 1)
}

func TestLoadKeywordAliasesMergesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeAliasFile(t, dir, "a.txt", "villa: house\n")
	second := writeAliasFile(t, dir, "b.txt", "villa: chalet\n")

	aliases := loadKeywordAliases([]string{first, second})
	assert.Equal(t, []string{"house", "chalet"}, aliases["villa"])
}

func TestLoadKeywordAliasesIgnoresMissingFile(t *testing.T) {
	aliases := loadKeywordAliases([]string{"/nonexistent/path/aliases.txt"})
	assert.Empty(t, aliases)
}

func TestLoadKeywordAliasesLowercasesKeyword(t *testing.T) {
	dir := t.TempDir()
	path := writeAliasFile(t, dir, "mixed.txt", "Office: shop\n")

	aliases := loadKeywordAliases([]string{path})
	assert.Equal(t, []string{"shop"}, aliases["office"])
	_, exists := aliases["Office"]
	assert.False(t, exists)
}
