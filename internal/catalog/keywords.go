package catalog

import (
	"bufio"
	"os"
	"strings"
)

// loadKeywordAliases reads one or more "keyword: alias1, alias2" files and
// merges them in file order; a keyword defined in a later file appends to
// (rather than replaces) any aliases already loaded for it.
func loadKeywordAliases(paths []string) map[string][]string {
	aliases := make(map[string][]string)
	for _, path := range paths {
		mergeAliasFile(aliases, path)
	}
	return aliases
}

func mergeAliasFile(aliases map[string][]string, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		keyword := strings.ToLower(strings.TrimSpace(parts[0]))
		if keyword == "" {
			continue
		}
		for _, alias := range strings.Split(parts[1], ",") {
			alias = strings.TrimSpace(alias)
			if alias != "" {
				aliases[keyword] = append(aliases[keyword], alias)
			}
		}
	}
}
