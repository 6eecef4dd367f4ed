package assets

import (
	"bufio"
	"embed"
	"fmt"
	"strings"
)

//go:embed messages_*.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Messages returns the key=value message catalog for a language ("ja", "en").
func Messages(lang string) (map[string]string, error) {
	name := "messages_" + lang + ".txt"
	lines, err := readLines(name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(lines))
	for i, line := range lines {
		k, v, ok := strings.Cut(line, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%s: entry %d: want key=value", name, i+1)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
