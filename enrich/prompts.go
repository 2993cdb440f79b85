package enrich

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// LoadPrompt reads a system prompt file.
func LoadPrompt(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "fail to read prompt file %s", path)
	}
	return string(raw), nil
}

// LoadAllowList reads a category allow-list file, one name per line, '#'
// starts a comment.
func LoadAllowList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to read allow-list %s", path)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}
