package labservice

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"unicode"
)

// slugify turns a title into a file-system friendly name.
func slugify(title, fallback string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return fallback
	}
	return s
}

// freePath returns dir/name+ext, or dir/name-N+ext for the first N that does
// not exist yet.
func (s *Service) freePath(dir, name, ext string) (string, error) {
	for i := 1; i < 1000; i++ {
		candidate := name + ext
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d%s", name, i, ext)
		}
		rel := path.Join(dir, candidate)
		_, err := s.store.Read(rel)
		if errors.Is(err, os.ErrNotExist) {
			return rel, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("labservice: no free name for %s", name)
}
