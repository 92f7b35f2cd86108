package companion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GenericSuggestion is used whenever the resolved bucket is empty.
const GenericSuggestion = "Sometimes doing one small kind thing for yourself can help a little, " +
	"even if it feels like a tiny step."

// Bucket names in the coping catalog.
const (
	BucketSad      = "sad"
	BucketAnxious  = "anxious"
	BucketStressed = "stressed"
	BucketGeneral  = "general"
)

// CopingCatalog maps a bucket name to its ordered suggestions. It is read-only after loading.
type CopingCatalog map[string][]string

// LoadCopingCatalog reads a JSON or YAML (.yaml/.yml) catalog. A missing file is an empty catalog
// and no error. A malformed file returns an empty catalog together with the error, so callers can
// warn and keep going.
func LoadCopingCatalog(path string) (CopingCatalog, error) {
	if path == "" {
		return CopingCatalog{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CopingCatalog{}, nil
		}
		return CopingCatalog{}, fmt.Errorf("LoadCopingCatalog: read file: %w", err)
	}
	c, err := ParseCopingCatalog(b, filepath.Ext(path))
	if err != nil {
		return CopingCatalog{}, fmt.Errorf("LoadCopingCatalog: %s: %w", path, err)
	}
	return c, nil
}

// ParseCopingCatalog decodes data as YAML when ext is .yaml or .yml, JSON otherwise.
// Blank suggestions are dropped and bucket names are lowercased.
func ParseCopingCatalog(data []byte, ext string) (CopingCatalog, error) {
	raw := map[string][]string{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("unmarshal json: %w", err)
		}
	}

	c := make(CopingCatalog, len(raw))
	for name, items := range raw {
		key := strings.ToLower(strings.TrimSpace(name))
		for _, s := range items {
			if s = strings.TrimSpace(s); s != "" {
				c[key] = append(c[key], s)
			}
		}
		if _, ok := c[key]; !ok {
			c[key] = nil
		}
	}
	return c, nil
}

// Suggestions concatenates the named buckets in order. Unknown buckets contribute nothing.
func (c CopingCatalog) Suggestions(buckets ...string) []string {
	var out []string
	for _, b := range buckets {
		out = append(out, c[b]...)
	}
	return out
}

// BucketsFor resolves the buckets a mood draws from.
func BucketsFor(m Mood) []string {
	switch m {
	case MoodNegative:
		return []string{BucketSad, BucketAnxious}
	case MoodStressed:
		return []string{BucketStressed}
	default:
		return []string{BucketGeneral}
	}
}
