package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/askdex/internal/domain/category"
	"github.com/kailas-cloud/askdex/internal/domain/tag"
)

// fileSchema is the on-disk shape of one dictionary file.
type fileSchema struct {
	Category   string   `yaml:"category"` // optional domain label for glossary entries
	Vocabulary []string `yaml:"vocabulary"`
	Glossary   []struct {
		Term string `yaml:"term"`
		Tag  string `yaml:"tag"`
	} `yaml:"glossary"`
	Buckets []struct {
		Tag      string   `yaml:"tag"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"buckets"`
}

// Load reads every *.yaml/*.yml file in dir and merges them into one
// dictionary. Files merge in filename order, so vocabulary precedence is
// reproducible across hosts.
func Load(dir string) (tag.Dictionary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return tag.Dictionary{}, fmt.Errorf("failed to read dictionary dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	dict := tag.Dictionary{}
	for _, name := range names {
		d, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return tag.Dictionary{}, err
		}
		dict = dict.Merge(d)
	}
	return dict, nil
}

// LoadFile reads a single dictionary file.
func LoadFile(path string) (tag.Dictionary, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return tag.Dictionary{}, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}

	var f fileSchema
	if err := yaml.Unmarshal(data, &f); err != nil {
		return tag.Dictionary{}, fmt.Errorf("failed to parse dictionary %s: %w", path, err)
	}

	cat := category.Category(f.Category)
	glossary := make([]tag.GlossaryEntry, 0, len(f.Glossary))
	for i, g := range f.Glossary {
		entry, err := tag.NewGlossaryEntry(g.Term, g.Tag, cat)
		if err != nil {
			return tag.Dictionary{}, fmt.Errorf("dictionary %s: glossary[%d]: %w", path, i, err)
		}
		glossary = append(glossary, entry)
	}

	buckets := make([]tag.Bucket, 0, len(f.Buckets))
	for i, b := range f.Buckets {
		bucket, err := tag.NewBucket(b.Tag, b.Keywords)
		if err != nil {
			return tag.Dictionary{}, fmt.Errorf("dictionary %s: buckets[%d]: %w", path, i, err)
		}
		buckets = append(buckets, bucket)
	}

	return tag.NewDictionary(f.Vocabulary, glossary, buckets), nil
}

// MustLoad loads a dictionary directory or panics.
func MustLoad(dir string) tag.Dictionary {
	d, err := Load(dir)
	if err != nil {
		panic(err)
	}
	return d
}
