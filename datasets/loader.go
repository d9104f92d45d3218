package datasets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/giygas/formulary-browser/datasets/entities"
	"github.com/giygas/formulary-browser/interfaces"
	"github.com/giygas/formulary-browser/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

// Compile-time check to ensure Loader implements the Loader interface
var _ interfaces.Loader = (*Loader)(nil)

const guidelinesFile = "guidelines.yaml"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads every dataset document from a data directory.
type Loader struct {
	dir string
}

// NewLoader creates a loader rooted at dir
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads all datasets concurrently. The returned bundle is always usable:
// a missing or malformed document leaves its dataset empty and is reported in
// the joined error, which callers log and otherwise ignore.
func (l *Loader) Load(ctx context.Context) (*entities.Bundle, error) {
	start := time.Now()
	bundle := &entities.Bundle{Metadata: make(map[string]entities.Metadata)}

	var mu sync.Mutex
	var problems []error
	report := func(err error) {
		mu.Lock()
		problems = append(problems, err)
		mu.Unlock()
	}
	setMeta := func(name Name, meta entities.Metadata) {
		if meta == nil {
			return
		}
		mu.Lock()
		bundle.Metadata[string(name)] = meta
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, meta, err := loadCollection[entities.FormularyRecord](ctx, l.dir, Formulary)
		if err != nil {
			report(err)
		}
		bundle.Formulary = recs
		setMeta(Formulary, meta)
		return ctx.Err()
	})
	g.Go(func() error {
		recs, meta, err := loadCollection[entities.AntibioticRecord](ctx, l.dir, Antibiotics)
		if err != nil {
			report(err)
		}
		bundle.Antibiotics = recs
		setMeta(Antibiotics, meta)
		return ctx.Err()
	})
	g.Go(func() error {
		recs, meta, err := loadCollection[entities.DilutionRecord](ctx, l.dir, Dilution)
		if err != nil {
			report(err)
		}
		bundle.Dilutions = recs
		setMeta(Dilution, meta)
		return ctx.Err()
	})
	g.Go(func() error {
		recs, meta, err := loadCollection[entities.PaediatricMedication](ctx, l.dir, Paediatric)
		if err != nil {
			report(err)
		}
		bundle.Paediatric = recs
		setMeta(Paediatric, meta)
		return ctx.Err()
	})
	g.Go(func() error {
		recs, meta, err := loadCollection[entities.FrankShannRecord](ctx, l.dir, FrankShann)
		if err != nil {
			report(err)
		}
		bundle.FrankShann = recs
		setMeta(FrankShann, meta)
		return ctx.Err()
	})
	g.Go(func() error {
		recs, meta, err := loadCollection[entities.CounselingRecord](ctx, l.dir, Counseling)
		if err != nil {
			report(err)
		}
		bundle.Counseling = recs
		setMeta(Counseling, meta)
		return ctx.Err()
	})
	g.Go(func() error {
		guidelines, err := loadGuidelines(filepath.Join(l.dir, guidelinesFile))
		if err != nil {
			report(err)
		}
		bundle.Guidelines = guidelines
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dataset load interrupted: %w", err)
	}

	logging.Info("Datasets loaded",
		"dir", l.dir,
		"duration", time.Since(start).String(),
		"formulary", len(bundle.Formulary),
		"antibiotics", len(bundle.Antibiotics),
		"dilution", len(bundle.Dilutions),
		"paediatric", len(bundle.Paediatric),
		"frank_shann", len(bundle.FrankShann),
		"counseling", len(bundle.Counseling),
		"guideline_links", bundle.Guidelines.LinkCount(),
	)

	return bundle, errors.Join(problems...)
}

func loadCollection[R any](ctx context.Context, dir string, name Name) ([]R, entities.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return []R{}, nil, err
	}

	path := filepath.Join(dir, name.fileName())
	data, err := readDocument(path)
	if err != nil {
		return []R{}, nil, fmt.Errorf("%s: %w", name, err)
	}

	recs, meta, skipped, err := DecodeCollection[R](data, name.envelopeKeys()...)
	if err != nil {
		return []R{}, nil, fmt.Errorf("%s: %w", name, err)
	}
	if skipped > 0 {
		logging.Warn("Skipped malformed records", "dataset", string(name), "skipped", skipped)
	}
	return recs, meta, nil
}

// DecodeCollection decodes a dataset document: either a bare array of records
// or an object holding the array under one of keys plus optional "metadata".
// Records that fail to decode are skipped and counted.
func DecodeCollection[R any](data []byte, keys ...string) ([]R, entities.Metadata, int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []R{}, nil, 0, nil
	}

	var list json.RawMessage
	var meta entities.Metadata

	switch data[0] {
	case '[':
		list = data
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(data, &envelope); err != nil {
			return []R{}, nil, 0, fmt.Errorf("invalid document: %w", err)
		}
		if raw, ok := envelope["metadata"]; ok {
			if err := json.Unmarshal(raw, &meta); err != nil {
				meta = nil
			}
		}
		for _, k := range keys {
			if raw, ok := envelope[k]; ok {
				list = raw
				break
			}
		}
		if list == nil {
			return []R{}, meta, 0, fmt.Errorf("no record array under %v", keys)
		}
	default:
		return []R{}, nil, 0, fmt.Errorf("document is neither an array nor an object")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil {
		return []R{}, meta, 0, fmt.Errorf("invalid record array: %w", err)
	}

	recs := make([]R, 0, len(items))
	skipped := 0
	for _, item := range items {
		var rec R
		if err := json.Unmarshal(item, &rec); err != nil {
			skipped++
			continue
		}
		recs = append(recs, rec)
	}
	return recs, meta, skipped, nil
}

func loadGuidelines(path string) (entities.Guidelines, error) {
	data, err := readDocument(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug("No guidelines file, using built-in index", "path", path)
		return DefaultGuidelines(), nil
	}
	if err != nil {
		return DefaultGuidelines(), fmt.Errorf("guidelines: %w", err)
	}

	var g entities.Guidelines
	if err := yaml.Unmarshal(data, &g); err != nil {
		return DefaultGuidelines(), fmt.Errorf("guidelines: invalid yaml: %w", err)
	}
	return g, nil
}

// readDocument reads a file and returns it as UTF-8. Exports from the
// hospital's spreadsheet tools are sometimes ISO-8859-1.
func readDocument(path string) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return toUTF8(raw)
}

func toUTF8(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}

	decoded, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ISO-8859-1 content: %w", err)
	}
	return decoded, nil
}
