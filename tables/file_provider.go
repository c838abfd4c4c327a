package tables

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Bram94/numpy-bufr/bufrerr"
	"github.com/grailbio/base/file"
)

// TableParser knows how to locate and parse one on-disk table dialect
// (bufrdc/eccodes/libdwd). Parsing the tables' on-disk representation
// is explicitly out of scope for this module; TableParser is the seam
// a caller plugs a real parser into. FileProvider only owns fetching
// (local/S3/HTTP, via grailbio/base/file) and per-Key caching.
type TableParser interface {
	// Locate returns the master and, when localVersion > 0, the local
	// file path (or URL) for the named table ("A", "B", "C", "D", "CF")
	// rooted at root. local is "" when no local table applies.
	Locate(tableName, root string, key Key) (master, local string)
	// Parse reads the table contents from r and merges them into reg.
	Parse(tableName string, r io.Reader, reg *Registry) error
}

// FileProvider implements Provider by locating table files under
// key.Root (local path, s3:// URL, or http(s):// URL, transparently,
// via grailbio/base/file) and delegating the actual grammar to a
// registered TableParser per Format. Registries are cached by Key for
// the lifetime of the FileProvider, so repeated decodes against the
// same table set don't re-fetch or re-parse.
type FileProvider struct {
	parsers map[Format]TableParser

	mu    sync.RWMutex
	cache map[string]*Registry
}

// NewFileProvider returns a FileProvider that dispatches to parsers by
// table-format tag.
func NewFileProvider(parsers map[Format]TableParser) *FileProvider {
	return &FileProvider{
		parsers: parsers,
		cache:   map[string]*Registry{},
	}
}

func cacheKey(k Key) string {
	return fmt.Sprintf("%d,%d,%d,%d,%d,%s,%s",
		k.Master, k.MasterVersion, k.LocalVersion, k.Centre, k.SubCentre, k.Root, k.Format)
}

// Get implements Provider.
func (p *FileProvider) Get(ctx context.Context, key Key) (*Registry, error) {
	ck := cacheKey(key)

	p.mu.RLock()
	if reg, ok := p.cache[ck]; ok {
		p.mu.RUnlock()
		return reg, nil
	}
	p.mu.RUnlock()

	parser, ok := p.parsers[key.Format]
	if !ok {
		return nil, bufrerr.New(bufrerr.TableLoad, "tables",
			fmt.Sprintf("no parser registered for table format %q", key.Format))
	}

	reg := NewRegistry()

	// Table A: centre names. Loader failures are warnings, not faults.
	if master, _ := parser.Locate("A", key.Root, key); master != "" {
		if err := p.loadOne(ctx, parser, "A", master, reg); err != nil {
			log.Printf("bufr: table A load warning: %v", err)
		}
	}

	// Table B: element definitions. Fatal; local table overlays master.
	if err := p.loadRequired(ctx, parser, "B", key, reg); err != nil {
		return nil, err
	}

	// Table C: operator names. Loader failures are warnings.
	if master, _ := parser.Locate("C", key.Root, key); master != "" {
		if err := p.loadOne(ctx, parser, "C", master, reg); err != nil {
			log.Printf("bufr: table C load warning: %v", err)
		}
	}

	// Table D: sequence expansions. Fatal; local table overlays master.
	if err := p.loadRequired(ctx, parser, "D", key, reg); err != nil {
		return nil, err
	}

	// Table CF: code/flag meanings. Loader failures are warnings.
	if master, local := parser.Locate("CF", key.Root, key); master != "" {
		if err := p.loadOne(ctx, parser, "CF", master, reg); err != nil {
			log.Printf("bufr: table CF load warning: %v", err)
		}
		if key.LocalVersion != 0 && local != "" {
			if err := p.loadOne(ctx, parser, "CF", local, reg); err != nil {
				log.Printf("bufr: table CF local load warning: %v", err)
			}
		}
	}

	p.mu.Lock()
	p.cache[ck] = reg
	p.mu.Unlock()

	return reg, nil
}

func (p *FileProvider) loadRequired(ctx context.Context, parser TableParser, name string, key Key, reg *Registry) error {
	master, local := parser.Locate(name, key.Root, key)
	if err := p.loadOne(ctx, parser, name, master, reg); err != nil {
		return bufrerr.New(bufrerr.TableLoad, "tables",
			fmt.Sprintf("table %s: %v", name, err)).Wrap(err)
	}
	if key.LocalVersion != 0 && local != "" {
		if err := p.loadOne(ctx, parser, name, local, reg); err != nil {
			return bufrerr.New(bufrerr.TableLoad, "tables",
				fmt.Sprintf("local table %s: %v", name, err)).Wrap(err)
		}
	}
	return nil
}

func (p *FileProvider) loadOne(ctx context.Context, parser TableParser, name, path string, reg *Registry) error {
	f, err := file.Open(ctx, path)
	if err != nil {
		return err
	}
	defer f.Close(ctx)
	return parser.Parse(name, f.Reader(ctx), reg)
}
