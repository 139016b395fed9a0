package prompt

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/logger"
)

// DefaultCacheSize bounds the number of compiled templates kept in memory
const DefaultCacheSize = 64

// Loader resolves template names to text and renders them.
// A file in the override directory wins over the embedded template of the same name.
type Loader struct {
	dir   string
	cache *lru.Cache[string, *template.Template]
}

// NewLoader creates a loader. dir may be empty to use embedded templates only.
func NewLoader(dir string, cacheSize int) (*Loader, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "prompt directory not accessible: "+dir, err)
		}
		if !info.IsDir() {
			return nil, errors.New(errors.ErrCodeConfigInvalid, "prompt path is not a directory: "+dir)
		}
	}

	cache, err := lru.New[string, *template.Template](cacheSize)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create template cache", err)
	}

	return &Loader{dir: dir, cache: cache}, nil
}

// fileName maps a template name to its file name; names with an extension are kept as is
func fileName(name string) string {
	if path.Ext(name) != "" {
		return name
	}
	return name + templateExt
}

// Load returns the raw template text for name.
// It fails with a template-not-found error when neither the override
// directory nor the embedded set has it.
func (l *Loader) Load(name string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", errors.Newf(errors.ErrCodeTemplateNotFound, "invalid template name %q", name)
	}
	file := fileName(name)

	if l.dir != "" {
		data, err := os.ReadFile(filepath.Join(l.dir, file))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeTemplateNotFound, "failed to read template "+name, err)
		}
	}

	data, err := embedded.ReadFile("templates/" + file)
	if err != nil {
		return "", errors.Newf(errors.ErrCodeTemplateNotFound, "template %q not found", name)
	}
	return string(data), nil
}

// Render loads, compiles (once per name) and executes the named template
func (l *Loader) Render(name string, data interface{}) (string, error) {
	tmpl, ok := l.cache.Get(name)
	if !ok {
		text, err := l.Load(name)
		if err != nil {
			return "", err
		}
		tmpl, err = parse(name, text)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeConfigInvalid, "failed to parse template "+name, err)
		}
		l.cache.Add(name, tmpl)
		logger.Debug("Prompt template compiled", zap.String("template", name), zap.Bool("override", l.isOverridden(name)))
	}

	out, err := execute(tmpl, data)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to render template "+name, err)
	}
	return out, nil
}

// isOverridden reports whether name is served from the override directory
func (l *Loader) isOverridden(name string) bool {
	if l.dir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(l.dir, fileName(name)))
	return err == nil
}

// Names lists every template name available, embedded and overridden, sorted
func (l *Loader) Names() []string {
	set := make(map[string]bool)
	if entries, err := fs.ReadDir(embedded, "templates"); err == nil {
		for _, e := range entries {
			set[strings.TrimSuffix(e.Name(), templateExt)] = true
		}
	}
	if l.dir != "" {
		if entries, err := os.ReadDir(l.dir); err == nil {
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), templateExt) {
					set[strings.TrimSuffix(e.Name(), templateExt)] = true
				}
			}
		}
	}

	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Purge drops all compiled templates, forcing a reload on next Render
func (l *Loader) Purge() {
	l.cache.Purge()
}
