package corpus

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-shiori/go-readability"
)

// maxPaperSize bounds how much of a single HTML file is read.
const maxPaperSize = 10 * 1024 * 1024

// HTMLDirSource serves saved HTML exam papers, one record per file, in file name order.
// Files named "<id>_<year>_<subject>.html" carry their metadata in the name; otherwise
// the base name is the id and defaults apply.
type HTMLDirSource struct {
	dir   string
	files []string
	Now   Clock
}

// OpenHTMLDir lists the *.html files in dir.
func OpenHTMLDir(dir string) (*HTMLDirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".html" || ext == ".htm" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return &HTMLDirSource{dir: dir, files: files}, nil
}

func (h *HTMLDirSource) Name() string { return "htmldir:" + h.dir }

func (h *HTMLDirSource) Fetch(ctx context.Context, page Page) (Result, error) {
	if page.Size <= 0 {
		return Result{}, fmt.Errorf("htmldir: page size must be positive")
	}
	start := page.Number * page.Size
	if start >= len(h.files) {
		return Result{}, nil
	}
	end := min(start+page.Size, len(h.files))

	now := clockOrNow(h.Now)()
	var res Result
	for _, name := range h.files[start:end] {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		hit, err := h.load(name)
		if err != nil {
			res.Rejects = append(res.Rejects, Reject{ID: name, Err: err})
			continue
		}
		rec, err := FromHit(hit, []string{"title", "text"}, now)
		if err != nil {
			res.Rejects = append(res.Rejects, Reject{ID: name, Err: err})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func (h *HTMLDirSource) load(name string) (Hit, error) {
	path := filepath.Join(h.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxPaperSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, maxPaperSize)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	body = SanitizeRuby(body)

	pageURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}

	hit := Hit{"title": article.Title, "text": article.TextContent}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	hit["id"] = stem
	if parts := strings.SplitN(stem, "_", 3); len(parts) == 3 {
		hit["id"] = parts[0]
		if year, err := strconv.Atoi(parts[1]); err == nil {
			hit["year"] = year
		}
		hit["subject"] = strings.ReplaceAll(parts[2], "-", " ")
	}
	return hit, nil
}
