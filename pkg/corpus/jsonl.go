package corpus

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// JSONLSource reads a JSON-lines export, one hit per line. Blank lines are skipped;
// lines that are not JSON objects become rejects.
type JSONLSource struct {
	path  string
	lines [][]byte
	Now   Clock
}

// OpenJSONL loads the export at path.
func OpenJSONL(path string) (*JSONLSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src := &JSONLSource{path: path}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		src.lines = append(src.lines, append([]byte(nil), line...))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return src, nil
}

func (j *JSONLSource) Name() string { return "jsonl:" + j.path }

// Len is the number of non-blank lines.
func (j *JSONLSource) Len() int { return len(j.lines) }

func (j *JSONLSource) Fetch(ctx context.Context, page Page) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if page.Size <= 0 {
		return Result{}, fmt.Errorf("jsonl: page size must be positive")
	}
	start := page.Number * page.Size
	if start >= len(j.lines) {
		return Result{}, nil
	}
	end := min(start+page.Size, len(j.lines))

	now := clockOrNow(j.Now)()
	var res Result
	for i := start; i < end; i++ {
		var hit Hit
		dec := json.NewDecoder(bytes.NewReader(j.lines[i]))
		dec.UseNumber()
		if err := dec.Decode(&hit); err != nil {
			res.Rejects = append(res.Rejects, Reject{ID: fmt.Sprintf("line %d", i+1), Err: err})
			continue
		}
		rec, err := FromHit(hit, page.Fields, now)
		if err != nil {
			res.Rejects = append(res.Rejects, Reject{ID: fmt.Sprintf("line %d", i+1), Err: err})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}
