package paths

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV reads paths from rows of either x,y or path,x,y. With two
// columns every row belongs to a single path; with three, a change
// in the path column starts a new path. A header row is skipped.
func ReadCSV(r io.Reader) (*Paths, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	ps := &Paths{}
	lastID := ""
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		id := ""
		if len(rec) == 3 {
			id, rec = strings.TrimSpace(rec[0]), rec[1:]
		}
		if len(rec) != 2 {
			return nil, fmt.Errorf("line %d: want x,y or path,x,y, got %q", line, rec)
		}
		x, xerr := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		y, yerr := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if xerr != nil || yerr != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: bad coordinates %q", line, rec)
		}
		if len(ps.P) == 0 || id != lastID {
			ps.P = append(ps.P, Path{})
			lastID = id
		}
		ps.line(Vec2{x, y})
	}
	ps.TightenBounds()
	return ps, nil
}

// WriteCSV writes a path,x,y header followed by one row per vertex.
func (ps *Paths) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "x", "y"}); err != nil {
		return err
	}
	for i, p := range ps.P {
		for _, v := range p.V {
			rec := []string{
				strconv.Itoa(i),
				strconv.FormatFloat(v[0], 'f', -1, 64),
				strconv.FormatFloat(v[1], 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
