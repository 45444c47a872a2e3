package timing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// DefaultInput is the file read when no input path is given.
const DefaultInput = "profile_results.json"

var errMissing = errors.New("missing required field")

type rawFile struct {
	Profiles *[]rawProfile `json:"profiles"`
}

type rawProfile struct {
	Name      any    `json:"name"`
	Samples   *[]any `json:"samples"`
	Calls     any    `json:"calls"`
	AverageMs any    `json:"averageMs"`
	MinMs     any    `json:"minMs"`
	MaxMs     any    `json:"maxMs"`
}

// Load reads and parses a profile results file.
func Load(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &InputNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to open profile file: %w", err)
	}
	defer f.Close()

	data, err := Parse(f)
	if err != nil {
		return nil, err
	}
	data.Source = path
	return data, nil
}

// Parse decodes profile results JSON. A single malformed element fails the
// whole document.
func Parse(r io.Reader) (*Data, error) {
	var file rawFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, &ParseError{Index: -1, Err: err}
	}
	if file.Profiles == nil {
		return nil, &ParseError{Index: -1, Field: "profiles", Err: errMissing}
	}

	data := &Data{Profiles: make([]Profile, 0, len(*file.Profiles))}
	for i, rp := range *file.Profiles {
		p, err := convertProfile(i, rp)
		if err != nil {
			return nil, err
		}
		data.Profiles = append(data.Profiles, p)
	}
	return data, nil
}

func convertProfile(i int, rp rawProfile) (Profile, error) {
	var (
		p   Profile
		err error
	)

	name, ok := rp.Name.(string)
	if !ok {
		if rp.Name == nil {
			return p, &ParseError{Index: i, Field: "name", Err: errMissing}
		}
		return p, &ParseError{Index: i, Field: "name", Err: fmt.Errorf("expected string, got %T", rp.Name)}
	}
	p.Name = name

	if rp.Samples == nil {
		return p, &ParseError{Index: i, Field: "samples", Err: errMissing}
	}
	p.Samples = make([]float64, 0, len(*rp.Samples))
	for j, s := range *rp.Samples {
		v, ok := s.(float64)
		if !ok {
			return p, &ParseError{Index: i, Field: "samples", Err: fmt.Errorf("sample %d: expected number, got %T", j, s)}
		}
		p.Samples = append(p.Samples, v)
	}

	if p.Calls, err = toInt(rp.Calls); err != nil {
		return p, &ParseError{Index: i, Field: "calls", Err: err}
	}
	if p.AvgMs, err = toFloat(rp.AverageMs); err != nil {
		return p, &ParseError{Index: i, Field: "averageMs", Err: err}
	}
	if p.MinMs, err = toFloat(rp.MinMs); err != nil {
		return p, &ParseError{Index: i, Field: "minMs", Err: err}
	}
	if p.MaxMs, err = toFloat(rp.MaxMs); err != nil {
		return p, &ParseError{Index: i, Field: "maxMs", Err: err}
	}
	return p, nil
}

// toInt accepts JSON numbers and decimal integer strings; fractional
// numbers are truncated.
func toInt(v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, errMissing
	case bool, []any, map[string]any:
		return 0, fmt.Errorf("unable to cast %#v of type %T to int", v, v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, strconv.IntSize)
		if err != nil {
			return 0, fmt.Errorf("unable to cast %q to int: %w", x, err)
		}
		return int(n), nil
	case float64:
		if math.IsNaN(x) || x < math.MinInt || x >= math.MaxInt {
			return 0, fmt.Errorf("%g is out of range for int", x)
		}
	}
	return cast.ToIntE(v)
}

func toFloat(v any) (float64, error) {
	switch v.(type) {
	case nil:
		return 0, errMissing
	case bool, []any, map[string]any:
		return 0, fmt.Errorf("unable to cast %#v of type %T to float64", v, v)
	}
	return cast.ToFloat64E(v)
}
