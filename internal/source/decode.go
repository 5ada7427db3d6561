package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/bighogz/fintable/internal/models"
)

// Decode parses a response body into records. When recordsPath is set it is a
// JSONPath expression locating the array inside the body.
//
// Elements missing a field, or holding a value that is not a number, are
// skipped and reported in Result.Rejected; they never fail the whole load.
func Decode(body []byte, recordsPath string) (*Result, error) {
	// Numbers stay json.Number until toFloat, so a literal outside float64
	// range rejects only its own element.
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var data interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after the JSON value")
	}
	if recordsPath != "" {
		v, err := jsonpath.Get(recordsPath, data)
		if err != nil {
			return nil, fmt.Errorf("records path %q: %w", recordsPath, err)
		}
		data = v
	}
	items, ok := data.([]interface{})
	if !ok {
		return nil, ErrNotArray
	}
	res := &Result{Records: make([]models.Record, 0, len(items))}
	for i, it := range items {
		rec, err := decodeRecord(it)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejected{Index: i, Err: err})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func decodeRecord(v interface{}) (models.Record, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return models.Record{}, fmt.Errorf("%w: not an object", ErrMalformedRecord)
	}
	date, err := dateValue(m[string(models.FieldDate)])
	if err != nil {
		return models.Record{}, err
	}
	rec := models.Record{Date: date}
	targets := []struct {
		field models.Field
		dst   *float64
	}{
		{models.FieldRevenue, &rec.Revenue},
		{models.FieldNetIncome, &rec.NetIncome},
		{models.FieldGrossProfit, &rec.GrossProfit},
		{models.FieldEPS, &rec.EPS},
		{models.FieldOperatingIncome, &rec.OperatingIncome},
	}
	for _, t := range targets {
		f, err := toFloat(m[string(t.field)])
		if err != nil {
			return models.Record{}, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, t.field, err)
		}
		*t.dst = f
	}
	return rec, nil
}

func dateValue(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return s, nil
		}
	case json.Number:
		return x.String(), nil
	case nil:
		return "", fmt.Errorf("%w: date: missing", ErrMalformedRecord)
	}
	return "", fmt.Errorf("%w: date: invalid value %v", ErrMalformedRecord, v)
}

func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(x.String(), 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, fmt.Errorf("out of range: %s", x)
		}
		return f, nil
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("missing")
	}
	return 0, fmt.Errorf("not a number: %v", v)
}
