package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var _ Codec = jsonCodec{} // ensure jsonCodec implements Codec.

// rowsJSON keeps numbers as text while decoding and writes objects with
// sorted keys so saved files diff cleanly.
var rowsJSON = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
	UseNumber:   true,
}.Froze()

// jsonCodec stores a collection as a pretty printed array of objects.
type jsonCodec struct{}

// Decode reads an array of flat objects. Numbers and booleans are turned
// into their text form; nested values are rejected.
func (jsonCodec) Decode(r io.Reader, _ Schema) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Row{}, nil
	}
	var objects []map[string]interface{}
	if err = rowsJSON.Unmarshal(data, &objects); err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(objects))
	for i, obj := range objects {
		if obj == nil {
			return nil, fmt.Errorf("record %d is null", i)
		}
		row := make(Row, len(obj))
		for k, v := range obj {
			text, err := jsonValueToText(v)
			if err != nil {
				return nil, fmt.Errorf("record %d field %q: %w", i, k, err)
			}
			row[k] = text
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Encode writes the schema columns of each row, indented by four spaces.
func (jsonCodec) Encode(w io.Writer, schema Schema, rows []Row) error {
	objects := make([]Row, 0, len(rows))
	for _, row := range rows {
		obj := make(Row, len(schema.Fields))
		for _, col := range schema.Columns() {
			obj[col] = row[col]
		}
		objects = append(objects, obj)
	}
	data, err := rowsJSON.MarshalIndent(objects, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func jsonValueToText(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case fmt.Stringer: // json.Number
		return val.String(), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}
