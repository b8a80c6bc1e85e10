// Package report parses registry report dumps: TABLE reports with headers
// and rows, and node dumps listing the objects of one type.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TypeTable is the report type of tabular dumps.
const TypeTable = "TABLE"

// ErrNotTable is returned for reports of another type.
var ErrNotTable = errors.New("report: not a TABLE report")

// Table is a parsed TABLE report. Cells keep their JSON values; numbers
// stay json.Number so their text survives unchanged.
type Table struct {
	Type    string
	Headers []string
	Rows    [][]any
}

type rawTable struct {
	Type   string `json:"type"`
	Result struct {
		Headers []struct {
			Name string `json:"name"`
		} `json:"headers"`
		Rows []struct {
			Values []any `json:"values"`
		} `json:"rows"`
	} `json:"result"`
}

// Parse decodes a TABLE report.
func Parse(data []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw rawTable
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("report: decode: %w", err)
	}
	if raw.Type != TypeTable {
		return nil, fmt.Errorf("%w: type %q", ErrNotTable, raw.Type)
	}

	t := &Table{Type: raw.Type}
	for _, h := range raw.Result.Headers {
		t.Headers = append(t.Headers, h.Name)
	}
	for _, r := range raw.Result.Rows {
		t.Rows = append(t.Rows, r.Values)
	}
	return t, nil
}

// Cell renders a cell value as text; null becomes the empty string.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}

// StringRows returns every row rendered with Cell.
func (t *Table) StringRows() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = Cell(v)
		}
		out = append(out, cells)
	}
	return out
}

// Pair is one row of a relation table: the uuids of the first two columns,
// in table order.
type Pair struct {
	A, B string
}

// Pairs returns the uuid pairs of a relation table. Rows with fewer than
// two values or an empty uuid are skipped.
func (t *Table) Pairs() ([]Pair, error) {
	if len(t.Headers) < 2 {
		return nil, errors.New("report: relation table needs at least two columns")
	}
	var out []Pair
	for _, row := range t.Rows {
		if len(row) < 2 {
			continue
		}
		a := strings.TrimSpace(Cell(row[0]))
		b := strings.TrimSpace(Cell(row[1]))
		if a == "" || b == "" {
			continue
		}
		out = append(out, Pair{A: a, B: b})
	}
	return out, nil
}

// Node is one object of a node dump.
type Node struct {
	UUID string
	Name string
}

// nameAttribute is the registry attribute carrying an object's name.
const nameAttribute = "Gen_Profil_nazov"

type rawNode struct {
	UUID       any    `json:"uuid"`
	Name       string `json:"name"`
	Attributes []struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	} `json:"attributes"`
}

// ParseNodes decodes a node dump: either {"result": [...]} or a bare list.
// Objects without a uuid are skipped.
func ParseNodes(data []byte) ([]Node, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var wrapped struct {
			Result []json.RawMessage `json:"result"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil || wrapped.Result == nil {
			return nil, errors.New("report: unrecognized node dump format")
		}
		items = wrapped.Result
	}

	var out []Node
	for _, item := range items {
		var rn rawNode
		if err := json.Unmarshal(item, &rn); err != nil {
			continue
		}
		id := strings.TrimSpace(Cell(rn.UUID))
		if id == "" {
			continue
		}
		name := rn.Name
		if name == "" {
			for _, a := range rn.Attributes {
				if a.Name == nameAttribute {
					name = Cell(a.Value)
					break
				}
			}
		}
		out = append(out, Node{UUID: id, Name: name})
	}
	return out, nil
}
