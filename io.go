package weights

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// SaveGraph serializes and saves the graph to a JSON file
func SaveGraph(g *Graph, filename string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// LoadGraph deserializes a graph saved by SaveGraph
func LoadGraph(filename string) (*Graph, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// validate checks the structural invariants of a decoded graph
func (g *Graph) validate() error {
	n := len(g.IDs)
	if _, err := indexOf(g.IDs); err != nil {
		return err
	}
	if len(g.Neighbours) != n || len(g.Weights) != n {
		return fmt.Errorf("%d ids, %d neighbour rows, %d weight rows: %w",
			n, len(g.Neighbours), len(g.Weights), ErrMalformed)
	}
	for i, row := range g.Neighbours {
		if len(row) != len(g.Weights[i]) {
			return fmt.Errorf("node %q: %d neighbours, %d weights: %w", g.IDs[i], len(row), len(g.Weights[i]), ErrMalformed)
		}
		for k, j := range row {
			if j < 0 || j >= n || j == i {
				return fmt.Errorf("node %q: bad neighbour index %d: %w", g.IDs[i], j, ErrMalformed)
			}
			if k > 0 && row[k-1] >= j {
				return fmt.Errorf("node %q: neighbours not strictly ascending: %w", g.IDs[i], ErrMalformed)
			}
		}
	}
	return nil
}

// WriteGAL writes the binary neighbour lists in PySAL GAL format.
// Weights are not part of GAL; use WriteGWT to keep them.
func WriteGAL(w io.Writer, g *Graph) error {
	if err := checkTextIDs(g.IDs); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", g.N())
	for i, row := range g.Neighbours {
		fmt.Fprintf(bw, "%s %d\n", g.IDs[i], len(row))
		names := make([]string, len(row))
		for k, j := range row {
			names[k] = g.IDs[j]
		}
		fmt.Fprintln(bw, strings.Join(names, " "))
	}
	return bw.Flush()
}

// ReadGAL parses a GAL file. Both the bare "n" header and the
// "0 n shapefile key" header are accepted.
func ReadGAL(r io.Reader) (*Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	header, ok := nextLine(sc)
	if !ok {
		return nil, fmt.Errorf("empty input: %w", ErrMalformed)
	}
	n, err := headerCount(header)
	if err != nil {
		return nil, err
	}

	var ids []string
	var names [][]string
	for len(ids) < n {
		line, ok := nextLine(sc)
		if !ok {
			return nil, fmt.Errorf("expected %d nodes, got %d: %w", n, len(ids), ErrMalformed)
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad node line %q: %w", line, ErrMalformed)
		}
		card, err := strconv.Atoi(parts[1])
		if err != nil || card < 0 {
			return nil, fmt.Errorf("bad cardinality in %q: %w", line, ErrMalformed)
		}
		var nb []string
		if card > 0 {
			line, ok = nextLine(sc)
			if !ok {
				return nil, fmt.Errorf("missing neighbours of %q: %w", parts[0], ErrMalformed)
			}
			nb = strings.Fields(line)
		}
		if len(nb) != card {
			return nil, fmt.Errorf("node %q: cardinality %d but %d neighbours: %w", parts[0], card, len(nb), ErrMalformed)
		}
		ids = append(ids, parts[0])
		names = append(names, nb)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	index, err := indexOf(ids)
	if err != nil {
		return nil, err
	}
	adj := make([]map[int]float64, n)
	for i, nb := range names {
		adj[i] = make(map[int]float64, len(nb))
		for _, name := range nb {
			j, ok := index[name]
			if !ok {
				return nil, fmt.Errorf("unknown neighbour %q of %q: %w", name, ids[i], ErrMalformed)
			}
			adj[i][j] = 1
		}
	}
	return fromAdjacency(ids, "gal", adj), nil
}

// WriteGWT writes every directed edge with its weight in PySAL GWT format
func WriteGWT(w io.Writer, g *Graph, key string) error {
	if err := checkTextIDs(g.IDs); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if key == "" {
		key = "id"
	}
	fmt.Fprintf(bw, "0 %d unknown %s\n", g.N(), key)
	for i, row := range g.Neighbours {
		for k, j := range row {
			fmt.Fprintf(bw, "%s %s %s\n", g.IDs[i], g.IDs[j], strconv.FormatFloat(g.Weights[i][k], 'g', -1, 64))
		}
	}
	return bw.Flush()
}

// ReadGWT parses a GWT file. GWT does not list islands, so ids supplies the
// full node order; with nil ids the order of first appearance is used and
// the node count in the header must be met.
func ReadGWT(r io.Reader, ids []string) (*Graph, error) {
	sc := bufio.NewScanner(r)
	header, ok := nextLine(sc)
	if !ok {
		return nil, fmt.Errorf("empty input: %w", ErrMalformed)
	}
	n, err := headerCount(header)
	if err != nil {
		return nil, err
	}

	type row struct {
		from, to string
		w        float64
	}
	var rows []row
	var seen []string
	known := make(map[string]bool)
	note := func(id string) {
		if !known[id] {
			known[id] = true
			seen = append(seen, id)
		}
	}
	for {
		line, ok := nextLine(sc)
		if !ok {
			break
		}
		parts := strings.Fields(line)
		if len(parts) != 3 {
			return nil, fmt.Errorf("bad edge line %q: %w", line, ErrMalformed)
		}
		w, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad weight in %q: %w", line, ErrMalformed)
		}
		note(parts[0])
		note(parts[1])
		rows = append(rows, row{parts[0], parts[1], w})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if ids == nil {
		ids = seen
	}
	if len(ids) != n {
		return nil, fmt.Errorf("header declares %d nodes, have %d ids: %w", n, len(ids), ErrMalformed)
	}
	index, err := indexOf(ids)
	if err != nil {
		return nil, err
	}
	adj := make([]map[int]float64, n)
	for i := range adj {
		adj[i] = make(map[int]float64)
	}
	for _, e := range rows {
		i, ok1 := index[e.from]
		j, ok2 := index[e.to]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("edge %s->%s references unknown id: %w", e.from, e.to, ErrMalformed)
		}
		if i == j {
			return nil, fmt.Errorf("self loop on %s: %w", e.from, ErrMalformed)
		}
		adj[i][j] = e.w
	}
	return fromAdjacency(ids, "gwt", adj), nil
}

func nextLine(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, true
		}
	}
	return "", false
}

func headerCount(header string) (int, error) {
	parts := strings.Fields(header)
	field := parts[0]
	if len(parts) >= 2 {
		field = parts[1]
	}
	n, err := strconv.Atoi(field)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad header %q: %w", header, ErrMalformed)
	}
	return n, nil
}

func indexOf(ids []string) (map[string]int, error) {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := m[id]; dup {
			return nil, fmt.Errorf("node %q listed twice: %w", id, ErrMalformed)
		}
		m[id] = i
	}
	return m, nil
}

// checkTextIDs rejects ids the whitespace separated formats cannot carry
func checkTextIDs(ids []string) error {
	for _, id := range ids {
		if id == "" || strings.IndexFunc(id, unicode.IsSpace) >= 0 {
			return fmt.Errorf("id %q cannot be written as a single token: %w", id, ErrInvalidParameter)
		}
	}
	return nil
}
