package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/viktsys/tradestore/models"
)

// ReadFile loads trade payloads from a .json, .yaml/.yml or .csv file.
func ReadFile(path string) ([]models.TradePayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var payloads []models.TradePayload
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		payloads, err = ParseJSON(f)
	case ".yaml", ".yml":
		payloads, err = ParseYAML(f)
	case ".csv":
		payloads, err = ParseCSV(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q: %s", ext, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return payloads, nil
}

// ParseJSON expects an array of trade objects.
func ParseJSON(r io.Reader) ([]models.TradePayload, error) {
	var payloads []models.TradePayload
	if err := json.NewDecoder(r).Decode(&payloads); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return payloads, nil
}

// ParseYAML expects a sequence of trade mappings. Values go through JSON so
// numbers land in the same decimal decoding as the API.
func ParseYAML(r io.Reader) ([]models.TradePayload, error) {
	var docs []map[string]any
	if err := yaml.NewDecoder(r).Decode(&docs); err != nil {
		if err == io.EOF {
			return []models.TradePayload{}, nil
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	b, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return ParseJSON(bytes.NewReader(b))
}

// ParseCSV reads a header row naming the columns (symbol, quantity, price,
// side, and optionally trader_id, account, notes) followed by one trade per
// line. Semicolon separated files are detected from the header, and decimal
// commas are accepted.
func ParseCSV(r io.Reader) ([]models.TradePayload, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(head)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []models.TradePayload{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	payloads := make([]models.TradePayload, 0)
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		p, err := parseCSVRecord(columns, record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

func detectDelimiter(head []byte) rune {
	firstLine, _, _ := bytes.Cut(head, []byte("\n"))
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		return ';'
	}
	return ','
}

func parseCSVRecord(columns map[string]int, record []string) (models.TradePayload, error) {
	cell := func(name string) (string, bool) {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return "", false
		}
		v := strings.TrimSpace(record[i])
		return v, v != ""
	}
	text := func(name string) *string {
		if v, ok := cell(name); ok {
			return &v
		}
		return nil
	}

	var p models.TradePayload
	p.Symbol = text("symbol")
	p.Side = text("side")
	p.TraderID = text("trader_id")
	p.Account = text("account")
	p.Notes = text("notes")

	for _, f := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"quantity", &p.Quantity},
		{"price", &p.Price},
	} {
		v, ok := cell(f.name)
		if !ok {
			continue
		}
		d, err := parseDecimal(v)
		if err != nil {
			return p, fmt.Errorf("invalid %s format: %w", f.name, err)
		}
		*f.dst = &d
	}
	return p, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}
