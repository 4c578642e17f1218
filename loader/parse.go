package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

func parseMarkdown(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read markdown: %w", err)
	}
	return string(data), nil
}

func parsePDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, reader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return normalizePlainText(sb.String()), nil
}

func normalizePlainText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// parseCSV flattens every row into "Header: value" lines, one row per
// paragraph, and returns the column headers as tags — grounded on the
// teacher's ingestion/parsers.go csvParser.Parse / formatCSVRow.
func parseCSV(path string) (string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return "", nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil, nil
	}

	headers := records[0]
	rows := records[1:]

	tags := make([]string, 0, len(headers))
	for _, header := range headers {
		header = strings.TrimSpace(header)
		if header != "" {
			tags = append(tags, header)
		}
	}

	var sb strings.Builder
	for idx, row := range rows {
		sb.WriteString(formatCSVRow(headers, row, idx))
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String()), tags, nil
}

func formatCSVRow(headers, row []string, idx int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Row %d", idx+1)

	limit := len(headers)
	if len(row) < limit {
		limit = len(row)
	}
	for i := 0; i < limit; i++ {
		header := strings.TrimSpace(headers[i])
		if header == "" {
			header = fmt.Sprintf("Column %d", i+1)
		}
		sb.WriteString("\n")
		sb.WriteString(header)
		sb.WriteString(": ")
		sb.WriteString(strings.TrimSpace(row[i]))
	}
	for i := len(headers); i < len(row); i++ {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "Extra %d: %s", i+1, strings.TrimSpace(row[i]))
	}
	return sb.String()
}
