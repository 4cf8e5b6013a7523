// Package storage persists the inventory as a flat text file, one record per
// line: "name quantity price expiryDate shelf".
package storage

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/giygas/pharmacy-api/inventory"
	"github.com/giygas/pharmacy-api/logging"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

const fieldsPerRecord = 5

// Encode writes every record of idx in ascending name order
func Encode(w io.Writer, idx *inventory.Index) error {
	bw := bufio.NewWriter(w)
	var err error
	idx.Walk(func(m *inventory.Medicine) bool {
		_, err = fmt.Fprintf(bw, "%s %d %s %s %s\n",
			m.Name, m.Quantity, m.Price.StringFixed(inventory.PriceDecimals), m.ExpiryDate, m.Shelf)
		return err == nil
	})
	if err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush records: %w", err)
	}
	return nil
}

// Decode reads records until end of input or the first malformed record and
// inserts them into a new index. A malformed record is not an error: loading
// simply stops there and the records read so far are kept.
func Decode(r io.Reader) (*inventory.Index, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory data: %w", err)
	}

	// Files edited on legacy systems may be latin-1 rather than UTF-8.
	var reader io.Reader
	if utf8.Valid(content) {
		reader = bytes.NewReader(content)
	} else {
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(content))
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 4096), 1*1024*1024)
	scanner.Split(bufio.ScanWords)

	idx := inventory.NewIndex()
	fields := make([]string, 0, fieldsPerRecord)
	records := 0

	for scanner.Scan() {
		fields = append(fields, scanner.Text())
		if len(fields) < fieldsPerRecord {
			continue
		}

		m, ok := parseRecord(fields)
		if !ok {
			logging.Warn("Stopped loading inventory at malformed record",
				"record", records+1,
				"fields", fields,
			)
			return idx, nil
		}
		if err := idx.Insert(m); err != nil {
			logging.Warn("Stopped loading inventory at unmergeable record",
				"record", records+1,
				"error", err,
			)
			return idx, nil
		}
		records++
		fields = fields[:0]
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan inventory data: %w", err)
	}

	if len(fields) > 0 {
		logging.Warn("Ignoring truncated trailing record", "fields", fields)
	}
	logging.Debug("Inventory decoded", "records", records, "medicines", idx.Len())
	return idx, nil
}

func parseRecord(fields []string) (inventory.Medicine, bool) {
	qty, err := strconv.Atoi(fields[1])
	if err != nil || qty < 0 {
		return inventory.Medicine{}, false
	}
	price, err := decimal.NewFromString(fields[2])
	if err != nil {
		return inventory.Medicine{}, false
	}
	return inventory.Medicine{
		Name:       fields[0],
		Quantity:   qty,
		Price:      price.Round(inventory.PriceDecimals),
		ExpiryDate: fields[3],
		Shelf:      fields[4],
	}, true
}
