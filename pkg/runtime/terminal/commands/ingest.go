package commands

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const defaultBatchSize = 1000

var requiredColumns = []string{"id", "entity", "occurred_at"}

type IngestCmd struct {
	load      Loader
	fs        afero.Fs
	batchSize int
}

func NewIngestCmd(load Loader, fs afero.Fs) *cobra.Command {
	ic := &IngestCmd{load: load, fs: fs}
	cmd := &cobra.Command{
		Use:   "ingest <file.csv>",
		Short: "Load traffic records from a CSV file into the embedded database",
		Long: "The CSV file must start with a header row. Recognised columns are id, entity, category, " +
			"occurred_at (RFC 3339 or YYYY-MM-DD), count, amount, is_test and is_refund.",
		Args: cobra.ExactArgs(1),
		RunE: ic.run,
	}
	cmd.Flags().IntVar(&ic.batchSize, "batch-size", defaultBatchSize, "Records written per transaction")
	return cmd
}

func (ic *IngestCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := ic.fs.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	services, err := ic.load(ctx)
	if err != nil {
		return err
	}

	batchSize := ic.batchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	total := 0
	err = ReadRecords(f, batchSize, func(batch []store.TrafficRecord) error {
		if err := services.Ingester.AddAll(ctx, batch); err != nil {
			return fmt.Errorf("failed to store records %d..%d: %w", total+1, total+len(batch), err)
		}
		total += len(batch)
		return nil
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "ingested %d records from %s\n", total, args[0])
	return err
}

// ReadRecords parses CSV traffic records and hands them to fn in batches of at most batchSize.
func ReadRecords(r io.Reader, batchSize int, fn func([]store.TrafficRecord) error) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("missing required column %q", name)
		}
	}

	batch := make([]store.TrafficRecord, 0, batchSize)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		record, err := parseRecord(columns, row)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, record)
		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = make([]store.TrafficRecord, 0, batchSize)
		}
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

func parseRecord(columns map[string]int, row []string) (store.TrafficRecord, error) {
	get := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	record := store.TrafficRecord{
		ID:       get("id"),
		Entity:   get("entity"),
		Category: get("category"),
		Count:    1,
	}
	if record.ID == "" || record.Entity == "" {
		return record, errors.New("id and entity are required")
	}

	occurredAt, err := parseTime(get("occurred_at"))
	if err != nil {
		return record, err
	}
	record.OccurredAt = occurredAt

	if v := get("count"); v != "" {
		if record.Count, err = strconv.ParseInt(v, 10, 64); err != nil {
			return record, fmt.Errorf("invalid count %q", v)
		}
	}
	if v := get("amount"); v != "" {
		if record.Amount, err = strconv.ParseFloat(v, 64); err != nil {
			return record, fmt.Errorf("invalid amount %q", v)
		}
	}
	if record.IsTest, err = parseBool(get("is_test")); err != nil {
		return record, err
	}
	if record.IsRefund, err = parseBool(get("is_refund")); err != nil {
		return record, err
	}
	return record, nil
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid occurred_at %q", v)
}

func parseBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", v)
	}
	return b, nil
}
