// Package keys derives deterministic cache keys from report filters.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/cache"
)

const (
	absent       = "null"
	dateLayout   = "2006-01-02"
	fragmentSize = 16
)

// Deriver turns a report filter into a stable digest.
//
// Contract:
// - Determinism: equal filters yield equal digests, absent fields are normalized to "null".
// - No side effects: safe for concurrent use.
type Deriver struct{}

func NewDeriver() Deriver {
	return Deriver{}
}

// Derive returns the hex SHA-256 of the canonical pipe-joined filter fields.
func (Deriver) Derive(f domain.ReportFilter) string {
	hash := sha256.Sum256([]byte(Canonical(f)))
	return hex.EncodeToString(hash[:])
}

// Fragment is a short, filename safe prefix of the digest.
func (d Deriver) Fragment(f domain.ReportFilter) string {
	return d.Derive(f)[:fragmentSize]
}

// ResultKey builds the result cache key for a logical query run with the filter.
func (d Deriver) ResultKey(queryType string, f domain.ReportFilter) cache.Key {
	return cache.Key{Type: queryType, Hash: d.Derive(f)}
}

// Canonical renders the filter fields in a fixed order:
// from|to|entity|dateFrom|dateTo|excludeTest|includeRefunds
func Canonical(f domain.ReportFilter) string {
	fields := []string{
		optional(f.FromPeriod),
		optional(f.ToPeriod),
		optional(f.Entity),
		absent,
		absent,
		strconv.FormatBool(f.Flags.ExcludeTest),
		strconv.FormatBool(f.Flags.IncludeRefunds),
	}
	if f.DateRange != nil {
		fields[3] = f.DateRange.From.Format(dateLayout)
		fields[4] = f.DateRange.To.Format(dateLayout)
	}
	for i, field := range fields {
		fields[i] = escape(field)
	}
	return strings.Join(fields, "|")
}

func optional(s *string) string {
	if s == nil {
		return absent
	}
	// quoted so that an entity literally named "null" differs from an absent one
	return strconv.Quote(*s)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
