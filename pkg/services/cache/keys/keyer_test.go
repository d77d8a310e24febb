package keys

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string {
	return &s
}

func TestDeriver_Determinism(t *testing.T) {
	d := NewDeriver()
	a := domain.ReportFilter{FromPeriod: ptr("202501"), ToPeriod: ptr("202503")}
	b := domain.ReportFilter{FromPeriod: ptr("202501"), ToPeriod: ptr("202503")}

	assert.Equal(t, d.Derive(a), d.Derive(b))
	assert.Len(t, d.Derive(a), 64)
	assert.Len(t, d.Fragment(a), 16)
	assert.Equal(t, d.Derive(a)[:16], d.Fragment(a))
	assert.Equal(t, `"202501"|"202503"|null|null|null|false|false`, Canonical(a))
}

func TestDeriver_DistinguishesAbsentFromLiteralNull(t *testing.T) {
	d := NewDeriver()
	absentEntity := domain.ReportFilter{}
	literal := domain.ReportFilter{Entity: ptr("null")}
	empty := domain.ReportFilter{Entity: ptr("")}

	assert.NotEqual(t, d.Derive(absentEntity), d.Derive(literal))
	assert.NotEqual(t, d.Derive(absentEntity), d.Derive(empty))
}

func TestDeriver_PipeInValuesDoesNotCollide(t *testing.T) {
	d := NewDeriver()
	a := domain.ReportFilter{FromPeriod: ptr("a|b"), Entity: ptr("c")}
	b := domain.ReportFilter{FromPeriod: ptr("a"), Entity: ptr("b|c")}
	assert.NotEqual(t, d.Derive(a), d.Derive(b))
}

func TestDeriver_SampledMutations(t *testing.T) {
	d := NewDeriver()
	rng := rand.New(rand.NewSource(42))
	day := func() time.Time {
		return time.Date(2025, time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
	}

	seen := map[string]string{}
	for i := 0; i < 2000; i++ {
		f := domain.ReportFilter{Flags: domain.ReportFlags{
			ExcludeTest:    rng.Intn(2) == 0,
			IncludeRefunds: rng.Intn(2) == 0,
		}}
		if rng.Intn(2) == 0 {
			f.FromPeriod = ptr(fmt.Sprintf("2025%02d", 1+rng.Intn(12)))
		}
		if rng.Intn(2) == 0 {
			f.ToPeriod = ptr(fmt.Sprintf("2026%02d", 1+rng.Intn(12)))
		}
		if rng.Intn(2) == 0 {
			f.Entity = ptr(fmt.Sprintf("isp-%d", rng.Intn(50)))
		}
		if rng.Intn(2) == 0 {
			from := day()
			f.DateRange = &domain.DateRange{From: from, To: from.AddDate(0, 0, rng.Intn(30))}
		}

		canonical := Canonical(f)
		hash := d.Derive(f)
		if prev, ok := seen[hash]; ok {
			require.Equal(t, prev, canonical, "distinct filters share a digest")
		}
		seen[hash] = canonical

		// every single-field mutation must change the digest
		mutated := f
		mutated.Flags.ExcludeTest = !f.Flags.ExcludeTest
		assert.NotEqual(t, hash, d.Derive(mutated))

		mutated = f
		mutated.Entity = ptr("mutated")
		if f.Entity == nil || *f.Entity != "mutated" {
			assert.NotEqual(t, hash, d.Derive(mutated))
		}

		mutated = f
		if f.DateRange == nil {
			mutated.DateRange = &domain.DateRange{From: day(), To: day()}
		} else {
			mutated.DateRange = &domain.DateRange{From: f.DateRange.From, To: f.DateRange.To.AddDate(0, 0, 1)}
		}
		assert.NotEqual(t, hash, d.Derive(mutated))
	}
}

func TestDeriver_ResultKey(t *testing.T) {
	d := NewDeriver()
	f := domain.ReportFilter{Entity: ptr("A")}
	k := d.ResultKey("monthly_by_entity", f)

	assert.Equal(t, "monthly_by_entity", k.Type)
	assert.Equal(t, d.Derive(f), k.Hash)
	assert.NoError(t, k.Validate())
}
