package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lox/nodccalc/internal/config"
	"github.com/lox/nodccalc/internal/metrics"
	"github.com/lox/nodccalc/internal/models"
	"github.com/lox/nodccalc/internal/nutrients"
	"github.com/lox/nodccalc/internal/oxygen"
	"github.com/lox/nodccalc/internal/seawater"
	"github.com/lox/nodccalc/internal/table"
)

var nan = math.NaN()

type row struct {
	amon, ntri, ntra, ntrz, h2s, btl, ctd float64
	qamon, qntri, qntra, qntrz, qh2s      string
	qbtl, qctd                            string
	salt, temp, deph                      float64
}

func buildFrame(t *testing.T, rows []row, withSulfide bool) *table.Frame {
	t.Helper()
	f := table.NewFrame(len(rows))

	floats := map[string]func(r row) float64{
		"AMON":     func(r row) float64 { return r.amon },
		"NTRI":     func(r row) float64 { return r.ntri },
		"NTRA":     func(r row) float64 { return r.ntra },
		"NTRZ":     func(r row) float64 { return r.ntrz },
		"DOXY_BTL": func(r row) float64 { return r.btl },
		"DOXY_CTD": func(r row) float64 { return r.ctd },
		"SALT":     func(r row) float64 { return r.salt },
		"TEMP":     func(r row) float64 { return r.temp },
		"DEPH":     func(r row) float64 { return r.deph },
	}
	texts := map[string]func(r row) string{
		"Q_AMON":     func(r row) string { return r.qamon },
		"Q_NTRI":     func(r row) string { return r.qntri },
		"Q_NTRA":     func(r row) string { return r.qntra },
		"Q_NTRZ":     func(r row) string { return r.qntrz },
		"Q_DOXY_BTL": func(r row) string { return r.qbtl },
		"Q_DOXY_CTD": func(r row) string { return r.qctd },
	}
	if withSulfide {
		floats["H2S"] = func(r row) float64 { return r.h2s }
		texts["Q_H2S"] = func(r row) string { return r.qh2s }
	}

	for name, fn := range floats {
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = fn(r)
		}
		if err := f.SetFloat(name, col); err != nil {
			t.Fatal(err)
		}
	}
	for name, fn := range texts {
		col := make([]string, len(rows))
		for i, r := range rows {
			col[i] = fn(r)
		}
		if err := f.SetText(name, col); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

var scenarioRows = []row{
	// sulfidic: DIN is ammonium, oxygen is the anoxic default
	{amon: 3, ntri: 1, ntra: 2, ntrz: nan, h2s: 5, btl: 5, ctd: nan, qamon: "1", qntri: "1", qntra: "1", qh2s: "1", qbtl: "1", salt: 30, temp: 10, deph: 0},
	// oxic full sum
	{amon: 5, ntri: 2, ntra: 3, ntrz: nan, h2s: nan, btl: 5, ctd: nan, qamon: "1", qntri: "1", qntra: "1", qbtl: "1", salt: 30, temp: 10, deph: 0},
	// low oxygen with below-detection ammonium
	{amon: 1, ntri: nan, ntra: nan, ntrz: 3, h2s: nan, btl: 1, ctd: nan, qamon: "6", qntrz: "1", qbtl: "1", salt: 30, temp: 10, deph: 10},
	// nothing usable, missing salinity
	{amon: nan, ntri: nan, ntra: nan, ntrz: nan, h2s: nan, btl: nan, ctd: nan, salt: nan, temp: 10, deph: 0},
	// suspect bottle, CTD used
	{amon: 2, ntri: nan, ntra: nan, ntrz: 4, h2s: nan, btl: 5, ctd: 6, qamon: "1", qntrz: "1", qbtl: "S", qctd: "1", salt: 30, temp: 10, deph: 0},
}

func TestProcess(t *testing.T) {
	f := buildFrame(t, scenarioRows, true)
	p := New(config.NODC(), seawater.EOS80{})

	if err := p.Process(context.Background(), f); err != nil {
		t.Fatalf("Process: %v", err)
	}

	din, _ := f.Float("din")
	if diff := cmp.Diff([]float64{3, 10, 4, nan, 6}, din, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("din mismatch (-want +got):\n%s", diff)
	}

	o2, _ := f.Float("o2")
	if diff := cmp.Diff([]float64{0.01, 5, 1, nan, 6}, o2, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("o2 mismatch (-want +got):\n%s", diff)
	}

	nox, _ := f.Float("NTRZ_corrected")
	if diff := cmp.Diff([]float64{3, 5, 3, nan, 4}, nox, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("NTRZ_corrected mismatch (-want +got):\n%s", diff)
	}

	sat, _ := f.Float("oxygen_saturation")
	if math.Abs(sat[1]-76.689) > 1e-3 {
		t.Errorf("saturation = %v, want 76.689", sat[1])
	}
	if !math.IsNaN(sat[3]) {
		t.Errorf("saturation with missing salinity = %v, want NaN", sat[3])
	}

	rules, _ := f.Text("din_rule")
	want := []string{nutrients.RuleSulfidic, nutrients.RuleOxicSum, nutrients.RuleLowOxygen, nutrients.RuleInsufficientData, nutrients.RuleOxicSum}
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Errorf("din_rule mismatch (-want +got):\n%s", diff)
	}

	sources, _ := f.Text("o2_rule")
	if sources[0] != oxygen.SourceSulfide || sources[4] != oxygen.SourceCTD {
		t.Errorf("o2_rule = %v", sources)
	}
}

func TestProcessWithoutSulfideColumns(t *testing.T) {
	f := buildFrame(t, scenarioRows, false)
	p := New(config.NODC(), seawater.EOS80{})

	if err := p.Process(context.Background(), f); err != nil {
		t.Fatalf("Process: %v", err)
	}

	din, _ := f.Float("din")
	// without sulfide the first row falls through to the oxic sum
	if din[0] != 6 {
		t.Errorf("din[0] = %v, want 6", din[0])
	}
	o2, _ := f.Float("o2")
	if o2[0] != 5 {
		t.Errorf("o2[0] = %v, want bottle value 5", o2[0])
	}
}

func TestProcessWithoutPhysicsColumns(t *testing.T) {
	full := buildFrame(t, scenarioRows, true)
	f := table.NewFrame(full.Len())
	for _, name := range full.Columns() {
		switch name {
		case "SALT", "TEMP", "DEPH":
			continue
		}
		var err error
		if full.IsFloat(name) {
			col, _ := full.Float(name)
			err = f.SetFloat(name, col)
		} else {
			col, _ := full.Text(name)
			err = f.SetText(name, col)
		}
		if err != nil {
			t.Fatal(err)
		}
	}

	if err := New(config.NODC(), seawater.EOS80{}).Process(context.Background(), f); err != nil {
		t.Fatalf("Process: %v", err)
	}

	din, _ := f.Float("din")
	if diff := cmp.Diff([]float64{3, 10, 4, nan, 6}, din, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("din mismatch (-want +got):\n%s", diff)
	}
	o2, _ := f.Float("o2")
	if diff := cmp.Diff([]float64{0.01, 5, 1, nan, 6}, o2, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("o2 mismatch (-want +got):\n%s", diff)
	}
	sat, _ := f.Float("oxygen_saturation")
	for i, v := range sat {
		if !math.IsNaN(v) {
			t.Errorf("saturation[%d] = %v, want NaN without salinity/temperature/depth", i, v)
		}
	}
}

func TestProcessMissingRequiredColumn(t *testing.T) {
	f := table.NewFrame(1)
	p := New(config.NODC(), seawater.EOS80{})

	err := p.Process(context.Background(), f)
	if !errors.Is(err, table.ErrMissingColumn) {
		t.Errorf("err = %v, want ErrMissingColumn", err)
	}
}

func TestDeriveAllMatchesSerial(t *testing.T) {
	var samples []models.Sample
	values := []float64{nan, 0.05, 1, 4}
	flags := []string{"1", "6", "4", ">"}
	for i := range 400 {
		v := func(k int) float64 { return values[(i/(k+1))%len(values)] }
		fl := func(k int) string { return flags[(i*(k+3))%len(flags)] }
		samples = append(samples, models.Sample{
			Ammonium:     models.Reading(v(0), fl(0)),
			Nitrite:      models.Reading(v(1), fl(1)),
			Nitrate:      models.Reading(v(2), fl(2)),
			NOx:          models.Reading(v(3), fl(3)),
			Sulfide:      models.Reading(v(4), fl(4)),
			BottleOxygen: models.Reading(v(5)*2, fl(5)),
			CTDOxygen:    models.Reading(v(6)*3, fl(6)),
			Salinity:     models.Null(30),
			Temperature:  models.Null(8),
			Depth:        models.Null(float64(i)),
		})
	}

	p := New(config.NODC(), seawater.EOS80{}, WithWorkers(4), WithChunkSize(7))

	serial := make([]models.Derived, len(samples))
	for i, s := range samples {
		serial[i] = p.Derive(s)
	}

	parallel, err := p.DeriveAll(context.Background(), samples)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Errorf("parallel result differs from serial (-serial +parallel):\n%s", diff)
	}
}

func TestDeriveAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(config.NODC(), seawater.EOS80{})
	_, err := p.DeriveAll(ctx, make([]models.Sample, 10))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDeriveAllEmpty(t *testing.T) {
	p := New(config.NODC(), seawater.EOS80{})
	out, err := p.DeriveAll(context.Background(), nil)
	if err != nil || len(out) != 0 {
		t.Errorf("DeriveAll(nil) = %v, %v", out, err)
	}
}

func TestDINOxygenSourceReconciled(t *testing.T) {
	rs := config.NODC()
	rs.DINOxygenSource = config.DINOxygenReconciled
	p := New(rs, seawater.EOS80{})

	// bottle is suspect but the CTD reads low oxygen
	s := models.Sample{
		Ammonium:     models.Reading(1, "6"),
		NOx:          models.Reading(3, "1"),
		BottleOxygen: models.Reading(6, "S"),
		CTDOxygen:    models.Reading(1.5, "1"),
	}
	got := p.Derive(s)
	if got.DINRule != nutrients.RuleLowOxygen || got.DIN.Float64 != 4 {
		t.Errorf("reconciled source: got %+v", got)
	}

	bottle := New(config.NODC(), seawater.EOS80{}).Derive(s)
	if bottle.DINRule != nutrients.RuleOxicNOx || bottle.DIN.Float64 != 3 {
		t.Errorf("bottle source: got %+v", bottle)
	}
}

func TestProcessRecordsMetrics(t *testing.T) {
	before := testutil.ToFloat64(metrics.RowsProcessed)
	sulfidic := testutil.ToFloat64(metrics.DINRuleApplied.WithLabelValues(nutrients.RuleSulfidic))

	f := buildFrame(t, scenarioRows, true)
	if err := New(config.NODC(), seawater.EOS80{}).Process(context.Background(), f); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(metrics.RowsProcessed) - before; got != float64(len(scenarioRows)) {
		t.Errorf("rows processed delta = %v, want %d", got, len(scenarioRows))
	}
	if got := testutil.ToFloat64(metrics.DINRuleApplied.WithLabelValues(nutrients.RuleSulfidic)) - sulfidic; got != 1 {
		t.Errorf("sulfidic rule delta = %v, want 1", got)
	}
}
