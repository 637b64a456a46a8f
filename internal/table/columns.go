package table

import (
	"fmt"
	"log"
	"sort"

	"github.com/lox/nodccalc/internal/models"
)

// Param names a value column and its paired flag column.
type Param struct {
	Value string `yaml:"value" validate:"required"`
	Flag  string `yaml:"flag"`
}

// ColumnMap maps each parameter to the column names of one naming scheme.
type ColumnMap struct {
	Ammonium     Param `yaml:"ammonium"`
	Nitrite      Param `yaml:"nitrite"`
	Nitrate      Param `yaml:"nitrate"`
	NOx          Param `yaml:"nox"`
	Sulfide      Param `yaml:"sulfide"`
	BottleOxygen Param `yaml:"bottle_oxygen"`
	CTDOxygen    Param `yaml:"ctd_oxygen"`

	Salinity    string `yaml:"salinity" validate:"required"`
	Temperature string `yaml:"temperature" validate:"required"`
	Depth       string `yaml:"depth" validate:"required"`

	Output OutputColumns `yaml:"output"`
}

type OutputColumns struct {
	NOxCorrected     string `yaml:"nox_corrected" validate:"required"`
	DIN              string `yaml:"din" validate:"required"`
	Oxygen           string `yaml:"oxygen" validate:"required"`
	OxygenSaturation string `yaml:"oxygen_saturation" validate:"required"`
	DINRule          string `yaml:"din_rule"`
	OxygenRule       string `yaml:"oxygen_rule"`
}

func defaultOutput() OutputColumns {
	return OutputColumns{
		NOxCorrected:     "NTRZ_corrected",
		DIN:              "din",
		Oxygen:           "o2",
		OxygenSaturation: "oxygen_saturation",
		DINRule:          "din_rule",
		OxygenRule:       "o2_rule",
	}
}

// NODCColumns is the uppercase parameter-code scheme.
func NODCColumns() ColumnMap {
	return ColumnMap{
		Ammonium:     Param{Value: "AMON", Flag: "Q_AMON"},
		Nitrite:      Param{Value: "NTRI", Flag: "Q_NTRI"},
		Nitrate:      Param{Value: "NTRA", Flag: "Q_NTRA"},
		NOx:          Param{Value: "NTRZ", Flag: "Q_NTRZ"},
		Sulfide:      Param{Value: "H2S", Flag: "Q_H2S"},
		BottleOxygen: Param{Value: "DOXY_BTL", Flag: "Q_DOXY_BTL"},
		CTDOxygen:    Param{Value: "DOXY_CTD", Flag: "Q_DOXY_CTD"},
		Salinity:     "SALT",
		Temperature:  "TEMP",
		Depth:        "DEPH",
		Output:       defaultOutput(),
	}
}

// DIVAColumns is the lowercase chemical-name scheme.
func DIVAColumns() ColumnMap {
	return ColumnMap{
		Ammonium:     Param{Value: "nh4", Flag: "qnh4"},
		Nitrite:      Param{Value: "no2", Flag: "qno2"},
		Nitrate:      Param{Value: "no3", Flag: "qno3"},
		NOx:          Param{Value: "nox", Flag: "qnox"},
		Sulfide:      Param{Value: "h2s", Flag: "qh2s"},
		BottleOxygen: Param{Value: "o2_btl", Flag: "qo2_btl"},
		CTDOxygen:    Param{Value: "o2_ctd", Flag: "qo2_ctd"},
		Salinity:     "salt",
		Temperature:  "temp",
		Depth:        "depth",
		Output:       defaultOutput(),
	}
}

var schemes = map[string]func() ColumnMap{
	"nodc": NODCColumns,
	"diva": DIVAColumns,
}

// Scheme returns a built-in column map by name.
func Scheme(name string) (ColumnMap, error) {
	fn, ok := schemes[name]
	if !ok {
		return ColumnMap{}, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
	return fn(), nil
}

func SchemeNames() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FlagColumns lists every flag column name the map refers to.
func (c ColumnMap) FlagColumns() []string {
	var out []string
	for _, p := range c.params() {
		if p.param.Flag != "" {
			out = append(out, p.param.Flag)
		}
	}
	return out
}

type namedParam struct {
	param    Param
	optional bool
	target   func(s *models.Sample) *models.Measurement
}

func (c ColumnMap) params() []namedParam {
	return []namedParam{
		{c.Ammonium, false, func(s *models.Sample) *models.Measurement { return &s.Ammonium }},
		{c.Nitrite, false, func(s *models.Sample) *models.Measurement { return &s.Nitrite }},
		{c.Nitrate, false, func(s *models.Sample) *models.Measurement { return &s.Nitrate }},
		{c.NOx, false, func(s *models.Sample) *models.Measurement { return &s.NOx }},
		{c.Sulfide, true, func(s *models.Sample) *models.Measurement { return &s.Sulfide }},
		{c.BottleOxygen, false, func(s *models.Sample) *models.Measurement { return &s.BottleOxygen }},
		{c.CTDOxygen, true, func(s *models.Sample) *models.Measurement { return &s.CTDOxygen }},
	}
}

// Samples extracts one Sample per row. Sulfide, CTD oxygen, salinity,
// temperature and depth columns may be absent, in which case those values
// are missing for every row. An absent flag column reads as empty flags.
func Samples(f *Frame, cols ColumnMap) ([]models.Sample, error) {
	samples := make([]models.Sample, f.Len())

	for _, p := range cols.params() {
		if p.optional && !f.Has(p.param.Value) {
			log.Printf("table: column %s absent, treating as missing", p.param.Value)
			continue
		}
		values, err := f.Float(p.param.Value)
		if err != nil {
			return nil, err
		}

		var flags []string
		if p.param.Flag != "" && f.Has(p.param.Flag) {
			if flags, err = f.Text(p.param.Flag); err != nil {
				return nil, err
			}
		} else if p.param.Flag != "" {
			log.Printf("table: flag column %s absent, treating flags as empty", p.param.Flag)
		}

		for i := range samples {
			m := p.target(&samples[i])
			m.Value = models.Null(values[i])
			if flags != nil {
				m.Flag = flags[i]
			}
		}
	}

	physics := []struct {
		name   string
		target func(s *models.Sample, v float64)
	}{
		{cols.Salinity, func(s *models.Sample, v float64) { s.Salinity = models.Null(v) }},
		{cols.Temperature, func(s *models.Sample, v float64) { s.Temperature = models.Null(v) }},
		{cols.Depth, func(s *models.Sample, v float64) { s.Depth = models.Null(v) }},
	}
	for _, p := range physics {
		if !f.Has(p.name) {
			log.Printf("table: column %s absent, saturation will be undefined", p.name)
			continue
		}
		values, err := f.Float(p.name)
		if err != nil {
			return nil, err
		}
		for i := range samples {
			p.target(&samples[i], values[i])
		}
	}

	return samples, nil
}

// WriteDerived appends the derived columns to f.
func WriteDerived(f *Frame, out OutputColumns, derived []models.Derived) error {
	if len(derived) != f.Len() {
		return fmt.Errorf("%w: %d derived rows, frame has %d", ErrLength, len(derived), f.Len())
	}

	nox := make([]float64, len(derived))
	din := make([]float64, len(derived))
	o2 := make([]float64, len(derived))
	sat := make([]float64, len(derived))
	dinRule := make([]string, len(derived))
	o2Rule := make([]string, len(derived))

	for i, d := range derived {
		nox[i] = models.Float(d.NOxCorrected)
		din[i] = models.Float(d.DIN)
		o2[i] = models.Float(d.Oxygen)
		sat[i] = models.Float(d.OxygenSaturation)
		dinRule[i] = d.DINRule
		o2Rule[i] = d.OxygenRule
	}

	if err := f.SetFloat(out.NOxCorrected, nox); err != nil {
		return err
	}
	if err := f.SetFloat(out.DIN, din); err != nil {
		return err
	}
	if err := f.SetFloat(out.Oxygen, o2); err != nil {
		return err
	}
	if err := f.SetFloat(out.OxygenSaturation, sat); err != nil {
		return err
	}
	if out.DINRule != "" {
		if err := f.SetText(out.DINRule, dinRule); err != nil {
			return err
		}
	}
	if out.OxygenRule != "" {
		if err := f.SetText(out.OxygenRule, o2Rule); err != nil {
			return err
		}
	}
	return nil
}
