package nutrients

import (
	"database/sql"

	"github.com/lox/nodccalc/internal/quality"
)

// classification is the per-sample state the rules are evaluated against.
type classification struct {
	ammonium    quality.Class
	ammoniumVal float64
	nitrate     quality.Class
	nitrite     quality.Class
	nitrox      quality.Class

	sulfideValid bool
	lowOxygen    bool

	nox      sql.NullFloat64
	noxBelow bool
}

type rule struct {
	name string
	when func(c *classification) bool
	then func(c *classification) sql.NullFloat64
}

func buildRules(opts Options) []rule {
	rules := []rule{
		{
			name: RuleSulfidic,
			when: func(c *classification) bool {
				return c.sulfideValid && c.ammonium.Usable()
			},
			then: ammoniumOnly,
		},
		{
			name: RuleLowOxygen,
			when: func(c *classification) bool {
				return c.lowOxygen && c.ammonium.Usable()
			},
			then: lowOxygenSum(opts.LowOxygenAmmonium),
		},
		{
			name: RuleDetectionFloor,
			when: func(c *classification) bool {
				return (c.noxBelow || c.nitrate == quality.BelowDetection) &&
					c.ammonium == quality.BelowDetection &&
					c.nox.Valid
			},
			then: noxOnly,
		},
		{
			name: RuleOxicSum,
			when: func(c *classification) bool {
				return c.ammonium.Usable() &&
					c.ammonium != quality.BelowDetection &&
					!c.lowOxygen && !c.sulfideValid &&
					c.nox.Valid
			},
			then: func(c *classification) sql.NullFloat64 {
				return sql.NullFloat64{Float64: c.nox.Float64 + c.ammoniumVal, Valid: true}
			},
		},
		{
			name: RuleOxicNOx,
			when: func(c *classification) bool {
				return c.ammonium == quality.BelowDetection &&
					!c.lowOxygen && !c.sulfideValid &&
					c.nox.Valid
			},
			then: noxOnly,
		},
	}

	if !opts.RequireAmmonium {
		rules = append(rules, rule{
			name: RuleNOxWithoutAmmon,
			when: func(c *classification) bool {
				return !c.ammonium.Usable() &&
					!c.lowOxygen && !c.sulfideValid &&
					c.nox.Valid
			},
			then: noxOnly,
		})
	}

	return rules
}

func ammoniumOnly(c *classification) sql.NullFloat64 {
	return sql.NullFloat64{Float64: c.ammoniumVal, Valid: true}
}

func noxOnly(c *classification) sql.NullFloat64 {
	return c.nox
}

// lowOxygenSum adds whatever NOx remains to ammonium, skipping undefined
// operands. The sum is undefined only if nothing contributes.
func lowOxygenSum(policy LowOxygenPolicy) func(c *classification) sql.NullFloat64 {
	return func(c *classification) sql.NullFloat64 {
		var sum float64
		contributed := false

		if c.nox.Valid {
			sum += c.nox.Float64
			contributed = true
		}

		addAmmonium := c.ammonium.Usable()
		if policy == SkipBelowDetectionAmmonium && c.ammonium == quality.BelowDetection {
			addAmmonium = false
		}
		if addAmmonium {
			sum += c.ammoniumVal
			contributed = true
		}

		if !contributed {
			return sql.NullFloat64{}
		}
		return sql.NullFloat64{Float64: sum, Valid: true}
	}
}
