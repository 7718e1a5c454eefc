package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/renovation-quote/internal/cli"
	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/config"
	"github.com/Veraticus/renovation-quote/internal/engine"
	"github.com/Veraticus/renovation-quote/internal/labor"
	"github.com/Veraticus/renovation-quote/internal/materials"
	"github.com/Veraticus/renovation-quote/internal/vat"
)

// pipeline keeps concrete handles on the calculators so the rates command
// can report the tables the engine is actually using.
type pipeline struct {
	engine    *engine.Engine
	materials *materials.Model
	labor     *labor.Model
	vat       *vat.Rules
}

func buildPipeline(v *viper.Viper) (*pipeline, error) {
	rules, err := config.LoadRules(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}

	logger := slog.Default()
	p := &pipeline{
		materials: materials.New(),
		labor:     labor.New(),
		vat:       vat.New(),
	}

	deps := engine.DefaultDependencies(rules, logger)
	deps.Materials = p.materials
	deps.Labor = p.labor
	deps.Tax = p.vat

	p.engine = engine.NewWithDependencies(deps, rules, engine.Config{
		Logger:  logger,
		Version: version,
	})

	if sub := v.Sub("calibration"); sub != nil {
		cal, err := config.LoadCalibration(sub)
		if err != nil {
			return nil, fmt.Errorf("failed to load calibration from config: %w", err)
		}
		if err := p.engine.Recalibrate(cal); err != nil {
			return nil, err
		}
	}

	common.LogDebug("pricing pipeline ready", common.Fields{
		"locations":    len(rules.Locations),
		"property_age": rules.PropertyAgeYears,
	})
	return p, nil
}

func (p *pipeline) ratesView() cli.RatesView {
	return cli.RatesView{
		Materials: p.materials.Summary(),
		Labor:     p.labor.Summary(),
		VAT:       p.vat.Summary(),
		Rules:     p.engine.Rules(),
	}
}
