package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/model"
)

// calibrationFile mirrors the on-disk layout of a calibration document.
type calibrationFile struct {
	HourlyRates         map[string]float64               `mapstructure:"hourly_rates"`
	MaterialBaseCosts   map[string]float64               `mapstructure:"material_base_costs"`
	FixtureCosts        map[string]float64               `mapstructure:"fixture_costs"`
	HistoricalPricing   map[string]model.HistoricalRange `mapstructure:"historical_pricing"`
	LocationMultipliers map[string]float64               `mapstructure:"location_multipliers"`
	LocationConfidence  map[string]float64               `mapstructure:"location_confidence"`
	VAT                 struct {
		Rates           map[string]float64 `mapstructure:"rates"`
		Classifications map[string]string  `mapstructure:"classifications"`
	} `mapstructure:"vat"`
}

// LoadCalibration decodes the calibration tables found at the root of v.
// Unknown task names or VAT classes are rejected.
func LoadCalibration(v *viper.Viper) (model.Calibration, error) {
	var raw calibrationFile
	if err := v.Unmarshal(&raw); err != nil {
		return model.Calibration{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	var cal model.Calibration
	var err error

	if cal.HourlyRates, err = taskKeyed(raw.HourlyRates, "hourly_rates"); err != nil {
		return model.Calibration{}, err
	}
	if cal.MaterialBaseCosts, err = taskKeyed(raw.MaterialBaseCosts, "material_base_costs"); err != nil {
		return model.Calibration{}, err
	}
	if cal.HistoricalPricing, err = taskKeyed(raw.HistoricalPricing, "historical_pricing"); err != nil {
		return model.Calibration{}, err
	}

	if len(raw.FixtureCosts) > 0 {
		cal.FixtureCosts = raw.FixtureCosts
	}
	if len(raw.LocationMultipliers) > 0 {
		cal.LocationMultipliers = raw.LocationMultipliers
	}
	if len(raw.LocationConfidence) > 0 {
		cal.LocationConfidence = raw.LocationConfidence
	}

	if len(raw.VAT.Rates) > 0 {
		cal.VATRates = make(map[model.VATClass]float64, len(raw.VAT.Rates))
		for name, rate := range raw.VAT.Rates {
			class, err := model.ParseVATClass(name)
			if err != nil {
				return model.Calibration{}, fmt.Errorf("%w: vat.rates: %w", common.ErrInvalidConfig, err)
			}
			cal.VATRates[class] = rate
		}
	}
	if len(raw.VAT.Classifications) > 0 {
		cal.VATClasses = make(map[model.TaskType]model.VATClass, len(raw.VAT.Classifications))
		for name, className := range raw.VAT.Classifications {
			task, err := model.ParseTaskType(name)
			if err != nil {
				return model.Calibration{}, fmt.Errorf("%w: vat.classifications: %w", common.ErrInvalidConfig, err)
			}
			class, err := model.ParseVATClass(className)
			if err != nil {
				return model.Calibration{}, fmt.Errorf("%w: vat.classifications: %w", common.ErrInvalidConfig, err)
			}
			cal.VATClasses[task] = class
		}
	}

	return cal, nil
}

// ReadCalibrationFile loads a standalone calibration document.
func ReadCalibrationFile(path string) (model.Calibration, *viper.Viper, error) {
	if path == "" {
		return model.Calibration{}, nil, fmt.Errorf("%w: calibration path", common.ErrMissingConfig)
	}
	v := viper.New()
	v.SetConfigFile(ExpandPath(path))
	if err := v.ReadInConfig(); err != nil {
		return model.Calibration{}, nil, fmt.Errorf("failed to read calibration %s: %w", path, err)
	}

	cal, err := LoadCalibration(v)
	if err != nil {
		return model.Calibration{}, nil, err
	}
	return cal, v, nil
}

// WatchCalibration re-decodes the calibration every time the file backing v
// changes and hands the result to apply. Decoding errors are logged and the
// previous tables stay in force.
func WatchCalibration(v *viper.Viper, logger *slog.Logger, apply func(model.Calibration)) {
	if logger == nil {
		logger = slog.Default()
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		cal, err := LoadCalibration(v)
		if err != nil {
			logger.Warn("ignoring invalid calibration update",
				"file", e.Name,
				"error", err)
			return
		}

		logger.Info("calibration reloaded", "file", e.Name, "op", strings.ToLower(e.Op.String()))
		apply(cal)
	})
	v.WatchConfig()
}

func taskKeyed[V any](in map[string]V, section string) (map[model.TaskType]V, error) {
	if len(in) == 0 {
		return nil, nil
	}

	out := make(map[model.TaskType]V, len(in))
	for name, value := range in {
		task, err := model.ParseTaskType(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, section, err)
		}
		out[task] = value
	}
	return out, nil
}
