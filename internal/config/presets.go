package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"storage-cycles/internal/model"
)

// presetFile is the on-disk shape of a storage preset (YAML).
type presetFile struct {
	Name    string              `yaml:"name"`
	Storage model.StorageParams `yaml:"storage"`
}

// LoadPreset reads a storage preset YAML.
func LoadPreset(path string) (model.StorageParams, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.StorageParams{}, err
	}
	var p presetFile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return model.StorageParams{}, fmt.Errorf("parse preset %s: %w", path, err)
	}
	return p.Storage, nil
}

// MergeStorage overlays non-zero fields from override onto base. Used
// when a preset file supplies defaults and the request overrides some of
// them.
func MergeStorage(base, override model.StorageParams) model.StorageParams {
	out := base
	if override.CapacityKWh != 0 {
		out.CapacityKWh = override.CapacityKWh
	}
	if override.CRate != 0 {
		out.CRate = override.CRate
	}
	if override.Efficiency != 0 {
		out.Efficiency = override.Efficiency
	}
	if override.DepthOfDischarge != 0 {
		out.DepthOfDischarge = override.DepthOfDischarge
	}
	// SOC bounds may legitimately be 0, but presets always set both.
	if override.SOCMin != 0 {
		out.SOCMin = override.SOCMin
	}
	if override.SOCMax != 0 {
		out.SOCMax = override.SOCMax
	}
	if override.InitialSOC != 0 {
		out.InitialSOC = override.InitialSOC
	}
	if override.ReserveChargeKW != 0 {
		out.ReserveChargeKW = override.ReserveChargeKW
	}
	if override.ReserveDischargeKW != 0 {
		out.ReserveDischargeKW = override.ReserveDischargeKW
	}
	if override.Metering != "" {
		out.Metering = override.Metering
	}
	if override.TransformerKVA != 0 {
		out.TransformerKVA = override.TransformerKVA
	}
	if override.PowerFactor != 0 {
		out.PowerFactor = override.PowerFactor
	}
	if override.MergeThresholdMin != 0 {
		out.MergeThresholdMin = override.MergeThresholdMin
	}
	return out
}
