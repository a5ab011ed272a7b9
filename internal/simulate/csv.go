package simulate

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

func WritePointsCSV(path string, points []Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"timestamp",
		"load_kw",
		"tier",
		"mode",
		"price",
		"limit_kw",
		"slot",
		"battery_kw",
		"grid_kw",
		"load_with_storage_kw",
		"charge_kwh",
		"discharge_kwh",
		"cost",
		"revenue",
		"soc",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range points {
		row := []string{
			fmtTime(p.Timestamp),
			fmtFloat(p.LoadKW),
			p.Tier.String(),
			p.Mode.String(),
			fmtFloat(p.Price),
			fmtFloat(p.LimitKW),
			strconv.Itoa(p.Slot),
			fmtFloat(p.BatteryKW),
			fmtFloat(p.GridKW),
			fmtFloat(p.LoadWithStorageKW),
			fmtFloat(p.ChargeKWh),
			fmtFloat(p.DischargeKWh),
			fmtFloat(p.Cost),
			fmtFloat(p.Revenue),
			fmtFloat(p.SOC),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
