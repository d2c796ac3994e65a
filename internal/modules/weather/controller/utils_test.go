package controller

import (
	"encoding/json"
	"testing"

	"climate-server/internal/modules/weather/types"
)

func Test_precipitationRecords(t *testing.T) {
	got := precipitationRecords([]types.DailyPrecipitation{
		{Date: date("2017-08-01"), Average: 0.125},
		{Date: date("2017-08-02"), Average: 0},
	})
	if len(got) != 2 {
		t.Fatalf("len = %d; want 2", len(got))
	}
	if got[0]["2017-08-01"] != "0.1250" {
		t.Errorf("first = %v; want 4 decimal places", got[0])
	}
	if got[1]["2017-08-02"] != "0.0000" {
		t.Errorf("second = %v; want 0.0000", got[1])
	}
	for i, m := range got {
		if len(m) != 1 {
			t.Errorf("record %d has %d keys; want 1", i, len(m))
		}
	}
}

func Test_recordsNeverNil(t *testing.T) {
	for name, v := range map[string]any{
		"precipitation": precipitationRecords(nil),
		"temperature":   temperatureRecords(nil),
		"summary":       temperatureSummaryRecords(nil),
		"stations":      stationRecords(nil),
	} {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
		if string(b) != "[]" {
			t.Errorf("%s: got %s; want []", name, b)
		}
	}
}

func Test_temperatureSummaryRecordKeyOrder(t *testing.T) {
	b, err := json.Marshal(temperatureSummaryRecords([]types.DailyTemperatureSummary{
		{Date: date("2017-01-02"), Min: 60, Avg: 62.5, Max: 65},
	}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"Date":"2017-01-02","Min. Temp":60,"Avg. Temp":62.5,"Max. Temp":65}]`
	if string(b) != want {
		t.Errorf("got %s; want %s", b, want)
	}
}
