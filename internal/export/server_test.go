package export

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"WeatherEdge/internal/recorder"
)

func openTestRecorder(t *testing.T) *recorder.SQLiteRecorder {
	t.Helper()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "export_test.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return rec
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.echo.ServeHTTP(w, req)
	return w
}

func TestExportSignalsCSV(t *testing.T) {
	rec := openTestRecorder(t)
	err := rec.AppendSignals([]recorder.SignalRow{{
		Timestamp:      "2026-02-18 12:00:05",
		City:           "NYC",
		MarketType:     "HIGH",
		BucketLabel:    "51° or above",
		KalshiPrice:    62,
		NWSImplied:     79,
		Gap:            17,
		Direction:      "BUY YES",
		Confidence:     "HIGH",
		ForecastTemp:   52,
		Ticker:         "KXHIGHNY-26FEB19-B51",
		MarketDate:     "tomorrow",
		ResolutionDate: "2026-02-19",
	}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	s := NewServer("127.0.0.1:0", rec)
	w := get(t, s, "/export")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "kalshi_signals.csv") {
		t.Errorf("disposition = %q", cd)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	for i, col := range recorder.SignalHeader {
		if records[0][i] != col {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}
	if records[1][1] != "NYC" || records[1][24] != "KXHIGHNY-26FEB19-B51" {
		t.Errorf("row = %v", records[1])
	}

	// The bare root serves the same table.
	root := get(t, s, "/")
	if root.Code != http.StatusOK || root.Body.String() != w.Body.String() {
		t.Errorf("root export differs from /export")
	}
}

func TestExportEmptyTableKeepsHeader(t *testing.T) {
	rec := openTestRecorder(t)
	s := NewServer("127.0.0.1:0", rec)

	for path, header := range map[string][]string{
		"/paper":   recorder.PaperHeader,
		"/resolve": recorder.ResolutionHeader,
	} {
		w := get(t, s, path)
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, w.Code)
		}
		records, err := csv.NewReader(w.Body).ReadAll()
		if err != nil {
			t.Fatalf("%s parse csv: %v", path, err)
		}
		if len(records) != 1 || len(records[0]) != len(header) {
			t.Errorf("%s empty export = %v", path, records)
		}
	}
}

func TestHealthz(t *testing.T) {
	s := NewServer("127.0.0.1:0", openTestRecorder(t))
	w := get(t, s, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", w.Body.String())
	}
}

