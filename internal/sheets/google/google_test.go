package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets serves the handful of Sheets v4 calls the exporter makes.
type fakeSheets struct {
	mu      sync.Mutex
	calls   []string
	titles  []string
	written [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/spreadsheets/sheet-id"):
		f.calls = append(f.calls, "get")
		ss := gsheet.Spreadsheet{}
		for i, title := range f.titles {
			ss.Sheets = append(ss.Sheets, &gsheet.Sheet{Properties: &gsheet.SheetProperties{SheetId: int64(i), Title: title}})
		}
		_ = json.NewEncoder(w).Encode(ss)

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "batchUpdate")
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		title := req.Requests[0].AddSheet.Properties.Title
		f.titles = append(f.titles, title)
		_ = json.NewEncoder(w).Encode(gsheet.BatchUpdateSpreadsheetResponse{
			Replies: []*gsheet.Response{{AddSheet: &gsheet.AddSheetResponse{
				Properties: &gsheet.SheetProperties{SheetId: int64(len(f.titles)), Title: title},
			}}},
		})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		f.calls = append(f.calls, "update")
		if got := r.URL.Query().Get("valueInputOption"); got != "USER_ENTERED" {
			http.Error(w, "bad valueInputOption "+got, http.StatusBadRequest)
			return
		}
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.written = vr.Values
		_, _ = w.Write([]byte(`{}`))

	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-id",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithHTTPClient(srv.Client()),
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Errorf("New() error = %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Options{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("New() error = %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "x", CredentialsFile: "/non/existent.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("New() error = %v", err)
	}
}

func TestExportMonthReport(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Sheet1"}}
	c := newTestClient(t, fake)
	report := sampleReport()

	if err := c.ExportMonthReport(context.Background(), report); err != nil {
		t.Fatalf("ExportMonthReport() error = %v", err)
	}

	want := []string{"get", "batchUpdate", "clear", "update"}
	if strings.Join(fake.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
	if fake.titles[1] != "Relatório 2024-07" {
		t.Errorf("created sheet = %q", fake.titles[1])
	}
	if len(fake.written) != len(reportRows(report)) {
		t.Errorf("wrote %d rows, want %d", len(fake.written), len(reportRows(report)))
	}
	if fake.written[0][0] != "Relatório mensal" {
		t.Errorf("first cell = %v", fake.written[0][0])
	}
}

func TestExportMonthReport_ReusesExistingSheet(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)
	report := sampleReport()

	for i := 0; i < 2; i++ {
		if err := c.ExportMonthReport(context.Background(), report); err != nil {
			t.Fatalf("export %d: %v", i, err)
		}
	}

	want := []string{"get", "batchUpdate", "clear", "update", "clear", "update"}
	if strings.Join(fake.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Relatório d'Ana"); got != "'Relatório d''Ana'" {
		t.Errorf("quoteSheet() = %q", got)
	}
}
