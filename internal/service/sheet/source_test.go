package sheet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	xlogger "rrtracker/pkg/logger"
)

func testLogger() *xlogger.Logger {
	l, _ := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	return l
}

const sampleCSV = `LONGS,Green L,Red L,PICK TYPE
rklb,30,55,OFFICIAL
"BRK.B",400,520,NOT OFFICIAL
AMD,,200,OFFICIAL
ASTS,20,60,
AAPL,150,260,OFFICIAL
`

func TestParseCSV(t *testing.T) {
	specs, err := parseCSV([]byte(sampleCSV))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}

	// AMD has no low, so it is dropped.
	if len(specs) != 4 {
		t.Fatalf("got %d specs, want 4: %+v", len(specs), specs)
	}

	// OFFICIAL picks alphabetically, then other OFFICIAL variants, then the rest.
	wantOrder := []string{"AAPL", "RKLB", "BRK.B", "ASTS"}
	for i, want := range wantOrder {
		if specs[i].Symbol != want {
			t.Errorf("specs[%d].Symbol = %q, want %q", i, specs[i].Symbol, want)
		}
	}

	if specs[1].Low != 30 || specs[1].High != 55 {
		t.Errorf("RKLB range = (%v, %v), want (30, 55)", specs[1].Low, specs[1].High)
	}
	if specs[2].PickType != "NOT OFFICIAL" {
		t.Errorf("BRK.B pick type = %q, want NOT OFFICIAL", specs[2].PickType)
	}
}

func TestParseCSVMissingColumns(t *testing.T) {
	if _, err := parseCSV([]byte("A,B\n1,2\n")); err == nil {
		t.Fatal("expected error for unrecognized header")
	}
}

func TestListCaches(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	src := New(srv.URL, 5*time.Second, time.Minute, testLogger())

	for i := 0; i < 3; i++ {
		specs, err := src.List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(specs) != 4 {
			t.Fatalf("got %d specs, want 4", len(specs))
		}
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1", fetches)
	}

	src.Invalidate()
	if _, err := src.List(context.Background()); err != nil {
		t.Fatalf("List after invalidate: %v", err)
	}
	if fetches != 2 {
		t.Errorf("fetches = %d after invalidate, want 2", fetches)
	}
}
