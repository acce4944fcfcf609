package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smokyabdulrahman/qiyam/internal/api"
	"github.com/smokyabdulrahman/qiyam/internal/cache"
	"github.com/smokyabdulrahman/qiyam/internal/config"
)

// calendarServer serves /calendar/{year}/{month} with one entry per day
// whose Fajr minute encodes the day of month.
func calendarServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var year, month int
		if _, err := fmt.Sscanf(r.URL.Path, "/calendar/%d/%d", &year, &month); err != nil {
			http.Error(w, "bad path", http.StatusNotFound)
			return
		}
		days := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
		resp := api.CalendarResponse{Code: 200, Status: "OK"}
		for d := 1; d <= days; d++ {
			resp.Data = append(resp.Data, api.Data{
				Timings: api.Timings{Fajr: fmt.Sprintf("05:%02d", d), Maghrib: "18:00", Isha: "19:30", Dhuhr: "12:30"},
				Meta:    api.Meta{Timezone: "UTC", Latitude: 21.42, Longitude: 39.83},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testSession(t *testing.T, baseURL string) *session {
	t.Helper()
	c, err := cache.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := api.NewClient(nil)
	client.BaseURL = baseURL
	client.RetryDelay = time.Millisecond
	cfg := config.Defaults()
	return &session{
		cfg:    &cfg,
		cache:  c,
		client: client,
		loc:    resolvedLocation{Mode: locationCoords, Lat: 21.42, Lon: 39.83},
		method: 4,
		school: 0,
		layout: "15:04",
	}
}

func TestSession_CalendarDaysAcrossMonths(t *testing.T) {
	var calls atomic.Int32
	srv := calendarServer(t, &calls)
	defer srv.Close()
	s := testSession(t, srv.URL)

	start := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	days, err := s.calendarDays(context.Background(), start, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 4 {
		t.Fatalf("got %d days, want 4", len(days))
	}

	want := []string{"05:27", "05:28", "05:01", "05:02"}
	for i, d := range days {
		if d.Timings.Fajr != want[i] {
			t.Errorf("day %d Fajr = %s, want %s", i, d.Timings.Fajr, want[i])
		}
	}
	if calls.Load() != 2 {
		t.Errorf("server calls = %d, want 2 (February and March)", calls.Load())
	}

	// A second pass is served from the cache.
	if _, err := s.calendarDays(context.Background(), start, 4); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("server calls after cached pass = %d, want 2", calls.Load())
	}
}

func TestLoadNights(t *testing.T) {
	var calls atomic.Int32
	srv := calendarServer(t, &calls)
	defer srv.Close()
	s := testSession(t, srv.URL)

	tests := []struct {
		name      string
		now       time.Time
		wantFirst string
	}{
		// 01:00 on 10 March is still the night of 9 March.
		{"after midnight", time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC), "2026-03-09"},
		{"afternoon", time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), "2026-03-10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := loadNights(context.Background(), s, tt.now, 3)
			if err != nil {
				t.Fatal(err)
			}
			if len(set.Nights) != 3 {
				t.Fatalf("got %d nights, want 3", len(set.Nights))
			}
			if got := set.Nights[0].Date.Format("2006-01-02"); got != tt.wantFirst {
				t.Errorf("first night = %s, want %s", got, tt.wantFirst)
			}
			if set.TZ != "UTC" {
				t.Errorf("TZ = %q", set.TZ)
			}
		})
	}
}

func TestSession_APIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()
	s := testSession(t, srv.URL)

	_, err := s.calendarDays(context.Background(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 2)
	if err == nil || !strings.Contains(err.Error(), "2026-03") {
		t.Errorf("expected a calendar error naming the month, got %v", err)
	}
}

func TestResolveLocation(t *testing.T) {
	ctx := context.Background()

	loc, err := resolveLocation(ctx, 21.42, 39.83, "ignored", "", nil)
	if err != nil || loc.Mode != locationCoords || loc.Lat != 21.42 {
		t.Errorf("coords: %+v, %v", loc, err)
	}

	loc, err = resolveLocation(ctx, 0, 0, "Makkah", "Saudi Arabia", nil)
	if err != nil || loc.Mode != locationCity || loc.City != "Makkah" {
		t.Errorf("city: %+v, %v", loc, err)
	}

	if _, err := resolveLocation(ctx, 0, 0, "Makkah", "", nil); err == nil {
		t.Error("city without country should fail")
	}
}

func TestSelectedPrayers(t *testing.T) {
	cfg := &config.Config{Prayers: "Fajr, Isha"}

	if got := selectedPrayers("", &config.Config{}); len(got) != 6 {
		t.Errorf("defaults = %v", got)
	}
	if got := selectedPrayers("", cfg); strings.Join(got, "|") != "Fajr|Isha" {
		t.Errorf("config = %v", got)
	}
	if got := selectedPrayers("Dhuhr", cfg); strings.Join(got, "|") != "Dhuhr" {
		t.Errorf("override = %v", got)
	}
}
