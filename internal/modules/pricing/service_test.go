package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"vtcquote/internal/modules/shadow"
	"vtcquote/internal/modules/zone"
	"vtcquote/internal/types"
)

type fakeLoader struct {
	snap     Snapshot
	err      error
	calls    int
	settings []Settings
	zones    []zone.Zone
}

func (f *fakeLoader) LoadSnapshot(_ context.Context, _ types.ID, _ Settings) (Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

func (f *fakeLoader) UpsertSettings(_ context.Context, _ types.ID, settings Settings) error {
	if f.err != nil {
		return f.err
	}
	f.settings = append(f.settings, settings)
	f.snap.Settings = settings
	return nil
}

func (f *fakeLoader) UpsertZone(_ context.Context, _ types.ID, z zone.Zone) error {
	if f.err != nil {
		return f.err
	}
	f.zones = append(f.zones, z)
	f.snap.Zones = append(f.snap.Zones, z)
	return nil
}

type fakeCache struct {
	items  map[types.ID]Snapshot
	getErr error
}

func newFakeCache() *fakeCache { return &fakeCache{items: map[types.ID]Snapshot{}} }

func (c *fakeCache) Get(_ context.Context, orgID types.ID) (Snapshot, bool, error) {
	if c.getErr != nil {
		return Snapshot{}, false, c.getErr
	}
	s, ok := c.items[orgID]
	return s, ok, nil
}

func (c *fakeCache) Set(_ context.Context, orgID types.ID, snap Snapshot) error {
	c.items[orgID] = snap
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, orgID types.ID) error {
	delete(c.items, orgID)
	return nil
}

type fakeRouter struct {
	leg   shadow.Leg
	err   error
	calls int
}

func (r *fakeRouter) Route(context.Context, types.Point, types.Point) (shadow.Leg, error) {
	r.calls++
	return r.leg, r.err
}

func quoteInput() QuoteInput {
	return QuoteInput{Pickup: lyon, Dropoff: marseille, TripType: TripTransfer, PickupAt: tuesdayNoon}
}

func TestService_QuoteUsesRouter(t *testing.T) {
	router := &fakeRouter{leg: shadow.Leg{DistanceKm: dec("25"), DurationMinutes: dec("40"), Source: shadow.SourceGoogleAPI}}
	svc := NewService(&fakeLoader{snap: baseSnapshot()}, nil, router, Settings{}, nil)

	res, err := svc.Quote(context.Background(), "org-1", quoteInput())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Price.Equal(dec("60")) {
		t.Fatalf("price = %s, want 60", res.Price)
	}
	if res.Trip.RoutingSource != shadow.SourceGoogleAPI {
		t.Errorf("routing source = %s", res.Trip.RoutingSource)
	}
}

func TestService_QuoteFallsBackToHaversine(t *testing.T) {
	tests := []struct {
		name   string
		router Router
	}{
		{name: "no provider", router: nil},
		{name: "provider error", router: &fakeRouter{err: errors.New("quota exceeded")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeLoader{snap: baseSnapshot()}, nil, tt.router, Settings{}, nil)
			res, err := svc.Quote(context.Background(), "org-1", quoteInput())
			if err != nil {
				t.Fatal(err)
			}
			if res.Trip.RoutingSource != shadow.SourceHaversineEstimate {
				t.Fatalf("routing source = %s", res.Trip.RoutingSource)
			}
			if !res.Trip.Segments[0].IsEstimated || !res.Price.IsPositive() {
				t.Errorf("unexpected result %+v", res.Trip)
			}
		})
	}
}

func TestService_QuoteWithVehicleSelection(t *testing.T) {
	router := &fakeRouter{leg: shadow.Leg{DistanceKm: dec("10"), DurationMinutes: dec("15"), Source: shadow.SourceGoogleAPI}}
	svc := NewService(&fakeLoader{snap: baseSnapshot()}, nil, router, Settings{}, nil)

	in := quoteInput()
	in.Vehicle = &VehicleChoice{VehicleID: "v1", BaseID: "b1", BaseName: "Lyon depot", BaseLocation: lyon}
	res, err := svc.Quote(context.Background(), "org-1", in)
	if err != nil {
		t.Fatal(err)
	}
	if router.calls != 3 {
		t.Errorf("router calls = %d, want 3", router.calls)
	}
	if len(res.Trip.Segments) != 3 || res.Trip.RoutingSource != shadow.SourceVehicleSelection {
		t.Fatalf("trip = %+v", res.Trip)
	}
	if res.Trip.VehicleSelection == nil || res.Trip.VehicleSelection.BaseName != "Lyon depot" {
		t.Errorf("selection = %+v", res.Trip.VehicleSelection)
	}
}

func TestService_QuoteValidation(t *testing.T) {
	svc := NewService(&fakeLoader{snap: baseSnapshot()}, nil, nil, Settings{}, nil)
	tests := []struct {
		name   string
		mutate func(*QuoteInput)
	}{
		{name: "missing pickup", mutate: func(in *QuoteInput) { in.Pickup = types.Point{} }},
		{name: "missing time", mutate: func(in *QuoteInput) { in.PickupAt = time.Time{} }},
		{name: "negative waiting", mutate: func(in *QuoteInput) { in.WaitingMinutes = decp("-5") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := quoteInput()
			tt.mutate(&in)
			if _, err := svc.Quote(context.Background(), "org-1", in); !errors.Is(err, ErrInvalidTrip) {
				t.Fatalf("err = %v, want ErrInvalidTrip", err)
			}
		})
	}
}

func TestService_SnapshotCache(t *testing.T) {
	loader := &fakeLoader{snap: baseSnapshot()}
	cache := newFakeCache()
	svc := NewService(loader, cache, nil, Settings{}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Snapshot(ctx, "org-1"); err != nil {
			t.Fatal(err)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("store reads = %d, want 1", loader.calls)
	}

	if err := svc.InvalidateSnapshot(ctx, "org-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Snapshot(ctx, "org-1"); err != nil {
		t.Fatal(err)
	}
	if loader.calls != 2 {
		t.Fatalf("store reads after invalidation = %d, want 2", loader.calls)
	}
}

func TestService_SnapshotCacheErrorDegrades(t *testing.T) {
	loader := &fakeLoader{snap: baseSnapshot()}
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	svc := NewService(loader, cache, nil, Settings{}, nil)

	if _, err := svc.Snapshot(context.Background(), "org-1"); err != nil {
		t.Fatalf("cache failure must not fail the call: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("store reads = %d, want 1", loader.calls)
	}
}

func TestService_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&fakeLoader{err: boom}, nil, nil, Settings{}, nil)
	if _, err := svc.Quote(context.Background(), "org-1", quoteInput()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestService_ValidateZones(t *testing.T) {
	snap := baseSnapshot()
	snap.Settings.ZoneConflictStrategy = ""
	snap.Zones = []zone.Zone{
		{ID: "a", Code: "A", Geometry: zone.Radius(paris, 3), IsActive: true},
		{ID: "b", Code: "B", Geometry: zone.Radius(nearParis, 3), IsActive: true},
	}
	svc := NewService(&fakeLoader{snap: snap}, nil, nil, Settings{}, nil)

	rep, err := svc.ValidateZones(context.Background(), "org-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Overlaps) != 1 || len(rep.Warnings) != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestService_UpdateSettingsDropsCachedSnapshot(t *testing.T) {
	loader := &fakeLoader{snap: baseSnapshot()}
	cache := newFakeCache()
	svc := NewService(loader, cache, nil, Settings{}, nil)
	ctx := context.Background()

	if _, err := svc.Snapshot(ctx, "org-1"); err != nil {
		t.Fatal(err)
	}
	updated := baseSettings()
	updated.MinimumFare = decp("5000")
	if err := svc.UpdateSettings(ctx, "org-1", updated); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.items["org-1"]; ok {
		t.Fatal("cached snapshot survived a settings update")
	}

	res, err := svc.Quote(ctx, "org-1", quoteInput())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Price.Equal(dec("5000")) {
		t.Fatalf("price = %s, want the new minimum fare 5000", res.Price)
	}
}

func TestService_UpdateSettingsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{name: "negative rate", mutate: func(s *Settings) { s.BaseRatePerKm = dec("-1") }},
		{name: "negative minimum fare", mutate: func(s *Settings) { s.MinimumFare = decp("-5") }},
		{name: "unknown rounding mode", mutate: func(s *Settings) { s.Rounding.Mode = "SIDEWAYS" }},
		{name: "orange above green", mutate: func(s *Settings) { s.Margins.OrangePercent = dec("40") }},
		{name: "bad timezone", mutate: func(s *Settings) { s.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &fakeLoader{snap: baseSnapshot()}
			svc := NewService(loader, nil, nil, Settings{}, nil)
			settings := baseSettings()
			tt.mutate(&settings)

			err := svc.UpdateSettings(context.Background(), "org-1", settings)
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("err = %v, want ErrInvalidSettings", err)
			}
			if len(loader.settings) != 0 {
				t.Fatal("invalid settings were written")
			}
		})
	}
}

func TestService_UpsertZone(t *testing.T) {
	loader := &fakeLoader{snap: baseSnapshot()}
	cache := newFakeCache()
	svc := NewService(loader, cache, nil, Settings{}, nil)
	ctx := context.Background()
	cache.items["org-1"] = baseSnapshot()

	valid := zone.Zone{ID: "z9", Code: "LYS", Geometry: zone.Radius(lyon, 5), IsActive: true}
	if err := svc.UpsertZone(ctx, "org-1", valid); err != nil {
		t.Fatal(err)
	}
	if len(loader.zones) != 1 || loader.zones[0].ID != "z9" {
		t.Fatalf("zones written = %+v", loader.zones)
	}
	if _, ok := cache.items["org-1"]; ok {
		t.Fatal("cached snapshot survived a zone upsert")
	}

	for _, z := range []zone.Zone{
		{Code: "NOID", Geometry: zone.Radius(lyon, 5)},
		{ID: "z10", Geometry: zone.Polygon(lyon, marseille)},
	} {
		if err := svc.UpsertZone(ctx, "org-1", z); !errors.Is(err, ErrInvalidZone) {
			t.Errorf("UpsertZone(%+v) err = %v, want ErrInvalidZone", z, err)
		}
	}
	if len(loader.zones) != 1 {
		t.Fatalf("invalid zones were written: %+v", loader.zones)
	}
}
