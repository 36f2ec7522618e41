// README: Quote service tests (lifecycle, cost overrides, invalid requests).
package quote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vtcquote/internal/modules/cost"
	"vtcquote/internal/modules/pricing"
	"vtcquote/internal/modules/shadow"
	"vtcquote/internal/modules/zone"
	"vtcquote/internal/types"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusSent, true},
		{StatusDraft, StatusExpired, true},
		{StatusSent, StatusAccepted, true},
		{StatusSent, StatusRejected, true},
		{StatusSent, StatusExpired, true},
		// invalid: skipping states
		{StatusDraft, StatusAccepted, false},
		{StatusDraft, StatusRejected, false},
		// invalid: terminal states have no outgoing transitions
		{StatusAccepted, StatusSent, false},
		{StatusRejected, StatusDraft, false},
		{StatusExpired, StatusDraft, false},
		{StatusSent, StatusDraft, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestQuoteCreate(t *testing.T) {
	svc, repo := newTestService()
	q := mustCreate(t, svc)

	if q.Status != StatusDraft || q.StatusVersion != 0 {
		t.Fatalf("status = %s v%d", q.Status, q.StatusVersion)
	}
	if !q.Price.Equal(dec("60")) || q.InternalCost == nil || !q.InternalCost.Equal(dec("23.6")) {
		t.Fatalf("price = %s cost = %v", q.Price, q.InternalCost)
	}
	if q.Tier != pricing.TierGreen {
		t.Errorf("tier = %s, want green", q.Tier)
	}
	if _, ok := repo.items[q.ID]; !ok {
		t.Fatal("quote not persisted")
	}
}

func TestQuoteCreateRequiresOrg(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Create(context.Background(), CreateCommand{}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestQuoteGetIsTenantScoped(t *testing.T) {
	svc, _ := newTestService()
	q := mustCreate(t, svc)

	if _, err := svc.Get(context.Background(), "org-2", q.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	got, err := svc.Get(context.Background(), "org-1", q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != q.ID {
		t.Fatalf("got %s", got.ID)
	}
}

func TestQuoteCostOverride(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	q := mustCreate(t, svc)

	got, err := svc.ApplyCostOverride(ctx, OverrideCommand{
		OrgID:   "org-1",
		QuoteID: q.ID,
		Override: shadow.CostOverride{
			Segment:   shadow.SegmentService,
			Component: cost.ComponentDriver,
			Edited:    dec("40"),
			EditedBy:  "admin@example.com",
			Reason:    "night shift rate",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Price.Equal(dec("60")) {
		t.Errorf("price changed to %s", got.Price)
	}
	if got.InternalCost == nil || !got.InternalCost.Equal(dec("43.6")) {
		t.Fatalf("internal cost = %v, want 43.6", got.InternalCost)
	}
	if got.Tier != pricing.TierOrange || !got.Result.Profitability.MarginPercent.Equal(dec("27.33")) {
		t.Errorf("profitability = %+v", got.Result.Profitability)
	}
	overrides := got.Result.Trip.CostOverrides
	if len(overrides) != 1 || overrides[0].Original == nil || !overrides[0].Original.Round(2).Equal(dec("20")) {
		t.Fatalf("overrides = %+v", overrides)
	}
	if !overrides[0].EditedAt.Equal(fixedNow) {
		t.Errorf("editedAt = %s", overrides[0].EditedAt)
	}
	if got.StatusVersion != 1 {
		t.Errorf("version = %d, want 1", got.StatusVersion)
	}
}

func TestQuoteCostOverrideRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	sent := mustCreate(t, svc)
	if _, err := svc.Transition(ctx, TransitionCommand{OrgID: "org-1", QuoteID: sent.ID, To: StatusSent}); err != nil {
		t.Fatal(err)
	}
	draft := mustCreate(t, svc)

	cases := []struct {
		name    string
		quoteID types.ID
		o       shadow.CostOverride
		want    error
	}{
		{"not draft", sent.ID, driverOverride("40", "admin"), ErrNotEditable},
		{"missing editor", draft.ID, driverOverride("40", ""), ErrBadRequest},
		{"negative cost", draft.ID, driverOverride("-1", "admin"), ErrBadRequest},
		{"unknown segment", draft.ID, shadow.CostOverride{Segment: shadow.SegmentApproach, Component: cost.ComponentDriver, Edited: dec("1"), EditedBy: "admin"}, ErrBadRequest},
		{"unknown quote", "missing", driverOverride("40", "admin"), ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ApplyCostOverride(ctx, OverrideCommand{OrgID: "org-1", QuoteID: tc.quoteID, Override: tc.o})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestQuoteLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	q := mustCreate(t, svc)

	for _, to := range []Status{StatusSent, StatusAccepted} {
		got, err := svc.Transition(ctx, TransitionCommand{OrgID: "org-1", QuoteID: q.ID, To: to})
		if err != nil {
			t.Fatalf("transition to %s: %v", to, err)
		}
		if got.Status != to {
			t.Fatalf("status = %s, want %s", got.Status, to)
		}
	}
	_, err := svc.Transition(ctx, TransitionCommand{OrgID: "org-1", QuoteID: q.ID, To: StatusRejected})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestQuoteStaleVersionConflicts(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	q := mustCreate(t, svc)

	repo.beforeUpdate = func() {
		// another writer moves the quote first
		repo.items[q.ID].StatusVersion++
	}
	_, err := svc.Transition(ctx, TransitionCommand{OrgID: "org-1", QuoteID: q.ID, To: StatusSent})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func driverOverride(v, editor string) shadow.CostOverride {
	return shadow.CostOverride{Segment: shadow.SegmentService, Component: cost.ComponentDriver, Edited: dec(v), EditedBy: editor}
}

func mustCreate(t *testing.T, svc *Service) *Quote {
	t.Helper()
	q, err := svc.Create(context.Background(), CreateCommand{
		OrgID:     "org-1",
		CreatedBy: "ops@example.com",
		Input:     lyonToMarseille(),
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	return q
}

func lyonToMarseille() pricing.QuoteInput {
	return pricing.QuoteInput{
		Pickup:   types.Point{Lat: 45.7640, Lng: 4.8357},
		Dropoff:  types.Point{Lat: 43.2965, Lng: 5.3698},
		TripType: pricing.TripTransfer,
		PickupAt: time.Date(2026, 2, 10, 11, 0, 0, 0, time.UTC),
	}
}

func newTestService() (*Service, *memRepo) {
	repo := &memRepo{items: map[types.ID]*Quote{}}
	svc := NewService(repo, fakePricer{snap: testSnapshot()}, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func testSnapshot() pricing.Snapshot {
	fuel, price, driver := dec("8"), dec("1.8"), dec("30")
	return pricing.Snapshot{Settings: pricing.Settings{
		BaseRatePerKm:        dec("2"),
		BaseRatePerHour:      dec("45"),
		TargetMarginPercent:  dec("20"),
		Margins:              pricing.MarginThresholds{GreenPercent: dec("30"), OrangePercent: dec("15")},
		Costs:                cost.Rates{FuelConsumptionL100km: &fuel, FuelPricePerLiter: &price, DriverHourlyCost: &driver},
		ZoneConflictStrategy: zone.StrategyMostExpensive,
	}}
}

// fakePricer runs the real engine on a fixed 25 km / 40 min service leg.
type fakePricer struct {
	snap pricing.Snapshot
}

func (f fakePricer) Quote(_ context.Context, _ types.ID, in pricing.QuoteInput) (pricing.Result, error) {
	return pricing.Calculate(pricing.Request{
		Pickup:   in.Pickup,
		Dropoff:  in.Dropoff,
		Service:  shadow.Leg{DistanceKm: dec("25"), DurationMinutes: dec("40"), Source: shadow.SourceGoogleAPI},
		TripType: in.TripType,
		PickupAt: in.PickupAt,
	}, f.snap), nil
}

func (f fakePricer) Snapshot(context.Context, types.ID) (pricing.Snapshot, error) {
	return f.snap, nil
}

// memRepo mimics the optimistic writes of Store.
type memRepo struct {
	mu           sync.Mutex
	items        map[types.ID]*Quote
	beforeUpdate func()
}

func (r *memRepo) Create(_ context.Context, q *Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *q
	r.items[q.ID] = &c
	return nil
}

func (r *memRepo) Get(_ context.Context, orgID, id types.ID) (*Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.items[id]
	if !ok || q.OrgID != orgID {
		return nil, ErrNotFound
	}
	c := *q
	return &c, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, orgID, id types.ID, from, to Status, version int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	q, ok := r.items[id]
	if !ok || q.OrgID != orgID || q.Status != from || q.StatusVersion != version {
		return false, nil
	}
	q.Status = to
	q.StatusVersion++
	return true, nil
}

func (r *memRepo) UpdatePricing(_ context.Context, q *Quote, version int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[q.ID]
	if !ok || cur.Status != StatusDraft || cur.StatusVersion != version {
		return false, nil
	}
	c := *q
	c.StatusVersion = version + 1
	r.items[q.ID] = &c
	return true, nil
}
