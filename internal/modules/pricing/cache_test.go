package pricing

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"vtcquote/internal/modules/zone"
	"vtcquote/internal/types"
)

func TestCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("VTC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("VTC_TEST_REDIS_ADDR not set; skipping redis-backed cache test")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewCache(client, 5*time.Second)
	org := idp("cache-test-org")
	t.Cleanup(func() { _ = cache.Invalidate(ctx, *org) })

	snap := baseSnapshot()
	snap.Zones = []zone.Zone{{ID: "z1", Code: "PAR", Geometry: zone.Radius(paris, 5), PriceMultiplier: dec("1.2"), IsActive: true}}
	snap.Categories = map[types.ID]VehicleCategory{"van": {ID: "van", Name: "Van", RatePerKm: decp("2.5")}}

	if err := cache.Set(ctx, *org, snap); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := cache.Get(ctx, *org)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !got.Settings.BaseRatePerKm.Equal(snap.Settings.BaseRatePerKm) || got.Settings.Timezone != "Europe/Paris" {
		t.Errorf("settings = %+v", got.Settings)
	}
	if len(got.Zones) != 1 || !got.Zones[0].PriceMultiplier.Equal(dec("1.2")) || got.Zones[0].Geometry.Center == nil {
		t.Errorf("zones = %+v", got.Zones)
	}
	if c := got.Categories["van"]; c.RatePerKm == nil || !c.RatePerKm.Equal(dec("2.5")) {
		t.Errorf("categories = %+v", got.Categories)
	}

	if err := cache.Invalidate(ctx, *org); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, err := cache.Get(ctx, *org); err != nil || ok {
		t.Fatalf("after invalidate: ok=%v err=%v", ok, err)
	}
}
