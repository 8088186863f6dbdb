package pipeline

import (
	"reflect"
	"testing"

	"aibc/types"
)

func TestRouteSignalTotal(t *testing.T) {
	for _, category := range types.Categories {
		agents := RouteSignal(types.Signal{Category: category})
		if len(agents) == 0 {
			t.Fatalf("RouteSignal returned no agents for category %q", category)
		}
	}
}

func TestRouteSignalUnknownCategory(t *testing.T) {
	agents := RouteSignal(types.Signal{Category: types.Category("mystery")})

	want := []types.AgentID{types.AgentCompetitorIntelligence}
	if !reflect.DeepEqual(agents, want) {
		t.Fatalf("RouteSignal(unknown) = %v; want %v", agents, want)
	}
}

func TestRouteSignalFanOut(t *testing.T) {
	cases := []struct {
		category types.Category
		want     []types.AgentID
	}{
		{types.CategoryRegulatory, []types.AgentID{types.AgentCompetitorIntelligence, types.AgentGrowthStrategy}},
		{types.CategoryMarket, []types.AgentID{types.AgentCompetitorIntelligence, types.AgentGrowthStrategy}},
		{types.CategoryViral, []types.AgentID{types.AgentContentDirector}},
		{types.CategoryInternalBrand, []types.AgentID{types.AgentBrandArchitect}},
	}

	for _, c := range cases {
		got := RouteSignal(types.Signal{Category: c.category})
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("RouteSignal(%q) = %v; want %v", c.category, got, c.want)
		}
	}
}

func TestRouteSignalDeterministic(t *testing.T) {
	sig := types.Signal{Category: types.CategoryPlatform}

	first := RouteSignal(sig)
	for i := 0; i < 10; i++ {
		if got := RouteSignal(sig); !reflect.DeepEqual(got, first) {
			t.Fatalf("RouteSignal not deterministic: %v vs %v", first, got)
		}
	}
}

// Every signal surviving the filter must produce at least one envelope pair;
// nothing is silently dropped between filter and route.
func TestFilterThenRouteRoundTrip(t *testing.T) {
	signals := makeSignals(0.9, 0.3, 0.7, 0.6, 0.5)
	for i := range signals {
		signals[i].Category = types.Categories[i%len(types.Categories)]
	}

	for _, sig := range FilterSignals(signals) {
		if agents := RouteSignal(sig); len(agents) == 0 {
			t.Fatalf("filtered signal %s produced no (agent, signal) pairs", sig.ID)
		}
	}
}
