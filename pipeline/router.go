package pipeline

import "aibc/types"

// routingTable maps each category to the agents that should receive it.
// Read-only after process start; one signal may fan out to several agents.
var routingTable = map[types.Category][]types.AgentID{
	types.CategoryCompetitor:    {types.AgentCompetitorIntelligence},
	types.CategoryMarket:        {types.AgentCompetitorIntelligence, types.AgentGrowthStrategy},
	types.CategoryRegulatory:    {types.AgentCompetitorIntelligence, types.AgentGrowthStrategy},
	types.CategoryCultural:      {types.AgentContentDirector, types.AgentBrandArchitect},
	types.CategoryViral:         {types.AgentContentDirector},
	types.CategoryPlatform:      {types.AgentGrowthStrategy, types.AgentContentDirector},
	types.CategoryInternalBrand: {types.AgentBrandArchitect},
}

// defaultRoute catches any category missing from the table
var defaultRoute = []types.AgentID{types.AgentCompetitorIntelligence}

// RouteSignal returns the agents that should receive the signal. The lookup
// is total: unknown categories fall back to competitor intelligence so no
// signal is ever silently dropped after filtering.
func RouteSignal(sig types.Signal) []types.AgentID {
	if agents, ok := routingTable[sig.Category]; ok {
		return agents
	}
	return defaultRoute
}
