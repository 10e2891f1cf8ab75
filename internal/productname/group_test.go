package productname

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupProductsByCategory(t *testing.T) {
	groups := GroupProductsByCategory(sampleCatalog(), []string{"slack"})

	var categories []string
	for _, g := range groups {
		categories = append(categories, g.Category)
	}
	require.Equal(t, []string{"Slack", "Data Cloud", "Platform", "Sales Cloud", "Service Cloud", "Tableau"}, categories)

	slack := groups[0]
	require.Len(t, slack.Editions, 3)
	require.Equal(t, "Business+", *slack.Editions[0].Edition)
	require.Equal(t, "Enterprise Grid", *slack.Editions[1].Edition)
	require.Nil(t, slack.Editions[2].Edition)
	require.Equal(t, "Slack", slack.Editions[2].DisplayName)

	sales := groups[3]
	require.Len(t, sales.Editions, 3)
	require.Equal(t, "Enterprise", *sales.Editions[0].Edition)
	require.Equal(t, "Professional", *sales.Editions[1].Edition)
	require.Equal(t, "Unlimited", *sales.Editions[2].Edition)
	require.Equal(t, "165", sales.Editions[0].MonthlyPrice.String())
}

func TestGroupProductsPriorityOrder(t *testing.T) {
	groups := GroupProductsByCategory(sampleCatalog(), []string{"Tableau", "Sales Cloud", "Tableau"})
	require.Equal(t, "Tableau", groups[0].Category)
	require.Equal(t, "Sales Cloud", groups[1].Category)
	require.Equal(t, "Data Cloud", groups[2].Category)
}

func TestGroupProductsTreatsNASentinelAsNoEdition(t *testing.T) {
	catalog := []PriceBookProduct{
		product("Agentforce", strp("N/A"), "2"),
		product("Agentforce", nil, "2"),
		product("Agentforce", strp("Flex Credits"), "1"),
	}
	groups := GroupProductsByCategory(catalog, nil)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Editions, 2)
	require.Equal(t, "Flex Credits", *groups[0].Editions[0].Edition)
	require.Nil(t, groups[0].Editions[1].Edition)
}
