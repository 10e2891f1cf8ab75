package productname

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func product(category string, edition *string, monthly string) PriceBookProduct {
	return PriceBookProduct{
		ID:               uuid.NewSHA1(uuid.NameSpaceOID, []byte(Build(category, edition))),
		Category:         category,
		Edition:          edition,
		MonthlyListPrice: decimal.RequireFromString(monthly),
	}
}

func sampleCatalog() []PriceBookProduct {
	return []PriceBookProduct{
		product("Sales Cloud", strp("Professional"), "80"),
		product("Sales Cloud", strp("Enterprise"), "165"),
		product("Sales Cloud", strp("Unlimited"), "330"),
		product("Service Cloud", strp("Enterprise"), "165"),
		product("Service Cloud", strp("Unlimited"), "330"),
		product("Slack", strp("Business+"), "12.5"),
		product("Slack", strp("Enterprise Grid"), "25"),
		product("Slack", nil, "8.75"),
		product("Tableau", strp("Creator"), "75"),
		product("Tableau", strp("Viewer"), "15"),
		product("Data Cloud", nil, "0"),
		product("Platform", strp("Enterprise"), "25"),
		product("Sales Cloud", strp("Enterprise"), "165"),
	}
}

func decimalFromInt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
