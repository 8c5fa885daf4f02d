package normalize

import "strings"

const (
	CategoryChicken        = "chicken"
	CategoryMutton         = "mutton"
	CategoryBeef           = "beef"
	CategorySeawaterFish   = "seawater_fish"
	CategoryFreshwaterFish = "freshwater_fish"
	CategoryOther          = "other"
)

type categoryRule struct {
	category string
	keywords []string
}

// Order matters: the first rule with a matching keyword wins.
var categoryRules = []categoryRule{
	{CategoryChicken, []string{"chicken", "broiler", "kozhi"}},
	{CategoryMutton, []string{"mutton", "lamb", "goat"}},
	{CategoryBeef, []string{"beef", "buffalo", "veal"}},
	{CategorySeawaterFish, []string{
		"seer", "king fish", "kingfish", "pomfret", "tuna", "sardine", "mackerel",
		"anchovy", "prawn", "shrimp", "crab", "squid", "lobster", "barracuda",
		"snapper", "sea bream", "hamour", "emperor", "trevally", "ribbon fish",
	}},
	{CategoryFreshwaterFish, []string{
		"rohu", "catla", "tilapia", "pangasius", "carp", "murrel", "catfish",
		"pearl spot", "karimeen", "trout", "hilsa",
	}},
}

// InferCategory maps an item to a category, preferring the explicit category
// on the item and otherwise matching the canonical name against the keyword
// table.
func InferCategory(explicit string, name string) string {
	if c := strings.TrimSpace(explicit); c != "" {
		return c
	}
	lower := strings.ToLower(CanonicalName(name))
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
