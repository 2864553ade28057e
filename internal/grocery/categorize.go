// Package grocery guesses a category from an item title.
package grocery

import (
	"sort"
	"strings"

	"github.com/dukerupert/grocerylist/internal/model"
)

// Categorize returns the category for an item title. Matching is
// case-insensitive: a whole-title match first, then the longest keyword
// contained in the title. Titles that match nothing are Other.
func Categorize(title string) model.Category {
	name := strings.ToLower(strings.TrimSpace(title))
	if name == "" {
		return model.CategoryOther
	}

	if c, ok := exact[name]; ok {
		return c
	}

	for _, k := range byLength {
		if strings.Contains(name, k.word) {
			return k.category
		}
	}

	return model.CategoryOther
}

type rule struct {
	category model.Category
	// whole titles
	names []string
	// fragments looked for anywhere in the title
	fragments []string
}

var rules = []rule{
	{
		category: model.CategoryFruitAndVeg,
		names: []string{
			"apple", "apples", "banana", "bananas", "orange", "oranges",
			"lemon", "lemons", "lime", "limes", "avocado", "avocados",
			"tomato", "tomatoes", "potato", "potatoes", "onion", "onions",
			"garlic", "lettuce", "spinach", "kale", "broccoli", "carrots",
			"celery", "cucumber", "cucumbers", "peppers", "mushrooms", "corn",
			"grapes", "strawberries", "blueberries", "raspberries", "watermelon",
			"pineapple", "mango", "peach", "peaches", "pear", "pears",
			"cilantro", "basil", "parsley", "ginger", "zucchini", "asparagus",
			"green beans",
		},
		fragments: []string{
			"salad", "spinach", "green onion", "sweet potato", "bell pepper",
			"romaine", "arugula", "cabbage", "cauliflower", "squash", "melon",
			"berry", "berries", "fruit", "herb", "lettuce", "kale", "apple",
			"banana", "tomato", "potato", "onion", "pepper", "carrot", "celery",
			"veg",
		},
	},
	{
		category: model.CategoryDairyAndEggs,
		names: []string{
			"milk", "eggs", "butter", "cheese", "yogurt", "cream",
			"half and half",
		},
		fragments: []string{
			"cream cheese", "sour cream", "heavy cream", "cottage cheese",
			"yogurt", "yoghurt", "cheese", "milk", "butter", "cream", "egg",
		},
	},
	{
		category: model.CategoryMeatAndSeafood,
		names: []string{
			"chicken", "beef", "pork", "turkey", "bacon", "sausage", "ham",
			"steak", "salmon", "shrimp", "prawns", "tuna", "fish", "lamb",
			"crab", "lobster", "mince",
		},
		fragments: []string{
			"chicken", "ground beef", "ground turkey", "deli meat", "pork chop",
			"hot dog", "sausage", "bacon", "salmon", "steak", "fillet", "mince",
		},
	},
	{
		category: model.CategoryBakeryAndBread,
		names: []string{
			"bread", "bagels", "tortillas", "rolls", "buns", "muffins",
			"croissants", "pita", "baguette",
		},
		fragments: []string{
			"sourdough", "whole wheat", "bread", "bagel", "tortilla", "bun",
			"roll", "muffin", "croissant", "loaf", "baguette",
		},
	},
	{
		category: model.CategoryPantry,
		names: []string{
			"rice", "pasta", "flour", "sugar", "salt", "oil", "vinegar",
			"ketchup", "mustard", "mayonnaise", "honey", "jam", "cereal",
			"oats", "oatmeal", "beans", "lentils", "spaghetti", "noodles",
			"coffee", "tea", "juice", "water",
		},
		fragments: []string{
			"peanut butter", "olive oil", "maple syrup", "soy sauce", "canned",
			"cereal", "oatmeal", "granola", "rice", "pasta", "noodle", "flour",
			"sugar", "spice", "seasoning", "sauce", "broth", "stock", "soup",
			"bean", "lentil", "coffee", "juice", "sparkling water",
		},
	},
	{
		category: model.CategorySnacks,
		names: []string{
			"chips", "crisps", "crackers", "cookies", "biscuits", "popcorn",
			"pretzels", "candy", "chocolate", "nuts", "ice cream",
		},
		fragments: []string{
			"granola bar", "trail mix", "chip", "crisp", "cracker", "cookie",
			"popcorn", "pretzel", "candy", "chocolate", "snack", "ice cream",
		},
	},
	{
		category: model.CategoryHousehold,
		names: []string{
			"paper towels", "toilet paper", "trash bags", "sponges",
			"aluminum foil", "batteries", "napkins", "bleach", "soap",
			"shampoo", "toothpaste", "tissues",
		},
		fragments: []string{
			"paper towel", "toilet paper", "trash bag", "bin bag", "dish soap",
			"laundry", "detergent", "cleaner", "cleaning", "sponge", "foil",
			"cling film", "plastic wrap", "battery", "light bulb", "shampoo",
			"toothpaste", "toothbrush", "deodorant", "tissue",
		},
	},
}

type fragment struct {
	word     string
	category model.Category
}

var (
	exact    = map[string]model.Category{}
	byLength []fragment
)

func init() {
	for _, r := range rules {
		for _, n := range r.names {
			exact[n] = r.category
		}
		for _, f := range r.fragments {
			byLength = append(byLength, fragment{word: f, category: r.category})
		}
	}
	// Longest fragment wins so "peanut butter" beats "butter".
	sort.SliceStable(byLength, func(i, j int) bool {
		return len(byLength[i].word) > len(byLength[j].word)
	})
}
