package shopping

import (
	"strings"

	"plan-generator/internal/pkg/common"
)

// categoryKeywords 食材關鍵字 -> 分類，比對時以單數、整詞為準
var categoryKeywords = map[string]common.Category{
	// proteins
	"chicken":        common.CategoryProteins,
	"chicken breast": common.CategoryProteins,
	"beef":           common.CategoryProteins,
	"ground beef":    common.CategoryProteins,
	"pork":           common.CategoryProteins,
	"turkey":         common.CategoryProteins,
	"salmon":         common.CategoryProteins,
	"tuna":           common.CategoryProteins,
	"cod":            common.CategoryProteins,
	"tilapia":        common.CategoryProteins,
	"fish":           common.CategoryProteins,
	"shrimp":         common.CategoryProteins,
	"steak":          common.CategoryProteins,
	"lamb":           common.CategoryProteins,
	"bacon":          common.CategoryProteins,
	"sausage":        common.CategoryProteins,
	"egg":            common.CategoryProteins,
	"egg white":      common.CategoryProteins,
	"tofu":           common.CategoryProteins,
	"tempeh":         common.CategoryProteins,
	"seitan":         common.CategoryProteins,
	"chickpea":       common.CategoryProteins,
	"lentil":         common.CategoryProteins,
	"bean":           common.CategoryProteins,
	"black bean":     common.CategoryProteins,
	"edamame":        common.CategoryProteins,
	"protein powder": common.CategoryProteins,

	// dairy
	"milk":           common.CategoryDairy,
	"cheese":         common.CategoryDairy,
	"cottage cheese": common.CategoryDairy,
	"feta":           common.CategoryDairy,
	"parmesan":       common.CategoryDairy,
	"mozzarella":     common.CategoryDairy,
	"yogurt":         common.CategoryDairy,
	"greek yogurt":   common.CategoryDairy,
	"butter":         common.CategoryDairy,
	"cream":          common.CategoryDairy,
	"sour cream":     common.CategoryDairy,
	"almond milk":    common.CategoryDairy,
	"oat milk":       common.CategoryDairy,

	// produce
	"lettuce":      common.CategoryProduce,
	"spinach":      common.CategoryProduce,
	"kale":         common.CategoryProduce,
	"green":        common.CategoryProduce,
	"tomato":       common.CategoryProduce,
	"cucumber":     common.CategoryProduce,
	"onion":        common.CategoryProduce,
	"garlic":       common.CategoryProduce,
	"bell pepper":  common.CategoryProduce,
	"broccoli":     common.CategoryProduce,
	"cauliflower":  common.CategoryProduce,
	"carrot":       common.CategoryProduce,
	"celery":       common.CategoryProduce,
	"avocado":      common.CategoryProduce,
	"banana":       common.CategoryProduce,
	"apple":        common.CategoryProduce,
	"berry":        common.CategoryProduce,
	"blueberry":    common.CategoryProduce,
	"strawberry":   common.CategoryProduce,
	"lemon":        common.CategoryProduce,
	"lime":         common.CategoryProduce,
	"zucchini":     common.CategoryProduce,
	"potato":       common.CategoryProduce,
	"sweet potato": common.CategoryProduce,
	"asparagus":    common.CategoryProduce,
	"mushroom":     common.CategoryProduce,
	"cabbage":      common.CategoryProduce,
	"eggplant":     common.CategoryProduce,
	"ginger":       common.CategoryProduce,
	"parsley":      common.CategoryProduce,
	"cilantro":     common.CategoryProduce,
	"basil":        common.CategoryProduce,
	"mint":         common.CategoryProduce,
	"rosemary":     common.CategoryProduce,
	"thyme":        common.CategoryProduce,
	"olive":        common.CategoryProduce,
	"pea":          common.CategoryProduce,
	"corn":         common.CategoryProduce,

	// grains
	"rice":       common.CategoryGrains,
	"brown rice": common.CategoryGrains,
	"bread":      common.CategoryGrains,
	"oat":        common.CategoryGrains,
	"rolled oat": common.CategoryGrains,
	"quinoa":     common.CategoryGrains,
	"pasta":      common.CategoryGrains,
	"spaghetti":  common.CategoryGrains,
	"noodle":     common.CategoryGrains,
	"tortilla":   common.CategoryGrains,
	"granola":    common.CategoryGrains,
	"couscous":   common.CategoryGrains,
	"barley":     common.CategoryGrains,
	"bagel":      common.CategoryGrains,

	// pantry staples
	"olive oil":     common.CategoryPantryStaples,
	"sesame oil":    common.CategoryPantryStaples,
	"coconut oil":   common.CategoryPantryStaples,
	"oil":           common.CategoryPantryStaples,
	"soy sauce":     common.CategoryPantryStaples,
	"honey":         common.CategoryPantryStaples,
	"salt":          common.CategoryPantryStaples,
	"pepper":        common.CategoryPantryStaples,
	"black pepper":  common.CategoryPantryStaples,
	"sugar":         common.CategoryPantryStaples,
	"flour":         common.CategoryPantryStaples,
	"vinegar":       common.CategoryPantryStaples,
	"spice":         common.CategoryPantryStaples,
	"curry powder":  common.CategoryPantryStaples,
	"cumin":         common.CategoryPantryStaples,
	"cinnamon":      common.CategoryPantryStaples,
	"oregano":       common.CategoryPantryStaples,
	"broth":         common.CategoryPantryStaples,
	"coconut milk":  common.CategoryPantryStaples,
	"tomato paste":  common.CategoryPantryStaples,
	"diced tomato":  common.CategoryPantryStaples,
	"peanut butter": common.CategoryPantryStaples,
	"almond butter": common.CategoryPantryStaples,
	"tahini":        common.CategoryPantryStaples,
	"almond":        common.CategoryPantryStaples,
	"walnut":        common.CategoryPantryStaples,
	"chia seed":     common.CategoryPantryStaples,
	"baking powder": common.CategoryPantryStaples,
}

// keyword 以詞序列表示的關鍵字
type keyword struct {
	terms    []string
	category common.Category
}

var (
	exactCategories = make(map[string]common.Category, len(categoryKeywords))
	keywords        []keyword
)

func init() {
	for k, c := range categoryKeywords {
		key := common.IngredientKey(k)
		exactCategories[key] = c
		keywords = append(keywords, keyword{terms: strings.Fields(key), category: c})
	}
}

// Categorize 先以完整名稱查表，再以最長的整詞關鍵字比對
// 同樣長度時取名稱中位置較後的關鍵字（英文的中心詞在後），找不到時為 pantry staples
func Categorize(name string) common.Category {
	key := common.IngredientKey(name)
	if c, ok := exactCategories[key]; ok {
		return c
	}
	terms := strings.Fields(key)

	best, bestLen, bestPos := common.CategoryPantryStaples, 0, -1
	for _, kw := range keywords {
		pos := indexOf(terms, kw.terms)
		if pos < 0 {
			continue
		}
		n := len(kw.terms)
		if n > bestLen || (n == bestLen && pos > bestPos) {
			best, bestLen, bestPos = kw.category, n, pos
		}
	}
	return best
}

// indexOf 最後一次出現 sub 的位置，沒有時回傳 -1
func indexOf(terms, sub []string) int {
	for i := len(terms) - len(sub); i >= 0; i-- {
		match := true
		for j := range sub {
			if terms[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
