package common

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize 轉小寫後切出英數字詞
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Terms 切詞並單數化，用於詞頻向量
func Terms(text string) []string {
	tokens := Tokenize(text)
	for i, t := range tokens {
		tokens[i] = singular(t)
	}
	return tokens
}

// singular 粗略的單數化，只處理常見的英文複數字尾
func singular(word string) string {
	switch {
	case len(word) <= 3:
		return word
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"), strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "oes"), strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}

// IngredientKey 食材比對鍵：小寫、去空白、詞尾單數化
// "Eggs " 與 "egg" 得到相同的鍵
func IngredientKey(name string) string {
	return strings.Join(Terms(name), " ")
}

// IngredientCovers pantry 中的項目是否涵蓋 ingredient
// 例如 "rice" 涵蓋 "brown rice"，反之則不成立
func IngredientCovers(pantryItem, ingredient string) bool {
	p := strings.Fields(IngredientKey(pantryItem))
	if len(p) == 0 {
		return false
	}
	have := make(map[string]struct{})
	for _, t := range strings.Fields(IngredientKey(ingredient)) {
		have[t] = struct{}{}
	}
	for _, t := range p {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

// ContainsTerm 文字中是否含有 term 的所有詞（比對前皆單數化）
func ContainsTerm(text, term string) bool {
	return IngredientCovers(term, text)
}

var unitAliases = map[string]string{
	"tbsp":        "tablespoon",
	"tbs":         "tablespoon",
	"tablespoons": "tablespoon",
	"tsp":         "teaspoon",
	"teaspoons":   "teaspoon",
	"oz":          "ounce",
	"ounces":      "ounce",
	"lb":          "pound",
	"lbs":         "pound",
	"pounds":      "pound",
	"g":           "gram",
	"grams":       "gram",
	"kg":          "kilogram",
	"kilograms":   "kilogram",
	"ml":          "milliliter",
	"milliliters": "milliliter",
	"l":           "liter",
	"liters":      "liter",
	"cups":        "cup",
	"pieces":      "piece",
	"pcs":         "piece",
	"cloves":      "clove",
	"slices":      "slice",
}

// NormalizeUnit 統一單位寫法，不做單位換算
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(unit), ".")))
	if alias, ok := unitAliases[u]; ok {
		return alias
	}
	return u
}
