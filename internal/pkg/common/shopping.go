package common

// Category 購物清單分類
type Category string

const (
	CategoryProduce       Category = "produce"
	CategoryProteins      Category = "proteins"
	CategoryGrains        Category = "grains"
	CategoryDairy         Category = "dairy"
	CategoryPantryStaples Category = "pantry staples"
)

// CategoryOrder 輸出時的分類順序
var CategoryOrder = []Category{
	CategoryProduce,
	CategoryProteins,
	CategoryGrains,
	CategoryDairy,
	CategoryPantryStaples,
}

// ShoppingItem 合併後的購物項目
type ShoppingItem struct {
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Unit     string   `json:"unit"`
	Category Category `json:"category"`
	Optional bool     `json:"optional,omitempty"`
	Recipes  []string `json:"recipes,omitempty"`
}

// ShoppingList 依分類分組的購物清單
type ShoppingList struct {
	PlanID         string                      `json:"plan_id,omitempty"`
	Items          map[Category][]ShoppingItem `json:"items"`
	PantryExcluded []string                    `json:"pantry_excluded,omitempty"`
}

// Categories 依固定順序列出非空分類
func (l *ShoppingList) Categories() []Category {
	var out []Category
	for _, c := range CategoryOrder {
		if len(l.Items[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Len 項目總數
func (l *ShoppingList) Len() int {
	n := 0
	for _, items := range l.Items {
		n += len(items)
	}
	return n
}

// Find 依名稱（不分大小寫、單複數）與單位尋找項目
func (l *ShoppingList) Find(name, unit string) (ShoppingItem, bool) {
	key, u := IngredientKey(name), NormalizeUnit(unit)
	for _, items := range l.Items {
		for _, it := range items {
			if IngredientKey(it.Name) == key && NormalizeUnit(it.Unit) == u {
				return it, true
			}
		}
	}
	return ShoppingItem{}, false
}
