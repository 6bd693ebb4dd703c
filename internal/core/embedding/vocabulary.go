package embedding

import (
	"math"
	"sort"

	"plan-generator/internal/pkg/common"
)

// FallbackName 詞頻備援向量的命名空間
const FallbackName = "tf"

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "the": {}, "of": {}, "with": {}, "for": {}, "to": {},
	"in": {}, "on": {}, "or": {}, "is": {}, "it": {}, "at": {}, "by": {}, "from": {},
	"this": {}, "that": {}, "your": {}, "my": {}, "i": {}, "some": {}, "into": {},
}

// Vocabulary 由語料建立的固定詞表，用於無外部模型時的確定性向量
type Vocabulary struct {
	index map[string]int
}

// NewVocabulary 依排序後的不重複詞建立詞表
func NewVocabulary(corpus []string) *Vocabulary {
	seen := make(map[string]struct{})
	for _, text := range corpus {
		for _, t := range common.Terms(text) {
			if _, stop := stopwords[t]; stop {
				continue
			}
			seen[t] = struct{}{}
		}
	}
	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}
	return &Vocabulary{index: index}
}

// Size 向量維度
func (v *Vocabulary) Size() int {
	return len(v.index)
}

// Vector L2 正規化的詞頻向量，詞表外的詞忽略
func (v *Vocabulary) Vector(text string) []float32 {
	vec := make([]float32, len(v.index))
	if len(vec) == 0 {
		return vec
	}
	for _, t := range common.Terms(text) {
		if i, ok := v.index[t]; ok {
			vec[i]++
		}
	}
	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
