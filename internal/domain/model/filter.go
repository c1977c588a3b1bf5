package model

// カテゴリ未選択
const CategoryAll = "All"

type PriceSort string

const (
	PriceSortNone    PriceSort = "none"
	PriceSortLowHigh PriceSort = "low-high"
	PriceSortHighLow PriceSort = "high-low"
)

func (s PriceSort) Valid() bool {
	switch s {
	case PriceSortNone, PriceSortLowHigh, PriceSortHighLow:
		return true
	}
	return false
}

func (g Gender) Valid() bool {
	switch g {
	case GenderAll, GenderMale, GenderFemale, GenderUnisex:
		return true
	}
	return false
}

func (a AgeGroup) Valid() bool {
	switch a {
	case AgeGroupAll, AgeGroupAdult, AgeGroupChild:
		return true
	}
	return false
}

// FilterState はストア画面の絞り込み条件。各項目は独立で、全体は AND。
type FilterState struct {
	Category    string    `json:"category"`
	Sale        bool      `json:"sale"`
	Gender      Gender    `json:"gender"`
	AgeGroup    AgeGroup  `json:"age_group"`
	InStockOnly bool      `json:"in_stock"`
	Price       PriceSort `json:"price"`
}

func DefaultFilterState() FilterState {
	return FilterState{
		Category: CategoryAll,
		Gender:   GenderAll,
		AgeGroup: AgeGroupAll,
		Price:    PriceSortNone,
	}
}

// FilterPatch は部分更新（nil は変更なし）
type FilterPatch struct {
	Category    *string    `json:"category,omitempty"`
	Sale        *bool      `json:"sale,omitempty"`
	Gender      *Gender    `json:"gender,omitempty"`
	AgeGroup    *AgeGroup  `json:"age_group,omitempty"`
	InStockOnly *bool      `json:"in_stock,omitempty"`
	Price       *PriceSort `json:"price,omitempty"`
}

// Apply は patch を当てた結果を返す
func (p FilterPatch) Apply(f FilterState) FilterState {
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Sale != nil {
		f.Sale = *p.Sale
	}
	if p.Gender != nil {
		f.Gender = *p.Gender
	}
	if p.AgeGroup != nil {
		f.AgeGroup = *p.AgeGroup
	}
	if p.InStockOnly != nil {
		f.InStockOnly = *p.InStockOnly
	}
	if p.Price != nil {
		f.Price = *p.Price
	}
	return f
}
