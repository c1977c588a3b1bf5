// Package catalog はストア画面の絞り込み・並び替え・ページングを行う。
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"storefront/internal/domain/model"

	"golang.org/x/text/cases"
)

const (
	DefaultPageSize      = 30
	DefaultSaleThreshold = int64(3000000)

	// ページ番号をすべて並べる上限
	maxPlainPages = 7
)

// Query は1回の導出に必要な入力
type Query struct {
	Filter        model.FilterState
	Search        string
	Page          int
	PageSize      int
	SaleThreshold int64
}

// PageItem はページ番号列の1要素（Ellipsis のとき Number は 0）
type PageItem struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

type Result struct {
	Items       []model.Product
	Filtered    int
	Page        int
	PageSize    int
	TotalPages  int
	PageNumbers []PageItem
}

// Derive は products を絞り込み → 並び替え → ページングした結果を返す。
// Page は [1, TotalPages] に丸められる。
func Derive(products []model.Product, q Query) Result {
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}

	list := Apply(products, q.Filter, q.Search, q.SaleThreshold)
	total := TotalPages(len(list), size)
	page := ClampPage(q.Page, total)

	return Result{
		Items:       Paginate(list, page, size),
		Filtered:    len(list),
		Page:        page,
		PageSize:    size,
		TotalPages:  total,
		PageNumbers: PageNumbers(page, total),
	}
}

// Apply は固定の順序で絞り込みと並び替えを行う。入力は変更しない。
func Apply(products []model.Product, f model.FilterState, search string, saleThreshold int64) []model.Product {
	if saleThreshold <= 0 {
		saleThreshold = DefaultSaleThreshold
	}
	list := make([]model.Product, 0, len(products))

	term := foldTerm(search)
	for _, p := range products {
		if !matchCategory(p, f.Category) {
			continue
		}
		if term != "" && !matchSearch(p, term) {
			continue
		}
		if f.Sale && p.Price >= saleThreshold {
			continue
		}
		if f.Gender != "" && f.Gender != model.GenderAll && !p.HasGender(f.Gender) {
			continue
		}
		if f.AgeGroup != "" && f.AgeGroup != model.AgeGroupAll && !p.HasAgeGroup(f.AgeGroup) {
			continue
		}
		if f.InStockOnly && !p.InStock() {
			continue
		}
		list = append(list, p)
	}

	switch f.Price {
	case model.PriceSortLowHigh:
		slices.SortStableFunc(list, func(a, b model.Product) int { return cmp.Compare(a.Price, b.Price) })
	case model.PriceSortHighLow:
		slices.SortStableFunc(list, func(a, b model.Product) int { return cmp.Compare(b.Price, a.Price) })
	}

	return list
}

func matchCategory(p model.Product, category string) bool {
	if category == "" || category == model.CategoryAll {
		return true
	}
	return p.Category == category
}

func matchSearch(p model.Product, term string) bool {
	folder := cases.Fold()
	if strings.Contains(folder.String(p.Name), term) {
		return true
	}
	return strings.Contains(folder.String(p.Description), term)
}

func foldTerm(search string) string {
	search = strings.TrimSpace(search)
	if search == "" {
		return ""
	}
	return cases.Fold().String(search)
}

// TotalPages = max(1, ceil(n/size))
func TotalPages(n, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	pages := (n + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate は1始まりの page の範囲を返す
func Paginate(list []model.Product, page, size int) []model.Product {
	if size < 1 {
		size = DefaultPageSize
	}
	start := (page - 1) * size
	if start < 0 || start >= len(list) {
		return []model.Product{}
	}
	end := min(start+size, len(list))
	return list[start:end]
}

// PageNumbers は表示用のページ番号列。
// 7ページ以下なら全部、それ以上は先頭・末尾・現在の前後1ページと省略記号。
func PageNumbers(page, totalPages int) []PageItem {
	items := make([]PageItem, 0, maxPlainPages+2)
	if totalPages <= maxPlainPages {
		for i := 1; i <= totalPages; i++ {
			items = append(items, PageItem{Number: i})
		}
		return items
	}

	items = append(items, PageItem{Number: 1})
	if page > 4 {
		items = append(items, PageItem{Ellipsis: true})
	}
	start := max(2, page-1)
	end := min(totalPages-1, page+1)
	for i := start; i <= end; i++ {
		items = append(items, PageItem{Number: i})
	}
	if page < totalPages-3 {
		items = append(items, PageItem{Ellipsis: true})
	}
	items = append(items, PageItem{Number: totalPages})
	return items
}

// Categories は "All" + 出現順のカテゴリ（空は除く、重複なし）
func Categories(products []model.Product) []string {
	out := []string{model.CategoryAll}
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Related は商品詳細の「その他の商品」。自分自身は除く。limit<=0 なら全件。
func Related(products []model.Product, id string, limit int) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.ID == id {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
