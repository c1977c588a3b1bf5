package model

import "strings"

type Gender string

const (
	GenderAll    Gender = "all"
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

type AgeGroup string

const (
	AgeGroupAll   AgeGroup = "all"
	AgeGroupAdult AgeGroup = "adult"
	AgeGroupChild AgeGroup = "child"
)

// Product はバックエンドの /items が返す商品（読み取り専用）。
// 任意項目の既定値:
//   - Category が空 => カテゴリなし
//   - Gender / AgeGroup が空 => 未指定（"all" 以外の絞り込みには一致しない）
//   - Stock が nil => 在庫ありとして扱う
//   - price が無い => 0
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	ImgSrc      string   `json:"imgSrc"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Gender      Gender   `json:"gender,omitempty"`
	AgeGroup    AgeGroup `json:"ageGroup,omitempty"`
	Stock       *int64   `json:"stock,omitempty"`
}

// 在庫あり判定（stock 無しは在庫あり）
func (p Product) InStock() bool {
	if p.Stock == nil {
		return true
	}
	return *p.Stock > 0
}

// 大文字小文字を無視して比較
func (p Product) HasGender(g Gender) bool {
	return strings.EqualFold(string(p.Gender), string(g))
}

func (p Product) HasAgeGroup(a AgeGroup) bool {
	return strings.EqualFold(string(p.AgeGroup), string(a))
}
