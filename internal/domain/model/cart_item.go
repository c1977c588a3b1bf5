package model

// カートの明細
// 追加時点の名前・価格・画像をスナップショットとして持つ。
type CartLine struct {
	ProductID string `json:"_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImgSrc    string `json:"imgSrc"`
	Qty       int64  `json:"qty"`
}

func (l CartLine) Subtotal() int64 {
	return l.Price * l.Qty
}

// 商品からスナップショットを作る
func NewCartLine(p Product, qty int64) CartLine {
	return CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImgSrc:    p.ImgSrc,
		Qty:       qty,
	}
}
