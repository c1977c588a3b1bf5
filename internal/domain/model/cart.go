package model

// CartState はセッションごとのカート（永続化対象）。
// cart は追加順。1商品につき1行。
type CartState struct {
	Lines  []CartLine `json:"cart"`
	IsOpen bool       `json:"isOpen"`
}

func (s CartState) Total() int64 {
	var total int64
	for _, l := range s.Lines {
		total += l.Subtotal()
	}
	return total
}

func (s CartState) ItemCount() int64 {
	var n int64
	for _, l := range s.Lines {
		n += l.Qty
	}
	return n
}
