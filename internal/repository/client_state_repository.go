package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 永続化する状態の名前空間
const (
	NamespaceCart = "cart-storage"
	NamespaceUser = "user-auth"
)

// セッションごとのクライアント状態を保存・取得する窓口
type ClientStateRepository interface {
	//Load は保存済みpayloadを返す。無ければ ErrNotFound
	Load(ctx context.Context, namespace, ownerKey string) ([]byte, error)

	//Save は上書き保存（無ければ作成）
	Save(ctx context.Context, namespace, ownerKey string, payload []byte) error

	//Delete は削除。無くてもエラーにしない
	Delete(ctx context.Context, namespace, ownerKey string) error
}
