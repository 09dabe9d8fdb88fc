// Package model はドメインモデルを定義する。
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ProductStatusActive は公開ストアフロントに表示される商品ステータス。
// statusはオープンな文字列集合であり、公開一覧と統計のみがこの値を特別扱いする。
const ProductStatusActive = "active"

// Product はストアフロントの商品を表す。
// name等の任意項目は未指定のままNULLで保存されるため、ポインタで表現する。
type Product struct {
	ID          string    `json:"id"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Images      ImageList `json:"images"`
	Price       *float64  `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsActive はstatusがactiveかどうかを返す。
func (p *Product) IsActive() bool {
	return p.Status != nil && *p.Status == ProductStatusActive
}

// ProductPatch は商品の部分更新・新規作成の入力を表す。
// nilのフィールドは「指定なし」を意味し、更新時は既存値を維持する。
type ProductPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Images      ImageList `json:"images"`
	Price       *float64  `json:"price"`
}

// ProductStats は統計計算に必要な商品の射影。
type ProductStats struct {
	Status    *string
	Images    ImageList
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Overview は商品コレクション全体から導出される統計値。
// 保存されず、リクエストごとに再計算される。
type Overview struct {
	TotalProducts  int        `json:"totalProducts"`
	ActiveProducts int        `json:"activeProducts"`
	TotalImages    int        `json:"totalImages"`
	LastUpdated    *time.Time `json:"lastUpdated"`
}

// ImageList は商品画像URLの順序付きリスト。
// DB上はjsonbカラムに格納される。
type ImageList []string

// Scan はjsonbカラムの値をImageListに変換する。
// NULLはnil、JSON配列でない値は空リストとして扱う（エラーにしない）。
func (l *ImageList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported images column type %T", src)
	}

	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		// 配列以外の値（文字列・オブジェクト等）が入っていても統計計算を
		// 失敗させず、画像0件として扱う
		*l = ImageList{}
		return nil
	}

	*l = ImageList(urls)
	return nil
}

// Value はImageListをjsonbカラム用の値に変換する。nilはNULLになる。
func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal([]string(l))
}

// compile-time interface checks
var _ driver.Valuer = (ImageList)(nil)
