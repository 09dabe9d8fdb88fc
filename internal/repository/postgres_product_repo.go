package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/storeman/internal/model"
)

// productColumns は商品レコードのSELECT列。scanProductと対応する。
const productColumns = `id, name, description, status, images, price, created_at, updated_at`

// PostgresProductRepo はPostgreSQLを使用した商品リポジトリ。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

// scanProduct は1行を*model.Productに変換する。
func scanProduct(row interface{ Scan(dest ...any) error }) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.Images, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListActive はstatus=activeの商品をcreated_at降順で返す。
func (r *PostgresProductRepo) ListActive(ctx context.Context) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE status = $1
		 ORDER BY created_at DESC`,
		model.ProductStatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListAll は全商品をcreated_at降順で返す。
func (r *PostgresProductRepo) ListAll(ctx context.Context) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// collectProducts はrowsを読み切って商品スライスに変換する。
func collectProducts(rows *sql.Rows) ([]*model.Product, error) {
	products := []*model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// Create は商品を作成する。タイムスタンプとIDは呼び出し側が設定済みであること。
func (r *PostgresProductRepo) Create(ctx context.Context, product *model.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, status, images, price, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		product.ID, product.Name, product.Description, product.Status,
		product.Images, product.Price, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Update はpatchの非nilフィールドをCOALESCEでマージし、updated_atを更新する。
// マージとタイムスタンプ更新を1文で行うため部分更新が途中状態を残さない。
// 該当レコードが存在しない場合はnilを返す。
func (r *PostgresProductRepo) Update(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE products SET
		     name        = COALESCE($2, name),
		     description = COALESCE($3, description),
		     status      = COALESCE($4, status),
		     images      = COALESCE($5, images),
		     price       = COALESCE($6, price),
		     updated_at  = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, patch.Name, patch.Description, patch.Status, patch.Images, patch.Price,
	)

	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// Delete は指定IDの商品を削除する。
// 該当行が無かった場合はfalseを返す（エラーにはしない）。
func (r *PostgresProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// StatsProjection は統計計算に必要な射影を全商品分返す。
func (r *PostgresProductRepo) StatsProjection(ctx context.Context) ([]model.ProductStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, images, created_at, updated_at FROM products`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query product stats: %w", err)
	}
	defer rows.Close()

	stats := []model.ProductStats{}
	for rows.Next() {
		var s model.ProductStats
		if err := rows.Scan(&s.Status, &s.Images, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product stats: %w", err)
	}
	return stats, nil
}

// compile-time interface check
var _ ProductRepository = (*PostgresProductRepo)(nil)
