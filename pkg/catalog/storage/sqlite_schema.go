package storage

// schema creates the catalog and cart tables.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	handle TEXT NOT NULL DEFAULT '',
	thumbnail TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS product_categories (
	product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	category_id TEXT NOT NULL,
	PRIMARY KEY (product_id, category_id)
);

CREATE INDEX IF NOT EXISTS idx_product_categories_category ON product_categories(category_id);

CREATE TABLE IF NOT EXISTS variants (
	id TEXT PRIMARY KEY,
	product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	title TEXT NOT NULL DEFAULT '',
	manage_inventory INTEGER NOT NULL,
	allow_backorder INTEGER NOT NULL,
	inventory_quantity INTEGER,
	position INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_variants_product ON variants(product_id);

CREATE TABLE IF NOT EXISTS prices (
	variant_id TEXT NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
	region_id TEXT NOT NULL DEFAULT '',
	currency_code TEXT NOT NULL,
	amount INTEGER NOT NULL,
	PRIMARY KEY (variant_id, region_id, currency_code)
);

CREATE TABLE IF NOT EXISTS carts (
	id TEXT PRIMARY KEY,
	region_id TEXT NOT NULL DEFAULT '',
	currency_code TEXT NOT NULL DEFAULT '',
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cart_lines (
	cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
	id TEXT NOT NULL,
	position INTEGER NOT NULL,
	product_id TEXT NOT NULL,
	variant_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL,
	PRIMARY KEY (cart_id, id)
);
`

const (
	upsertProductSQL = `
		INSERT INTO products (id, title, handle, thumbnail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			handle = excluded.handle,
			thumbnail = excluded.thumbnail,
			updated_at = excluded.updated_at`

	insertCategorySQL = `INSERT OR IGNORE INTO product_categories (product_id, category_id) VALUES (?, ?)`

	insertVariantSQL = `
		INSERT INTO variants (id, product_id, title, manage_inventory, allow_backorder, inventory_quantity, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	insertPriceSQL = `INSERT INTO prices (variant_id, region_id, currency_code, amount) VALUES (?, ?, ?, ?)`

	listByCategorySQL = `
		SELECT p.id, p.title, p.handle, p.thumbnail
		FROM products p
		JOIN product_categories pc ON pc.product_id = p.id
		WHERE pc.category_id = ?
		ORDER BY p.created_at DESC, p.id
		LIMIT ?`

	loadCartSQL = `SELECT region_id, currency_code FROM carts WHERE id = ?`

	loadCartLinesSQL = `
		SELECT l.id, l.product_id, l.variant_id, l.title, l.quantity,
			v.id IS NOT NULL, COALESCE(v.manage_inventory, 0), COALESCE(v.allow_backorder, 0), v.inventory_quantity
		FROM cart_lines l
		LEFT JOIN variants v ON v.id = l.variant_id AND v.product_id = l.product_id
		WHERE l.cart_id = ?
		ORDER BY l.position`

	loadCartCategoriesSQL = `
		SELECT DISTINCT pc.product_id, pc.category_id
		FROM product_categories pc
		JOIN cart_lines l ON l.product_id = pc.product_id
		WHERE l.cart_id = ?
		ORDER BY pc.product_id, pc.category_id`

	upsertCartSQL = `
		INSERT INTO carts (id, region_id, currency_code, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			region_id = excluded.region_id,
			currency_code = excluded.currency_code,
			updated_at = excluded.updated_at`

	insertCartLineSQL = `
		INSERT INTO cart_lines (cart_id, id, position, product_id, variant_id, title, quantity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
)
