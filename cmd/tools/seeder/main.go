package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	storeIDs := seedStores(db)
	categoryIDs := seedCategories(db)
	productIDs := seedProducts(db, categoryIDs)
	seedPrices(db, storeIDs, productIDs)

	log.Println("Seeding completed successfully!")
}

func seedStores(db *sql.DB) map[string]int64 {
	stores := []struct {
		Name    string
		Slug    string
		BaseURL string
	}{
		{"Tesco Ireland", "tesco", "https://www.tesco.ie"},
		{"Aldi", "aldi", "https://www.aldi.ie"},
		{"Lidl", "lidl", "https://www.lidl.ie"},
		{"Dunnes Stores", "dunnes", "https://www.dunnesstores.com"},
		{"SuperValu", "supervalu", "https://shop.supervalu.ie"},
	}

	fmt.Println("Seeding Stores...")
	ids := make(map[string]int64)
	for _, s := range stores {
		var id int64
		err := db.QueryRow(`
			INSERT INTO stores (name, slug, base_url)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, base_url = EXCLUDED.base_url
			RETURNING id;
		`, s.Name, s.Slug, s.BaseURL).Scan(&id)
		if err != nil {
			log.Fatalf("Failed to upsert store %s: %v", s.Slug, err)
		}
		ids[s.Slug] = id
	}
	return ids
}

func seedCategories(db *sql.DB) map[string]int64 {
	categories := []struct {
		Name string
		Slug string
	}{
		{"Dairy & Eggs", "dairy-eggs"},
		{"Bread & Bakery", "bread-bakery"},
		{"Fruit & Vegetables", "fruit-veg"},
		{"Meat & Fish", "meat-fish"},
		{"Cupboard", "cupboard"},
		{"Drinks", "drinks"},
		{"Snacks", "snacks"},
		{"Household", "household"},
	}

	fmt.Println("Seeding Categories...")
	ids := make(map[string]int64)
	for _, c := range categories {
		var id int64
		err := db.QueryRow(`
			INSERT INTO categories (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id;
		`, c.Name, c.Slug).Scan(&id)
		if err != nil {
			log.Fatalf("Failed to upsert category %s: %v", c.Slug, err)
		}
		ids[c.Slug] = id
	}
	return ids
}

type seedProduct struct {
	Name     string
	Brand    string
	EAN      string
	Category string
	Unit     string
	UnitSize string
	// BasePrice anchors the per-store price spread, in euro.
	BasePrice float64
}

// seedPriceAnchor remembers each product's base price so seedPrices can
// derive per-store variants from it.
var seedPriceAnchor = make(map[int64]float64)

func seedProducts(db *sql.DB, categoryIDs map[string]int64) map[string]int64 {
	products := []seedProduct{
		{"Fresh Milk 2L", "Avonmore", "5011069000011", "dairy-eggs", "l", "2", 2.49},
		{"Irish Creamery Butter 454g", "Kerrygold", "5011069000028", "dairy-eggs", "g", "454", 3.99},
		{"Free Range Eggs 12pk", "Golden Irish", "5011069000035", "dairy-eggs", "pack", "12", 4.29},
		{"Mature Cheddar 400g", "Dubliner", "5011069000042", "dairy-eggs", "g", "400", 4.50},
		{"Batch Loaf 800g", "Brennans", "5011069000059", "bread-bakery", "g", "800", 1.95},
		{"Wholegrain Bread 800g", "McCambridge's", "5011069000066", "bread-bakery", "g", "800", 2.35},
		{"Bananas 1kg", "", "5011069000073", "fruit-veg", "kg", "1", 1.49},
		{"Rooster Potatoes 2kg", "", "5011069000080", "fruit-veg", "kg", "2", 2.79},
		{"Carrots 1kg", "", "5011069000097", "fruit-veg", "kg", "1", 0.89},
		{"Chicken Fillets 640g", "Manor Farm", "5011069000103", "meat-fish", "g", "640", 5.99},
		{"Irish Beef Mince 500g", "Hereford", "5011069000110", "meat-fish", "g", "500", 4.49},
		{"Tea Bags 80pk", "Barry's", "5011069000127", "cupboard", "pack", "80", 3.79},
		{"Baked Beans 420g", "Batchelors", "5011069000134", "cupboard", "g", "420", 1.09},
		{"Porridge Oats 1kg", "Flahavan's", "5011069000141", "cupboard", "kg", "1", 2.59},
		{"Red Lemonade 2L", "TK", "5011069000158", "drinks", "l", "2", 1.79},
		{"Still Water 2L", "Ballygowan", "5011069000165", "drinks", "l", "2", 1.15},
		{"Cheese & Onion Crisps 6pk", "Tayto", "5011069000172", "snacks", "pack", "6", 2.29},
		{"Chocolate Kimberley 250g", "Jacob's", "5011069000189", "snacks", "g", "250", 2.49},
		{"Washing Up Liquid 500ml", "Fairy", "5011069000196", "household", "ml", "500", 2.19},
		{"Kitchen Towels 2pk", "Plenty", "5011069000202", "household", "pack", "2", 3.49},
	}

	fmt.Println("Seeding Products...")
	ids := make(map[string]int64)
	for _, p := range products {
		categoryID, ok := categoryIDs[p.Category]
		if !ok {
			log.Fatalf("Unknown category %s for product %s", p.Category, p.Name)
		}
		var id int64
		err := db.QueryRow(`SELECT id FROM products WHERE ean = $1`, p.EAN).Scan(&id)
		if err == sql.ErrNoRows {
			err = db.QueryRow(`
				INSERT INTO products (name, brand, ean, category_id, unit, unit_size)
				VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6::numeric)
				RETURNING id;
			`, p.Name, p.Brand, p.EAN, categoryID, p.Unit, p.UnitSize).Scan(&id)
		}
		if err != nil {
			log.Fatalf("Failed to seed product %s: %v", p.Name, err)
		}
		ids[p.EAN] = id
		seedPriceAnchor[id] = p.BasePrice
	}
	return ids
}

func seedPrices(db *sql.DB, storeIDs map[string]int64, productIDs map[string]int64) {
	// Per-store price multipliers; the discounters undercut the full-price
	// chains so comparisons have a clear spread.
	multipliers := map[string]float64{
		"tesco":     1.00,
		"aldi":      0.88,
		"lidl":      0.90,
		"dunnes":    0.97,
		"supervalu": 1.05,
	}
	promoLabels := map[string]string{
		"tesco":     "Clubcard Price",
		"supervalu": "Real Rewards",
	}

	fmt.Println("Seeding Prices...")
	now := time.Now().UTC()
	i := 0
	for _, productID := range productIDs {
		base := seedPriceAnchor[productID]
		for slug, storeID := range storeIDs {
			var storeProductID int64
			err := db.QueryRow(`
				INSERT INTO store_products (product_id, store_id, store_name)
				VALUES ($1, $2, (SELECT name FROM products WHERE id = $1))
				ON CONFLICT (product_id, store_id) DO UPDATE SET is_active = TRUE
				RETURNING id;
			`, productID, storeID).Scan(&storeProductID)
			if err != nil {
				log.Fatalf("Failed to upsert store product %d/%s: %v", productID, slug, err)
			}

			price := base * multipliers[slug]
			label, promoted := promoLabels[slug]
			promoted = promoted && i%3 == 0

			// A week of history, newest record carrying any promotion.
			for day := 6; day >= 0; day-- {
				scrapedAt := now.AddDate(0, 0, -day)
				drift := 1.0 + float64(day%3)*0.01
				var promoPrice any
				var promoLabel any
				if promoted && day == 0 {
					promoPrice = round2(price * 0.80)
					promoLabel = label
				}
				_, err := db.Exec(`
					INSERT INTO price_records (store_product_id, price, promo_price, promo_label, in_stock, scraped_at)
					VALUES ($1, $2, $3, $4, TRUE, $5);
				`, storeProductID, round2(price*drift), promoPrice, promoLabel, scrapedAt)
				if err != nil {
					log.Fatalf("Failed to seed price for store product %d: %v", storeProductID, err)
				}
			}
		}
		i++
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
