package main

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/malvarez-dev/tienda-backend/config"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/internal/app/repository"
	"github.com/malvarez-dev/tienda-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Imports a product catalog from an XLSX export. Expected columns:
// name, sku, category, short_description, description, price,
// compare_price, stock_quantity, featured.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, categoryNames, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	// Categories are created first so products can reference them.
	categories := make(map[string]*model.Category)
	for _, name := range categoryNames {
		slug := generateSlug(name)
		existing, err := categoryRepo.FindBySlug(slug)
		if err == nil {
			categories[name] = existing
			continue
		}
		category := &model.Category{
			Name:     name,
			Slug:     slug,
			IsActive: true,
		}
		if err := categoryRepo.Create(category); err != nil {
			log.Fatal("Failed to create category:", err)
		}
		categories[name] = category
	}
	fmt.Printf("Categories ready: %d\n", len(categories))

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		product := row.Product
		if cat, ok := categories[row.Category]; ok {
			product.Categories = []model.Category{*cat}
		}
		products = append(products, product)
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

// seedProduct pairs a parsed product with its category name; the category
// record may not exist yet while the sheet is being read.
type seedProduct struct {
	Product  model.Product
	Category string
}

func readProductsFromXLSX(filePath string) ([]seedProduct, []string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no data found in XLSX file")
	}

	var products []seedProduct
	var categoryNames []string
	seenSKUs := make(map[string]bool)
	seenCategories := make(map[string]bool)
	slugCounter := make(map[string]int)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 6 {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		sku := strings.TrimSpace(row[1])
		category := strings.TrimSpace(row[2])
		shortDescription := strings.TrimSpace(row[3])
		description := strings.TrimSpace(row[4])
		priceStr := strings.TrimSpace(row[5])

		if name == "" || sku == "" || priceStr == "" {
			skippedCount++
			continue
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			skippedCount++
			continue
		}

		var comparePrice *float64
		if len(row) > 6 {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64); err == nil && v > price {
				comparePrice = &v
			}
		}

		stockQuantity := 0
		if len(row) > 7 {
			if v, err := strconv.Atoi(strings.TrimSpace(row[7])); err == nil && v >= 0 {
				stockQuantity = v
			}
		}

		isFeatured := false
		if len(row) > 8 {
			featured := strings.ToLower(strings.TrimSpace(row[8]))
			isFeatured = featured == "yes" || featured == "true" || featured == "1"
		}

		if seenSKUs[sku] {
			skippedCount++
			continue
		}
		seenSKUs[sku] = true

		baseSlug := generateSlug(name)
		slug := baseSlug
		if count, exists := slugCounter[baseSlug]; exists {
			slugCounter[baseSlug] = count + 1
			slug = fmt.Sprintf("%s-%d", baseSlug, count+1)
		} else {
			slugCounter[baseSlug] = 1
		}

		if category != "" && !seenCategories[category] {
			seenCategories[category] = true
			categoryNames = append(categoryNames, category)
		}

		products = append(products, seedProduct{
			Product: model.Product{
				Name:             name,
				Slug:             slug,
				SKU:              sku,
				ShortDescription: shortDescription,
				Description:      description,
				Price:            price,
				ComparePrice:     comparePrice,
				StockQuantity:    stockQuantity,
				IsFeatured:       isFeatured,
				IsActive:         true,
				ManageStock:      true,
			},
			Category: category,
		})

		if len(products)%500 == 0 {
			fmt.Printf("Processed %d products...\n", len(products))
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid products: %d\n", len(products))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)
	fmt.Printf("  Categories found: %d\n", len(categoryNames))

	return products, categoryNames, nil
}

// generateSlug builds a URL slug from a display name.
func generateSlug(name string) string {
	slug := strings.ToLower(name)

	reg := regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	slug = reg.ReplaceAllString(slug, "-")

	reg = regexp.MustCompile(`-+`)
	slug = reg.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
