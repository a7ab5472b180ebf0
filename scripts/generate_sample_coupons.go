//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

type sampleCoupon struct {
	Code          string   `json:"code"`
	DiscountType  string   `json:"discountType"`
	Value         float64  `json:"value"`
	MaxDiscount   *float64 `json:"maxDiscount,omitempty"`
	MinOrderValue float64  `json:"minOrderValue"`
	IsActive      bool     `json:"isActive"`
	ValidFrom     string   `json:"validFrom"`
	ValidTill     string   `json:"validTill"`
	UsageLimit    int      `json:"usageLimit"`
}

// generateSampleCoupons writes gzipped JSON-lines coupon catalogues for local runs.
// Point COUPON_CATALOG_PATHS at the generated files, e.g.
// COUPON_CATALOG_PATHS=data/coupons/festive.jsonl.gz,data/coupons/partners.jsonl.gz
func main() {
	dataDir := "data/coupons"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -1).Format(time.RFC3339)
	till := now.AddDate(0, 3, 0).Format(time.RFC3339)
	expired := now.AddDate(0, 0, -2).Format(time.RFC3339)
	cap150 := 150.0

	catalogues := map[string][]sampleCoupon{
		"festive.jsonl.gz": {
			{Code: "SAVE10", DiscountType: "percentage", Value: 10, MinOrderValue: 0, IsActive: true, ValidFrom: from, ValidTill: till},
			{Code: "SAVE15", DiscountType: "percentage", Value: 15, MaxDiscount: &cap150, MinOrderValue: 500, IsActive: true, ValidFrom: from, ValidTill: till},
			{Code: "FLAT100", DiscountType: "flat", Value: 100, MinOrderValue: 999, IsActive: true, ValidFrom: from, ValidTill: till},
		},
		"partners.jsonl.gz": {
			{Code: "FIRSTBAG", DiscountType: "flat", Value: 75, MinOrderValue: 300, IsActive: true, ValidFrom: from, ValidTill: till, UsageLimit: 100},
			{Code: "PAUSED20", DiscountType: "percentage", Value: 20, IsActive: false, ValidFrom: from, ValidTill: till},
			{Code: "OLDSALE", DiscountType: "percentage", Value: 30, IsActive: true, ValidFrom: expired, ValidTill: from},
		},
	}

	for filename, coupons := range catalogues {
		filePath := filepath.Join(dataDir, filename)

		if err := createCouponFile(filePath, coupons); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d coupons\n", filePath, len(coupons))
	}

	fmt.Println("\nSample coupon catalogues created successfully!")
	fmt.Println("\nRedeemable codes:")
	fmt.Println("  - SAVE10   (10%, no minimum)")
	fmt.Println("  - SAVE15   (15% capped at 150, minimum 500)")
	fmt.Println("  - FLAT100  (100 off, minimum 999)")
	fmt.Println("  - FIRSTBAG (75 off, minimum 300, 100 redemptions)")
	fmt.Println("\nRejected codes:")
	fmt.Println("  - PAUSED20 (inactive)")
	fmt.Println("  - OLDSALE  (expired)")
}

func createCouponFile(filePath string, coupons []sampleCoupon) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := json.NewEncoder(gzipWriter)
	for _, coupon := range coupons {
		if err := encoder.Encode(coupon); err != nil {
			return fmt.Errorf("failed to write coupon %s: %w", coupon.Code, err)
		}
	}

	return nil
}
