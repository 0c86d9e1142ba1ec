package platforms

import "github.com/JonMunkholm/catalogconv/internal/core"

func registerShopify() {
	core.RegisterPlatform(core.PlatformProfile{
		Key:   "shopify",
		Label: "Shopify",
		Fields: []core.PlatformField{
			{Target: core.FieldName, Synonyms: []string{"Title", "Product Title", "title"}},
			{Target: core.FieldDescription, Synonyms: []string{"Body (HTML)", "Description", "body_html"}},
			{Target: core.FieldPrice, Synonyms: []string{"Variant Price", "Price", "price"}},
			{Target: core.FieldBrand, Synonyms: []string{"Vendor", "Brand", "vendor"}},
			{Target: core.FieldVariantAttributes, Synonyms: []string{"Option1 Name", "Option1 Value", "Option2 Name", "Option2 Value"}},
			{Target: core.FieldVariantQuantity, Synonyms: []string{"Variant Inventory Qty", "Inventory Quantity", "inventory_quantity"}},
			{Target: core.FieldImageURLs, Synonyms: []string{"Image Src", "Image URL", "image_src"}},
			{Target: core.CategorySourceKey, Synonyms: []string{"Product Category", "Type", "Tags", "Category"}},
		},
		ExampleColumns: []string{
			"Title", "Body (HTML)", "Vendor", "Variant Price",
			"Option1 Name", "Option1 Value", "Variant Inventory Qty", "Image Src",
		},
		ExampleRows: [][]string{
			{"Cotton T-Shirt", "Comfortable cotton t-shirt", "Fashion Brand", "29.99", "Color", "Red", "10", "https://example.com/img1.jpg"},
			{"Denim Jeans", "Classic denim jeans", "Denim Co", "79.99", "Size", "32", "5", "https://example.com/img2.jpg"},
		},
	})
}
