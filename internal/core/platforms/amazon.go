package platforms

import "github.com/JonMunkholm/catalogconv/internal/core"

func registerAmazon() {
	core.RegisterPlatform(core.PlatformProfile{
		Key:   "amazon",
		Label: "Amazon",
		Fields: []core.PlatformField{
			{Target: core.FieldName, Synonyms: []string{"Product Name", "Title", "item-name"}},
			{Target: core.FieldDescription, Synonyms: []string{"Product Description", "Description", "product-description"}},
			{Target: core.FieldPrice, Synonyms: []string{"Price", "Standard Price", "standard-price"}},
			{Target: core.FieldBrand, Synonyms: []string{"Brand Name", "Brand", "brand-name"}},
			{Target: core.FieldVariantAttributes, Synonyms: []string{"Color", "Size", "Style"}},
			{Target: core.FieldVariantQuantity, Synonyms: []string{"Quantity", "Stock Quantity", "quantity"}},
			{Target: core.FieldImageURLs, Synonyms: []string{"Main Image URL", "Image URL", "main-image-url"}},
			{Target: core.CategorySourceKey, Synonyms: []string{"Category", "Product Type", "Department"}},
		},
		ExampleColumns: []string{
			"Product Name", "Product Description", "Brand Name", "Standard Price",
			"Color", "Quantity", "Main Image URL",
		},
		ExampleRows: [][]string{
			{"Wireless Headphones", "High-quality wireless headphones", "Audio Tech", "99.99", "Black", "25", "https://example.com/headphones.jpg"},
			{"Phone Case", "Protective phone case", "Case Pro", "19.99", "Clear", "100", "https://example.com/case.jpg"},
		},
	})
}
