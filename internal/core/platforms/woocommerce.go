package platforms

import "github.com/JonMunkholm/catalogconv/internal/core"

func registerWooCommerce() {
	core.RegisterPlatform(core.PlatformProfile{
		Key:   "woocommerce",
		Label: "WooCommerce",
		Fields: []core.PlatformField{
			{Target: core.FieldName, Synonyms: []string{"Name", "Product Name", "post_title"}},
			{Target: core.FieldDescription, Synonyms: []string{"Description", "Product Description", "post_content"}},
			{Target: core.FieldPrice, Synonyms: []string{"Regular Price", "Price", "regular_price"}},
			{Target: core.FieldBrand, Synonyms: []string{"Brand", "Manufacturer", "brand"}},
			{Target: core.FieldVariantAttributes, Synonyms: []string{"Attribute 1 name", "Attribute 1 value(s)"}},
			{Target: core.FieldVariantQuantity, Synonyms: []string{"Stock", "Stock Quantity", "stock"}},
			{Target: core.FieldImageURLs, Synonyms: []string{"Images", "Gallery Images", "images"}},
			{Target: core.CategorySourceKey, Synonyms: []string{"Categories", "Product categories", "Category"}},
		},
		ExampleColumns: []string{
			"Name", "Description", "Regular Price", "Brand", "Stock", "Images",
		},
		ExampleRows: [][]string{
			{"Yoga Mat", "Non-slip yoga mat", "39.99", "Yoga Pro", "15", "https://example.com/mat.jpg"},
			{"Water Bottle", "Insulated water bottle", "24.99", "Hydro", "50", "https://example.com/bottle.jpg"},
		},
	})
}
