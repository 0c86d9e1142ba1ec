// Package platforms registers the known e-commerce export profiles with the
// core registry. Import this package to ensure all profiles are registered.
package platforms

// Registration order is the detection tie-break order, so every profile is
// registered from this single init.
func init() {
	registerShopify()
	registerAmazon()
	registerWooCommerce()
}
