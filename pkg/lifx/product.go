package lifx

// Product is a LIFX hardware model
type Product struct {
	VendorID  uint32
	ProductID uint32
	Name      string
	Color     bool
	Infrared  bool
	Multizone bool
}

const lifxVendor = 1

var products = []Product{
	{lifxVendor, 1, "Original 1000", true, false, false},
	{lifxVendor, 3, "Color 650", true, false, false},
	{lifxVendor, 10, "White 800 (Low Voltage)", false, false, false},
	{lifxVendor, 11, "White 800 (High Voltage)", false, false, false},
	{lifxVendor, 18, "White 900 BR30 (Low Voltage)", false, false, false},
	{lifxVendor, 20, "Color 1000 BR30", true, false, false},
	{lifxVendor, 22, "Color 1000", true, false, false},
	{lifxVendor, 27, "LIFX A19", true, false, false},
	{lifxVendor, 28, "LIFX BR30", true, false, false},
	{lifxVendor, 29, "LIFX+ A19", true, true, false},
	{lifxVendor, 30, "LIFX+ BR30", true, true, false},
	{lifxVendor, 31, "LIFX Z", true, false, true},
	{lifxVendor, 32, "LIFX Z 2", true, false, true},
	{lifxVendor, 36, "LIFX Downlight", true, false, false},
	{lifxVendor, 38, "LIFX Beam", true, false, true},
	{lifxVendor, 49, "LIFX Mini", true, false, false},
	{lifxVendor, 50, "LIFX Mini Day and Dusk", false, false, false},
	{lifxVendor, 51, "LIFX Mini White", false, false, false},
	{lifxVendor, 52, "LIFX GU10", true, false, false},
	{lifxVendor, 55, "LIFX Tile", true, false, false},
}

// Products returns the catalog of known hardware
func Products() []Product {
	return append([]Product(nil), products...)
}

func LookupProduct(vendorID, productID uint32) (Product, bool) {
	for _, p := range products {
		if p.VendorID == vendorID && p.ProductID == productID {
			return p, true
		}
	}

	return Product{}, false
}
