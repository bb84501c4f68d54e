package m_product

import "github.com/murkotick/storefront-catalog/internal/schema"

// Field constants for the products table.
const (
	TableName = "products"

	ColID               = "id"
	ColInternalID       = "internal_id"
	ColSeq              = "seq"
	ColName             = "name"
	ColDescription      = "description"
	ColShortDescription = "short_description"
	ColBrand            = "brand"
	ColCategory         = "category"
	ColPrice            = "price"
	ColCurrency         = "currency"
	ColStock            = "stock"
	ColEAN              = "ean"
	ColColor            = "color"
	ColSize             = "size"
	ColAvailability     = "availability"
	ColImage            = "image"
	ColCreatedAt        = "created_at"
)

// Columns is the canonical column order used by every generated statement.
var Columns = []string{
	ColID,
	ColInternalID,
	ColSeq,
	ColName,
	ColDescription,
	ColShortDescription,
	ColBrand,
	ColCategory,
	ColPrice,
	ColCurrency,
	ColStock,
	ColEAN,
	ColColor,
	ColSize,
	ColAvailability,
	ColImage,
	ColCreatedAt,
}

// Descriptor registers the products table with a schema registry.
func Descriptor() schema.Descriptor {
	return schema.Descriptor{
		Table:  TableName,
		Key:    []string{ColID},
		Fields: append([]string(nil), Columns...),
	}
}
