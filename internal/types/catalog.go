package types

import "time"

// Category is a node in the (dynamic-depth) category tree. Only leaves are
// valid search targets for attribute-rich queries; isLeaf is derived lazily
// from the absence of children, never hard-coded by depth.
type Category struct {
	ID        string  `json:"id" gorm:"primaryKey"`
	Slug      string  `json:"slug" gorm:"uniqueIndex"`
	NameAr    string  `json:"name_ar"`
	NameEn    string  `json:"name_en"`
	ParentID  *string `json:"parent_id,omitempty"`
	Order     int     `json:"order"`
	IsActive  bool    `json:"is_active"`
	IsLeaf    bool    `json:"-" gorm:"-"` // derived at snapshot build time, never persisted
}

// Name returns the bilingual display name for the given language
func (c *Category) Name(lang Language) string {
	if lang == LanguageEnglish && c.NameEn != "" {
		return c.NameEn
	}
	return c.NameAr
}

// City is a flat reference entity
type City struct {
	ID       string `json:"id" gorm:"primaryKey"`
	NameAr   string `json:"name_ar"`
	NameEn   string `json:"name_en"`
	Province string `json:"province"`
}

func (c *City) Name(lang Language) string {
	if lang == LanguageEnglish && c.NameEn != "" {
		return c.NameEn
	}
	return c.NameAr
}

// Neighborhood belongs to exactly one city
type Neighborhood struct {
	ID     string `json:"id" gorm:"primaryKey"`
	CityID string `json:"city_id"`
	NameAr string `json:"name_ar"`
	NameEn string `json:"name_en"`
}

// TransactionTypeSlug is the closed set of transaction kinds
type TransactionTypeSlug string

const (
	TransactionSale      TransactionTypeSlug = "sale"
	TransactionRent      TransactionTypeSlug = "rent"
	TransactionExchange  TransactionTypeSlug = "exchange"
	TransactionWanted    TransactionTypeSlug = "wanted"
	TransactionDailyRent TransactionTypeSlug = "daily_rent"
)

// TransactionType is a reference entity over TransactionTypeSlug
type TransactionType struct {
	ID     string              `json:"id" gorm:"primaryKey"`
	Slug   TransactionTypeSlug `json:"slug" gorm:"uniqueIndex"`
	NameAr string              `json:"name_ar"`
	NameEn string              `json:"name_en"`
}

// AttributeValueDomain distinguishes whether an Attribute's values are numbers or text
type AttributeValueDomain string

const (
	AttributeDomainNumber AttributeValueDomain = "number"
	AttributeDomainText   AttributeValueDomain = "text"
)

// Attribute describes one per-category dynamic field (price, rooms, brand, ...)
type Attribute struct {
	ID           string               `json:"id" gorm:"primaryKey"`
	Slug         string               `json:"slug"`
	Domain       AttributeValueDomain `json:"domain"`
	DisplayUnit  string               `json:"display_unit,omitempty"`
	CategoryID   string               `json:"category_id"`
}

// AttributeValue is a sum type over Numeric(value, unit) and Text(value);
// exactly one of NumericValue/TextValue is ever populated for a given
// instance, enforced by the constructors below rather than by convention.
type AttributeValue struct {
	AttributeID  string   `json:"attribute_id"`
	Slug         string   `json:"slug"`
	NumericValue *float64 `json:"numeric_value,omitempty"`
	TextValue    *string  `json:"text_value,omitempty"`
	Unit         string   `json:"unit,omitempty"`
}

// NewNumericAttributeValue constructs a numeric AttributeValue; unit is only
// ever present alongside a numeric value, per the data-model invariant.
func NewNumericAttributeValue(attributeID, slug string, value float64, unit string) AttributeValue {
	v := value
	return AttributeValue{AttributeID: attributeID, Slug: slug, NumericValue: &v, Unit: unit}
}

// NewTextAttributeValue constructs a text AttributeValue
func NewTextAttributeValue(attributeID, slug, value string) AttributeValue {
	v := value
	return AttributeValue{AttributeID: attributeID, Slug: slug, TextValue: &v}
}

// IsNumeric reports whether this instance carries a numeric value
func (a AttributeValue) IsNumeric() bool {
	return a.NumericValue != nil
}

// ListingStatus is the closed set of lifecycle states the core cares about
type ListingStatus string

const (
	ListingStatusActive ListingStatus = "active"
)

// Listing is a single classified ad
type Listing struct {
	ID              string              `json:"id" gorm:"primaryKey"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	CategoryID      string              `json:"category_id"`
	CategorySlug    string              `json:"-" gorm:"-"`
	CityID          string              `json:"city_id"`
	NeighborhoodID  *string             `json:"neighborhood_id,omitempty"`
	TransactionType TransactionTypeSlug `json:"transaction_type"`
	Views           int64               `json:"views"`
	Boosted         bool                `json:"boosted"`
	Priority        int                 `json:"priority"`
	CreatedAt       time.Time           `json:"created_at"`
	Status          ListingStatus       `json:"status"`
	Images          []string            `json:"images,omitempty" gorm:"-"`
	MainImage       string              `json:"main_image,omitempty" gorm:"-"`
	Videos          []string            `json:"videos,omitempty" gorm:"-"`
	OfficeID        *string             `json:"office_id,omitempty"`
	UserID          *string             `json:"user_id,omitempty"`
	Attributes      []AttributeValue    `json:"attributes,omitempty" gorm:"-"`
}

// URL derives the listing's canonical public URL deterministically, never
// invented by a renderer.
func (l *Listing) URL() string {
	return ListingBaseURL + l.ID
}

// ImpressionScore is the synthetic "most impressioned" ordering key
func (l *Listing) ImpressionScore() int64 {
	score := l.Views
	if l.Boosted {
		score += 1000
	}
	score += int64(10 * l.Priority)
	return score
}

// Attribute returns the listing's value for a given attribute slug, if present
func (l *Listing) Attribute(slug string) (AttributeValue, bool) {
	for _, a := range l.Attributes {
		if a.Slug == slug {
			return a, true
		}
	}
	return AttributeValue{}, false
}

// Office is a registered business account that owns listings
type Office struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name"`
	DescAr       string    `json:"description_ar"`
	DescEn       string    `json:"description_en"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	Website      string    `json:"website,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
	CityID       string    `json:"city_id"`
	Address      string    `json:"address,omitempty"`
	Lat          float64   `json:"lat,omitempty"`
	Lng          float64   `json:"lng,omitempty"`
	Premium      bool      `json:"premium"`
	Rating       *float64  `json:"rating,omitempty"`
	RatingCount  int       `json:"rating_count"`
	Approved     bool      `json:"approved"`
	CreatedAt    time.Time `json:"created_at"`

	ActiveListingsCount int `json:"active_listings_count" gorm:"-"`
	TotalListingsCount  int `json:"total_listings_count" gorm:"-"`
}

// URL derives the office's canonical public URL deterministically
func (o *Office) URL() string {
	return OfficeBaseURL + o.ID
}
