package shopify

import "time"

// Money is a Storefront API amount. Amounts stay strings end to end:
// the remote system owns all monetary math.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type Image struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	AltText string `json:"altText"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ProductVariant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AvailableForSale bool             `json:"availableForSale"`
	Price            Money            `json:"price"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
}

type Product struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Handle           string           `json:"handle"`
	AvailableForSale bool             `json:"availableForSale"`
	Tags             []string         `json:"tags"`
	CreatedAt        string           `json:"createdAt"`
	UpdatedAt        string           `json:"updatedAt"`
	Images           []Image          `json:"images"`
	Variants         []ProductVariant `json:"variants"`
	Price            Money            `json:"price"`
}

type Collection struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
	Image       *Image `json:"image"`
}

type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Excerpt     string `json:"excerpt"`
	PublishedAt string `json:"publishedAt"`
	AuthorName  string `json:"authorName"`
	Image       *Image `json:"image"`
}

type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// CartItem is a variant selection to add: the only cart input a caller
// can express before the remote system has issued line identifiers.
type CartItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// LineUpdate targets an existing line by its remote-issued identifier.
type LineUpdate struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type ProductRef struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Handle string  `json:"handle"`
	Images []Image `json:"images"`
}

type Merchandise struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Product ProductRef `json:"product"`
}

type LineCost struct {
	TotalAmount Money `json:"totalAmount"`
}

type CartLine struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Merchandise Merchandise `json:"merchandise"`
	Cost        LineCost    `json:"cost"`
}

type CartCost struct {
	TotalAmount Money `json:"totalAmount"`
}

type Cart struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkoutUrl"`
	Lines         []CartLine `json:"lines"`
	TotalQuantity int        `json:"totalQuantity"`
	Cost          CartCost   `json:"cost"`
}

// Clone returns a deep copy, used to snapshot state before an optimistic
// mutation so a failed round trip can restore it exactly.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Lines = make([]CartLine, len(c.Lines))
	for i, l := range c.Lines {
		lc := l
		lc.Merchandise.Product.Images = append([]Image(nil), l.Merchandise.Product.Images...)
		cp.Lines[i] = lc
	}
	return &cp
}

// SumQuantities recomputes the derived total from line quantities.
func (c *Cart) SumQuantities() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// Line returns the line with the given identifier, or nil.
func (c *Cart) Line(lineID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i]
		}
	}
	return nil
}

type Customer struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Phone            string `json:"phone"`
	AcceptsMarketing bool   `json:"acceptsMarketing"`
}

type CustomerCreateInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// CustomerUpdateInput carries only the fields the caller wants changed.
type CustomerUpdateInput struct {
	Email            *string `json:"email,omitempty"`
	FirstName        *string `json:"firstName,omitempty"`
	LastName         *string `json:"lastName,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	AcceptsMarketing *bool   `json:"acceptsMarketing,omitempty"`
	Password         *string `json:"password,omitempty"`
}

type AccessToken struct {
	Token     string    `json:"accessToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type OrderLineItem struct {
	Title    string `json:"title"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Total    Money  `json:"total"`
}

type Order struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	OrderNumber       int             `json:"orderNumber"`
	ProcessedAt       string          `json:"processedAt"`
	FinancialStatus   string          `json:"financialStatus"`
	FulfillmentStatus string          `json:"fulfillmentStatus"`
	Total             Money           `json:"total"`
	LineItems         []OrderLineItem `json:"lineItems"`
}
