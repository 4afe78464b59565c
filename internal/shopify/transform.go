package shopify

// Wire shapes of the Storefront API. Connections come back as edge/node
// wrappers; the transforms below flatten them into the view types the
// rest of the application consumes.

type gqlUserError struct {
	Code    string   `json:"code"`
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type gqlImageConnection struct {
	Edges []struct {
		Node Image `json:"node"`
	} `json:"edges"`
}

func (c gqlImageConnection) flatten() []Image {
	images := make([]Image, len(c.Edges))
	for i, e := range c.Edges {
		images[i] = e.Node
	}
	return images
}

type gqlProduct struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Handle           string             `json:"handle"`
	AvailableForSale bool               `json:"availableForSale"`
	Tags             []string           `json:"tags"`
	CreatedAt        string             `json:"createdAt"`
	UpdatedAt        string             `json:"updatedAt"`
	Images           gqlImageConnection `json:"images"`
	Variants         struct {
		Edges []struct {
			Node ProductVariant `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	PriceRange struct {
		MinVariantPrice Money `json:"minVariantPrice"`
	} `json:"priceRange"`
}

func transformProduct(p *gqlProduct) Product {
	variants := make([]ProductVariant, len(p.Variants.Edges))
	for i, e := range p.Variants.Edges {
		variants[i] = e.Node
	}
	return Product{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Handle:           p.Handle,
		AvailableForSale: p.AvailableForSale,
		Tags:             p.Tags,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Images:           p.Images.flatten(),
		Variants:         variants,
		Price:            p.PriceRange.MinVariantPrice,
	}
}

type gqlCollection struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
	Image       *Image `json:"image"`
}

func transformCollection(c *gqlCollection) Collection {
	return Collection{
		ID:          c.ID,
		Title:       c.Title,
		Handle:      c.Handle,
		Description: c.Description,
		Image:       c.Image,
	}
}

type gqlArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Excerpt     string `json:"excerpt"`
	PublishedAt string `json:"publishedAt"`
	AuthorV2    *struct {
		Name string `json:"name"`
	} `json:"authorV2"`
	Image *Image `json:"image"`
}

func transformArticle(a *gqlArticle) Article {
	article := Article{
		ID:          a.ID,
		Title:       a.Title,
		Handle:      a.Handle,
		Excerpt:     a.Excerpt,
		PublishedAt: a.PublishedAt,
		Image:       a.Image,
	}
	if a.AuthorV2 != nil {
		article.AuthorName = a.AuthorV2.Name
	}
	return article
}

type gqlCartLine struct {
	ID          string `json:"id"`
	Quantity    int    `json:"quantity"`
	Merchandise struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Product struct {
			ID     string             `json:"id"`
			Title  string             `json:"title"`
			Handle string             `json:"handle"`
			Images gqlImageConnection `json:"images"`
		} `json:"product"`
	} `json:"merchandise"`
	Cost struct {
		TotalAmount Money `json:"totalAmount"`
	} `json:"cost"`
}

type gqlCart struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          struct {
		TotalAmount Money `json:"totalAmount"`
	} `json:"cost"`
	Lines struct {
		Edges []struct {
			Node gqlCartLine `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

func transformCart(c *gqlCart) *Cart {
	if c == nil {
		return nil
	}
	lines := make([]CartLine, len(c.Lines.Edges))
	for i, e := range c.Lines.Edges {
		n := e.Node
		lines[i] = CartLine{
			ID:       n.ID,
			Quantity: n.Quantity,
			Merchandise: Merchandise{
				ID:    n.Merchandise.ID,
				Title: n.Merchandise.Title,
				Product: ProductRef{
					ID:     n.Merchandise.Product.ID,
					Title:  n.Merchandise.Product.Title,
					Handle: n.Merchandise.Product.Handle,
					Images: n.Merchandise.Product.Images.flatten(),
				},
			},
			Cost: LineCost{TotalAmount: n.Cost.TotalAmount},
		}
	}
	return &Cart{
		ID:            c.ID,
		CheckoutURL:   c.CheckoutURL,
		Lines:         lines,
		TotalQuantity: c.TotalQuantity,
		Cost:          CartCost{TotalAmount: c.Cost.TotalAmount},
	}
}

type gqlAccessToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt"`
}

type gqlOrder struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	OrderNumber       int    `json:"orderNumber"`
	ProcessedAt       string `json:"processedAt"`
	FinancialStatus   string `json:"financialStatus"`
	FulfillmentStatus string `json:"fulfillmentStatus"`
	CurrentTotalPrice Money  `json:"currentTotalPrice"`
	LineItems         struct {
		Edges []struct {
			Node struct {
				Title    string `json:"title"`
				Quantity int    `json:"quantity"`
				Variant  *struct {
					SKU string `json:"sku"`
				} `json:"variant"`
				DiscountedTotalPrice Money `json:"discountedTotalPrice"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"lineItems"`
}

func transformOrder(o *gqlOrder) Order {
	items := make([]OrderLineItem, len(o.LineItems.Edges))
	for i, e := range o.LineItems.Edges {
		item := OrderLineItem{
			Title:    e.Node.Title,
			Quantity: e.Node.Quantity,
			Total:    e.Node.DiscountedTotalPrice,
		}
		if e.Node.Variant != nil {
			item.SKU = e.Node.Variant.SKU
		}
		items[i] = item
	}
	return Order{
		ID:                o.ID,
		Name:              o.Name,
		OrderNumber:       o.OrderNumber,
		ProcessedAt:       o.ProcessedAt,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		Total:             o.CurrentTotalPrice,
		LineItems:         items,
	}
}
