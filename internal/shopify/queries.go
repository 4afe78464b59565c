package shopify

// Storefront API documents. Field selections match what the transform
// layer consumes; anything else just burns rate-limit cost.

const cartFields = `
  id
  checkoutUrl
  totalQuantity
  cost {
    totalAmount { amount currencyCode }
  }
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        merchandise {
          ... on ProductVariant {
            id
            title
            product {
              id
              title
              handle
              images(first: 1) {
                edges { node { id url altText width height } }
              }
            }
          }
        }
        cost {
          totalAmount { amount currencyCode }
        }
      }
    }
  }`

const cartCreateMutation = `
  mutation cartCreate($input: CartInput!) {
    cartCreate(input: $input) {
      cart {` + cartFields + `
      }
      userErrors { field message }
    }
  }`

const cartQuery = `
  query cart($id: ID!) {
    cart(id: $id) {` + cartFields + `
    }
  }`

const cartLinesAddMutation = `
  mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
    cartLinesAdd(cartId: $cartId, lines: $lines) {
      cart {` + cartFields + `
      }
      userErrors { field message }
    }
  }`

const cartLinesUpdateMutation = `
  mutation cartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
    cartLinesUpdate(cartId: $cartId, lines: $lines) {
      cart {` + cartFields + `
      }
      userErrors { field message }
    }
  }`

const cartLinesRemoveMutation = `
  mutation cartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
    cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
      cart {` + cartFields + `
      }
      userErrors { field message }
    }
  }`

const productFields = `
  id
  title
  description
  handle
  availableForSale
  tags
  createdAt
  updatedAt
  images(first: 5) {
    edges { node { id url altText width height } }
  }
  variants(first: 10) {
    edges {
      node {
        id
        title
        availableForSale
        price { amount currencyCode }
        selectedOptions { name value }
      }
    }
  }
  priceRange {
    minVariantPrice { amount currencyCode }
  }`

const productsQuery = `
  query getProducts($first: Int!, $after: String) {
    products(first: $first, after: $after) {
      edges {
        node {` + productFields + `
        }
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }`

const productByHandleQuery = `
  query getProductByHandle($handle: String!) {
    product(handle: $handle) {` + productFields + `
    }
  }`

const searchProductsQuery = `
  query searchProducts($query: String!, $first: Int!) {
    products(first: $first, query: $query) {
      edges {
        node {` + productFields + `
        }
      }
    }
  }`

const collectionsQuery = `
  query getCollections($first: Int!) {
    collections(first: $first) {
      edges {
        node {
          id
          title
          handle
          description
          image { id url altText width height }
        }
      }
    }
  }`

const blogArticlesQuery = `
  query getBlogArticles($handle: String!, $first: Int!) {
    blog(handle: $handle) {
      articles(first: $first, sortKey: PUBLISHED_AT, reverse: true) {
        edges {
          node {
            id
            title
            handle
            excerpt
            publishedAt
            authorV2 { name }
            image { id url altText width height }
          }
        }
      }
    }
  }`

const customerCreateMutation = `
  mutation customerCreate($input: CustomerCreateInput!) {
    customerCreate(input: $input) {
      customer { id email firstName lastName }
      customerUserErrors { code field message }
    }
  }`

const customerAccessTokenCreateMutation = `
  mutation customerAccessTokenCreate($input: CustomerAccessTokenCreateInput!) {
    customerAccessTokenCreate(input: $input) {
      customerAccessToken { accessToken expiresAt }
      customerUserErrors { code field message }
    }
  }`

const customerAccessTokenRenewMutation = `
  mutation customerAccessTokenRenew($customerAccessToken: String!) {
    customerAccessTokenRenew(customerAccessToken: $customerAccessToken) {
      customerAccessToken { accessToken expiresAt }
      userErrors { field message }
    }
  }`

const customerAccessTokenDeleteMutation = `
  mutation customerAccessTokenDelete($customerAccessToken: String!) {
    customerAccessTokenDelete(customerAccessToken: $customerAccessToken) {
      deletedAccessToken
      userErrors { field message }
    }
  }`

const customerByTokenQuery = `
  query customer($customerAccessToken: String!) {
    customer(customerAccessToken: $customerAccessToken) {
      id
      email
      firstName
      lastName
      phone
      acceptsMarketing
    }
  }`

const customerUpdateMutation = `
  mutation customerUpdate($customerAccessToken: String!, $customer: CustomerUpdateInput!) {
    customerUpdate(customerAccessToken: $customerAccessToken, customer: $customer) {
      customer { id email firstName lastName phone acceptsMarketing }
      customerUserErrors { code field message }
    }
  }`

const customerOrdersQuery = `
  query customerOrders($customerAccessToken: String!, $first: Int!) {
    customer(customerAccessToken: $customerAccessToken) {
      orders(first: $first, sortKey: PROCESSED_AT, reverse: true) {
        edges {
          node {
            id
            name
            orderNumber
            processedAt
            financialStatus
            fulfillmentStatus
            currentTotalPrice { amount currencyCode }
            lineItems(first: 20) {
              edges {
                node {
                  title
                  quantity
                  variant { sku }
                  discountedTotalPrice { amount currencyCode }
                }
              }
            }
          }
        }
      }
    }
  }`

const customerRecoverMutation = `
  mutation customerRecover($email: String!) {
    customerRecover(email: $email) {
      customerUserErrors { code field message }
    }
  }`

const customerResetMutation = `
  mutation customerReset($id: ID!, $input: CustomerResetInput!) {
    customerReset(id: $id, input: $input) {
      customer { id email }
      customerUserErrors { code field message }
    }
  }`
