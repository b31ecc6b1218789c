package transport

type createCartRequest struct {
	CustomerID *int64 `json:"customer_id"`
}

type createCartResponse struct {
	ShoppingCartID int64 `json:"shopping_cart_id"`
}

type addItemRequest struct {
	ProductID *int64 `json:"product_id"`
	Quantity  *int64 `json:"quantity"`
}

type checkoutRequest struct {
	CreditCardNumber string `json:"credit_card_number"`
}

type checkoutResponse struct {
	OrderID int64 `json:"order_id"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
