package event

const (
	TopicProductCreated      = "product.created"
	TopicTransactionRecorded = "transaction.recorded"
)

type ProductCreatedEvent struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Stock     int    `json:"stock"`
}

type TransactionRecordedEvent struct {
	TransactionID string  `json:"transaction_id"`
	ProductID     string  `json:"product_id"`
	Type          string  `json:"transaction_type"`
	Quantity      int     `json:"quantity"`
	TotalPrice    float64 `json:"total_price"`
}
