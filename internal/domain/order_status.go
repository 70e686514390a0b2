package domain

type OrderStatus string

// OrderStatusPlaced is the status every stored order starts in.
const OrderStatusPlaced OrderStatus = "PLACED"
