package order

// allowedTransitions is the full lifecycle graph. A status missing from
// the map (or with an empty set) is terminal.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPlaced:     {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled, StatusRefunded},
	StatusShipped:    {StatusDelivered, StatusRefunded},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {StatusRefunded},
	StatusRefunded:   {},
}

func isTransitionAllowed(from OrderStatus, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
