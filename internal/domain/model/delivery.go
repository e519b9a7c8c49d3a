package model

// DeliveryResult is the outcome of one message to one recipient.
type DeliveryResult struct {
	RecipientID int64
	Skipped     bool
	Err         error
}

func (r DeliveryResult) Delivered() bool {
	return !r.Skipped && r.Err == nil
}

func CountDelivered(results []DeliveryResult) int {
	n := 0
	for _, r := range results {
		if r.Delivered() {
			n++
		}
	}
	return n
}
