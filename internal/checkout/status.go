package checkout

type Status string

const (
	StatusInitiated         Status = "INITIATED"
	StatusInventoryReserved Status = "INVENTORY_RESERVED"
	StatusPaymentCompleted  Status = "PAYMENT_COMPLETED"
	StatusCompleted         Status = "COMPLETED"
	StatusFailed            Status = "FAILED"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) String() string {
	return string(s)
}

var transitions = map[Status][]Status{
	StatusInitiated:         {StatusInventoryReserved, StatusFailed},
	StatusInventoryReserved: {StatusPaymentCompleted, StatusFailed},
	StatusPaymentCompleted:  {StatusCompleted, StatusFailed},
}

func CanTransitionTo(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
