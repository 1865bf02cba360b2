package common

const (
	EntryTypeIn  = "IN"
	EntryTypeOut = "OUT"

	EntryStatusWaiting    = "WAITING"
	EntryStatusPaid       = "PAID"
	EntryStatusCancelled  = "CANCELLED"
	EntryStatusReimbursed = "REIMBURSED"

	// gateway event types, already normalized for dispatch
	EventChargeSucceeded = "charge_succeeded"

	GatewayObjectCharge = "charge"

	RailCard      = "card"
	RailSepaDebit = "sepa_debit"

	SettlementRoutingKey = "settlement.charge.paid"
)
