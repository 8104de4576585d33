package enum

// Order state machine literals. Case-sensitive on the wire.

const (
	OrderStatusNew        = "NEW"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusReady      = "READY"
	OrderStatusServed     = "SERVED"
	OrderStatusCancelled  = "CANCELLED"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusPaid      = "PAID"
	PaymentStatusCancelled = "CANCELLED"
)

// Portion labels.
// Ratio lookup requires an exact match; any other value means a full portion.

const (
	PortionFull    = "Full"
	PortionHalf    = "Half"
	PortionQuarter = "Quarter"
)

// Requisition workflow statuses.

const (
	RequisitionStatusPending  = "PENDING"
	RequisitionStatusApproved = "APPROVED"
	RequisitionStatusReceived = "RECEIVED"
	RequisitionStatusRejected = "REJECTED"
)

// Labels with no store-level constraint.

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
	UserRoleKitchen = "KITCHEN"
)

const (
	PaymentMethodCash = "CASH"
	PaymentMethodCard = "CARD"
	PaymentMethodUPI  = "UPI"
)

const (
	ExpenseCategoryIngredients = "INGREDIENTS"
	ExpenseCategoryUtilities   = "UTILITIES"
	ExpenseCategorySalary      = "SALARY"
	ExpenseCategoryRent        = "RENT"
	ExpenseCategoryOther       = "OTHER"
)
