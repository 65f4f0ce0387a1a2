package common

// Collection names shared by every storage backend. They double as snapshot
// keys for the local backend and as the collection column of the remote one.
const (
	CollectionOwners            = "owners"
	CollectionBankAccounts      = "bankAccounts"
	CollectionTransactions      = "transactions"
	CollectionPaymentCategories = "paymentCategories"
	CollectionPaymentTemplates  = "paymentTemplates"
	CollectionPayments          = "payments"
	CollectionPaymentBatches    = "paymentBatches"
)

// AuthorizationHeaderName carries the bearer token on API requests.
const AuthorizationHeaderName = "Authorization"
