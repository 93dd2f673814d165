package domain

type WithdrawalStatusType string

const (
	WithdrawalStatusPending   WithdrawalStatusType = "pending"
	WithdrawalStatusCompleted WithdrawalStatusType = "completed"
	WithdrawalStatusRejected  WithdrawalStatusType = "rejected"
)

type SeverityType string

const (
	SeverityInfo    SeverityType = "info"
	SeveritySuccess SeverityType = "success"
	SeverityError   SeverityType = "error"
)
