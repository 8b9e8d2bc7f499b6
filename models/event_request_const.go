package models

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

type ApprovalState string

const (
	AStatePending  ApprovalState = "pending"
	AStateApproved ApprovalState = "approved"
	AStateRejected ApprovalState = "rejected"
	// AStateRemoved используется только в истории согласования
	AStateRemoved ApprovalState = "removed"
)

func (s ApprovalState) IsValid() bool {
	switch s {
	case AStatePending, AStateApproved, AStateRejected:
		return true
	}
	return false
}

func (s ApprovalState) IsResponded() bool {
	return s == AStateApproved || s == AStateRejected
}

// AllowChange ответ согласующего можно поменять (approved <-> rejected),
// но вернуть уже принятое решение в pending нельзя
func (s ApprovalState) AllowChange(to ApprovalState) bool {
	if !to.IsValid() {
		return false
	}
	if s.IsResponded() && to == AStatePending {
		return false
	}
	return true
}

// AggregatedApprovalStatus сводный статус согласования заявки, не хранится в БД
type AggregatedApprovalStatus string

const (
	ApprovalStatusNoApprovals AggregatedApprovalStatus = "no_approvals"
	ApprovalStatusPending     AggregatedApprovalStatus = "pending"
	ApprovalStatusApproved    AggregatedApprovalStatus = "approved"
	ApprovalStatusRejected    AggregatedApprovalStatus = "rejected"
)

// AggregateApprovalStatus вычисляет сводный статус по счетчикам согласований заявки
func AggregateApprovalStatus(total, approved, rejected int64) AggregatedApprovalStatus {
	switch {
	case total == 0:
		return ApprovalStatusNoApprovals
	case rejected > 0:
		return ApprovalStatusRejected
	case approved == total:
		return ApprovalStatusApproved
	default:
		return ApprovalStatusPending
	}
}

const (
	MinImportanceLevel = 1
	MaxImportanceLevel = 5
)
