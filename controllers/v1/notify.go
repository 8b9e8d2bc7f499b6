package apiv1

import (
	notificationhandler "amia-backend/lib/notification"
	"amia-backend/models"
	eventrequestapimodels "amia-backend/models/api/event-request"
	notificationapimodels "amia-backend/models/api/notification"
)

// уведомления отправляются после успешной операции, ошибки только логируются внутри notificationhandler

func notifyEventRequestChanged(notifications notificationhandler.Provider, actor notificationapimodels.User, eventRequestID string,
	approvers []eventrequestapimodels.ApprovalView, update models.EventRequestUpdate) {
	if notifications == nil {
		return
	}
	for _, approver := range approvers {
		notifications.EventRequestChanged(approver.UserID, notificationapimodels.EventRequestPayload{
			EventRequestID: eventRequestID,
			Update:         update,
			User:           actor,
		})
	}
}

func notifyApprovalResponded(notifications notificationhandler.Provider, actor notificationapimodels.User, ownerID string,
	approval eventrequestapimodels.ApprovalView) {
	if notifications == nil {
		return
	}
	notifications.ApprovalResponded(ownerID, notificationapimodels.ApprovalPayload{
		EventRequestID: approval.EventRequestID,
		ApprovalID:     approval.ID,
		Status:         approval.Status,
		User:           actor,
	})
}
