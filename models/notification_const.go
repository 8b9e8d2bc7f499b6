package models

type NotificationType string

const (
	NotificationTypeEventRequest NotificationType = "event_request"
	NotificationTypeApproval     NotificationType = "event_request_approval"
)

type EventRequestUpdate string

const (
	EventRequestCreated EventRequestUpdate = "created"
	EventRequestUpdated EventRequestUpdate = "updated"
	EventRequestDeleted EventRequestUpdate = "deleted"
)

type NotificationTpl struct {
	Title string
	Msg   string
}

var EventRequestNotificationMap = map[EventRequestUpdate]NotificationTpl{
	EventRequestCreated: {Title: "New Event Request", Msg: "%v has created a new event request."},
	EventRequestUpdated: {Title: "Event Request Updated", Msg: "%v has updated their event request."},
	EventRequestDeleted: {Title: "Event Request Deleted", Msg: "%v has deleted their event request."},
}

var ApprovalNotificationMap = map[ApprovalState]NotificationTpl{
	AStateApproved: {Title: "Event Request Approved", Msg: "%v has approved your event request."},
	AStateRejected: {Title: "Event Request Rejected", Msg: "%v has rejected your event request."},
}
