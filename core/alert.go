package core

type AlertKind string

const (
	AlertNone    AlertKind = ""
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
)

// Alert is the transient banner shown after an action. It is dismissed by the user and never persisted.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

func SuccessAlert(msg string) Alert { return Alert{Kind: AlertSuccess, Message: msg} }
func ErrorAlert(msg string) Alert   { return Alert{Kind: AlertError, Message: msg} }

func (a Alert) IsZero() bool  { return a.Kind == AlertNone }
func (a Alert) IsError() bool { return a.Kind == AlertError }
