package models

// Event is the single discrete input consumed by the state machine in one control cycle.
type Event string

const (
	EventNone               Event = "NONE"
	EventTimerFired         Event = "TIMER_FIRED"
	EventButtonPressed      Event = "BUTTON_PRESSED"
	EventCredentialAccepted Event = "CREDENTIAL_ACCEPTED"
	EventCredentialRejected Event = "CREDENTIAL_REJECTED"
	EventComfortDeviation   Event = "COMFORT_DEVIATION"
	EventAlarmThresholdTemp Event = "ALARM_THRESHOLD_TEMP"
	EventPresenceDetected   Event = "PRESENCE_DETECTED"
)

// Events lists every event kind, EventNone first.
var Events = []Event{
	EventNone,
	EventTimerFired,
	EventButtonPressed,
	EventCredentialAccepted,
	EventCredentialRejected,
	EventComfortDeviation,
	EventAlarmThresholdTemp,
	EventPresenceDetected,
}

func (e Event) String() string { return string(e) }
