// Package nav names the views the assessment flow moves between and the
// transient notifications shown along the way. Renderers (HTTP, terminal)
// implement Navigator and Notifier; the core only emits.
package nav

// View is a navigational target.
type View string

const (
	Landing View = "/"
	Intake  View = "/questionnaire"
	Results View = "/dashboard"
)

// Navigator receives navigation side effects.
type Navigator interface {
	Navigate(target View)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target View)

func (f NavigatorFunc) Navigate(target View) { f(target) }

// Level of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient, non-blocking message. Key is an i18n key;
// the renderer resolves it for the caller's locale.
type Notification struct {
	Level Level  `json:"level"`
	Key   string `json:"key"`
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Recorder captures the side effects of one interaction so a request
// handler can report them in its response.
type Recorder struct {
	Target        View
	Notifications []Notification
}

func (r *Recorder) Navigate(target View) { r.Target = target }

func (r *Recorder) Notify(n Notification) { r.Notifications = append(r.Notifications, n) }

// Navigated reports whether a navigation was requested.
func (r *Recorder) Navigated() bool { return r.Target != "" }
