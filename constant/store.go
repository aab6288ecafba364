package constant

// Playback state values persisted with every video record.
const (
	StatePaused  = "paused"
	StatePlaying = "playing"
)

// User-facing notices raised by the playback core.
const (
	NoticeNotFound       = "Video not found in local storage."
	NoticeUnsupported    = "Only video files are supported."
	NoticeConfirmDelete  = "Are you sure you want to delete %q?"
	NoticeConfirmClear   = "Are you sure you want to delete ALL saved videos? This cannot be undone."
	LabelConfirm         = "Confirm"
	LabelCancel          = "Cancel"
	LabelDeleteAll       = "Delete All"
	NoticeDidYouMeanHint = "Did you mean %q?"
)
