package domain

// EventKind names one content-mutation hook. The set below is closed: every
// write path in the admin API emits exactly one of these after commit, which
// is what makes the context-cache invalidation list exhaustive. A write that
// bypasses the admin API (editing the store file directly) produces stale
// cached context, not a crash.
type EventKind string

const (
	EventPostCreated       EventKind = "post_created"
	EventPostUpdated       EventKind = "post_updated"
	EventPostStatusChanged EventKind = "post_status_changed"
	EventPostDeleted       EventKind = "post_deleted"
	EventTermCreated       EventKind = "term_created"
	EventTermUpdated       EventKind = "term_updated"
	EventTermDeleted       EventKind = "term_deleted"
	EventPostTermsSet      EventKind = "post_terms_set"
	EventPostMetaSet       EventKind = "post_meta_set"
	EventSiteCreated       EventKind = "site_created"
	EventSiteUpdated       EventKind = "site_updated"
	EventSiteDeleted       EventKind = "site_deleted"
	EventSiteOptionSet     EventKind = "site_option_set"
)

// AllEventKinds returns every mutation hook, in a stable order. The context
// cache subscribes to all of them.
func AllEventKinds() []EventKind {
	return []EventKind{
		EventPostCreated,
		EventPostUpdated,
		EventPostStatusChanged,
		EventPostDeleted,
		EventTermCreated,
		EventTermUpdated,
		EventTermDeleted,
		EventPostTermsSet,
		EventPostMetaSet,
		EventSiteCreated,
		EventSiteUpdated,
		EventSiteDeleted,
		EventSiteOptionSet,
	}
}

// ContentEvent is one mutation notification. SiteID is zero for
// network-level events (site create/delete themselves carry the affected
// site's ID).
type ContentEvent struct {
	Kind   EventKind `json:"kind"`
	SiteID int64     `json:"site_id,omitempty"`
	// ObjectID is the post, term, or site the event concerns.
	ObjectID int64 `json:"object_id,omitempty"`
	// Detail carries the option key for option events and the new status
	// for status transitions.
	Detail string `json:"detail,omitempty"`
}

// ContentEmitter delivers mutation events to subscribers before the emitting
// call returns.
type ContentEmitter interface {
	EmitContentEvent(event ContentEvent)
}
